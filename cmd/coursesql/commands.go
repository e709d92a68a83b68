package main

import (
	"context"
	"coursesql/internal/build"
	"coursesql/internal/domain/config"
	domainerr "coursesql/internal/domain/errors"
	"coursesql/internal/index"
	"coursesql/internal/replica"
	"coursesql/internal/watch"
	"errors"
	"fmt"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
)

type commands struct {
	ctx        context.Context
	configFile *string
}

// configError marks failures to read or validate the configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ce *configError
	if errors.As(err, &ce) || errors.Is(err, domainerr.ErrInvalid) {
		return 2
	}
	return 1
}

func (c *commands) loadConfig() (config.Config, error) {
	cfg, err := config.Load(*c.configFile)
	if err != nil {
		return cfg, &configError{err: fmt.Errorf("config %s: %w", *c.configFile, err)}
	}
	return cfg, nil
}

func (c *commands) build(force bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	return runBuild(c.ctx, cfg, force)
}

func runBuild(ctx context.Context, cfg config.Config, force bool) error {
	b := &build.Builder{Cfg: cfg, Force: force}
	res, err := b.Run(ctx)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"policy":  res.Policy,
		"topics":  res.Topics,
		"lessons": res.Lessons,
		"tags":    res.Tags,
		"skipped": res.Skipped,
	}).Debug("build finished")

	printWarnings(res.Warnings)
	if res.Skipped {
		color.Cyan("Inputs unchanged since the last build, nothing regenerated (use build --force).")
		return nil
	}
	for _, a := range res.Files {
		if a.IsStatement() {
			fmt.Printf("  %d. %s - %s\n", a.Step, a.OutPath, a.Note)
		} else {
			fmt.Printf("     %s\n", a.OutPath)
		}
	}
	color.Green("Topics: %d | Lessons: %d | Tags: %d (%s policy)", res.Topics, res.Lessons, res.Tags, res.Policy)
	return nil
}

func (c *commands) check() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	plan, err := (&build.Builder{Cfg: cfg}).Plan(c.ctx)
	if err != nil {
		return err
	}
	printWarnings(plan.Warnings)

	rep, err := replica.Check(c.ctx, plan.Options, plan.Outline, plan.Statements)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	for i, s := range rep.Steps {
		name := plan.Artifacts[i].Name
		if s.Skipped {
			fmt.Printf("  %d. %s: nothing to run\n", i+1, name)
			continue
		}
		fmt.Printf("  %d. %s: %d row(s)\n", i+1, name, s.Rows)
	}
	if !rep.OK() {
		for _, p := range rep.Problems {
			color.Red("  %s", p)
		}
		return fmt.Errorf("check found %d problem(s)", len(rep.Problems))
	}
	color.Green("Replica accepted every statement: %d topics, %d lessons, %d tags.", rep.Topics, rep.Lessons, rep.Tags)
	return nil
}

type inspectOptions struct {
	Tag     string
	Chapter string
	Lesson  string
	Runs    int
}

func (c *commands) inspect(opt inspectOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Index.Disabled {
		return errors.New("inspect: the index is disabled in the configuration")
	}
	st, err := index.Open(index.OpenOptions{Path: cfg.Index.Path, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("open index (run build first): %w", err)
	}
	defer st.Close()

	switch {
	case opt.Lesson != "":
		l, err := st.GetLesson(opt.Lesson)
		if err != nil {
			return fmt.Errorf("lesson %s: %w", opt.Lesson, err)
		}
		fmt.Printf("%s  %s\n  %s > %s (topic %d, lesson %d)\n  slug %s, tags %v, line %d\n",
			l.Code, l.Title, l.Chapter, l.Topic, l.TopicOrder, l.Order, l.Slug, l.Tags, l.Line)
		return nil

	case opt.Tag != "":
		lessons, err := st.ListByTag(opt.Tag)
		if err != nil {
			return err
		}
		for _, l := range lessons {
			fmt.Printf("%-12s %s (%s > %s)\n", l.Code, l.Title, l.Chapter, l.Topic)
		}
		color.Green("%d lesson(s) tagged %q", len(lessons), opt.Tag)
		return nil

	case opt.Chapter != "":
		topics, err := st.ListTopics(opt.Chapter)
		if err != nil {
			return err
		}
		for _, t := range topics {
			fmt.Printf("%3d  %s (%d lessons)\n", t.Order, t.Name, t.Lessons)
		}
		color.Green("%d topic(s) in %q", len(topics), opt.Chapter)
		return nil
	}

	fp, err := st.Fingerprint()
	if err != nil && !errors.Is(err, index.ErrNotFound) {
		return err
	}
	if err == nil {
		fmt.Printf("render hash %s\n", fp.RenderHash)
	}

	counts, err := st.TagCounts()
	if err != nil {
		return err
	}
	fmt.Printf("%d tag(s)\n", len(counts))
	for i, tc := range counts {
		if i == 10 {
			fmt.Printf("  ... %d more\n", len(counts)-i)
			break
		}
		fmt.Printf("  %-24s %d\n", tc.Tag, tc.Lessons)
	}

	runs, err := st.ListRuns(opt.Runs)
	if err != nil {
		return err
	}
	fmt.Println("recent runs")
	for _, r := range runs {
		state := "generated"
		if r.Skipped {
			state = "skipped"
		}
		fmt.Printf("  %s  %-9s %-11s topics=%d lessons=%d tags=%d warnings=%d\n",
			r.At.Format("2006-01-02 15:04:05"), state, r.Policy, r.Topics, r.Lessons, r.Tags, r.Warnings)
	}
	return nil
}

func (c *commands) fill(idsPath string) error {
	if idsPath == "" {
		return errors.New("fill: --ids is required")
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, rows, err := (&build.Builder{Cfg: cfg}).Fill(c.ctx, idsPath)
	if err != nil {
		return err
	}
	color.Green("Wrote %s (%d lessons) - run it instead of the template", a.OutPath, rows)
	return nil
}

func (c *commands) watch() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	w := &watch.Watcher{
		Files: watchedFiles(*c.configFile, cfg),
		Rebuild: func(ctx context.Context) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return runBuild(ctx, cfg, false)
		},
	}
	return w.Run(c.ctx)
}

// watchedFiles lists every file whose change alters the generated output.
func watchedFiles(configFile string, cfg config.Config) []string {
	files := []string{configFile, cfg.Input.Path}
	if cfg.Output.Runbook && cfg.Output.RunbookTemplate != "" {
		files = append(files, cfg.Output.RunbookTemplate)
	}
	return files
}
