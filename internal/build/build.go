package build

import (
	"bytes"
	"context"
	"coursesql/internal/app"
	domainbuild "coursesql/internal/domain/build"
	"coursesql/internal/domain/config"
	"coursesql/internal/domain/course"
	"coursesql/internal/domain/output"
	"coursesql/internal/emit"
	"coursesql/internal/index"
	"coursesql/internal/ingest"
	"coursesql/internal/render"
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"strings"
)

type Builder struct {
	Cfg   config.Config
	Force bool
}

// Plan is everything a build derives from its inputs before touching the
// output directory.
type Plan struct {
	Policy      config.Policy
	Options     emit.Options
	Outline     *course.Outline
	Warnings    []ingest.Warning
	Statements  []emit.Statement
	Artifacts   []output.Artifact
	Fingerprint domainbuild.Fingerprint
}

type Result struct {
	Policy      config.Policy
	Topics      int
	Lessons     int
	Tags        int
	Files       []output.Artifact
	Warnings    []ingest.Warning
	Skipped     bool
	Fingerprint domainbuild.Fingerprint
}

func (b *Builder) planner() *app.ArtifactPlanner {
	return &app.ArtifactPlanner{OutDir: b.Cfg.Output.Dir, Runbook: b.Cfg.Output.Runbook}
}

// Plan ingests the input table and renders every statement in memory.
func (b *Builder) Plan(ctx context.Context) (*Plan, error) {
	res, err := ingest.Ingest(ingest.Options{
		Path:  b.Cfg.Input.Path,
		Comma: b.Cfg.Delimiter(),
	})
	if err != nil {
		return nil, fmt.Errorf("ingest failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outline := course.Aggregate(res.Rows)
	opt := emit.OptionsFromConfig(b.Cfg)

	stmts, err := emit.Render(outline, opt)
	if err != nil {
		return nil, fmt.Errorf("render statements: %w", err)
	}
	arts := b.planner().StatementArtifacts(opt.Policy)
	if len(arts) != len(stmts) {
		return nil, fmt.Errorf("render statements: %d statements for %d files", len(stmts), len(arts))
	}
	for i := range arts {
		if arts[i].Kind != stmts[i].Kind {
			return nil, fmt.Errorf("render statements: step %d is %s, planned %s", i+1, stmts[i].Kind, arts[i].Kind)
		}
	}

	cfgHash, err := b.Cfg.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash config: %w", err)
	}
	fp := domainbuild.Fingerprint{
		InputHash:     res.ContentHash,
		ConfigHash:    cfgHash,
		GeneratorHash: domainbuild.GeneratorHash(string(opt.Policy)),
	}
	if b.Cfg.Output.Runbook {
		src, err := render.RunbookSource(b.Cfg.Output.RunbookTemplate)
		if err != nil {
			return nil, fmt.Errorf("read runbook template: %w", err)
		}
		fp.TemplateHash = ingest.HashBytes(src)
	}
	fp.ComputeRenderHash()

	return &Plan{
		Policy:      opt.Policy,
		Options:     opt,
		Outline:     outline,
		Warnings:    res.Warnings,
		Statements:  stmts,
		Artifacts:   arts,
		Fingerprint: fp,
	}, nil
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	plan, err := b.Plan(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Policy:      plan.Policy,
		Topics:      len(plan.Outline.Topics),
		Lessons:     len(plan.Outline.Lessons),
		Tags:        plan.Outline.TagCount(),
		Warnings:    plan.Warnings,
		Fingerprint: plan.Fingerprint,
	}
	files := b.planner().Plan(plan.Policy)
	res.Files = files

	var st *index.Store
	if !b.Cfg.Index.Disabled {
		st, err = index.Open(index.OpenOptions{Path: b.Cfg.Index.Path})
		if err != nil {
			return nil, fmt.Errorf("failed to open index: %w", err)
		}
		defer st.Close()

		if !b.Force && upToDate(st, plan.Fingerprint, files) {
			log.WithFields(log.Fields{
				"render_hash": short(plan.Fingerprint.RenderHash),
				"dir":         b.Cfg.Output.Dir,
			}).Debug("inputs unchanged, skipping generation")
			res.Skipped = true
			if err := st.AppendRun(b.runRecord(res)); err != nil {
				return nil, fmt.Errorf("record run: %w", err)
			}
			return res, nil
		}
	}

	contents := make(map[output.ArtifactKind][]byte, len(files))
	for i, a := range plan.Artifacts {
		contents[a.Kind] = plan.Statements[i].Bytes()
	}
	if b.Cfg.Output.Runbook {
		md, html, err := b.renderRunbook(ctx, plan)
		if err != nil {
			return nil, fmt.Errorf("render runbook: %w", err)
		}
		contents[output.ArtifactRunbook] = md
		contents[output.ArtifactRunbookHTML] = html
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outDir := b.Cfg.Output.Dir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir output: %w", err)
	}
	for _, a := range files {
		if err := writeFile(outDir, a.Name, contents[a.Kind]); err != nil {
			return nil, fmt.Errorf("write %s: %w", a.Name, err)
		}
		log.WithField("artifact", a.String()).Debug("wrote artifact")
	}
	// a filled lessons file from an earlier template no longer matches
	if plan.Policy == config.PolicyPlaceholder {
		filled := b.planner().FilledLessons().OutPath
		if err := os.Remove(filled); err == nil {
			log.WithField("file", filled).Info("removed stale filled lessons file, run fill again")
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if st != nil {
		if err := st.Rebuild(plan.Outline, plan.Fingerprint); err != nil {
			return nil, fmt.Errorf("failed to rebuild index: %w", err)
		}
		if err := st.AppendRun(b.runRecord(res)); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}
	return res, nil
}

func upToDate(st *index.Store, fp domainbuild.Fingerprint, files []output.Artifact) bool {
	stored, err := st.Fingerprint()
	if err != nil || stored.RenderHash != fp.RenderHash {
		return false
	}
	for _, a := range files {
		if _, err := os.Stat(a.OutPath); err != nil {
			return false
		}
	}
	return true
}

func (b *Builder) runRecord(res *Result) index.Run {
	names := make([]string, 0, len(res.Files))
	for _, a := range res.Files {
		names = append(names, a.Name)
	}
	return index.Run{
		At:         b.Cfg.Output.Now,
		Policy:     string(res.Policy),
		Files:      names,
		Topics:     res.Topics,
		Lessons:    res.Lessons,
		Tags:       res.Tags,
		Warnings:   len(res.Warnings),
		RenderHash: res.Fingerprint.RenderHash,
		Skipped:    res.Skipped,
	}
}

func (b *Builder) renderRunbook(ctx context.Context, plan *Plan) ([]byte, []byte, error) {
	tpl, err := render.NewTemplateRenderer(b.Cfg.Output.RunbookTemplate)
	if err != nil {
		return nil, nil, err
	}

	page := render.RunbookPage{
		CourseID:    plan.Options.CourseID,
		CourseName:  plan.Options.CourseName,
		Policy:      string(plan.Policy),
		Schema:      plan.Options.Schema,
		Source:      filepath.Base(b.Cfg.Input.Path),
		Generated:   b.Cfg.Output.Now,
		Topics:      len(plan.Outline.Topics),
		Lessons:     len(plan.Outline.Lessons),
		Tags:        plan.Outline.TagCount(),
		RenderHash:  plan.Fingerprint.RenderHash,
		Placeholder: plan.Policy == config.PolicyPlaceholder,
	}
	for i, a := range plan.Artifacts {
		st := plan.Statements[i]
		page.Steps = append(page.Steps, render.RunbookStep{
			Step:  a.Step,
			Name:  a.Name,
			Note:  a.Note,
			Rows:  st.Rows,
			Empty: st.Empty(),
		})
	}
	for _, w := range plan.Warnings {
		page.Warnings = append(page.Warnings, w.String())
	}

	md, err := tpl.RenderRunbook(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	title := "SQL runbook"
	if page.CourseName != "" {
		title = page.CourseName + " " + title
	}
	html, err := tpl.RenderHTML(ctx, title, md)
	if err != nil {
		return nil, nil, err
	}
	return md, html, nil
}

// Fill substitutes the topic ids exported from the topic id query into the
// lessons template and writes the result next to it.
func (b *Builder) Fill(ctx context.Context, idsPath string) (output.Artifact, int, error) {
	if b.Cfg.PolicyOrDefault() != config.PolicyPlaceholder {
		return output.Artifact{}, 0, errors.New("fill needs output.policy: placeholder, the lookup policy resolves topic ids itself")
	}
	plan, err := b.Plan(ctx)
	if err != nil {
		return output.Artifact{}, 0, err
	}

	src, err := ingest.ReadSource(idsPath)
	if err != nil {
		return output.Artifact{}, 0, err
	}
	ids, err := ingest.ParseTopicIDs(bytes.NewReader(src.Data), ingest.ParseOptions{Source: src.Path})
	if err != nil {
		return output.Artifact{}, 0, fmt.Errorf("parse %s: %w", idsPath, err)
	}

	st, err := emit.Fill(plan.Outline, plan.Options, ids, idsPath)
	if err != nil {
		return output.Artifact{}, 0, err
	}
	a := b.planner().FilledLessons()
	if err := writeFile(b.Cfg.Output.Dir, a.Name, st.Bytes()); err != nil {
		return output.Artifact{}, 0, fmt.Errorf("write %s: %w", a.Name, err)
	}
	return a, st.Rows, nil
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func short(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
