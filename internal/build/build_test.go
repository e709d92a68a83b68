package build

import (
	"context"
	"coursesql/internal/domain/config"
	domainerr "coursesql/internal/domain/errors"
	"coursesql/internal/index"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleCSV = "Chapter,Topics,Lesson ID,Lessons,Tags\n" +
	"Number Properties,Integers,NP_01,What's an integer,\"algebra, integers\"\n" +
	"Number Properties,Primes,NP_02,Primes,primes\n" +
	"Circles,Arcs,CI_01,Arc length,\n"

func testConfig(t *testing.T, csv string) config.Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "master_map.csv")
	if err := os.WriteFile(input, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Course.ID = "b60ede64-698c-450c-9395-008d568b7ab3"
	cfg.Course.Name = "GRE"
	cfg.Input.Path = input
	cfg.Output.Dir = filepath.Join(dir, "sql")
	cfg.Output.Now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cfg.Index.Path = filepath.Join(dir, ".coursesql", "index.db")
	cfg.Chapters = config.ChapterIDs{
		"Number Properties": "5bb04889-3346-4dc1-ae12-550132629536",
		"Circles":           "164c5454-0f9d-448c-a3dc-78f0a1d40e60",
	}
	return cfg
}

func readOut(t *testing.T, cfg config.Config, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(cfg.Output.Dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(b)
}

func TestRun_LookupPolicy(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	b := &Builder{Cfg: cfg}

	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Skipped || res.Topics != 3 || res.Lessons != 3 || res.Tags != 3 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Files) != 5 {
		t.Fatalf("len(Files) = %d, want 5", len(res.Files))
	}

	topics := readOut(t, cfg, "step1-insert-topics.sql")
	if !strings.Contains(topics, "('164c5454-0f9d-448c-a3dc-78f0a1d40e60', 'Arcs', '1', 1),\n") {
		t.Fatalf("topics file =\n%s", topics)
	}
	lessons := readOut(t, cfg, "step2-insert-lessons.sql")
	if !strings.Contains(lessons, "('What''s an integer', 'NP_01', 'NP-01', 'Number Properties', 'Integers', false, 1)") {
		t.Fatalf("lessons file =\n%s", lessons)
	}
	tags := readOut(t, cfg, "step3-insert-tags.sql")
	if strings.Count(tags, "(SELECT id FROM") != 3 {
		t.Fatalf("tags file =\n%s", tags)
	}
	if rb := readOut(t, cfg, "RUNBOOK.md"); !strings.Contains(rb, "`step2-insert-lessons.sql`") {
		t.Fatalf("runbook =\n%s", rb)
	}
	if html := readOut(t, cfg, "RUNBOOK.html"); !strings.Contains(html, "<title>GRE SQL runbook</title>") {
		t.Fatalf("runbook html =\n%s", html)
	}
}

func TestRun_SkipsUnchangedInputs(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	ctx := context.Background()

	if _, err := (&Builder{Cfg: cfg}).Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	res, err := (&Builder{Cfg: cfg}).Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !res.Skipped {
		t.Fatalf("unchanged inputs were regenerated")
	}

	res, err = (&Builder{Cfg: cfg, Force: true}).Run(ctx)
	if err != nil || res.Skipped {
		t.Fatalf("forced Run = %+v, %v", res, err)
	}

	// a missing artifact forces regeneration
	if err := os.Remove(filepath.Join(cfg.Output.Dir, "step3-insert-tags.sql")); err != nil {
		t.Fatal(err)
	}
	res, err = (&Builder{Cfg: cfg}).Run(ctx)
	if err != nil || res.Skipped {
		t.Fatalf("Run after deleting a file = %+v, %v", res, err)
	}

	// changed input
	if err := os.WriteFile(cfg.Input.Path, []byte(sampleCSV+"Circles,Arcs,CI_02,Sectors,\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err = (&Builder{Cfg: cfg}).Run(ctx)
	if err != nil || res.Skipped || res.Lessons != 4 {
		t.Fatalf("Run after input change = %+v, %v", res, err)
	}

	st, err := index.Open(index.OpenOptions{Path: cfg.Index.Path, ReadOnly: true})
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer st.Close()
	runs, err := st.ListRuns(0)
	if err != nil || len(runs) != 5 {
		t.Fatalf("ListRuns = %d, %v; want 5", len(runs), err)
	}
	if l, err := st.GetLesson("CI_02"); err != nil || l.Order != 2 {
		t.Fatalf("GetLesson(CI_02) = %+v, %v", l, err)
	}
}

func TestRun_EditedRunbookTemplateRegenerates(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	cfg.Output.RunbookTemplate = filepath.Join(filepath.Dir(cfg.Input.Path), "runbook.tmpl")
	if err := os.WriteFile(cfg.Output.RunbookTemplate, []byte("# first {{ .Topics }}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := (&Builder{Cfg: cfg}).Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if rb := readOut(t, cfg, "RUNBOOK.md"); rb != "# first 3\n" {
		t.Fatalf("runbook = %q, want %q", rb, "# first 3\n")
	}

	if err := os.WriteFile(cfg.Output.RunbookTemplate, []byte("# second {{ .Lessons }}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := (&Builder{Cfg: cfg}).Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Skipped {
		t.Fatalf("edited runbook template was not applied")
	}
	if rb := readOut(t, cfg, "RUNBOOK.md"); rb != "# second 3\n" {
		t.Fatalf("runbook = %q, want %q", rb, "# second 3\n")
	}

	res, err = (&Builder{Cfg: cfg}).Run(ctx)
	if err != nil || !res.Skipped {
		t.Fatalf("Run with unchanged template = %+v, %v", res, err)
	}
}

func TestPlan_MissingRunbookTemplate(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	cfg.Output.RunbookTemplate = filepath.Join(t.TempDir(), "missing.tmpl")
	if _, err := (&Builder{Cfg: cfg}).Plan(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Plan err = %v, want os.ErrNotExist", err)
	}

	// the template is not read when the runbook is disabled
	cfg.Output.Runbook = false
	plan, err := (&Builder{Cfg: cfg}).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan without runbook: %v", err)
	}
	if plan.Fingerprint.TemplateHash != "" {
		t.Fatalf("TemplateHash = %q without a runbook", plan.Fingerprint.TemplateHash)
	}
}

func TestRun_UnknownChapterWritesNothing(t *testing.T) {
	cfg := testConfig(t, sampleCSV+"Probability,Basics,PR_01,Intro,\n")
	_, err := (&Builder{Cfg: cfg}).Run(context.Background())
	if !errors.Is(err, domainerr.ErrUnknownChapter) {
		t.Fatalf("err = %v, want ErrUnknownChapter", err)
	}
	if _, err := os.Stat(cfg.Output.Dir); !os.IsNotExist(err) {
		t.Fatalf("output dir exists after failed run: %v", err)
	}
}

func TestRun_MissingColumn(t *testing.T) {
	cfg := testConfig(t, "Chapter,Topics\nA,B\n")
	_, err := (&Builder{Cfg: cfg}).Run(context.Background())
	if !errors.Is(err, domainerr.ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestRun_IndexDisabledAndNoRunbook(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	cfg.Index.Disabled = true
	cfg.Output.Runbook = false

	res, err := (&Builder{Cfg: cfg}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Files) != 3 {
		t.Fatalf("len(Files) = %d, want 3", len(res.Files))
	}
	if _, err := os.Stat(cfg.Index.Path); !os.IsNotExist(err) {
		t.Fatalf("index written while disabled: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "RUNBOOK.md")); !os.IsNotExist(err) {
		t.Fatalf("runbook written while disabled: %v", err)
	}
}

func TestPlaceholderPolicyAndFill(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	cfg.Output.Policy = config.PolicyPlaceholder
	ctx := context.Background()

	if _, err := (&Builder{Cfg: cfg}).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{"01-insert-topics.sql", "02-get-topic-ids.sql", "03-insert-lessons-template.sql", "04-insert-tags.sql"} {
		readOut(t, cfg, name)
	}
	tmpl := readOut(t, cfg, "03-insert-lessons-template.sql")
	if !strings.Contains(tmpl, "'TOPIC_ID_FOR_NUMBER_PROPERTIES__PRIMES'") {
		t.Fatalf("template =\n%s", tmpl)
	}

	ids := filepath.Join(t.TempDir(), "ids.csv")
	export := "id,topic_name,chapter_name,topic_order\n" +
		"7,Arcs,Circles,1\n" +
		"8,Integers,Number Properties,1\n" +
		"9,Primes,Number Properties,2\n"
	if err := os.WriteFile(ids, []byte(export), 0o644); err != nil {
		t.Fatal(err)
	}
	a, rows, err := (&Builder{Cfg: cfg}).Fill(ctx, ids)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if rows != 3 || a.Name != "03-insert-lessons.sql" {
		t.Fatalf("Fill = %v, %d", a, rows)
	}
	filled := readOut(t, cfg, "03-insert-lessons.sql")
	if strings.Contains(filled, "TOPIC_ID_FOR_") || !strings.Contains(filled, "'5bb04889-3346-4dc1-ae12-550132629536', '9', false, 1)") {
		t.Fatalf("filled =\n%s", filled)
	}

	// regeneration drops the filled file
	if _, err := (&Builder{Cfg: cfg, Force: true}).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(a.OutPath); !os.IsNotExist(err) {
		t.Fatalf("stale filled file kept: %v", err)
	}

	partial := filepath.Join(t.TempDir(), "partial.csv")
	if err := os.WriteFile(partial, []byte("id,topic_name,chapter_name\n7,Arcs,Circles\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := (&Builder{Cfg: cfg}).Fill(ctx, partial); err == nil {
		t.Fatalf("Fill accepted an export missing topics")
	}
}

func TestFill_RequiresPlaceholderPolicy(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	if _, _, err := (&Builder{Cfg: cfg}).Fill(context.Background(), "ids.csv"); err == nil {
		t.Fatalf("Fill ran under the lookup policy")
	}
}
