package main

import (
	"context"
	"coursesql/internal/domain/config"
	domainerr "coursesql/internal/domain/errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeCourse(t *testing.T, policy string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "master_map.csv")
	csv := "Chapter,Topics,Lesson ID,Lessons,Tags\n" +
		"Circles,Arcs,CI_01,Arc length,\"arcs, circles\"\n" +
		"Circles,Sectors,CI_02,Sector area,circles\n"
	if err := os.WriteFile(input, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "sql")
	yaml := fmt.Sprintf(`course:
  id: b60ede64-698c-450c-9395-008d568b7ab3
  name: GRE
input:
  path: %s
output:
  dir: %s
  policy: %s
index:
  path: %s
chapters:
  Circles: 164c5454-0f9d-448c-a3dc-78f0a1d40e60
`, input, out, policy, filepath.Join(dir, "index.db"))
	cfg := filepath.Join(dir, "course.yaml")
	if err := os.WriteFile(cfg, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg, out
}

func run(args ...string) error {
	return newApp(context.Background()).Run(append([]string{"coursesql"}, args...))
}

func TestBuildCheckInspect(t *testing.T) {
	cfg, out := writeCourse(t, "lookup")

	if err := run("--config", cfg, "build"); err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, name := range []string{"step1-insert-topics.sql", "step2-insert-lessons.sql", "step3-insert-tags.sql", "RUNBOOK.md", "RUNBOOK.html"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if err := run("--config", cfg); err != nil {
		t.Fatalf("default action: %v", err)
	}
	if err := run("--config", cfg, "check"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := run("--config", cfg, "inspect", "--tag", "circles"); err != nil {
		t.Fatalf("inspect --tag: %v", err)
	}
	if err := run("--config", cfg, "inspect", "--runs", "2"); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if err := run("--config", cfg, "inspect", "--lesson", "nope"); err == nil {
		t.Fatalf("inspect of an unknown lesson succeeded")
	}
}

func TestFillCommand(t *testing.T) {
	cfg, out := writeCourse(t, "placeholder")
	if err := run("--config", cfg, "build"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := run("--config", cfg, "fill"); err == nil {
		t.Fatalf("fill without --ids succeeded")
	}

	ids := filepath.Join(t.TempDir(), "ids.csv")
	if err := os.WriteFile(ids, []byte("id,topic_name,chapter_name\n1,Arcs,Circles\n2,Sectors,Circles\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run("--config", cfg, "fill", "--ids", ids); err != nil {
		t.Fatalf("fill: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "03-insert-lessons.sql"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "TOPIC_ID_FOR_") {
		t.Fatalf("tokens left after fill:\n%s", data)
	}
}

func TestExitCodes(t *testing.T) {
	err := run("--config", filepath.Join(t.TempDir(), "missing.yaml"), "build")
	if err == nil || exitCode(err) != 2 {
		t.Fatalf("missing config: err = %v, code %d; want code 2", err, exitCode(err))
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("course:\n  id: not-a-uuid\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err = run("--config", bad, "build")
	if exitCode(err) != 2 {
		t.Fatalf("invalid config: code %d, want 2 (%v)", exitCode(err), err)
	}

	cfg, _ := writeCourse(t, "lookup")
	data, _ := os.ReadFile(cfg)
	if err := os.WriteFile(cfg, []byte(strings.Replace(string(data), "Circles:", "Triangles:", 1)), 0o644); err != nil {
		t.Fatal(err)
	}
	err = run("--config", cfg, "build")
	if exitCode(err) != 1 {
		t.Fatalf("unknown chapter: code %d, want 1 (%v)", exitCode(err), err)
	}

	if exitCode(domainerr.ValidationError{}) != 2 {
		t.Fatalf("ValidationError does not map to 2")
	}
}

func TestWatchedFiles(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Path = "map.csv"
	if got := watchedFiles("course.yaml", cfg); !reflect.DeepEqual(got, []string{"course.yaml", "map.csv"}) {
		t.Fatalf("watchedFiles = %v", got)
	}

	cfg.Output.RunbookTemplate = "runbook.tmpl"
	want := []string{"course.yaml", "map.csv", "runbook.tmpl"}
	if got := watchedFiles("course.yaml", cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("watchedFiles = %v, want %v", got, want)
	}

	cfg.Output.Runbook = false
	if got := watchedFiles("course.yaml", cfg); len(got) != 2 {
		t.Fatalf("watchedFiles without runbook = %v", got)
	}
}
