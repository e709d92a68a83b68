package config

import (
	domainerr "coursesql/internal/domain/errors"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
course:
  id: b60ede64-698c-450c-9395-008d568b7ab3
  name: GRE Quant
input:
  path: docs/master_map.csv
output:
  dir: out
  policy: placeholder
chapters:
  "Number Properties": 5bb04889-3346-4dc1-ae12-550132629536
  "Ratios & Proportions": 63853251-8e64-492c-80de-300c3f1fb17c
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "course.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func validConfig() Config {
	cfg := Default()
	cfg.Course.ID = "b60ede64-698c-450c-9395-008d568b7ab3"
	cfg.Chapters = ChapterIDs{"Circles": "164c5454-0f9d-448c-a3dc-78f0a1d40e60"}
	return cfg
}

func TestLoad_OverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Course.Name != "GRE Quant" {
		t.Errorf("course.name = %q, want GRE Quant", cfg.Course.Name)
	}
	if cfg.Input.Path != "docs/master_map.csv" {
		t.Errorf("input.path = %q", cfg.Input.Path)
	}
	if cfg.Output.Policy != PolicyPlaceholder {
		t.Errorf("output.policy = %q, want placeholder", cfg.Output.Policy)
	}
	// untouched defaults survive
	if cfg.Output.Schema != "public" || !cfg.Output.Runbook || cfg.Delimiter() != ',' {
		t.Errorf("defaults lost: schema=%q runbook=%v delim=%q", cfg.Output.Schema, cfg.Output.Runbook, cfg.Delimiter())
	}
	if cfg.Output.Now.IsZero() {
		t.Errorf("output.Now is zero")
	}
	if got := len(cfg.Chapters); got != 2 {
		t.Fatalf("len(chapters) = %d, want 2", got)
	}
	if id, ok := cfg.Chapters.Lookup("Ratios & Proportions"); !ok || id != "63853251-8e64-492c-80de-300c3f1fb17c" {
		t.Errorf("Lookup = %q, %v", id, ok)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("Load(missing) err = %v, want not-exist", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty course id", func(c *Config) { c.Course.ID = "" }, "course.id"},
		{"course id not uuid", func(c *Config) { c.Course.ID = "course-7" }, "course.id"},
		{"bad id format", func(c *Config) { c.Course.IDFormat = "ulid" }, "course.id_format"},
		{"no chapters", func(c *Config) { c.Chapters = nil }, "chapters"},
		{"empty chapter id", func(c *Config) { c.Chapters["Circles"] = " " }, "chapters.Circles"},
		{"chapter id not uuid", func(c *Config) { c.Chapters["Circles"] = "42" }, "chapters.Circles"},
		{"empty input path", func(c *Config) { c.Input.Path = "" }, "input.path"},
		{"multi-char delimiter", func(c *Config) { c.Input.Delimiter = ";;" }, "input.delimiter"},
		{"quote delimiter", func(c *Config) { c.Input.Delimiter = `"` }, "input.delimiter"},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }, "output.dir"},
		{"unknown policy", func(c *Config) { c.Output.Policy = "magic" }, "output.policy"},
		{"schema injection", func(c *Config) { c.Output.Schema = "public; DROP" }, "output.schema"},
		{"empty index path", func(c *Config) { c.Index.Path = "" }, "index.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error on %s", tt.field)
			}
			if !errors.Is(err, domainerr.ErrInvalid) {
				t.Fatalf("errors.Is(err, ErrInvalid) = false for %v", err)
			}
			var ve domainerr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err is %T, want ValidationError", err)
			}
			found := false
			for _, item := range ve.Items {
				if item.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("items = %#v, want field %s", ve.Items, tt.field)
			}
		})
	}
}

func TestValidate_OpaqueIdentifiers(t *testing.T) {
	cfg := validConfig()
	cfg.Course.IDFormat = IDFormatOpaque
	cfg.Course.ID = "course-7"
	cfg.Chapters["Circles"] = "42"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil for opaque ids", err)
	}
}

func TestValidate_IndexDisabledNeedsNoPath(t *testing.T) {
	cfg := validConfig()
	cfg.Index.Path = ""
	cfg.Index.Disabled = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestDelimiter(t *testing.T) {
	cfg := validConfig()
	cfg.Input.Delimiter = "\t"
	if got := cfg.Delimiter(); got != '\t' {
		t.Fatalf("Delimiter() = %q, want tab", got)
	}
	cfg.Input.Delimiter = ""
	if got := cfg.Delimiter(); got != ',' {
		t.Fatalf("Delimiter() = %q, want comma", got)
	}
}

func TestChapterLookup_NormalizesUnicode(t *testing.T) {
	// "Théorie" composed (U+00E9) in config, decomposed (e + U+0301) in the input
	ids := ChapterIDs{"Th\u00e9orie": "x"}
	if id, ok := ids.Lookup("The\u0301orie"); !ok || id != "x" {
		t.Fatalf("Lookup(decomposed) = %q, %v; want x, true", id, ok)
	}
	if _, ok := ids.Lookup("Theorie"); ok {
		t.Fatalf("Lookup(unaccented) matched")
	}
}

func TestHash_ChangesWithChapters(t *testing.T) {
	a := validConfig()
	b := validConfig()
	b.Output.Now = a.Output.Now.Add(1000)

	ha, err := a.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	hb, _ := b.Hash()
	if ha != hb {
		t.Fatalf("hash depends on Now: %s vs %s", ha, hb)
	}

	b.Chapters["Triangles"] = "9f845450-6ee0-4766-b6f0-0250ee5825d6"
	hb, _ = b.Hash()
	if ha == hb {
		t.Fatalf("hash unchanged after adding a chapter")
	}
	if len(ha) != 64 || strings.Trim(ha, "0123456789abcdef") != "" {
		t.Fatalf("hash %q is not hex sha256", ha)
	}
}
