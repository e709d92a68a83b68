package config

import (
	domainerr "coursesql/internal/domain/errors"
	"crypto/sha256"
	"encoding/hex"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

type Config struct {
	Course   CourseConfig `yaml:"course"`
	Input    InputConfig  `yaml:"input"`
	Output   OutputConfig `yaml:"output"`
	Index    IndexConfig  `yaml:"index"`
	Chapters ChapterIDs   `yaml:"chapters"`
}

type CourseConfig struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	IDFormat IDFormat `yaml:"id_format"`
}

// IDFormat controls how course and chapter identifiers are checked.
type IDFormat string

const (
	IDFormatUUID   IDFormat = "uuid"
	IDFormatOpaque IDFormat = "opaque"
)

type InputConfig struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
}

type OutputConfig struct {
	Dir             string    `yaml:"dir"`
	Policy          Policy    `yaml:"policy"`
	Schema          string    `yaml:"schema"`
	Runbook         bool      `yaml:"runbook"`
	RunbookTemplate string    `yaml:"runbook_template"`
	Now             time.Time `yaml:"-"`
}

// Policy selects how lesson rows obtain their topic identifier.
type Policy string

const (
	PolicyLookup      Policy = "lookup"
	PolicyPlaceholder Policy = "placeholder"
)

type IndexConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// ChapterIDs maps a chapter name to the identifier of the pre-existing chapter row.
type ChapterIDs map[string]string

// Lookup resolves a chapter name, tolerating NFC/NFD spelling differences.
func (c ChapterIDs) Lookup(name string) (string, bool) {
	if id, ok := c[name]; ok {
		return id, true
	}
	want := norm.NFC.String(name)
	for k, id := range c {
		if norm.NFC.String(k) == want {
			return id, true
		}
	}
	return "", false
}

// Names returns the configured chapter names in lexical order.
func (c ChapterIDs) Names() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func Default() Config {
	return Config{
		Course: CourseConfig{
			IDFormat: IDFormatUUID,
		},
		Input: InputConfig{
			Path:      "master_map.csv",
			Delimiter: ",",
		},
		Output: OutputConfig{
			Dir:     "sql",
			Policy:  PolicyLookup,
			Schema:  "public",
			Runbook: true,
			Now:     time.Now(),
		},
		Index: IndexConfig{
			Path: ".coursesql/index.db",
		},
		Chapters: ChapterIDs{},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Course.ID) == "" {
		ve.Add("course.id", "must not be empty")
	}

	switch c.Course.IDFormat {
	case "", IDFormatUUID:
		if id := strings.TrimSpace(c.Course.ID); id != "" && !isUUID(id) {
			ve.Add("course.id", "must be a UUID (set course.id_format to 'opaque' to allow any value)")
		}
	case IDFormatOpaque:
	default:
		ve.Add("course.id_format", "must be 'uuid' or 'opaque'")
	}

	if len(c.Chapters) == 0 {
		ve.Add("chapters", "must map at least one chapter name to an identifier")
	}
	for _, name := range c.Chapters.Names() {
		id := strings.TrimSpace(c.Chapters[name])
		field := "chapters." + name
		if strings.TrimSpace(name) == "" {
			ve.Add("chapters", "chapter name must not be empty")
			continue
		}
		if id == "" {
			ve.Add(field, "must not be empty")
			continue
		}
		if c.Course.IDFormat != IDFormatOpaque && !isUUID(id) {
			ve.Add(field, "must be a UUID")
		}
	}

	if strings.TrimSpace(c.Input.Path) == "" {
		ve.Add("input.path", "must not be empty")
	}
	if d := c.Input.Delimiter; d != "" {
		r, size := utf8.DecodeRuneInString(d)
		switch {
		case size != len(d):
			ve.Add("input.delimiter", "must be a single character")
		case r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError:
			ve.Add("input.delimiter", "must not be a quote, newline or invalid rune")
		}
	}

	if strings.TrimSpace(c.Output.Dir) == "" {
		ve.Add("output.dir", "must not be empty")
	}
	switch c.Output.Policy {
	case "", PolicyLookup, PolicyPlaceholder:
	default:
		ve.Add("output.policy", "must be 'lookup' or 'placeholder'")
	}
	if !identRe.MatchString(c.Output.Schema) {
		ve.Add("output.schema", "must be a plain SQL identifier")
	}

	if !c.Index.Disabled && strings.TrimSpace(c.Index.Path) == "" {
		ve.Add("index.path", "must not be empty unless index.disabled is set")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Delimiter returns the configured field separator, defaulting to a comma.
func (c Config) Delimiter() rune {
	if c.Input.Delimiter == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(c.Input.Delimiter)
	return r
}

// PolicyOrDefault returns the configured policy, lookup when unset.
func (c Config) PolicyOrDefault() Policy {
	if c.Output.Policy == "" {
		return PolicyLookup
	}
	return c.Output.Policy
}

// Hash fingerprints every setting that influences generated statements.
func (c Config) Hash() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Output.Now.IsZero() {
		cfg.Output.Now = time.Now()
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
