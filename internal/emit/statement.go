package emit

import (
	"bytes"
	"coursesql/internal/domain/config"
	"coursesql/internal/domain/output"
	"strings"
)

// Statement is one rendered statement file.
//
// Header lines become "--" comments at the top of the file. SQL is the
// executable body and is empty when there is nothing to insert.
type Statement struct {
	Kind   output.ArtifactKind
	Header []string
	SQL    string
	Rows   int
}

func (s Statement) Empty() bool {
	return s.SQL == ""
}

func (s Statement) Bytes() []byte {
	var b bytes.Buffer
	for _, h := range s.Header {
		if h == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("-- ")
		b.WriteString(Comment(h))
		b.WriteString("\n")
	}
	if len(s.Header) > 0 {
		b.WriteString("\n")
	}
	if s.Empty() {
		b.WriteString("-- nothing to insert\n")
		return b.Bytes()
	}
	b.WriteString(s.SQL)
	if !strings.HasSuffix(s.SQL, "\n") {
		b.WriteString("\n")
	}
	return b.Bytes()
}

// Options carries the course level settings every statement needs.
type Options struct {
	CourseID   string
	CourseName string
	Schema     string
	Source     string
	Policy     config.Policy
	Chapters   config.ChapterIDs
}

// OptionsFromConfig derives statement options from a loaded configuration.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		CourseID:   strings.TrimSpace(cfg.Course.ID),
		CourseName: cfg.Course.Name,
		Schema:     cfg.Output.Schema,
		Source:     cfg.Input.Path,
		Policy:     cfg.PolicyOrDefault(),
		Chapters:   cfg.Chapters,
	}
}

func (o Options) table(name string) string {
	schema := o.Schema
	if schema == "" {
		schema = "public"
	}
	return schema + "." + name
}

func (o Options) title(what string) string {
	if o.CourseName == "" {
		return what
	}
	return o.CourseName + ": " + what
}

func headerWith(header []string, more ...string) []string {
	out := make([]string, 0, len(header)+len(more))
	out = append(out, header...)
	return append(out, more...)
}
