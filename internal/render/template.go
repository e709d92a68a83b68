package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"os"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var builtin embed.FS

const (
	runbookTemplate = "runbook.md.tmpl"
	pageTemplate    = "page.html.tmpl"
)

type TemplateRenderer struct {
	runbook *template.Template
	page    *htmltemplate.Template
	md      *MarkdownRenderer
}

// RunbookSource returns the runbook template text: the file at runbookPath,
// or the built-in template when runbookPath is empty.
func RunbookSource(runbookPath string) ([]byte, error) {
	if runbookPath != "" {
		return os.ReadFile(runbookPath)
	}
	return builtin.ReadFile("templates/" + runbookTemplate)
}

// NewTemplateRenderer loads the built-in templates. A non-empty
// runbookPath replaces the built-in runbook template.
func NewTemplateRenderer(runbookPath string) (*TemplateRenderer, error) {
	src, err := RunbookSource(runbookPath)
	if err != nil {
		return nil, err
	}
	rb, err := template.New(runbookTemplate).Funcs(templateFuncs()).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse runbook template: %w", err)
	}

	page, err := htmltemplate.ParseFS(builtin, "templates/"+pageTemplate)
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{runbook: rb, page: page, md: NewMarkdownRenderer()}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date": func(t interface{}, layout string) string {
			switch v := t.(type) {
			case nil:
				return ""
			case string:
				return v
			case interface{ Format(string) string }:
				return v.Format(layout)
			default:
				return ""
			}
		},
		// cell keeps a value inside one markdown table cell
		"cell": func(s string) string {
			s = strings.ReplaceAll(s, "|", `\|`)
			return strings.Join(strings.Fields(s), " ")
		},
		"short": func(s string) string {
			if len(s) > 12 {
				return s[:12]
			}
			return s
		},
	}
}

func (r *TemplateRenderer) RenderRunbook(ctx context.Context, page RunbookPage) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.runbook.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *TemplateRenderer) RenderHTML(ctx context.Context, title string, markdown []byte) ([]byte, error) {
	res, err := r.md.Render(markdown)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = r.page.ExecuteTemplate(&buf, pageTemplate, htmlPage{
		Title: title,
		TOC:   res.Headings,
		Body:  htmltemplate.HTML(res.HTML),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
