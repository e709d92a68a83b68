package render

import (
	"html/template"
	"time"
)

type Heading struct {
	ID   string
	Text string
}

// RunbookStep is one statement file in execution order.
type RunbookStep struct {
	Step  int
	Name  string
	Note  string
	Rows  int
	Empty bool
}

type RunbookPage struct {
	CourseID    string
	CourseName  string
	Policy      string
	Schema      string
	Source      string
	Generated   time.Time
	Topics      int
	Lessons     int
	Tags        int
	Steps       []RunbookStep
	Warnings    []string
	RenderHash  string
	Placeholder bool
}

type htmlPage struct {
	Title string
	TOC   []Heading
	Body  template.HTML
}
