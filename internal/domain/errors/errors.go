package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalid        = errors.New("invalid")
	ErrMissingColumn  = errors.New("missing column")
	ErrUnknownChapter = errors.New("unknown chapter")
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	b.WriteString("validation failed:\n")
	for _, item := range e.Items {
		b.WriteString(" - ")
		b.WriteString(item.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{
		Field:   field,
		Message: msg,
	})
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

// MissingColumnError reports required header columns absent from an input table.
type MissingColumnError struct {
	Source  string
	Columns []string
}

func (e MissingColumnError) Error() string {
	cols := strings.Join(e.Columns, ", ")
	if e.Source == "" {
		return fmt.Sprintf("missing required column(s): %s", cols)
	}
	return fmt.Sprintf("%s: missing required column(s): %s", e.Source, cols)
}

func (e MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// UnknownChapterError is returned when a chapter has no configured identifier.
type UnknownChapterError struct {
	Chapter string
}

func (e UnknownChapterError) Error() string {
	return fmt.Sprintf("chapter %q has no entry in the chapter identifier mapping", e.Chapter)
}

func (e UnknownChapterError) Is(target error) bool {
	return target == ErrUnknownChapter
}
