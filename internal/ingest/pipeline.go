package ingest

import (
	"bytes"
	"coursesql/internal/domain/course"
	"fmt"
	"strings"
)

type Warning struct {
	Path string
	Line int
	Msg  string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.Path, w.Line, w.Msg)
	}
	return fmt.Sprintf("%s: %s", w.Path, w.Msg)
}

type Options struct {
	Path  string
	Comma rune
}

type Result struct {
	Rows        []course.Row
	Warnings    []Warning
	ContentHash string
}

func Ingest(opt Options) (*Result, error) {
	src, err := ReadSource(opt.Path)
	if err != nil {
		return nil, err
	}

	rows, err := ParseRows(bytes.NewReader(src.Data), ParseOptions{
		Source: src.Path,
		Comma:  opt.Comma,
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Path, err)
	}

	res := &Result{ContentHash: src.ContentHash}
	seen := make(map[string]int, len(rows))
	for _, r := range rows {
		if r.Blank() {
			res.Warnings = append(res.Warnings, Warning{Path: src.Path, Line: r.Line, Msg: "blank row skipped"})
			continue
		}
		if strings.TrimSpace(r.LessonID) == "" {
			res.Warnings = append(res.Warnings, Warning{Path: src.Path, Line: r.Line, Msg: "empty lesson id"})
		} else if first, ok := seen[r.LessonID]; ok {
			res.Warnings = append(res.Warnings, Warning{
				Path: src.Path,
				Line: r.Line,
				Msg:  fmt.Sprintf("duplicate lesson id %q (first seen on line %d)", r.LessonID, first),
			})
		} else {
			seen[r.LessonID] = r.Line
		}
		res.Rows = append(res.Rows, r)
	}
	return res, nil
}
