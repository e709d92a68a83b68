package ingest

import (
	"coursesql/internal/domain/course"
	domainerr "coursesql/internal/domain/errors"
	"encoding/csv"
	"errors"
	"fmt"
	"golang.org/x/text/unicode/norm"
	"io"
	"strings"
)

// Header names of the curriculum table.
const (
	ColChapter    = "Chapter"
	ColTopic      = "Topics"
	ColLessonID   = "Lesson ID"
	ColLessonName = "Lessons"
	ColTags       = "Tags"
)

// Header names of an exported topic id query result.
const (
	ColTopicID     = "id"
	ColTopicName   = "topic_name"
	ColChapterName = "chapter_name"
)

const utf8BOM = "\uFEFF"

var requiredColumns = []string{ColChapter, ColTopic, ColLessonID, ColLessonName, ColTags}

type ParseOptions struct {
	Source string
	Comma  rune
}

func newReader(r io.Reader, comma rune) *csv.Reader {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	return cr
}

// readHeader reads the header row and returns the position of each wanted column.
func readHeader(cr *csv.Reader, source string, want []string) (map[string]int, error) {
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domainerr.MissingColumnError{Source: source, Columns: want}
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = norm.NFC.String(strings.TrimSpace(h))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	for _, col := range want {
		if _, ok := pos[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, domainerr.MissingColumnError{Source: source, Columns: missing}
	}
	return pos, nil
}

// ParseRows reads a curriculum table. Rows keep file order; Line is the
// 1-based line the record starts on.
func ParseRows(r io.Reader, opt ParseOptions) ([]course.Row, error) {
	cr := newReader(r, opt.Comma)
	pos, err := readHeader(cr, opt.Source, requiredColumns)
	if err != nil {
		return nil, err
	}

	var out []course.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		field := func(col string) string {
			return norm.NFC.String(rec[pos[col]])
		}
		out = append(out, course.Row{
			Line:       line,
			Chapter:    field(ColChapter),
			Topic:      field(ColTopic),
			LessonID:   field(ColLessonID),
			LessonName: field(ColLessonName),
			Tags:       field(ColTags),
		})
	}
	return out, nil
}

// ParseTopicIDs reads the exported result of the topic id query into a
// (chapter, topic) -> id map.
func ParseTopicIDs(r io.Reader, opt ParseOptions) (map[course.TopicKey]string, error) {
	cr := newReader(r, opt.Comma)
	pos, err := readHeader(cr, opt.Source, []string{ColTopicID, ColTopicName, ColChapterName})
	if err != nil {
		return nil, err
	}

	ids := make(map[course.TopicKey]string)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		key := course.TopicKey{
			Chapter: norm.NFC.String(rec[pos[ColChapterName]]),
			Topic:   norm.NFC.String(rec[pos[ColTopicName]]),
		}
		id := strings.TrimSpace(rec[pos[ColTopicID]])
		if prev, ok := ids[key]; ok && prev != id {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%s:%d: topic %s listed with two ids (%s, %s)", opt.Source, line, key, prev, id)
		}
		ids[key] = id
	}
	return ids, nil
}
