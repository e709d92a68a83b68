package emit

import (
	"coursesql/internal/domain/course"
	domainerr "coursesql/internal/domain/errors"
	"coursesql/internal/domain/output"
	"fmt"
	"strconv"
	"strings"
)

const lessonColumns = "course_id, title, lesson_code, slug, chapter_id, topic_id, is_preview, lesson_order"

func boolLiteral(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// LessonsLookup renders a self-contained lessons statement that resolves
// each topic id by joining chapter and topic names against the rows inserted
// by the topics statement.
func LessonsLookup(o *course.Outline, opt Options, header ...string) (Statement, error) {
	st := Statement{
		Kind:   output.ArtifactLessons,
		Header: headerWith(header, fmt.Sprintf("Total lessons: %d", len(o.Lessons))),
	}

	values := make([]string, 0, len(o.Lessons))
	for _, l := range o.Lessons {
		if _, ok := opt.Chapters.Lookup(l.Chapter); !ok {
			return Statement{}, domainerr.UnknownChapterError{Chapter: l.Chapter}
		}
		values = append(values, fmt.Sprintf("    (%s, %s, %s, %s, %s, %s, %s)",
			Quote(l.Title), Quote(l.Code), Quote(l.Slug), Quote(l.Chapter), Quote(l.Topic),
			boolLiteral(l.IsPreview), strconv.Itoa(l.Order)))
	}
	if len(values) == 0 {
		return st, nil
	}

	var b strings.Builder
	b.WriteString("WITH topic_lookup AS (\n")
	b.WriteString("  SELECT t.id AS topic_id, t.topic_name, c.id AS chapter_id, c.chapter_name, u.course_id\n")
	fmt.Fprintf(&b, "  FROM %s t\n", opt.table("courses_topics"))
	fmt.Fprintf(&b, "  JOIN %s c ON t.chapter_id = c.id\n", opt.table("courses_chapters"))
	fmt.Fprintf(&b, "  JOIN %s u ON c.unit_id = u.id\n", opt.table("courses_units"))
	fmt.Fprintf(&b, "  WHERE u.course_id = %s\n", Quote(opt.CourseID))
	b.WriteString("),\n")
	b.WriteString("lesson_data (title, lesson_code, slug, chapter_name, topic_name, is_preview, lesson_order) AS (\n")
	b.WriteString("  VALUES\n")
	b.WriteString(strings.Join(values, ",\n"))
	b.WriteString("\n)\n")
	fmt.Fprintf(&b, "INSERT INTO %s (\n  %s\n)\n", opt.table("courses_lessons"), lessonColumns)
	b.WriteString("SELECT\n")
	b.WriteString("  tl.course_id,\n")
	b.WriteString("  lesson_data.title,\n")
	b.WriteString("  lesson_data.lesson_code,\n")
	b.WriteString("  lesson_data.slug,\n")
	b.WriteString("  tl.chapter_id,\n")
	b.WriteString("  tl.topic_id,\n")
	b.WriteString("  lesson_data.is_preview,\n")
	b.WriteString("  lesson_data.lesson_order\n")
	b.WriteString("FROM lesson_data\n")
	b.WriteString("JOIN topic_lookup tl ON tl.chapter_name = lesson_data.chapter_name AND tl.topic_name = lesson_data.topic_name;\n")

	st.SQL = b.String()
	st.Rows = len(values)
	return st, nil
}

// LessonsPlaceholder renders the lessons statement with a quoted token in
// place of every topic id. The header documents which token stands for
// which topic.
func LessonsPlaceholder(o *course.Outline, opt Options, tokens *Tokens, header ...string) (Statement, error) {
	h := headerWith(header, fmt.Sprintf("Total lessons: %d", len(o.Lessons)))
	if mapping := tokens.Mapping(); len(mapping) > 0 {
		h = append(h, "", "Topic ID mapping (replace each token with the id from the topic id query):")
		h = append(h, mapping...)
	}
	st := Statement{Kind: output.ArtifactLessonsTemplate, Header: h}
	return lessonValues(st, o, opt, func(k course.TopicKey) (string, error) {
		token, ok := tokens.Token(k)
		if !ok {
			return "", fmt.Errorf("no placeholder token for topic %s", k)
		}
		return token, nil
	})
}

// lessonValues fills st with a plain INSERT ... VALUES of every lesson,
// writing topicID(k) as the quoted topic id of each row.
func lessonValues(st Statement, o *course.Outline, opt Options, topicID func(course.TopicKey) (string, error)) (Statement, error) {
	values := make([]string, 0, len(o.Lessons))
	for _, l := range o.Lessons {
		chapterID, ok := opt.Chapters.Lookup(l.Chapter)
		if !ok {
			return Statement{}, domainerr.UnknownChapterError{Chapter: l.Chapter}
		}
		id, err := topicID(l.Key())
		if err != nil {
			return Statement{}, err
		}
		values = append(values, fmt.Sprintf("  -- %s > %s\n  (%s, %s, %s, %s, %s, %s, %s, %s)",
			Comment(l.Chapter), Comment(l.Topic),
			Quote(opt.CourseID), Quote(l.Title), Quote(l.Code), Quote(l.Slug),
			Quote(chapterID), Quote(id), boolLiteral(l.IsPreview), strconv.Itoa(l.Order)))
	}
	if len(values) == 0 {
		return st, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (\n  %s\n) VALUES\n", opt.table("courses_lessons"), lessonColumns)
	b.WriteString(strings.Join(values, ",\n"))
	b.WriteString(";\n")
	st.SQL = b.String()
	st.Rows = len(values)
	return st, nil
}
