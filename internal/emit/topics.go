package emit

import (
	"coursesql/internal/domain/course"
	domainerr "coursesql/internal/domain/errors"
	"coursesql/internal/domain/output"
	"fmt"
	"strconv"
	"strings"
)

// CheckChapters fails on the first chapter, in input order, with no
// configured identifier.
func CheckChapters(o *course.Outline, opt Options) error {
	for _, ch := range o.Chapters() {
		if _, ok := opt.Chapters.Lookup(ch); !ok {
			return domainerr.UnknownChapterError{Chapter: ch}
		}
	}
	return nil
}

// Topics renders the statement inserting every topic, ordered by chapter
// name and then topic order.
func Topics(o *course.Outline, opt Options, header ...string) (Statement, error) {
	st := Statement{
		Kind:   output.ArtifactTopics,
		Header: headerWith(header, fmt.Sprintf("Total topics: %d", len(o.Topics))),
	}

	var values []string
	for _, t := range o.SortedTopics() {
		chapterID, ok := opt.Chapters.Lookup(t.Chapter)
		if !ok {
			return Statement{}, domainerr.UnknownChapterError{Chapter: t.Chapter}
		}
		order := strconv.Itoa(t.Order)
		values = append(values, fmt.Sprintf("  (%s, %s, %s, %s)",
			Quote(chapterID), Quote(t.Name), Quote(order), order))
	}
	if len(values) == 0 {
		return st, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (chapter_id, topic_name, topic_number, topic_order) VALUES\n", opt.table("courses_topics"))
	b.WriteString(strings.Join(values, ",\n"))
	b.WriteString(";\n")
	st.SQL = b.String()
	st.Rows = len(values)
	return st, nil
}

// TopicIDQuery renders the query listing generated topic ids with their
// chapter and topic names for the configured course.
func TopicIDQuery(opt Options, header ...string) Statement {
	sql := fmt.Sprintf(`SELECT t.id, t.topic_name, c.chapter_name, t.topic_order
FROM %s t
JOIN %s c ON t.chapter_id = c.id
JOIN %s u ON c.unit_id = u.id
WHERE u.course_id = %s
ORDER BY c.chapter_order, t.topic_order;
`, opt.table("courses_topics"), opt.table("courses_chapters"), opt.table("courses_units"), Quote(opt.CourseID))

	return Statement{
		Kind:   output.ArtifactTopicIDs,
		Header: header,
		SQL:    sql,
	}
}
