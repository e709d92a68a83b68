package emit

import (
	"coursesql/internal/domain/course"
	"coursesql/internal/domain/output"
	"fmt"
	"strings"
)

// Tags renders one lesson_tags row per tag, in lesson input order and then
// tag order. The lesson id is resolved by lesson code.
func Tags(o *course.Outline, opt Options, header ...string) Statement {
	lessons := opt.table("courses_lessons")

	var values []string
	for _, l := range o.Lessons {
		for _, tag := range l.Tags {
			values = append(values, fmt.Sprintf("  ((SELECT id FROM %s WHERE lesson_code = %s), %s)",
				lessons, Quote(l.Code), Quote(tag)))
		}
	}

	st := Statement{
		Kind:   output.ArtifactTags,
		Header: headerWith(header, fmt.Sprintf("Total tags: %d", len(values))),
	}
	if len(values) == 0 {
		return st
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (lesson_id, tag_name) VALUES\n", opt.table("lesson_tags"))
	b.WriteString(strings.Join(values, ",\n"))
	b.WriteString(";\n")
	st.SQL = b.String()
	st.Rows = len(values)
	return st
}
