package replica

import (
	"context"
	"coursesql/internal/domain/course"
	"coursesql/internal/domain/output"
	"coursesql/internal/emit"
	"fmt"
)

type StepResult struct {
	Kind    output.ArtifactKind
	Rows    int64
	Skipped bool
}

// Replay executes statements in order. The placeholder template is replaced
// by its filled form, using ids read back from the topic id query.
func (r *Replica) Replay(ctx context.Context, opt emit.Options, o *course.Outline, stmts []emit.Statement) ([]StepResult, error) {
	var (
		out []StepResult
		ids map[course.TopicKey]string
	)
	for i, st := range stmts {
		res := StepResult{Kind: st.Kind}
		switch {
		case st.Empty():
			res.Skipped = true

		case st.Kind == output.ArtifactTopicIDs:
			got, err := r.TopicIDs(ctx, st.SQL)
			if err != nil {
				return out, fmt.Errorf("step %d (%s): %w", i+1, st.Kind, err)
			}
			ids = got
			res.Rows = int64(len(got))

		case st.Kind == output.ArtifactLessonsTemplate:
			filled, err := emit.Fill(o, opt, ids, "replica")
			if err != nil {
				return out, fmt.Errorf("step %d (%s): %w", i+1, st.Kind, err)
			}
			n, err := r.Exec(ctx, filled.SQL)
			if err != nil {
				return out, fmt.Errorf("step %d (%s): %w", i+1, st.Kind, err)
			}
			res.Rows = n

		default:
			n, err := r.Exec(ctx, st.SQL)
			if err != nil {
				return out, fmt.Errorf("step %d (%s): %w", i+1, st.Kind, err)
			}
			res.Rows = n
		}
		out = append(out, res)
	}
	return out, nil
}

// Report is the outcome of replaying a build against a fresh replica.
type Report struct {
	Steps    []StepResult
	Topics   int
	Lessons  int
	Tags     int
	Problems []string
}

func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// Check replays stmts against a fresh replica seeded from opt and compares
// the stored row counts with the outline.
func Check(ctx context.Context, opt emit.Options, o *course.Outline, stmts []emit.Statement) (*Report, error) {
	rep, err := Open(ctx, opt.Schema)
	if err != nil {
		return nil, err
	}
	defer rep.Close()

	if err := rep.Seed(ctx, opt.CourseID, opt.Chapters); err != nil {
		return nil, err
	}
	steps, err := rep.Replay(ctx, opt, o, stmts)
	if err != nil {
		return nil, err
	}

	report := &Report{Steps: steps}
	counts := []struct {
		table string
		dst   *int
		want  int
	}{
		{"courses_topics", &report.Topics, len(o.Topics)},
		{"courses_lessons", &report.Lessons, len(o.Lessons)},
		{"lesson_tags", &report.Tags, o.TagCount()},
	}
	for _, c := range counts {
		n, err := rep.Count(ctx, c.table)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
		*c.dst = n
		if n != c.want {
			report.Problems = append(report.Problems, fmt.Sprintf("%s has %d rows, want %d", c.table, n, c.want))
		}
	}

	if report.Lessons != len(o.Lessons) {
		stored, err := rep.LessonCodes(ctx)
		if err != nil {
			return nil, err
		}
		for _, l := range o.Lessons {
			if !stored[l.Code] {
				report.Problems = append(report.Problems,
					fmt.Sprintf("lesson %s (line %d) was not inserted, topic %s not matched", l.Code, l.Line, l.Key()))
			}
		}
	}
	return report, nil
}
