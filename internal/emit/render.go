package emit

import (
	"coursesql/internal/domain/config"
	"coursesql/internal/domain/course"
	"coursesql/internal/domain/output"
	"fmt"
	"path/filepath"
)

// Render produces every statement of the configured policy, in execution
// order. Nothing is returned unless every statement rendered.
func Render(o *course.Outline, opt Options) ([]Statement, error) {
	if err := CheckChapters(o, opt); err != nil {
		return nil, err
	}
	source := "Generated from " + filepath.Base(opt.Source)

	switch opt.Policy {
	case config.PolicyPlaceholder:
		topics, err := Topics(o, opt, opt.title("Insert Topics"), source)
		if err != nil {
			return nil, err
		}
		query := TopicIDQuery(opt,
			opt.title("Get Topic IDs after inserting topics"),
			"Run this query and export the result (id, topic_name, chapter_name) for the next step")
		lessons, err := LessonsPlaceholder(o, opt, NewTokens(o.SortedKeys()),
			opt.title("Insert Lessons"),
			"IMPORTANT: topic ids are placeholders, run `coursesql fill --ids <export>` or replace them by hand")
		if err != nil {
			return nil, err
		}
		tags := Tags(o, opt, opt.title("Insert Lesson Tags"), "Run this AFTER lessons are created")
		return []Statement{topics, query, lessons, tags}, nil

	case config.PolicyLookup, "":
		topics, err := Topics(o, opt, "STEP 1: Insert Topics", "This file is ready to run", source)
		if err != nil {
			return nil, err
		}
		lessons, err := LessonsLookup(o, opt,
			"STEP 2: Insert Lessons (topic ids are matched by chapter and topic name)",
			"Run this AFTER step 1 (topics are inserted)")
		if err != nil {
			return nil, err
		}
		tags := Tags(o, opt, "STEP 3: Insert Lesson Tags", "Run this AFTER step 2 (lessons are created)")
		return []Statement{topics, lessons, tags}, nil
	}
	return nil, fmt.Errorf("unknown policy %q", opt.Policy)
}

// Fill renders the placeholder lessons statement with the matching topic id
// in place of every token. Every topic must have an id.
func Fill(o *course.Outline, opt Options, ids map[course.TopicKey]string, idsSource string) (Statement, error) {
	if err := CheckChapters(o, opt); err != nil {
		return Statement{}, err
	}
	var missing []course.TopicKey
	for _, k := range o.SortedKeys() {
		if ids[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Statement{}, MissingIDsError{Topics: missing}
	}

	st := Statement{
		Kind: output.ArtifactLessonsFilled,
		Header: []string{
			opt.title("Insert Lessons"),
			"Topic ids substituted from " + filepath.Base(idsSource),
			fmt.Sprintf("Total lessons: %d", len(o.Lessons)),
		},
	}
	return lessonValues(st, o, opt, func(k course.TopicKey) (string, error) {
		return ids[k], nil
	})
}
