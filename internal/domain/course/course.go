package course

import (
	"strings"
)

// Row is one record of the curriculum table, in file order.
type Row struct {
	Line       int
	Chapter    string
	Topic      string
	LessonID   string
	LessonName string
	Tags       string
}

// TopicKey identifies a topic within its chapter.
type TopicKey struct {
	Chapter string
	Topic   string
}

func (k TopicKey) String() string {
	return k.Chapter + "::" + k.Topic
}

type Topic struct {
	Chapter string `json:"chapter"`
	Name    string `json:"name"`
	Order   int    `json:"order"`
	Lessons int    `json:"lessons"`
}

func (t Topic) Key() TopicKey {
	return TopicKey{Chapter: t.Chapter, Topic: t.Name}
}

type Lesson struct {
	Code       string   `json:"code"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Chapter    string   `json:"chapter"`
	Topic      string   `json:"topic"`
	TopicOrder int      `json:"topic_order"`
	Order      int      `json:"order"`
	IsPreview  bool     `json:"is_preview"`
	Tags       []string `json:"tags"`
	Line       int      `json:"line"`
}

func (l Lesson) Key() TopicKey {
	return TopicKey{Chapter: l.Chapter, Topic: l.Topic}
}

// Slug derives the URL slug of a lesson from its code.
func Slug(lessonID string) string {
	return strings.ReplaceAll(lessonID, "_", "-")
}

// SplitTags splits a comma separated tag string, dropping blank pieces.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Blank reports whether every field of the row is empty after trimming.
func (r Row) Blank() bool {
	for _, f := range []string{r.Chapter, r.Topic, r.LessonID, r.LessonName, r.Tags} {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
