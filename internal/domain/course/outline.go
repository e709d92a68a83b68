package course

import "sort"

// Outline is the aggregated form of a curriculum table.
//
// Topics are kept in first-occurrence order and Lessons in input order. Topic
// order restarts at 1 for every chapter; lesson order restarts at 1 for every
// (chapter, topic) group.
type Outline struct {
	Topics  []Topic
	Lessons []Lesson

	topicIdx map[TopicKey]int
}

// Aggregate groups rows by (chapter, topic). Order is assigned strictly by first
// occurrence; names are never sorted here.
func Aggregate(rows []Row) *Outline {
	o := &Outline{topicIdx: make(map[TopicKey]int)}
	nextTopic := make(map[string]int)

	for _, r := range rows {
		key := TopicKey{Chapter: r.Chapter, Topic: r.Topic}
		i, ok := o.topicIdx[key]
		if !ok {
			nextTopic[r.Chapter]++
			o.Topics = append(o.Topics, Topic{
				Chapter: r.Chapter,
				Name:    r.Topic,
				Order:   nextTopic[r.Chapter],
			})
			i = len(o.Topics) - 1
			o.topicIdx[key] = i
		}
		o.Topics[i].Lessons++

		o.Lessons = append(o.Lessons, Lesson{
			Code:       r.LessonID,
			Title:      r.LessonName,
			Slug:       Slug(r.LessonID),
			Chapter:    r.Chapter,
			Topic:      r.Topic,
			TopicOrder: o.Topics[i].Order,
			Order:      o.Topics[i].Lessons,
			Tags:       SplitTags(r.Tags),
			Line:       r.Line,
		})
	}
	return o
}

// TopicOrder returns the order assigned to a topic within its chapter.
func (o *Outline) TopicOrder(chapter, topic string) (int, bool) {
	i, ok := o.topicIdx[TopicKey{Chapter: chapter, Topic: topic}]
	if !ok {
		return 0, false
	}
	return o.Topics[i].Order, true
}

// SortedTopics returns topics ordered by chapter name, then topic order.
func (o *Outline) SortedTopics() []Topic {
	out := make([]Topic, len(o.Topics))
	copy(out, o.Topics)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Chapter != out[j].Chapter {
			return out[i].Chapter < out[j].Chapter
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// SortedKeys returns the distinct (chapter, topic) pairs in lexical order.
func (o *Outline) SortedKeys() []TopicKey {
	keys := make([]TopicKey, 0, len(o.Topics))
	for _, t := range o.Topics {
		keys = append(keys, t.Key())
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Chapter != keys[j].Chapter {
			return keys[i].Chapter < keys[j].Chapter
		}
		return keys[i].Topic < keys[j].Topic
	})
	return keys
}

// Chapters returns the distinct chapter names in first-occurrence order.
func (o *Outline) Chapters() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range o.Topics {
		if _, ok := seen[t.Chapter]; ok {
			continue
		}
		seen[t.Chapter] = struct{}{}
		out = append(out, t.Chapter)
	}
	return out
}

// TagCount is the number of tag rows the outline produces.
func (o *Outline) TagCount() int {
	n := 0
	for _, l := range o.Lessons {
		n += len(l.Tags)
	}
	return n
}
