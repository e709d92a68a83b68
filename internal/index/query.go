package index

import (
	"bytes"
	"coursesql/internal/domain/build"
	"coursesql/internal/domain/course"
	"encoding/json"
	"errors"
	bolt "go.etcd.io/bbolt"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("not found")

// Fingerprint returns the fingerprint stored by the last Rebuild.
func (s *Store) Fingerprint() (build.Fingerprint, error) {
	var fp build.Fingerprint
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bMeta)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(kFingerprint)
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &fp)
	})
	return fp, err
}

func (s *Store) GetLesson(code string) (course.Lesson, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return course.Lesson{}, ErrNotFound
	}
	var l course.Lesson
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bLessons)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(code))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &l)
	})
	return l, err
}

// ListTopics returns the topics of one chapter in topic order, or every
// topic ordered by chapter and topic order when chapter is empty.
func (s *Store) ListTopics(chapter string) ([]course.Topic, error) {
	var out []course.Topic
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bTopics)
		if b == nil {
			return nil
		}
		c := b.Cursor()

		var prefix []byte
		k, v := c.First()
		if chapter != "" {
			prefix = topicPrefix(chapter)
			k, v = c.Seek(prefix)
		}
		for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var t course.Topic
			if err := json.Unmarshal(v, &t); err != nil {
				continue
			}
			out = append(out, t)
		}
		return nil
	})
	return out, err
}

// ListByTag returns the lessons carrying tag, in input order.
func (s *Store) ListByTag(tag string) ([]course.Lesson, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, nil
	}

	var out []course.Lesson
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bIdxTag)
		lessonsB := tx.Bucket(bLessons)
		if parent == nil || lessonsB == nil {
			return nil
		}
		sb := parent.Bucket([]byte(tag))
		if sb == nil {
			return nil
		}

		cur := sb.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			code := codeFromPositionCodeKey(k)
			v := lessonsB.Get([]byte(code))
			if v == nil {
				continue
			}
			var l course.Lesson
			if err := json.Unmarshal(v, &l); err != nil {
				continue
			}
			out = append(out, l)
		}
		return nil
	})
	return out, err
}

type TagCount struct {
	Tag     string
	Lessons int
}

// TagCounts lists every tag with the number of lessons carrying it, most
// used first.
func (s *Store) TagCounts() ([]TagCount, error) {
	var out []TagCount
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bIdxTag)
		if parent == nil {
			return nil
		}
		return parent.ForEachBucket(func(k []byte) error {
			n := 0
			if err := parent.Bucket(k).ForEach(func(_, _ []byte) error {
				n++
				return nil
			}); err != nil {
				return err
			}
			out = append(out, TagCount{Tag: string(k), Lessons: n})
			return nil
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Lessons != out[j].Lessons {
			return out[i].Lessons > out[j].Lessons
		}
		return out[i].Tag < out[j].Tag
	})
	return out, err
}
