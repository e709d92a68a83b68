package index

import (
	"coursesql/internal/domain/build"
	"coursesql/internal/domain/course"
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"strings"
)

// Rebuild replaces the stored outline and fingerprint. Run history is kept.
func (s *Store) Rebuild(o *course.Outline, fp build.Fingerprint) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_ = tx.DeleteBucket(bMeta)
		_ = tx.DeleteBucket(bLessons)
		_ = tx.DeleteBucket(bTopics)
		_ = tx.DeleteBucket(bIdxTag)

		metaB, err := tx.CreateBucket(bMeta)
		if err != nil {
			return err
		}
		lessonsB, err := tx.CreateBucket(bLessons)
		if err != nil {
			return err
		}
		topicsB, err := tx.CreateBucket(bTopics)
		if err != nil {
			return err
		}
		idxTagB, err := tx.CreateBucket(bIdxTag)
		if err != nil {
			return err
		}

		fb, err := json.Marshal(fp)
		if err != nil {
			return err
		}
		if err := metaB.Put(kFingerprint, fb); err != nil {
			return err
		}

		for _, t := range o.Topics {
			tb, err := json.Marshal(t)
			if err != nil {
				return err
			}
			if err := topicsB.Put(makeTopicKey(t.Chapter, t.Order), tb); err != nil {
				return err
			}
		}

		for i, l := range o.Lessons {
			if strings.TrimSpace(l.Code) == "" {
				continue
			}
			lb, err := json.Marshal(l)
			if err != nil {
				return err
			}
			if err := lessonsB.Put([]byte(l.Code), lb); err != nil {
				return err
			}

			key := makePositionCodeKey(i, l.Code)
			for _, tag := range l.Tags {
				sb, err := idxTagB.CreateBucketIfNotExists([]byte(tag))
				if err != nil {
					return err
				}
				if err := sb.Put(key, []byte{1}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
