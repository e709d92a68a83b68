package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"time"
)

// Run records one build attempt that reached the output stage.
type Run struct {
	At         time.Time `json:"at"`
	Policy     string    `json:"policy"`
	Files      []string  `json:"files"`
	Topics     int       `json:"topics"`
	Lessons    int       `json:"lessons"`
	Tags       int       `json:"tags"`
	Warnings   int       `json:"warnings"`
	RenderHash string    `json:"render_hash"`
	Skipped    bool      `json:"skipped,omitempty"`
}

func (s *Store) AppendRun(r Run) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bRuns)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		v, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return b.Put(makeRunKey(r.At.UnixNano(), seq), v)
	})
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	var out []Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bRuns)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				continue
			}
			out = append(out, r)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}
