package index

import (
	"errors"
	bolt "go.etcd.io/bbolt"
	"os"
	"path/filepath"
	"time"
)

// Store is the local record of the last generated outline and of past runs.
type Store struct {
	db *bolt.DB
}

type OpenOptions struct {
	Path     string // e.g. ".coursesql/index.db"
	ReadOnly bool
}

func Open(opt OpenOptions) (*Store, error) {
	if opt.Path == "" {
		return nil, errors.New("index: missing path")
	}
	if opt.ReadOnly {
		if _, err := os.Stat(opt.Path); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(filepath.Dir(opt.Path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(opt.Path, 0o600, &bolt.Options{
		Timeout:  1 * time.Second,
		ReadOnly: opt.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
