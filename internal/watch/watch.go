package watch

import (
	"context"
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"path/filepath"
	"sync"
	"time"
)

const debounceDelay = 200 * time.Millisecond

// Watcher reruns a build whenever one of the watched files changes.
//
// Parent directories are watched rather than the files themselves so that
// editors which replace a file on save are still noticed.
type Watcher struct {
	Files   []string
	Rebuild func(ctx context.Context) error

	watcher   *fsnotify.Watcher
	watchOnce sync.Once
	targets   map[string]struct{}
}

func (w *Watcher) start() error {
	var err error
	w.watchOnce.Do(func() {
		if len(w.Files) == 0 {
			err = errors.New("watch: no files to watch")
			return
		}
		fw, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		targets := make(map[string]struct{}, len(w.Files))
		dirs := make(map[string]struct{})
		for _, f := range w.Files {
			abs, e := filepath.Abs(f)
			if e != nil {
				fw.Close()
				err = e
				return
			}
			targets[abs] = struct{}{}
			dirs[filepath.Dir(abs)] = struct{}{}
		}
		for d := range dirs {
			if e := fw.Add(d); e != nil {
				fw.Close()
				err = fmt.Errorf("watch %s: %w", d, e)
				return
			}
		}
		w.watcher = fw
		w.targets = targets
	})
	return err
}

// Matches reports whether an event on path concerns a watched file.
func (w *Watcher) Matches(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, ok := w.targets[abs]
	return ok
}

// Run builds once, then rebuilds after changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.start(); err != nil {
		return err
	}
	defer w.watcher.Close()

	if err := w.Rebuild(ctx); err != nil {
		log.WithError(err).Error("build failed")
	}
	w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	log.WithField("files", w.Files).Info("watching for changes")
	debounce := time.NewTicker(time.Hour)
	debounce.Stop()

	trigger := func() {
		select {
		case <-debounce.C:
		default:
		}
		debounce.Reset(debounceDelay)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 || !w.Matches(ev.Name) {
				continue
			}
			log.WithFields(log.Fields{"file": ev.Name, "op": ev.Op.String()}).Debug("change detected")
			trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("watcher error")
		case <-debounce.C:
			debounce.Stop()
			ctx2, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := w.Rebuild(ctx2); err != nil {
				log.WithError(err).Error("rebuild failed")
			}
			cancel()
		}
	}
}
