package events

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is the time to wait after the last change to a path before
// classifying it. Editors writing via temp-file-and-rename produce bursts of
// events per save; this coalesces each burst into one classification.
const debounceDelay = 100 * time.Millisecond

// Watcher observes the vault directories and delivers classified entity
// events to a callback.
type Watcher struct {
	fsw        *fsnotify.Watcher
	classifier *Classifier
	deliver    func(*Event)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher creates a Watcher over the classifier's vault directories.
// Missing directories are skipped. The deliver callback receives each
// classified event; it is called from timer goroutines.
func NewWatcher(classifier *Classifier, deliver func(*Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := 0
	for _, p := range classifier.WatchedPaths() {
		if err := fsw.Add(p); err == nil {
			watched++
		}
	}
	if watched == 0 {
		_ = fsw.Close()
		return nil, errNoWatchedDirs
	}

	return &Watcher{
		fsw:        fsw,
		classifier: classifier,
		deliver:    deliver,
		timers:     make(map[string]*time.Timer),
	}, nil
}

var errNoWatchedDirs = &watchError{"no watchable vault directories exist"}

type watchError struct{ msg string }

func (e *watchError) Error() string { return e.msg }

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			change, relevant := changeKind(event.Op)
			if !relevant {
				continue
			}
			w.debounce(event.Name, change, errFn)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// changeKind maps an fsnotify operation to a change category. Renames report
// the old path, so they classify as deletions; the new path arrives as a
// separate create event.
func changeKind(op fsnotify.Op) (ChangeKind, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return ChangeCreated, true
	case op&fsnotify.Write != 0:
		return ChangeModified, true
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return ChangeDeleted, true
	}
	return "", false
}

func (w *Watcher) debounce(path string, change ChangeKind, errFn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		ev, err := w.classifier.Classify(path, change)
		if err != nil {
			if errFn != nil {
				errFn(err)
			}
			return
		}
		if ev != nil {
			w.deliver(ev)
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.timers {
		t.Stop()
	}
}
