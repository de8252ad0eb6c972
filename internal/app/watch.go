package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kk-code-lab/katsearch/internal/debuglog"
)

const (
	// maxWatchedDirs caps the directories watched for one result list.
	maxWatchedDirs = 256
	// watchSettle coalesces bursts of events in one directory.
	watchSettle = 200 * time.Millisecond
)

// dirWatcher reports changes in the directories that hold results.
type dirWatcher struct {
	w    *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex
	watched map[string]struct{}
}

func newDirWatcher(onChange func(dir string)) (*dirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dw := &dirWatcher{w: w, done: make(chan struct{}), watched: map[string]struct{}{}}
	go dw.run(onChange)
	return dw, nil
}

func (dw *dirWatcher) run(onChange func(dir string)) {
	defer close(dw.done)
	pending := map[string]struct{}{}
	var settle <-chan time.Time
	for {
		select {
		case ev, ok := <-dw.w.Events:
			if !ok {
				return
			}
			// a new sibling is not a result; everything else may change one
			if ev.Op == fsnotify.Create {
				continue
			}
			pending[filepath.Dir(ev.Name)] = struct{}{}
			if settle == nil {
				settle = time.After(watchSettle)
			}
		case <-settle:
			for dir := range pending {
				onChange(dir)
			}
			clear(pending)
			settle = nil
		case err, ok := <-dw.w.Errors:
			if !ok {
				return
			}
			debuglog.Logf("app: watcher: %v", err)
		}
	}
}

// Watch starts watching the parent directories of paths.
func (dw *dirWatcher) Watch(paths ...string) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, ok := dw.watched[dir]; ok || len(dw.watched) >= maxWatchedDirs {
			continue
		}
		if err := dw.w.Add(dir); err != nil {
			debuglog.Logf("app: watch %s: %v", dir, err)
			continue
		}
		dw.watched[dir] = struct{}{}
	}
}

// Reset stops watching every directory.
func (dw *dirWatcher) Reset() {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	for dir := range dw.watched {
		_ = dw.w.Remove(dir)
	}
	clear(dw.watched)
}

func (dw *dirWatcher) Close() error {
	err := dw.w.Close()
	<-dw.done
	return err
}
