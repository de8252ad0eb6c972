package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDirWatcherReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	changed := make(chan string, 8)
	dw, err := newDirWatcher(func(d string) { changed <- d })
	if err != nil {
		t.Skipf("no watcher on this platform: %v", err)
	}
	defer dw.Close()
	dw.Watch(path)

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	select {
	case got := <-changed:
		if got != dir {
			t.Fatalf("changed dir = %q, want %q", got, dir)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
}

func TestDirWatcherResetForgetsDirectories(t *testing.T) {
	dw, err := newDirWatcher(func(string) {})
	if err != nil {
		t.Skipf("no watcher on this platform: %v", err)
	}
	defer dw.Close()
	dw.Watch(filepath.Join(t.TempDir(), "a"), filepath.Join(t.TempDir(), "b"))
	if len(dw.watched) != 2 {
		t.Fatalf("watched = %d, want 2", len(dw.watched))
	}
	dw.Reset()
	if len(dw.watched) != 0 {
		t.Fatalf("watched after reset = %d", len(dw.watched))
	}
}
