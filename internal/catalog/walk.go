package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	fsutil "github.com/kk-code-lab/katsearch/internal/fs"
)

var errForeignCursor = errors.New("cursor was not produced by this primitive")

// WalkPrimitive is the portable catalog primitive. It walks a volume scope
// breadth-first in name order and never crosses onto another device.
type WalkPrimitive struct {
	// MaxScan caps the entries examined per call so that a sparse scope still
	// returns control to the caller regularly. Zero means 64 times the batch size.
	MaxScan int

	readDir func(string) ([]os.DirEntry, error)
}

// NewWalkPrimitive returns a primitive backed by os.ReadDir.
func NewWalkPrimitive() *WalkPrimitive {
	return &WalkPrimitive{readDir: os.ReadDir}
}

type walkCursor struct {
	queue    []string
	entries  []os.DirEntry
	dir      string
	pos      int
	released bool
}

func (c *walkCursor) Release() {
	c.queue = nil
	c.entries = nil
	c.released = true
}

func (c *walkCursor) exhausted() bool {
	return c.pos >= len(c.entries) && len(c.queue) == 0
}

// Search returns the next batch of at most maxEntries matching entries.
func (w *WalkPrimitive) Search(_ context.Context, vol Volume, criteria Criteria, maxEntries int, cursor Cursor) (Batch, error) {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	readDir := w.readDir
	if readDir == nil {
		readDir = os.ReadDir
	}

	var cur *walkCursor
	if cursor == nil {
		entries, err := readDir(vol.Root)
		if err != nil {
			return Batch{}, fmt.Errorf("%w: %s: %v", ErrVolumeUnavailable, vol.Root, err)
		}
		cur = &walkCursor{dir: vol.Root, entries: entries}
	} else {
		c, ok := cursor.(*walkCursor)
		if !ok || c.released {
			return Batch{}, &Fault{Volume: vol.Root, Err: errForeignCursor}
		}
		cur = c
	}

	budget := w.MaxScan
	if budget <= 0 {
		budget = 64 * maxEntries
	}

	var batch Batch
	for len(batch.Entries) < maxEntries && batch.Scanned < budget {
		if cur.pos >= len(cur.entries) {
			if len(cur.queue) == 0 {
				break
			}
			next := cur.queue[0]
			cur.queue = cur.queue[1:]
			entries, err := readDir(next)
			if err != nil {
				cur.entries, cur.pos = nil, 0
				continue
			}
			cur.dir, cur.entries, cur.pos = next, entries, 0
			continue
		}

		de := cur.entries[cur.pos]
		cur.pos++
		batch.Scanned++

		fullPath := filepath.Join(cur.dir, de.Name())
		info, err := de.Info()
		if err != nil {
			continue
		}
		entry := fsutil.FromFileInfo(fullPath, info, criteria.Created.IsSet())
		if entry.Device != vol.ID {
			continue
		}
		if criteria.SkipHidden && entry.IsHidden() {
			continue
		}

		if entry.IsDir && !(criteria.SkipPackages && fsutil.IsPackageName(entry.Name)) {
			cur.queue = append(cur.queue, fullPath)
		}

		if criteria.Matches(entry) {
			batch.Entries = append(batch.Entries, entry)
		}
	}

	if cur.exhausted() {
		cur.Release()
		return batch, nil
	}
	batch.Cursor = cur
	return batch, nil
}
