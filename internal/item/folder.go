package item

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/kk-code-lab/katsearch/internal/debuglog"
)

// FolderSize is the recursive size of a directory.
type FolderSize struct {
	Bytes int64
	Files int
	Dirs  int
	// Unreadable counts entries that could not be read and were left out.
	Unreadable int
	Complete   bool
}

// WalkFolderSize sums the lengths of the regular files under root. Unreadable
// subtrees are counted and skipped; only a failure on root itself is an error.
func WalkFolderSize(ctx context.Context, root string) (FolderSize, error) {
	var size FolderSize
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			size.Unreadable++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			size.Dirs++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			size.Unreadable++
			return nil
		}
		if info.Mode().IsRegular() {
			size.Files++
			size.Bytes += info.Size()
		}
		return nil
	})
	if err != nil {
		return FolderSize{}, err
	}
	size.Complete = size.Unreadable == 0
	return size, nil
}

// ComputeFolderSize walks a directory and caches the total, which also makes
// Size resolvable. It fails at once, without touching the disk, for anything
// that is not a directory.
func (it *Item) ComputeFolderSize(ctx context.Context) (FolderSize, error) {
	it.mu.RLock()
	probeErr := it.probeErr
	it.mu.RUnlock()
	if probeErr != nil {
		return FolderSize{}, classify(AttrFolderSize, probeErr)
	}
	if !it.IsDirectory() {
		return FolderSize{}, &Failure{Kind: FailUnsupported, Attr: AttrFolderSize, Err: ErrNotDirectory}
	}

	path := it.Path()
	value, failure := it.slots[AttrFolderSize].get(AttrFolderSize, func() (any, error) {
		debuglog.Logf("item: computing folder size of %s", path)
		return it.deps.FolderSizer(ctx, path)
	})
	if failure != nil {
		return FolderSize{}, failure
	}
	if state, _, _ := it.slots[AttrSize].peek(); state == Failed {
		it.slots[AttrSize].reset()
	}
	return value.(FolderSize), nil
}
