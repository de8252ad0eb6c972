package catalog

import (
	"context"
	"errors"
	"fmt"

	fsutil "github.com/kk-code-lab/katsearch/internal/fs"
)

var (
	// ErrUnsupported reports that a volume's catalog cannot be searched.
	ErrUnsupported = errors.New("catalog search not supported on this volume")
	// ErrVolumeUnavailable reports a missing, unmounted or unreadable volume.
	ErrVolumeUnavailable = errors.New("volume unavailable")
)

// Fault is an unrecoverable failure of the catalog primitive. It terminates
// the whole scan.
type Fault struct {
	Volume string
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("catalog fault on %s: %v", f.Volume, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Volume is one scan target: the root to search and the volume it lives on.
type Volume struct {
	ID         uint64
	Root       string
	MountPoint string
	FSType     string
}

// Cursor is an opaque resume token handed back by a Primitive between batches.
type Cursor interface {
	// Release drops any state held by the cursor. It is safe to call twice.
	Release()
}

// Batch is the result of one primitive call. A nil Cursor means the volume is
// exhausted.
type Batch struct {
	Entries []fsutil.Entry
	Cursor  Cursor
	// Scanned counts catalog entries examined, matching or not.
	Scanned int
}

// Primitive is the low-level catalog search over a single volume. Each call
// returns at most maxEntries matching entries. Calls are not preemptible: once
// started, a call runs to completion.
type Primitive interface {
	Search(ctx context.Context, vol Volume, criteria Criteria, maxEntries int, cursor Cursor) (Batch, error)
}
