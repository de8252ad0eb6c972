package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kk-code-lab/katsearch/internal/debuglog"
	fsutil "github.com/kk-code-lab/katsearch/internal/fs"
	"github.com/kk-code-lab/katsearch/internal/typeid"
)

// DefaultBatchSize is the number of matches requested per primitive call.
const DefaultBatchSize = 256

// DefaultUnsupportedFS lists file-system types whose catalogs are not
// searched.
var DefaultUnsupportedFS = []string{
	"proc", "sysfs", "devpts", "cgroup", "cgroup2", "debugfs", "tracefs",
	"nfs", "cifs", "smbfs", "smb2", "webdav", "fuse", "autofs",
}

// RawMatch is one entry reported by the engine.
type RawMatch struct {
	VolumeID uint64
	NodeID   uint64
	Path     string
	Entry    fsutil.Entry
}

// Outcome is how a scan terminated.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeCancelled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// SkippedVolume is a diagnostic for a root that was not scanned.
type SkippedVolume struct {
	Root   string
	FSType string
	Err    error
}

func (s SkippedVolume) String() string {
	return fmt.Sprintf("skipped %s: %v", s.Root, s.Err)
}

// Summary describes a finished scan.
type Summary struct {
	Outcome  Outcome
	Err      error
	Matches  int
	Scanned  int
	Skipped  []SkippedVolume
	Duration time.Duration
}

// Update is one incremental delivery. Exactly one of Matches, Skipped or Done
// is meaningful.
type Update struct {
	Matches []RawMatch
	Skipped *SkippedVolume
	Done    bool
	Summary Summary
}

// Options configures an Engine.
type Options struct {
	BatchSize     int
	Parallel      bool
	UnsupportedFS []string
	Primitive     Primitive
	Identifier    typeid.Identifier
}

// Engine runs catalog scans. It is safe for concurrent use.
type Engine struct {
	batchSize   int
	parallel    bool
	unsupported map[string]struct{}
	primitive   Primitive
	ident       typeid.Identifier

	statVolume func(string) (fsutil.Volume, error)
	getwd      func() (string, error)
}

// NewEngine builds an engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		batchSize:   opts.BatchSize,
		parallel:    opts.Parallel,
		unsupported: map[string]struct{}{},
		primitive:   opts.Primitive,
		ident:       opts.Identifier,
		statVolume:  fsutil.StatVolume,
		getwd:       os.Getwd,
	}
	if e.batchSize <= 0 {
		e.batchSize = DefaultBatchSize
	}
	if e.primitive == nil {
		e.primitive = NewWalkPrimitive()
	}
	if e.ident == nil {
		e.ident = typeid.NewDetector()
	}
	deny := opts.UnsupportedFS
	if deny == nil {
		deny = DefaultUnsupportedFS
	}
	for _, name := range deny {
		e.unsupported[strings.ToLower(name)] = struct{}{}
	}
	return e
}

var errLimitReached = errors.New("match limit reached")

// Search runs q synchronously, yielding match batches and skip diagnostics as
// they are produced. It returns once the scan terminates. yield is never
// called concurrently and never called after ctx cancellation is observed.
func (e *Engine) Search(ctx context.Context, q Query, yield func(Update)) Summary {
	start := time.Now()
	summary := e.search(ctx, q, yield)
	summary.Duration = time.Since(start)
	debuglog.Logf("catalog: scan %s outcome=%s matches=%d scanned=%d skipped=%d elapsed=%s",
		q, summary.Outcome, summary.Matches, summary.Scanned, len(summary.Skipped), summary.Duration)
	return summary
}

func (e *Engine) search(ctx context.Context, q Query, yield func(Update)) Summary {
	var summary Summary

	plan, err := Compile(q, e.ident)
	if err != nil {
		summary.Outcome = OutcomeFailed
		summary.Err = err
		return summary
	}

	scanCtx, stop := context.WithCancel(ctx)
	defer stop()

	var mu sync.Mutex
	limitHit := false
	// deliver reports false once nothing more should be delivered.
	deliver := func(matches []RawMatch) bool {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil || limitHit {
			return false
		}
		if q.Limit > 0 && summary.Matches+len(matches) >= q.Limit {
			matches = matches[:q.Limit-summary.Matches]
			limitHit = true
			stop()
		}
		if len(matches) > 0 {
			summary.Matches += len(matches)
			yield(Update{Matches: matches})
		}
		return !limitHit
	}
	skip := func(s SkippedVolume) {
		mu.Lock()
		defer mu.Unlock()
		debuglog.Logf("catalog: %s", s)
		summary.Skipped = append(summary.Skipped, s)
		if ctx.Err() == nil {
			yield(Update{Skipped: &s})
		}
	}
	countScanned := func(n int) {
		mu.Lock()
		summary.Scanned += n
		mu.Unlock()
	}

	volumes := e.resolveTargets(q.Roots, skip)

	scan := func(ctx context.Context, vol Volume) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := e.scanVolume(ctx, vol, plan, deliver, countScanned)
		if errors.Is(err, ErrVolumeUnavailable) || errors.Is(err, ErrUnsupported) {
			skip(SkippedVolume{Root: vol.Root, FSType: vol.FSType, Err: err})
			return nil
		}
		return err
	}

	var runErr error
	if e.parallel && len(volumes) > 1 {
		g, gctx := errgroup.WithContext(scanCtx)
		for _, vol := range volumes {
			g.Go(func() error { return scan(gctx, vol) })
		}
		runErr = g.Wait()
	} else {
		for _, vol := range volumes {
			if runErr = scan(scanCtx, vol); runErr != nil {
				break
			}
		}
	}

	mu.Lock()
	defer mu.Unlock()
	var fault *Fault
	switch {
	case errors.As(runErr, &fault):
		summary.Outcome = OutcomeFailed
		summary.Err = fault
	case ctx.Err() != nil:
		summary.Outcome = OutcomeCancelled
	case runErr != nil && !limitHit:
		summary.Outcome = OutcomeFailed
		summary.Err = runErr
	default:
		summary.Outcome = OutcomeCompleted
	}
	return summary
}

// scanVolume drives the primitive over one volume until it is exhausted, the
// context is cancelled, or deliver refuses more matches.
func (e *Engine) scanVolume(ctx context.Context, vol Volume, plan Plan, deliver func([]RawMatch) bool, countScanned func(int)) error {
	var cursor Cursor
	release := func() {
		if cursor != nil {
			cursor.Release()
			cursor = nil
		}
	}
	defer release()

	for batchNo := 0; ; batchNo++ {
		batch, err := e.primitive.Search(ctx, vol, plan.Criteria, e.batchSize, cursor)
		if err == nil {
			if cursor != nil && batch.Cursor != cursor {
				cursor.Release()
			}
			cursor = batch.Cursor
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if errors.Is(err, ErrVolumeUnavailable) || errors.Is(err, ErrUnsupported) {
				return err
			}
			var fault *Fault
			if errors.As(err, &fault) {
				return fault
			}
			return &Fault{Volume: vol.Root, Err: err}
		}
		countScanned(batch.Scanned)

		matches := make([]RawMatch, 0, len(batch.Entries))
		for _, entry := range batch.Entries {
			if !plan.Accept(entry) {
				continue
			}
			matches = append(matches, RawMatch{
				VolumeID: vol.ID,
				NodeID:   entry.Inode,
				Path:     entry.FullPath,
				Entry:    entry,
			})
		}
		debuglog.Logf("catalog: %s batch=%d entries=%d accepted=%d scanned=%d",
			vol.Root, batchNo, len(batch.Entries), len(matches), batch.Scanned)

		if !deliver(matches) {
			if err := ctx.Err(); err != nil {
				return err
			}
			return errLimitReached
		}
		if cursor == nil {
			return nil
		}
	}
}

// resolveTargets maps query roots to volumes. Unusable roots are reported
// through skip. Roots nested inside another root on the same device are
// folded into the outer one.
func (e *Engine) resolveTargets(roots []string, skip func(SkippedVolume)) []Volume {
	if len(roots) == 0 {
		wd, err := e.getwd()
		if err != nil {
			skip(SkippedVolume{Root: ".", Err: fmt.Errorf("%w: %v", ErrVolumeUnavailable, err)})
			return nil
		}
		roots = []string{wd}
	}

	var volumes []Volume
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			skip(SkippedVolume{Root: root, Err: fmt.Errorf("%w: %v", ErrVolumeUnavailable, err)})
			continue
		}
		info, err := e.statVolume(abs)
		if err != nil {
			skip(SkippedVolume{Root: abs, Err: fmt.Errorf("%w: %v", ErrVolumeUnavailable, err)})
			continue
		}
		if _, denied := e.unsupported[strings.ToLower(info.FSType)]; denied {
			skip(SkippedVolume{Root: abs, FSType: info.FSType, Err: fmt.Errorf("%w: file system %s", ErrUnsupported, info.FSType)})
			continue
		}
		vol := Volume{ID: info.Device, Root: abs, MountPoint: info.MountPoint, FSType: info.FSType}
		volumes = addVolume(volumes, vol)
	}
	return volumes
}

func addVolume(volumes []Volume, vol Volume) []Volume {
	for i, existing := range volumes {
		if existing.ID != vol.ID {
			continue
		}
		if within(vol.Root, existing.Root) {
			debuglog.Logf("catalog: %s already covered by %s", vol.Root, existing.Root)
			return volumes
		}
		if within(existing.Root, vol.Root) {
			debuglog.Logf("catalog: %s widens %s", vol.Root, existing.Root)
			volumes[i] = vol
			return dropCovered(volumes, i)
		}
	}
	return append(volumes, vol)
}

// dropCovered removes later volumes now nested inside volumes[keep].
func dropCovered(volumes []Volume, keep int) []Volume {
	out := volumes[:keep+1]
	for _, v := range volumes[keep+1:] {
		if v.ID == volumes[keep].ID && within(v.Root, volumes[keep].Root) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
