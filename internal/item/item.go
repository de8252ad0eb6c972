// Package item wraps one search result. Classifications are fixed when the item
// is built; every other attribute is resolved on first request and cached
// until the item is refreshed.
package item

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/debuglog"
	"github.com/kk-code-lab/katsearch/internal/format"
	fsutil "github.com/kk-code-lab/katsearch/internal/fs"
	"github.com/kk-code-lab/katsearch/internal/osaction"
	"github.com/kk-code-lab/katsearch/internal/textutil"
	"github.com/kk-code-lab/katsearch/internal/typeid"
)

// Deps are the collaborators an item resolves attributes through. Zero fields
// are filled with the system defaults.
type Deps struct {
	Service    osaction.Service
	Identifier typeid.Identifier
	Names      format.NameLookup
	Units      format.Units
	Locale     language.Tag
	// FolderSizer computes the recursive size of a directory.
	FolderSizer func(ctx context.Context, root string) (FolderSize, error)

	probe func(path string) (fsutil.Entry, error)
}

// WithDefaults fills unset collaborators with the system implementations.
func (d Deps) WithDefaults() Deps {
	if d.Service == nil {
		d.Service = osaction.NewDesktop()
	}
	if d.Identifier == nil {
		d.Identifier = typeid.NewDetector()
	}
	if d.Names.User == nil && d.Names.Group == nil {
		d.Names = format.SystemLookup()
	}
	if d.FolderSizer == nil {
		d.FolderSizer = WalkFolderSize
	}
	if d.probe == nil {
		d.probe = fsutil.Probe
	}
	return d
}

// Item is one search result. It is safe for concurrent use.
type Item struct {
	deps Deps

	mu         sync.RWMutex
	entry      fsutil.Entry
	probeErr   error
	birthKnown bool

	slots [attrCount]slot
}

// Result is the outcome of resolving one attribute.
type Result struct {
	Attr    Attribute
	State   State
	Value   any
	Display string
	Failure *Failure
}

// Err returns the failure as an error, or nil.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// New probes path once and builds an item from it. A missing path yields an
// item that reports Exists() == false and fails every attribute.
func New(path string, deps Deps) *Item {
	it := &Item{deps: deps.WithDefaults()}
	it.load(filepath.Clean(path))
	return it
}

// FromMatch builds an item from a catalog match without probing again.
func FromMatch(m catalog.RawMatch, deps Deps) *Item {
	it := &Item{deps: deps.WithDefaults()}
	entry := m.Entry
	if entry.FullPath == "" {
		entry.FullPath = m.Path
	}
	if entry.Name == "" {
		entry.Name = filepath.Base(entry.FullPath)
	}
	it.entry = entry
	it.birthKnown = entry.HasCreated
	return it
}

func (it *Item) load(path string) {
	entry, err := it.deps.probe(path)
	if entry.FullPath == "" {
		entry.FullPath = path
	}
	if entry.Name == "" {
		entry.Name = filepath.Base(path)
	}
	it.mu.Lock()
	it.entry, it.probeErr, it.birthKnown = entry, err, err == nil
	it.mu.Unlock()
}

// Repoint moves the item to path, probing it and dropping every cached value.
func (it *Item) Repoint(path string) {
	it.load(filepath.Clean(path))
	it.resetAll()
}

// Reload re-reads the current path from disk and drops every cached value.
func (it *Item) Reload() {
	it.Repoint(it.Path())
}

// Refresh drops the cached value of one attribute so the next request
// recomputes it. Size and FolderSize share a source and are reset together.
func (it *Item) Refresh(attr Attribute) {
	if int(attr) < 0 || int(attr) >= len(it.slots) {
		return
	}
	switch attr {
	case AttrSize, AttrFolderSize:
		it.slots[AttrSize].reset()
		it.slots[AttrFolderSize].reset()
	default:
		it.slots[attr].reset()
	}
}

func (it *Item) resetAll() {
	for i := range it.slots {
		it.slots[i].reset()
	}
}

// Entry returns the probe the item was built from.
func (it *Item) Entry() fsutil.Entry {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.entry
}

func (it *Item) Path() string {
	return it.Entry().FullPath
}

func (it *Item) Name() string {
	return it.Entry().Name
}

// LowercaseName is the name used for case-insensitive sorting.
func (it *Item) LowercaseName() string {
	return strings.ToLower(it.Name())
}

// TruncatedName fits the name into width terminal columns, eliding its middle.
func (it *Item) TruncatedName(width int) string {
	return textutil.TruncateMiddle(textutil.SanitizeTerminalText(it.Name()), width)
}

func (it *Item) Exists() bool {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.probeErr == nil
}

func (it *Item) IsDirectory() bool {
	e := it.Entry()
	return it.Exists() && e.IsDir
}

func (it *Item) IsSymlink() bool {
	e := it.Entry()
	return it.Exists() && e.IsSymlink
}

// IsPackage reports a directory presented as a single document.
func (it *Item) IsPackage() bool {
	return it.IsDirectory() && fsutil.IsPackageName(it.Name())
}

// IsApplication reports an application bundle or a desktop launcher.
func (it *Item) IsApplication() bool {
	if !it.Exists() {
		return false
	}
	ext := strings.ToLower(filepath.Ext(it.Name()))
	if it.IsDirectory() {
		return ext == ".app"
	}
	return ext == ".desktop" && it.Entry().IsRegular()
}

func (it *Item) IsHidden() bool {
	return it.Exists() && it.Entry().IsHidden()
}

var bookmarkExtensions = map[string]struct{}{
	".webloc":  {},
	".inetloc": {},
	".fileloc": {},
	".url":     {},
	".alias":   {},
}

// IsBookmark reports a file that points at another location.
func (it *Item) IsBookmark() bool {
	if !it.Exists() || !it.Entry().IsRegular() {
		return false
	}
	_, ok := bookmarkExtensions[strings.ToLower(filepath.Ext(it.Name()))]
	return ok
}

// State reports the cache state of attr without resolving it.
func (it *Item) State(attr Attribute) State {
	if attr < 0 || attr >= attrCount {
		return Unresolved
	}
	state, _, _ := it.slots[attr].peek()
	return state
}

// Resolve returns attr, computing and caching it on first use. Concurrent
// callers asking for the same attribute share one computation.
func (it *Item) Resolve(ctx context.Context, attr Attribute) Result {
	if attr < 0 || attr >= attrCount {
		return Result{Attr: attr, State: Failed, Display: typeid.Unknown,
			Failure: &Failure{Kind: FailUnsupported, Attr: attr, Err: errors.ErrUnsupported}}
	}
	if attr == AttrFolderSize {
		size, err := it.ComputeFolderSize(ctx)
		return it.result(attr, size, err)
	}
	value, failure := it.slots[attr].get(attr, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, err := it.compute(ctx, attr)
		if err != nil {
			debuglog.Logf("item: %s of %s failed: %v", attr, it.Path(), err)
		}
		return value, err
	})
	if failure != nil {
		return it.result(attr, nil, failure)
	}
	return it.result(attr, value, nil)
}

func (it *Item) result(attr Attribute, value any, err error) Result {
	if err != nil {
		failure := classify(attr, err)
		state := Failed
		if isCancellation(err) {
			state = Unresolved
		}
		return Result{Attr: attr, State: state, Display: typeid.Unknown, Failure: failure}
	}
	return Result{Attr: attr, State: Resolved, Value: value, Display: it.display(attr, value)}
}

// Prime resolves the given attributes, stopping early when ctx is done.
func (it *Item) Prime(ctx context.Context, attrs ...Attribute) {
	for _, attr := range attrs {
		if ctx.Err() != nil {
			return
		}
		it.Resolve(ctx, attr)
	}
}

// ColumnValue is the display text of a column, "?" when it cannot be resolved.
func (it *Item) ColumnValue(ctx context.Context, c Column) string {
	return it.Resolve(ctx, c.Attribute()).Display
}

func (it *Item) compute(ctx context.Context, attr Attribute) (any, error) {
	it.mu.RLock()
	entry, probeErr, birthKnown := it.entry, it.probeErr, it.birthKnown
	it.mu.RUnlock()
	if probeErr != nil {
		return nil, probeErr
	}

	ident := it.deps.Identifier
	svc := it.deps.Service
	switch attr {
	case AttrKind:
		return ident.Kind(entry)
	case AttrSize:
		return it.size(entry)
	case AttrDateCreated:
		return it.created(entry, birthKnown)
	case AttrDateModified:
		return entry.Modified, nil
	case AttrDateAccessed:
		if entry.Accessed.IsZero() {
			return nil, ErrNoAccessTime
		}
		return entry.Accessed, nil
	case AttrUserGroup:
		names := it.deps.Names
		return format.UserGroup(names.UserName(entry.UID), names.GroupName(entry.GID)), nil
	case AttrPermissions:
		return format.Permissions(entry.Mode), nil
	case AttrOctalPermissions:
		return format.OctalPermissions(entry.Mode), nil
	case AttrUTI:
		return ident.UTI(entry)
	case AttrMIMEType:
		return ident.MIMEType(entry)
	case AttrFileType:
		fileType, _, err := ident.HFSCodes(entry)
		return fileType, err
	case AttrCreatorType:
		_, creator, err := ident.HFSCodes(entry)
		return creator, err
	case AttrIcon:
		return ident.Icon(entry)
	case AttrHandlers:
		return it.handlers(ctx, svc, entry.FullPath)
	case AttrLabel:
		return svc.Label(ctx, entry.FullPath)
	case AttrComment:
		return svc.FinderComment(ctx, entry.FullPath)
	}
	return nil, errors.ErrUnsupported
}

func (it *Item) size(entry fsutil.Entry) (any, error) {
	if !entry.IsDir {
		return entry.Size, nil
	}
	if state, value, _ := it.slots[AttrFolderSize].peek(); state == Resolved {
		return value.(FolderSize).Bytes, nil
	}
	return nil, ErrFolderSizeNotComputed
}

func (it *Item) created(entry fsutil.Entry, birthKnown bool) (any, error) {
	if entry.HasCreated {
		return entry.Created, nil
	}
	if birthKnown {
		return nil, ErrNoBirthTime
	}
	fresh, err := it.deps.probe(entry.FullPath)
	if err != nil {
		return nil, err
	}
	if !fresh.HasCreated {
		return nil, ErrNoBirthTime
	}
	return fresh.Created, nil
}

// Handlers lists the applications able to open an item.
type Handlers struct {
	Default string
	All     []string
}

func (it *Item) handlers(ctx context.Context, svc osaction.Service, path string) (Handlers, error) {
	def, err := svc.DefaultHandler(ctx, path)
	if err != nil {
		return Handlers{}, err
	}
	all, err := svc.AllHandlers(ctx, path)
	if err != nil && !errors.Is(err, errors.ErrUnsupported) {
		return Handlers{}, err
	}
	if def != "" && !contains(all, def) {
		all = append([]string{def}, all...)
	}
	return Handlers{Default: def, All: all}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (it *Item) display(attr Attribute, value any) string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return typeid.Unknown
		}
		return textutil.SanitizeTerminalText(v)
	case int64:
		return format.Size(uint64(max(v, 0)), it.deps.Units)
	case time.Time:
		return format.Date(v, it.deps.Locale)
	case typeid.Icon:
		return v.Name
	case Handlers:
		if v.Default == "" {
			return typeid.Unknown
		}
		return v.Default
	case int:
		if attr == AttrLabel {
			return osaction.LabelName(v)
		}
	case FolderSize:
		text := format.Size(uint64(max(v.Bytes, 0)), it.deps.Units)
		if !v.Complete {
			text += " (partial)"
		}
		return text
	}
	return typeid.Unknown
}

func resolveAs[T any](ctx context.Context, it *Item, attr Attribute) (T, error) {
	var zero T
	r := it.Resolve(ctx, attr)
	if r.Failure != nil {
		return zero, r.Failure
	}
	v, ok := r.Value.(T)
	if !ok {
		return zero, &Failure{Kind: FailUnsupported, Attr: attr, Err: errors.ErrUnsupported}
	}
	return v, nil
}

func (it *Item) Kind(ctx context.Context) (string, error) {
	return resolveAs[string](ctx, it, AttrKind)
}

// Size is the logical length of a file, or the folder size of a directory once
// ComputeFolderSize has run. Sparse and compressed files may occupy less on
// disk; AllocatedSize reports that.
func (it *Item) Size(ctx context.Context) (int64, error) {
	return resolveAs[int64](ctx, it, AttrSize)
}

func (it *Item) DateCreated(ctx context.Context) (time.Time, error) {
	return resolveAs[time.Time](ctx, it, AttrDateCreated)
}

func (it *Item) DateModified(ctx context.Context) (time.Time, error) {
	return resolveAs[time.Time](ctx, it, AttrDateModified)
}

func (it *Item) DateAccessed(ctx context.Context) (time.Time, error) {
	return resolveAs[time.Time](ctx, it, AttrDateAccessed)
}

func (it *Item) UserGroup(ctx context.Context) (string, error) {
	return resolveAs[string](ctx, it, AttrUserGroup)
}

func (it *Item) Permissions(ctx context.Context) (string, error) {
	return resolveAs[string](ctx, it, AttrPermissions)
}

func (it *Item) OctalPermissions(ctx context.Context) (string, error) {
	return resolveAs[string](ctx, it, AttrOctalPermissions)
}

func (it *Item) UTI(ctx context.Context) (string, error) {
	return resolveAs[string](ctx, it, AttrUTI)
}

func (it *Item) MIMEType(ctx context.Context) (string, error) {
	return resolveAs[string](ctx, it, AttrMIMEType)
}

func (it *Item) FileType(ctx context.Context) (string, error) {
	return resolveAs[string](ctx, it, AttrFileType)
}

func (it *Item) CreatorType(ctx context.Context) (string, error) {
	return resolveAs[string](ctx, it, AttrCreatorType)
}

func (it *Item) Icon(ctx context.Context) (typeid.Icon, error) {
	return resolveAs[typeid.Icon](ctx, it, AttrIcon)
}

func (it *Item) Handlers(ctx context.Context) (Handlers, error) {
	return resolveAs[Handlers](ctx, it, AttrHandlers)
}

func (it *Item) Label(ctx context.Context) (int, error) {
	return resolveAs[int](ctx, it, AttrLabel)
}

func (it *Item) Comment(ctx context.Context) (string, error) {
	return resolveAs[string](ctx, it, AttrComment)
}

// AllocatedSize is the on-disk footprint of a file.
func (it *Item) AllocatedSize() int64 {
	return it.Entry().AllocatedSize()
}
