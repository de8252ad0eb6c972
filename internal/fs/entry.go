package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry represents a single file or directory on disk as seen by one probe.
type Entry struct {
	Name       string
	FullPath   string
	IsDir      bool
	IsSymlink  bool
	Size       int64
	Blocks     int64
	Modified   time.Time
	Accessed   time.Time
	Created    time.Time
	HasCreated bool
	Mode       os.FileMode
	UID        uint32
	GID        uint32
	Device     uint64
	Inode      uint64
	// Flags holds BSD file flags where the platform reports them.
	Flags uint32
}

// IsHidden reports whether the entry should be treated as hidden.
func (e Entry) IsHidden() bool {
	return IsHidden(e.Name) || (hiddenFlag != 0 && e.Flags&hiddenFlag != 0)
}

// IsRegular reports whether the entry is a plain file.
func (e Entry) IsRegular() bool {
	return e.Mode.IsRegular()
}

// AllocatedSize is the on-disk footprint in bytes, falling back to the
// logical length when the platform does not report block counts.
func (e Entry) AllocatedSize() int64 {
	if e.Blocks > 0 {
		return e.Blocks * 512
	}
	return e.Size
}

// IsHidden checks if a name is hidden by the dot-file convention.
func IsHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

var packageExtensions = map[string]struct{}{
	".app":           {},
	".bundle":        {},
	".framework":     {},
	".kext":          {},
	".plugin":        {},
	".pkg":           {},
	".mpkg":          {},
	".xcodeproj":     {},
	".xcworkspace":   {},
	".rtfd":          {},
	".photoslibrary": {},
	".appex":         {},
	".qlgenerator":   {},
	".saver":         {},
	".prefpane":      {},
}

// IsPackageName reports whether a directory with this name is presented as a
// single opaque document (a bundle) rather than as a folder.
func IsPackageName(name string) bool {
	_, ok := packageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Probe performs a single lstat-like probe of path, including birth time when
// the platform exposes it.
func Probe(path string) (Entry, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Entry{Name: filepath.Base(path), FullPath: path}, err
	}
	return FromFileInfo(path, info, true), nil
}

// FromFileInfo builds an Entry from an existing FileInfo. Birth time costs an
// extra syscall on some platforms and is only looked up when withBirth is set.
func FromFileInfo(path string, info os.FileInfo, withBirth bool) Entry {
	e := Entry{
		Name:      info.Name(),
		FullPath:  path,
		IsDir:     info.IsDir(),
		IsSymlink: info.Mode()&os.ModeSymlink != 0,
		Size:      info.Size(),
		Modified:  info.ModTime(),
		Mode:      info.Mode(),
	}
	fillPlatform(path, info, &e, withBirth)
	return e
}

// ErrNoAttribute is returned when an extended attribute is absent.
var ErrNoAttribute = errors.New("extended attribute not set")
