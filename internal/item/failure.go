package item

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

var (
	// ErrNotDirectory is returned by ComputeFolderSize for non-directories.
	ErrNotDirectory = errors.New("not a directory")
	// ErrFolderSizeNotComputed is the Size failure of a directory whose folder
	// size has not been requested yet.
	ErrFolderSizeNotComputed = fmt.Errorf("folder size not computed: %w", errors.ErrUnsupported)
	// ErrNoBirthTime reports a file system that does not record creation time.
	ErrNoBirthTime = fmt.Errorf("creation time not recorded: %w", errors.ErrUnsupported)
	// ErrNoAccessTime reports a file system that does not record access time.
	ErrNoAccessTime = fmt.Errorf("access time not recorded: %w", errors.ErrUnsupported)
	// ErrNotPackage guards RevealPackageContents.
	ErrNotPackage = errors.New("not a package")
	// ErrNotAlias guards ShowOriginal.
	ErrNotAlias = errors.New("not a symlink or alias")
)

// FailureKind classifies why an attribute could not be resolved.
type FailureKind int

const (
	FailNotFound FailureKind = iota
	FailPermissionDenied
	FailUnsupported
	FailTransientIO
)

func (k FailureKind) String() string {
	switch k {
	case FailNotFound:
		return "not found"
	case FailPermissionDenied:
		return "permission denied"
	case FailUnsupported:
		return "unsupported"
	case FailTransientIO:
		return "I/O error"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure is the error of a failed attribute resolution.
type Failure struct {
	Kind FailureKind
	Attr Attribute
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Attr, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Retryable reports whether trying again might succeed.
func (f *Failure) Retryable() bool {
	return f.Kind == FailTransientIO
}

func classify(attr Attribute, err error) *Failure {
	var existing *Failure
	if errors.As(err, &existing) {
		return existing
	}
	kind := FailTransientIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = FailNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = FailPermissionDenied
	case errors.Is(err, errors.ErrUnsupported),
		errors.Is(err, syscall.ENOTSUP),
		errors.Is(err, syscall.ENODATA):
		kind = FailUnsupported
	}
	return &Failure{Kind: kind, Attr: attr, Err: err}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
