// Package osaction is the boundary between result items and the desktop:
// opening, revealing, trashing, labelling and handler lookup.
package osaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupported reports that the running system lacks the facility for an
// action. It matches errors.ErrUnsupported.
var ErrUnsupported = fmt.Errorf("action not available on this system: %w", errors.ErrUnsupported)

// Service performs desktop actions on paths. Implementations report failure
// and never retry.
type Service interface {
	Open(ctx context.Context, path string) error
	Reveal(ctx context.Context, path string) error
	RevealPackageContents(ctx context.Context, path string) error
	OpenWith(ctx context.Context, path, handlerID string) error
	ShowGetInfo(ctx context.Context, path string) error
	// ShowOriginal resolves a symlink or alias to its target and reveals it.
	ShowOriginal(ctx context.Context, path string) error
	QuickLook(ctx context.Context, path string) error
	MoveToTrash(ctx context.Context, path string) error

	DefaultHandler(ctx context.Context, path string) (string, error)
	AllHandlers(ctx context.Context, path string) ([]string, error)

	Label(ctx context.Context, path string) (int, error)
	SetLabel(ctx context.Context, path string, label int) error
	FinderComment(ctx context.Context, path string) (string, error)
	SetFinderComment(ctx context.Context, path, comment string) error

	// NotifyChanged tells observers that the contents of path changed.
	NotifyChanged(path string)
}

// Color labels, numbered the way Finder stores them.
const (
	LabelNone = iota
	LabelGray
	LabelGreen
	LabelPurple
	LabelBlue
	LabelYellow
	LabelRed
	LabelOrange
)

var labelNames = [...]string{"None", "Gray", "Green", "Purple", "Blue", "Yellow", "Red", "Orange"}

// LabelName renders a label number.
func LabelName(label int) string {
	if label < 0 || label >= len(labelNames) {
		return fmt.Sprintf("Label %d", label)
	}
	return labelNames[label]
}

// ParseLabel accepts a label name or number.
func ParseLabel(s string) (int, error) {
	for i, name := range labelNames {
		if strings.EqualFold(s, name) {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(labelNames) {
		return n, nil
	}
	return 0, fmt.Errorf("unknown label %q", s)
}

func validLabel(label int) error {
	if label < 0 || label >= len(labelNames) {
		return fmt.Errorf("label %d out of range", label)
	}
	return nil
}
