package item

import (
	"context"
	"path/filepath"
)

func (it *Item) Open(ctx context.Context) error {
	return it.deps.Service.Open(ctx, it.Path())
}

func (it *Item) Reveal(ctx context.Context) error {
	return it.deps.Service.Reveal(ctx, it.Path())
}

func (it *Item) RevealPackageContents(ctx context.Context) error {
	if !it.IsPackage() {
		return ErrNotPackage
	}
	return it.deps.Service.RevealPackageContents(ctx, it.Path())
}

func (it *Item) OpenWith(ctx context.Context, handlerID string) error {
	return it.deps.Service.OpenWith(ctx, it.Path(), handlerID)
}

func (it *Item) ShowGetInfo(ctx context.Context) error {
	return it.deps.Service.ShowGetInfo(ctx, it.Path())
}

// ShowOriginal reveals the target of a symlink or bookmark.
func (it *Item) ShowOriginal(ctx context.Context) error {
	if !it.IsSymlink() && !it.IsBookmark() {
		return ErrNotAlias
	}
	return it.deps.Service.ShowOriginal(ctx, it.Path())
}

func (it *Item) QuickLook(ctx context.Context) error {
	return it.deps.Service.QuickLook(ctx, it.Path())
}

// MoveToTrash trashes the item and tells listeners its parent changed. The
// item keeps its classifications; build a new one to observe the removal.
func (it *Item) MoveToTrash(ctx context.Context) error {
	path := it.Path()
	if err := it.deps.Service.MoveToTrash(ctx, path); err != nil {
		return err
	}
	it.deps.Service.NotifyChanged(filepath.Dir(path))
	return nil
}

func (it *Item) SetLabel(ctx context.Context, label int) error {
	defer it.slots[AttrLabel].reset()
	return it.deps.Service.SetLabel(ctx, it.Path(), label)
}

func (it *Item) SetComment(ctx context.Context, comment string) error {
	defer it.slots[AttrComment].reset()
	return it.deps.Service.SetFinderComment(ctx, it.Path(), comment)
}
