package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/debuglog"
	"github.com/kk-code-lab/katsearch/internal/format"
	"github.com/kk-code-lab/katsearch/internal/item"
	statepkg "github.com/kk-code-lab/katsearch/internal/state"
)

var commandBuilder = exec.Command

func (app *Application) handleAppAction(action statepkg.Action) bool {
	switch a := action.(type) {
	case statepkg.SubmitQueryAction:
		app.startSearch()
		return true
	case statepkg.CancelSearchAction:
		app.session.CancelActive()
		return true
	case statepkg.SearchResultsAction:
		if app.watcher != nil && a.Token == app.state.SearchToken {
			for _, m := range a.Matches {
				app.watcher.Watch(m.Path)
			}
		}
	case statepkg.SearchDoneAction:
		app.session.End(a.Token)
	case statepkg.ToggleColumnAction:
		app.session.Columns.Toggle(a.Column)
		action = statepkg.SetColumnsAction{Columns: app.session.Columns.VisibleColumns()}
	case statepkg.YankPathAction:
		return app.handleClipboard()
	case statepkg.FolderSizeAction:
		return app.handleFolderSize()
	case statepkg.RefreshItemAction:
		if it := app.state.CurrentItem(); it != nil {
			it.Reload()
			if !it.Exists() {
				action = statepkg.RemoveItemAction{Path: it.Path()}
			}
		}
	case statepkg.OpenAction:
		return app.runItemAction("Open", (*item.Item).Open, nil)
	case statepkg.RevealAction:
		return app.runItemAction("Reveal", (*item.Item).Reveal, nil)
	case statepkg.QuickLookAction:
		return app.runItemAction("Quick Look", (*item.Item).QuickLook, nil)
	case statepkg.GetInfoAction:
		return app.runItemAction("Get Info", (*item.Item).ShowGetInfo, nil)
	case statepkg.ShowOriginalAction:
		return app.runItemAction("Show Original", (*item.Item).ShowOriginal, nil)
	case statepkg.TrashAction:
		return app.runItemAction("Move to Trash", (*item.Item).MoveToTrash, func(it *item.Item) statepkg.Action {
			return statepkg.RemoveItemAction{Path: it.Path()}
		})
	}

	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		app.state.LastError = err
	}
	return true
}

// startSearch runs the query line as a new scan. The previous scan is
// cancelled and its late updates are dropped by token.
func (app *Application) startSearch() {
	q := app.state.BuildQuery()
	app.session.Recent.Record(q)

	token := app.session.Begin(app.searcher.Cancel)
	if app.watcher != nil {
		app.watcher.Reset()
	}
	if _, err := app.reducer.Reduce(app.state, statepkg.SearchStartedAction{Token: token}); err != nil {
		app.state.LastError = err
	}
	app.state.SearchStarted = time.Now()
	debuglog.Logf("app: scan %d started: %s", token, q)

	app.searcher.Start(q, func(u catalog.Update) {
		switch {
		case u.Done:
			app.dispatch(statepkg.SearchDoneAction{Token: token, Summary: u.Summary})
		case u.Skipped != nil:
			app.dispatch(statepkg.SearchSkippedAction{Token: token, Skipped: *u.Skipped})
		case len(u.Matches) > 0:
			app.dispatch(statepkg.SearchResultsAction{Token: token, Matches: u.Matches})
		}
	})
}

// runItemAction performs an OS action on the selected item off the UI
// goroutine; some handlers, like Quick Look, block until their window closes.
func (app *Application) runItemAction(label string, fn func(*item.Item, context.Context) error, onSuccess func(*item.Item) statepkg.Action) bool {
	it := app.state.CurrentItem()
	if it == nil {
		return false
	}
	go func() {
		err := fn(it, context.Background())
		if err != nil {
			debuglog.Logf("app: %s %s: %v", label, it.Path(), err)
			app.dispatch(statepkg.MessageAction{Text: label, Err: describeActionError(err)})
			return
		}
		if onSuccess != nil {
			app.dispatch(onSuccess(it))
			app.dispatch(statepkg.MessageAction{Text: label + ": " + it.Name()})
		}
	}()
	return true
}

func describeActionError(err error) error {
	switch {
	case errors.Is(err, errors.ErrUnsupported):
		return fmt.Errorf("not available on this system")
	case errors.Is(err, item.ErrNotAlias):
		return fmt.Errorf("not an alias or symbolic link")
	default:
		return err
	}
}

func (app *Application) handleFolderSize() bool {
	it := app.state.CurrentItem()
	if it == nil {
		return false
	}
	if !it.IsDirectory() {
		app.state.Message = "Folder size: " + it.Name() + " is not a folder"
		return true
	}
	app.state.Message = "Computing size of " + it.Name() + "…"
	app.state.LastError = nil

	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if app.folderSizeTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, app.folderSizeTimeout)
	}
	go func() {
		defer cancel()
		size, err := it.ComputeFolderSize(ctx)
		if err != nil {
			app.dispatch(statepkg.MessageAction{Text: "Folder size", Err: err})
			return
		}
		app.dispatch(statepkg.MessageAction{Text: folderSizeMessage(it.Name(), size, app.deps.Locale)})
	}()
	return true
}

func folderSizeMessage(name string, size item.FolderSize, locale language.Tag) string {
	msg := fmt.Sprintf("%s: %s in %d files, %d folders", name,
		format.RawSize(uint64(size.Bytes), locale), size.Files, size.Dirs)
	if !size.Complete {
		msg += fmt.Sprintf(" (%d unreadable)", size.Unreadable)
	}
	return msg
}

func (app *Application) handleClipboard() bool {
	it := app.state.CurrentItem()
	if it == nil {
		return false
	}
	if !app.clipboardAvail || len(app.clipboardCmd) == 0 {
		app.state.Message = "No clipboard tool found"
		return true
	}
	p := normalizeClipboardPath(it.Path(), runtime.GOOS)
	cmd := commandBuilder(app.clipboardCmd[0], app.clipboardCmd[1:]...)
	cmd.Stdin = strings.NewReader(p)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		app.state.Message = "Copy path"
		app.state.LastError = fmt.Errorf("%s: %w", app.clipboardCmd[0], err)
		return true
	}
	app.state.LastYankTime = time.Now()
	app.state.Message = "Copied " + p
	app.state.LastError = nil
	return true
}

func normalizeClipboardPath(inputPath string, goos string) string {
	if strings.EqualFold(goos, "windows") {
		cleaned := filepath.Clean(inputPath)
		return strings.ReplaceAll(cleaned, "/", `\`)
	}
	return path.Clean(filepath.ToSlash(inputPath))
}
