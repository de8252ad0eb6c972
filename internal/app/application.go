// Package app runs the interactive result browser: it wires the catalog
// searcher, the session and the OS action service to the tcell UI.
package app

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/debuglog"
	"github.com/kk-code-lab/katsearch/internal/item"
	"github.com/kk-code-lab/katsearch/internal/osaction"
	"github.com/kk-code-lab/katsearch/internal/session"
	statepkg "github.com/kk-code-lab/katsearch/internal/state"
	inputui "github.com/kk-code-lab/katsearch/internal/ui/input"
	renderui "github.com/kk-code-lab/katsearch/internal/ui/render"
)

// Options configures the browser.
type Options struct {
	// Query holds the initial pattern and the filters given on the command line.
	Query    catalog.Query
	Searcher *catalog.Searcher
	Session  *session.Session
	Deps     item.Deps
	// FolderSizeTimeout bounds one folder-size walk; zero means no bound.
	FolderSizeTimeout time.Duration
	// StartSearch runs Query immediately instead of opening the query line.
	StartSearch bool
	// Columns overrides the saved column visibility for this run only.
	Columns []item.Column
}

// Application represents the running app.
type Application struct {
	screen     tcell.Screen
	state      *statepkg.AppState
	reducer    *statepkg.StateReducer
	renderer   *renderui.Renderer
	input      *inputui.InputHandler
	actionCh   chan statepkg.Action
	shouldQuit bool

	searcher          *catalog.Searcher
	session           *session.Session
	deps              item.Deps
	folderSizeTimeout time.Duration

	clipboardCmd   []string
	clipboardAvail bool
	// watcher refreshes results whose directory changes; nil when the
	// platform offers no notifications.
	watcher *dirWatcher

	lastClickKey  string
	lastClickTime time.Time
}

// NewApplication opens the terminal and prepares the browser.
func NewApplication(opts Options) (*Application, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	// Parse mouse sequences so modified clicks don't leak as key events.
	screen.EnableMouse()

	clipboardCmd, clipboardAvail := detectClipboard()
	app := newApplication(screen, opts)
	app.clipboardCmd = clipboardCmd
	app.clipboardAvail = clipboardAvail
	app.state.ClipboardAvailable = clipboardAvail
	if watcher, err := newDirWatcher(func(dir string) {
		app.dispatch(statepkg.DirectoryChangedAction{Dir: dir})
	}); err != nil {
		debuglog.Logf("app: no directory watcher: %v", err)
	} else {
		app.watcher = watcher
	}
	return app, nil
}

func newApplication(screen tcell.Screen, opts Options) *Application {
	if opts.Session == nil {
		opts.Session = session.New()
	}
	deps := opts.Deps.WithDefaults()
	if opts.Searcher == nil {
		opts.Searcher = catalog.NewSearcher(catalog.NewEngine(catalog.Options{Identifier: deps.Identifier}))
	}

	columns := opts.Columns
	if columns == nil {
		columns = opts.Session.Columns.VisibleColumns()
	}
	state := statepkg.NewAppState(opts.Query, columns)
	w, h := screen.Size()
	state.ScreenWidth = w
	state.ScreenHeight = h

	actionCh := make(chan statepkg.Action, 64)
	inputHandler := inputui.NewInputHandler(actionCh)
	inputHandler.SetState(state)
	inputHandler.SetRecentSource(opts.Session.Recent.All)

	app := &Application{
		screen:            screen,
		state:             state,
		reducer:           statepkg.NewStateReducer(deps),
		renderer:          renderui.NewRenderer(screen),
		input:             inputHandler,
		actionCh:          actionCh,
		searcher:          opts.Searcher,
		session:           opts.Session,
		deps:              deps,
		folderSizeTimeout: opts.FolderSizeTimeout,
	}

	if desktop, ok := deps.Service.(*osaction.Desktop); ok {
		desktop.OnChanged(func(dir string) {
			app.dispatch(statepkg.DirectoryChangedAction{Dir: dir})
		})
	}
	if opts.StartSearch {
		app.startSearch()
	}
	return app
}

// dispatch queues an action from any goroutine without blocking the caller.
func (app *Application) dispatch(action statepkg.Action) {
	select {
	case app.actionCh <- action:
	default:
		go func() { app.actionCh <- action }()
	}
}

// Close cancels the running scan, saves the session and restores the
// terminal.
func (app *Application) Close() error {
	app.searcher.Cancel()
	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	err := app.session.Close()
	app.screen.Fini()
	return err
}
