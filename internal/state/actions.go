package state

import (
	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/item"
)

// Action is the base interface for all state mutations
type Action interface{}

// ===== NAVIGATION ACTIONS =====

type NavigateUpAction struct{}
type NavigateDownAction struct{}
type PageUpAction struct{}
type PageDownAction struct{}
type HomeAction struct{}
type EndAction struct{}
type SelectIndexAction struct {
	Index int
}

// ===== QUERY LINE ACTIONS =====

type QueryStartAction struct{}
type QueryCharAction struct {
	Char rune
}
type QueryBackspaceAction struct{}
type QueryDeleteWordAction struct{}
type QueryMoveCursorAction struct {
	Direction string // "left", "right", "word-left", "word-right", "home", "end"
}
type QueryResetAction struct{}
type QueryCancelEditAction struct{}

// QueryRecentAction steps through the recent-searches list.
type QueryRecentAction struct {
	Delta  int
	Recent []catalog.Query
}

// ===== SEARCH ACTIONS =====

// SubmitQueryAction asks the application to start a scan.
type SubmitQueryAction struct{}
type CancelSearchAction struct{}

type SearchStartedAction struct {
	Token int
}
type SearchResultsAction struct {
	Token   int
	Matches []catalog.RawMatch
}
type SearchSkippedAction struct {
	Token   int
	Skipped catalog.SkippedVolume
}
type SearchDoneAction struct {
	Token   int
	Summary catalog.Summary
}

// ===== VIEW ACTIONS =====

type ResizeAction struct {
	Width  int
	Height int
}
type ToggleColumnAction struct {
	Column item.Column
}
type SetColumnsAction struct {
	Columns []item.Column
}
type HelpToggleAction struct{}
type HelpHideAction struct{}
type InfoToggleAction struct{}

// RemoveItemAction drops a result, e.g. after it was moved to the trash.
type RemoveItemAction struct {
	Path string
}

// DirectoryChangedAction reports that the contents of Dir changed on disk.
type DirectoryChangedAction struct {
	Dir string
}
type MessageAction struct {
	Text string
	Err  error
}

// ===== ITEM ACTIONS =====
// Handled by the application, which owns the OS action service.

type OpenAction struct{}
type RevealAction struct{}
type QuickLookAction struct{}
type GetInfoAction struct{}
type ShowOriginalAction struct{}
type TrashAction struct{}
type FolderSizeAction struct{}
type YankPathAction struct{}
type RefreshItemAction struct{}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}
type SuspendAction struct{}
