package state

import (
	"path/filepath"
	"unicode"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/debuglog"
	"github.com/kk-code-lab/katsearch/internal/item"
)

// StateReducer applies actions to an AppState. Results are wrapped into
// items with the reducer's dependencies.
type StateReducer struct {
	deps item.Deps
}

// NewStateReducer creates a new reducer
func NewStateReducer(deps item.Deps) *StateReducer {
	return &StateReducer{deps: deps.WithDefaults()}
}

// Reduce mutates state in place and returns it.
func (r *StateReducer) Reduce(state *AppState, action Action) (*AppState, error) {
	switch a := action.(type) {

	// ===== NAVIGATION =====

	case NavigateDownAction:
		if state.SelectedIndex < len(state.Results)-1 {
			state.SelectedIndex++
			state.updateScrollVisibility()
		}
		return state, nil

	case NavigateUpAction:
		if state.SelectedIndex > 0 {
			state.SelectedIndex--
			state.updateScrollVisibility()
		}
		return state, nil

	case PageDownAction:
		state.SelectedIndex += state.VisibleRows()
		state.clampSelection()
		return state, nil

	case PageUpAction:
		state.SelectedIndex -= state.VisibleRows()
		state.clampSelection()
		return state, nil

	case HomeAction:
		state.SelectedIndex = 0
		state.clampSelection()
		return state, nil

	case EndAction:
		state.SelectedIndex = len(state.Results) - 1
		state.clampSelection()
		return state, nil

	case SelectIndexAction:
		if a.Index >= 0 && a.Index < len(state.Results) {
			state.SelectedIndex = a.Index
			state.updateScrollVisibility()
		}
		return state, nil

	// ===== QUERY LINE =====

	case QueryStartAction:
		state.Editing = true
		state.QueryCursor = len([]rune(state.QueryText))
		return state, nil

	case QueryCancelEditAction:
		state.Editing = false
		return state, nil

	case QueryCharAction:
		if !state.Editing {
			return state, nil
		}
		runes := []rune(state.QueryText)
		cursor := clampCursor(state.QueryCursor, len(runes))
		buffer := make([]rune, 0, len(runes)+1)
		buffer = append(buffer, runes[:cursor]...)
		buffer = append(buffer, a.Char)
		buffer = append(buffer, runes[cursor:]...)
		state.QueryText = string(buffer)
		state.QueryCursor = cursor + 1
		state.recentIndex = -1
		return state, nil

	case QueryBackspaceAction:
		if !state.Editing {
			return state, nil
		}
		runes := []rune(state.QueryText)
		cursor := clampCursor(state.QueryCursor, len(runes))
		if cursor == 0 {
			return state, nil
		}
		buffer := append([]rune{}, runes[:cursor-1]...)
		buffer = append(buffer, runes[cursor:]...)
		state.QueryText = string(buffer)
		state.QueryCursor = cursor - 1
		return state, nil

	case QueryDeleteWordAction:
		if !state.Editing {
			return state, nil
		}
		runes := []rune(state.QueryText)
		cursor := clampCursor(state.QueryCursor, len(runes))
		start := previousWordBoundary(runes, cursor)
		buffer := append([]rune{}, runes[:start]...)
		buffer = append(buffer, runes[cursor:]...)
		state.QueryText = string(buffer)
		state.QueryCursor = start
		return state, nil

	case QueryMoveCursorAction:
		runes := []rune(state.QueryText)
		switch a.Direction {
		case "left":
			if state.QueryCursor > 0 {
				state.QueryCursor--
			}
		case "right":
			if state.QueryCursor < len(runes) {
				state.QueryCursor++
			}
		case "word-left":
			state.QueryCursor = previousWordBoundary(runes, state.QueryCursor)
		case "word-right":
			state.QueryCursor = nextWordBoundary(runes, state.QueryCursor)
		case "home":
			state.QueryCursor = 0
		case "end":
			state.QueryCursor = len(runes)
		}
		return state, nil

	case QueryResetAction:
		state.QueryText = ""
		state.QueryCursor = 0
		state.recentIndex = -1
		return state, nil

	case QueryRecentAction:
		if len(a.Recent) == 0 {
			return state, nil
		}
		idx := state.recentIndex + a.Delta
		if idx < 0 {
			idx = 0
		}
		if idx > len(a.Recent)-1 {
			idx = len(a.Recent) - 1
		}
		state.recentIndex = idx
		state.BaseQuery = a.Recent[idx]
		state.QueryText = a.Recent[idx].Name.Text
		state.QueryCursor = len([]rune(state.QueryText))
		state.Editing = true
		return state, nil

	// ===== SEARCH =====

	case SearchStartedAction:
		state.SearchToken = a.Token
		state.SearchStatus = SearchStatusRunning
		state.Summary = catalog.Summary{}
		state.Skipped = nil
		state.Results = nil
		state.SelectedIndex = 0
		state.ScrollOffset = 0
		state.Editing = false
		state.Message = ""
		state.LastError = nil
		state.InfoVisible = false
		return state, nil

	case SearchResultsAction:
		if a.Token != state.SearchToken {
			debuglog.Logf("state: dropping %d matches from stale scan %d", len(a.Matches), a.Token)
			return state, nil
		}
		for _, m := range a.Matches {
			state.Results = append(state.Results, item.FromMatch(m, r.deps))
		}
		return state, nil

	case SearchSkippedAction:
		if a.Token == state.SearchToken {
			state.Skipped = append(state.Skipped, a.Skipped)
		}
		return state, nil

	case SearchDoneAction:
		if a.Token != state.SearchToken {
			return state, nil
		}
		state.Summary = a.Summary
		switch a.Summary.Outcome {
		case catalog.OutcomeCancelled:
			state.SearchStatus = SearchStatusCancelled
		case catalog.OutcomeFailed:
			state.SearchStatus = SearchStatusFailed
			state.LastError = a.Summary.Err
		default:
			state.SearchStatus = SearchStatusComplete
		}
		return state, nil

	// ===== VIEW =====

	case ResizeAction:
		state.ScreenWidth = a.Width
		state.ScreenHeight = a.Height
		state.updateScrollVisibility()
		return state, nil

	case SetColumnsAction:
		state.Columns = append([]item.Column(nil), a.Columns...)
		return state, nil

	case HelpToggleAction:
		state.HelpVisible = !state.HelpVisible
		return state, nil

	case HelpHideAction:
		state.HelpVisible = false
		return state, nil

	case InfoToggleAction:
		state.InfoVisible = !state.InfoVisible && state.CurrentItem() != nil
		return state, nil

	case RemoveItemAction:
		for i, it := range state.Results {
			if it.Path() == a.Path {
				state.Results = append(state.Results[:i], state.Results[i+1:]...)
				break
			}
		}
		state.clampSelection()
		return state, nil

	case DirectoryChangedAction:
		kept := state.Results[:0]
		for _, it := range state.Results {
			if filepath.Dir(it.Path()) == filepath.Clean(a.Dir) {
				it.Reload()
				if !it.Exists() {
					continue
				}
			}
			kept = append(kept, it)
		}
		state.Results = kept
		state.clampSelection()
		return state, nil

	case MessageAction:
		state.Message = a.Text
		state.LastError = a.Err
		return state, nil
	}

	return state, nil
}

func clampCursor(cursor, length int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > length {
		return length
	}
	return cursor
}

func queryHasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func isSearchWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func previousWordBoundary(runes []rune, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}

	i := pos - 1
	for i >= 0 && !isSearchWordChar(runes[i]) {
		i--
	}
	for i >= 0 && isSearchWordChar(runes[i]) {
		i--
	}
	return i + 1
}

func nextWordBoundary(runes []rune, pos int) int {
	if pos >= len(runes) {
		return len(runes)
	}
	if pos < 0 {
		pos = 0
	}

	i := pos
	for i < len(runes) && !isSearchWordChar(runes[i]) {
		i++
	}
	for i < len(runes) && isSearchWordChar(runes[i]) {
		i++
	}
	return i
}
