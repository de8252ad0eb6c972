package input

import (
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/item"
	statepkg "github.com/kk-code-lab/katsearch/internal/state"
)

// columnKeys maps the digit row to result columns.
var columnKeys = map[rune]item.Column{
	'1': item.ColumnKind,
	'2': item.ColumnSize,
	'3': item.ColumnDateCreated,
	'4': item.ColumnDateModified,
	'5': item.ColumnDateAccessed,
	'6': item.ColumnUserGroup,
	'7': item.ColumnPermissions,
	'8': item.ColumnUTI,
	'9': item.ColumnMIMEType,
	'0': item.ColumnFileType,
	'-': item.ColumnCreatorType,
}

// ColumnKey returns the key that toggles c.
func ColumnKey(c item.Column) rune {
	for k, col := range columnKeys {
		if col == c {
			return k
		}
	}
	return 0
}

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action
	state      *statepkg.AppState // Reference to current state for mode checking
	recent     func() []catalog.Query
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action) *InputHandler {
	return &InputHandler{
		actionChan: actionChan,
	}
}

// SetState sets the state reference for mode checking
func (ih *InputHandler) SetState(state *statepkg.AppState) {
	ih.state = state
}

// SetRecentSource supplies the recent searches for Ctrl-P / Ctrl-N.
func (ih *InputHandler) SetRecentSource(recent func() []catalog.Query) {
	ih.recent = recent
}

// ProcessEvent converts a tcell event into an Action. It returns false once
// the event asked the application to quit.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.actionChan <- statepkg.ResizeAction{Width: w, Height: h}
		return true
	default:
		return true
	}
}

func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		ih.actionChan <- statepkg.QuitAction{}
		return false
	}
	if ih.state != nil && ih.state.HelpVisible {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.HelpHideAction{}
		case tcell.KeyRune:
			switch ev.Rune() {
			case '?', 'q', 'Q':
				ih.actionChan <- statepkg.HelpHideAction{}
			}
		}
		return true
	}
	if ih.state != nil && ih.state.Editing {
		return ih.processEditingKey(ev)
	}
	return ih.processBrowseKey(ev)
}

func (ih *InputHandler) processEditingKey(ev *tcell.EventKey) bool {
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0
	switch ev.Key() {
	case tcell.KeyEnter:
		ih.actionChan <- statepkg.SubmitQueryAction{}
	case tcell.KeyEscape:
		ih.actionChan <- statepkg.QueryCancelEditAction{}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.actionChan <- statepkg.QueryBackspaceAction{}
	case tcell.KeyCtrlW:
		ih.actionChan <- statepkg.QueryDeleteWordAction{}
	case tcell.KeyCtrlU:
		ih.actionChan <- statepkg.QueryResetAction{}
	case tcell.KeyCtrlA, tcell.KeyHome:
		ih.actionChan <- statepkg.QueryMoveCursorAction{Direction: "home"}
	case tcell.KeyCtrlE, tcell.KeyEnd:
		ih.actionChan <- statepkg.QueryMoveCursorAction{Direction: "end"}
	case tcell.KeyLeft:
		if ctrl {
			ih.actionChan <- statepkg.QueryMoveCursorAction{Direction: "word-left"}
		} else {
			ih.actionChan <- statepkg.QueryMoveCursorAction{Direction: "left"}
		}
	case tcell.KeyRight:
		if ctrl {
			ih.actionChan <- statepkg.QueryMoveCursorAction{Direction: "word-right"}
		} else {
			ih.actionChan <- statepkg.QueryMoveCursorAction{Direction: "right"}
		}
	case tcell.KeyCtrlP, tcell.KeyUp:
		ih.actionChan <- statepkg.QueryRecentAction{Delta: 1, Recent: ih.recentQueries()}
	case tcell.KeyCtrlN, tcell.KeyDown:
		ih.actionChan <- statepkg.QueryRecentAction{Delta: -1, Recent: ih.recentQueries()}
	case tcell.KeyRune:
		ih.actionChan <- statepkg.QueryCharAction{Char: ev.Rune()}
	}
	return true
}

func (ih *InputHandler) processBrowseKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		switch {
		case ih.state != nil && ih.state.InfoVisible:
			ih.actionChan <- statepkg.InfoToggleAction{}
		case ih.state != nil && ih.state.SearchStatus == statepkg.SearchStatusRunning:
			ih.actionChan <- statepkg.CancelSearchAction{}
		}
	case tcell.KeyUp:
		ih.actionChan <- statepkg.NavigateUpAction{}
	case tcell.KeyDown:
		ih.actionChan <- statepkg.NavigateDownAction{}
	case tcell.KeyPgUp:
		ih.actionChan <- statepkg.PageUpAction{}
	case tcell.KeyPgDn:
		ih.actionChan <- statepkg.PageDownAction{}
	case tcell.KeyHome:
		ih.actionChan <- statepkg.HomeAction{}
	case tcell.KeyEnd:
		ih.actionChan <- statepkg.EndAction{}
	case tcell.KeyEnter:
		ih.actionChan <- statepkg.OpenAction{}
	case tcell.KeyDelete:
		ih.actionChan <- statepkg.TrashAction{}
	case tcell.KeyCtrlZ:
		ih.actionChan <- statepkg.SuspendAction{}
	case tcell.KeyCtrlR:
		ih.actionChan <- statepkg.SubmitQueryAction{}
	case tcell.KeyRune:
		return ih.processBrowseRune(ev.Rune())
	}
	return true
}

func (ih *InputHandler) processBrowseRune(r rune) bool {
	if col, ok := columnKeys[r]; ok {
		ih.actionChan <- statepkg.ToggleColumnAction{Column: col}
		return true
	}
	switch r {
	case 'q', 'Q':
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case '/':
		ih.actionChan <- statepkg.QueryStartAction{}
	case '?':
		ih.actionChan <- statepkg.HelpToggleAction{}
	case 'j':
		ih.actionChan <- statepkg.NavigateDownAction{}
	case 'k':
		ih.actionChan <- statepkg.NavigateUpAction{}
	case 'g':
		ih.actionChan <- statepkg.HomeAction{}
	case 'G':
		ih.actionChan <- statepkg.EndAction{}
	case 'o':
		ih.actionChan <- statepkg.OpenAction{}
	case 'r':
		ih.actionChan <- statepkg.RevealAction{}
	case ' ':
		ih.actionChan <- statepkg.QuickLookAction{}
	case 'i':
		ih.actionChan <- statepkg.InfoToggleAction{}
	case 'I':
		ih.actionChan <- statepkg.GetInfoAction{}
	case 'a':
		ih.actionChan <- statepkg.ShowOriginalAction{}
	case 'd':
		ih.actionChan <- statepkg.TrashAction{}
	case 's':
		ih.actionChan <- statepkg.FolderSizeAction{}
	case 'y':
		ih.actionChan <- statepkg.YankPathAction{}
	case 'R':
		ih.actionChan <- statepkg.RefreshItemAction{}
	}
	return true
}

func (ih *InputHandler) recentQueries() []catalog.Query {
	if ih.recent == nil {
		return nil
	}
	return ih.recent()
}
