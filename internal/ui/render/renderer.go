package render

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/item"
	statepkg "github.com/kk-code-lab/katsearch/internal/state"
	textutil "github.com/kk-code-lab/katsearch/internal/textutil"
)

const (
	minNameWidth = 16
	columnGap    = 2
	queryPrompt  = "Find: "
)

var columnWidths = map[item.Column]int{
	item.ColumnKind:         18,
	item.ColumnSize:         10,
	item.ColumnDateCreated:  24,
	item.ColumnDateModified: 24,
	item.ColumnDateAccessed: 24,
	item.ColumnUserGroup:    16,
	item.ColumnPermissions:  11,
	item.ColumnUTI:          28,
	item.ColumnMIMEType:     24,
	item.ColumnFileType:     9,
	item.ColumnCreatorType:  9,
}

// Renderer handles all UI rendering
type Renderer struct {
	screen           tcell.Screen
	theme            ColorTheme
	runeWidthCache   [128]int // ASCII cache (0-127)
	runeWidthCacheMu sync.RWMutex
	runeWidthWide    sync.Map // For non-ASCII runes
	ctx              context.Context
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
		ctx:    context.Background(),
	}
}

// Render draws the entire UI based on state
func (r *Renderer) Render(state *statepkg.AppState) {
	r.screen.Clear()
	w, h := r.screen.Size()

	if state.HelpVisible {
		r.screen.HideCursor()
		r.drawHelpOverlay(state, w, h)
		r.screen.Show()
		return
	}

	r.drawHeader(state, w)
	columns := fitColumns(state.Columns, w)
	r.drawColumnTitles(columns, w)
	if state.InfoVisible {
		r.drawInfoPanel(state, w, h)
	} else {
		r.drawResults(state, columns, w, h)
	}
	r.drawStatusLine(state, w, h)
	r.screen.Show()
}

// fitColumns keeps as many leading columns as fit next to the name.
func fitColumns(columns []item.Column, w int) []item.Column {
	used := minNameWidth
	fitted := make([]item.Column, 0, len(columns))
	for _, c := range columns {
		need := columnWidths[c] + columnGap
		if used+need > w {
			break
		}
		used += need
		fitted = append(fitted, c)
	}
	return fitted
}

func nameWidth(columns []item.Column, w int) int {
	width := w
	for _, c := range columns {
		width -= columnWidths[c] + columnGap
	}
	if width < 1 {
		width = 1
	}
	return width
}

// drawHeader renders the query line; the terminal cursor marks the edit
// position while editing.
func (r *Renderer) drawHeader(state *statepkg.AppState, w int) {
	headerStyle := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)
	promptStyle := headerStyle.Bold(true)

	x := r.drawTextLine(0, 0, w, queryPrompt, promptStyle)
	query := textutil.SanitizeTerminalText(state.QueryText)
	queryStart := x
	x = r.drawTextLine(x, 0, w-x, query, headerStyle)

	hint := modeHint(state.BuildQuery())
	hintWidth := r.measureTextWidth(hint)
	if hintX := w - hintWidth; hintX > x+1 {
		r.fillLine(x, hintX, 0, headerStyle)
		x = r.drawTextLine(hintX, 0, hintWidth, hint, headerStyle.Foreground(r.theme.ColumnTitleFg))
	}
	r.fillLine(x, w, 0, headerStyle)

	if state.Editing {
		cursor := []rune(query)
		pos := state.QueryCursor
		if pos > len(cursor) {
			pos = len(cursor)
		}
		if pos < 0 {
			pos = 0
		}
		r.screen.ShowCursor(queryStart+r.measureTextWidth(string(cursor[:pos])), 0)
	} else {
		r.screen.HideCursor()
	}
}

func modeHint(q catalog.Query) string {
	hint := q.Name.Mode.String()
	if q.Name.CaseSensitive {
		hint += ", case-sensitive"
	}
	if len(q.Roots) > 0 {
		hint = "in " + q.Roots[0] + " · " + hint
	}
	return " " + hint + " "
}

func (r *Renderer) drawColumnTitles(columns []item.Column, w int) {
	style := tcell.StyleDefault.Foreground(r.theme.ColumnTitleFg).Bold(true)
	nw := nameWidth(columns, w)
	x := r.drawTextLine(0, 1, nw, textutil.PadRight("Name", nw), style)
	for _, c := range columns {
		x = r.drawTextLine(x, 1, columnGap, "  ", style)
		title := textutil.PadRight(r.truncateTextToWidth(c.Title(), columnWidths[c]), columnWidths[c])
		if c == item.ColumnSize {
			title = r.padLeft(c.Title(), columnWidths[c])
		}
		x = r.drawTextLine(x, 1, columnWidths[c], title, style)
	}
	r.fillLine(x, w, 1, style)
}

func (r *Renderer) drawResults(state *statepkg.AppState, columns []item.Column, w, h int) {
	rows := state.VisibleRows()
	nw := nameWidth(columns, w)
	query := state.BuildQuery()

	if len(state.Results) == 0 {
		if state.SearchStatus == statepkg.SearchStatusComplete {
			style := tcell.StyleDefault.Foreground(r.theme.UnknownFg)
			r.drawTextLine(1, 2, w-1, "No matches", style)
		}
		return
	}

	for row := 0; row < rows; row++ {
		idx := state.ScrollOffset + row
		if idx >= len(state.Results) || 2+row >= h-1 {
			break
		}
		it := state.Results[idx]
		selected := idx == state.SelectedIndex
		r.drawResultRow(it, query, columns, nw, 2+row, w, selected)
	}
}

func (r *Renderer) nameStyle(it *item.Item) tcell.Style {
	style := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	switch {
	case it.IsPackage():
		style = style.Foreground(r.theme.PackageFg)
	case it.IsDirectory():
		style = style.Foreground(r.theme.DirectoryFg).Bold(true)
	case it.IsSymlink():
		style = style.Foreground(r.theme.SymlinkFg)
	case it.IsHidden():
		style = style.Foreground(r.theme.HiddenFg)
	}
	return style
}

func (r *Renderer) drawResultRow(it *item.Item, query catalog.Query, columns []item.Column, nw, y, w int, selected bool) {
	rowStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	nameStyle := r.nameStyle(it)
	if selected {
		rowStyle = rowStyle.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
		nameStyle = nameStyle.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
	}
	matchStyle := nameStyle.Foreground(r.theme.MatchFg).Bold(true)
	if selected {
		matchStyle = nameStyle.Underline(true)
	}

	name := it.TruncatedName(nw - 1)
	var spans []highlightSpan
	switch query.Name.Mode {
	case catalog.MatchSubstring, catalog.MatchExact:
		spans = substringSpans(query.Name.Text, name, query.Name.CaseSensitive)
	}
	x := r.drawHighlightedText(0, y, nw, name, spans, nameStyle, matchStyle)
	r.fillLine(x, nw, y, rowStyle)
	x = nw

	for _, c := range columns {
		width := columnWidths[c]
		r.fillLine(x, x+columnGap, y, rowStyle)
		x += columnGap

		value := it.ColumnValue(r.ctx, c)
		cellStyle := rowStyle
		if value == "?" && !selected {
			cellStyle = cellStyle.Foreground(r.theme.UnknownFg)
		}
		if c == item.ColumnSize {
			value = r.padLeft(value, width)
		} else {
			value = textutil.PadRight(r.truncateTextToWidth(value, width), width)
		}
		r.drawTextLine(x, y, width, value, cellStyle)
		x += width
	}
	r.fillLine(x, w, y, rowStyle)
}

// drawStatusLine renders the scan status, or the last message, with key
// hints on the right.
func (r *Renderer) drawStatusLine(state *statepkg.AppState, w, h int) {
	y := h - 1
	if y < 2 {
		return
	}
	normalStyle := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	flashStyle := tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)

	leftStyle := normalStyle
	left := state.StatusLabel()
	switch {
	case state.LastError != nil:
		left = state.LastError.Error()
		if state.Message != "" {
			left = state.Message + ": " + left
		}
		leftStyle = normalStyle.Foreground(r.theme.ErrorFg)
	case state.Message != "":
		left = state.Message
	}
	if !state.LastYankTime.IsZero() && time.Since(state.LastYankTime) < 100*time.Millisecond {
		leftStyle = flashStyle
	}
	left = " " + textutil.SanitizeTerminalText(left)

	help := buildFooterHelpText(state)
	helpWidth := r.measureTextWidth(help)
	leftWidth := w
	if helpWidth < w/2 {
		leftWidth = w - helpWidth
	}

	left = r.truncateTextToWidth(left, leftWidth)
	x := r.drawTextLine(0, y, leftWidth, left, leftStyle)
	r.fillLine(x, leftWidth, y, normalStyle)
	if leftWidth < w {
		r.drawTextLine(leftWidth, y, w-leftWidth, help, normalStyle.Foreground(r.theme.ColumnTitleFg))
	}
}
