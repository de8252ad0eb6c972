package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/katsearch/internal/item"
	statepkg "github.com/kk-code-lab/katsearch/internal/state"
	"github.com/kk-code-lab/katsearch/internal/ui/input"
	textutil "github.com/kk-code-lab/katsearch/internal/textutil"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

func buildHelpOverlayLines(state *statepkg.AppState) []string {
	sections := []helpOverlaySection{
		{
			title: "Query",
			entries: []helpOverlayEntry{
				{keys: "/", desc: "Edit query"},
				{keys: "↵", desc: "Run search"},
				{keys: "^P / ^N", desc: "Previous / next recent search"},
				{keys: "*.ext  a?c", desc: "Wildcard match"},
				{keys: "=name", desc: "Exact name"},
				{keys: "re:expr", desc: "Regular expression"},
				{keys: "Aa", desc: "Uppercase makes the match case-sensitive"},
				{keys: "Esc", desc: "Back to results / stop search"},
			},
		},
		{
			title: "Results",
			entries: []helpOverlayEntry{
				{keys: "↑/↓ j/k", desc: "Move selection"},
				{keys: "PgUp/PgDn", desc: "Page"},
				{keys: "g / G", desc: "First / last"},
				{keys: "i", desc: "Show all attributes"},
				{keys: "s", desc: "Compute folder size"},
				{keys: "R", desc: "Refresh selected item"},
			},
		},
		{
			title: "Actions",
			entries: []helpOverlayEntry{
				{keys: "↵ or o", desc: "Open"},
				{keys: "r", desc: "Reveal in file manager"},
				{keys: "Space", desc: "Quick Look"},
				{keys: "I", desc: "Show system info window"},
				{keys: "a", desc: "Show original of alias or link"},
				{keys: "d or Del", desc: "Move to Trash"},
				{keys: "y", desc: yankDesc(state)},
			},
		},
		{
			title:   "Columns",
			entries: columnEntries(state),
		},
		{
			title: "Exit",
			entries: []helpOverlayEntry{
				{keys: "q", desc: "Quit"},
				{keys: "Ctrl+C", desc: "Quit immediately"},
				{keys: "Ctrl+Z", desc: "Suspend"},
				{keys: "?", desc: "Close this help"},
			},
		},
	}

	lines := make([]string, 0, 48)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, formatHelpOverlayEntry(entry))
		}
	}

	return lines
}

func yankDesc(state *statepkg.AppState) string {
	if state != nil && !state.ClipboardAvailable {
		return "Copy path (no clipboard tool found)"
	}
	return "Copy path to clipboard"
}

func columnEntries(state *statepkg.AppState) []helpOverlayEntry {
	shown := map[item.Column]bool{}
	if state != nil {
		for _, c := range state.Columns {
			shown[c] = true
		}
	}
	entries := make([]helpOverlayEntry, 0, len(item.Columns()))
	for _, c := range item.Columns() {
		mark := "[ ]"
		if shown[c] {
			mark = "[x]"
		}
		entries = append(entries, helpOverlayEntry{
			keys: string(input.ColumnKey(c)),
			desc: mark + " " + c.Title(),
		})
	}
	return entries
}

func formatHelpOverlayEntry(entry helpOverlayEntry) string {
	key := textutil.SanitizeTerminalText(entry.keys)
	desc := textutil.SanitizeTerminalText(entry.desc)
	return fmt.Sprintf("  %-14s %s", key, desc)
}

func (r *Renderer) drawHelpOverlay(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		r.fillLine(0, w, y, baseStyle)
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Bold(true)
	titleStart := 0
	titleWidth := r.measureTextWidth(title)
	if w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	lines := buildHelpOverlayLines(state)
	row := 2
	maxRow := h - 1
	for _, line := range lines {
		if row >= maxRow {
			break
		}
		text := strings.TrimRight(line, " ")
		text = r.truncateTextToWidth(text, w-4)
		r.drawTextLine(2, row, w-4, text, baseStyle)
		row++
	}

	footer := "? toggle · Esc/q close"
	if h > 0 {
		footerText := r.truncateTextToWidth(footer, w)
		r.drawTextLine(0, h-1, w, footerText, headerStyle)
	}
}
