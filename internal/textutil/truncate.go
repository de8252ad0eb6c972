package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const Ellipsis = "…"

// DefaultTabWidth is the tab stop used when expanding comments and kinds.
const DefaultTabWidth = 4

// DisplayWidth is the number of terminal columns text occupies. Runes
// without a width count as one column.
func DisplayWidth(text string) int {
	width := 0
	for _, ru := range text {
		width += runeColumns(ru)
	}
	return width
}

// ExpandTabs replaces tabs with spaces up to the next tab stop.
func ExpandTabs(text string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(text, '\t') {
		return text
	}
	var b strings.Builder
	column := 0
	for _, ru := range text {
		if ru != '\t' {
			b.WriteRune(ru)
			column += runeColumns(ru)
			continue
		}
		pad := tabWidth - column%tabWidth
		b.WriteString(strings.Repeat(" ", pad))
		column += pad
	}
	return b.String()
}

func runeColumns(ru rune) int {
	if w := runewidth.RuneWidth(ru); w > 0 {
		return w
	}
	return 1
}

// TruncateEnd shortens text to width columns, ending it with an ellipsis.
func TruncateEnd(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(text) <= width {
		return text
	}
	if width <= 1 {
		return Ellipsis
	}
	head := takeWidth([]rune(text), width-1)
	return string(head) + Ellipsis
}

// TruncateMiddle shortens text to width columns by replacing its middle with
// an ellipsis, keeping both the start and the extension visible.
func TruncateMiddle(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(text) <= width {
		return text
	}
	if width <= 1 {
		return Ellipsis
	}
	budget := width - 1
	tailBudget := budget / 2
	headBudget := budget - tailBudget

	runes := []rune(text)
	head := takeWidth(runes, headBudget)

	reversed := make([]rune, len(runes))
	for i, ru := range runes {
		reversed[len(runes)-1-i] = ru
	}
	tail := takeWidth(reversed, tailBudget)

	var builder strings.Builder
	builder.WriteString(string(head))
	builder.WriteString(Ellipsis)
	for i := len(tail) - 1; i >= 0; i-- {
		builder.WriteRune(tail[i])
	}
	return builder.String()
}

// PadRight pads text with spaces to exactly width columns, truncating first
// when it is too wide.
func PadRight(text string, width int) string {
	text = TruncateEnd(text, width)
	if gap := width - DisplayWidth(text); gap > 0 {
		return text + strings.Repeat(" ", gap)
	}
	return text
}

func takeWidth(runes []rune, budget int) []rune {
	current := 0
	for i, ru := range runes {
		w := runeColumns(ru)
		if current+w > budget {
			return runes[:i]
		}
		current += w
	}
	return runes
}
