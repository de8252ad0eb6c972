package render

import (
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	textutil "github.com/kk-code-lab/katsearch/internal/textutil"
)

type highlightSpan struct {
	start int
	end   int
}

func (r *Renderer) cachedRuneWidth(ru rune) int {
	if ru < 128 {
		r.runeWidthCacheMu.RLock()
		width := r.runeWidthCache[ru]
		r.runeWidthCacheMu.RUnlock()

		if width == 0 && ru != 0 {
			actualWidth := runewidth.RuneWidth(ru)
			if actualWidth < 0 {
				actualWidth = 0
			}
			r.runeWidthCacheMu.Lock()
			r.runeWidthCache[ru] = actualWidth + 1
			r.runeWidthCacheMu.Unlock()
			return actualWidth
		}
		return width - 1
	}

	if cached, ok := r.runeWidthWide.Load(ru); ok {
		return cached.(int)
	}

	width := runewidth.RuneWidth(ru)
	if width < 0 {
		width = 0
	}
	r.runeWidthWide.Store(ru, width)
	return width
}

func (r *Renderer) measureTextWidth(text string) int {
	width := 0
	for _, ru := range text {
		width += r.cachedRuneWidth(ru)
	}
	return width
}

func (r *Renderer) truncateTextToWidth(text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if r.measureTextWidth(text) <= maxWidth {
		return text
	}
	if maxWidth <= 1 {
		return textutil.Ellipsis
	}

	available := maxWidth - 1
	var builder strings.Builder
	currentWidth := 0
	for _, ru := range text {
		runeWidth := r.cachedRuneWidth(ru)
		if currentWidth+runeWidth > available {
			break
		}
		builder.WriteRune(ru)
		currentWidth += runeWidth
	}
	builder.WriteString(textutil.Ellipsis)
	return builder.String()
}

// padLeft right-aligns text in a cell of width columns.
func (r *Renderer) padLeft(text string, width int) string {
	text = r.truncateTextToWidth(text, width)
	if gap := width - r.measureTextWidth(text); gap > 0 {
		return strings.Repeat(" ", gap) + text
	}
	return text
}

func (r *Renderer) drawTextLine(startX, y, maxWidth int, text string, style tcell.Style) int {
	x := startX
	runes := []rune(text)
	i := 0

	for i < len(runes) {
		if x-startX >= maxWidth {
			break
		}

		mainc := runes[i]
		i++

		var combc []rune
		for i < len(runes) && r.cachedRuneWidth(runes[i]) == 0 && unicode.Is(unicode.Mn, runes[i]) {
			combc = append(combc, runes[i])
			i++
		}

		r.screen.SetContent(x, y, mainc, combc, style)

		w := r.cachedRuneWidth(mainc)
		if w < 1 {
			w = 1
		}
		x += w
	}

	return x
}

func (r *Renderer) fillLine(startX, endX, y int, style tcell.Style) {
	for x := startX; x < endX; x++ {
		r.screen.SetContent(x, y, ' ', nil, style)
	}
}

func (r *Renderer) drawStyledRune(x, y, maxX int, ru rune, style tcell.Style) int {
	if x >= maxX {
		return x
	}

	width := r.cachedRuneWidth(ru)
	if width <= 0 {
		width = 1
	}

	r.screen.SetContent(x, y, ru, nil, style)
	for w := 1; w < width && x+w < maxX; w++ {
		r.screen.SetContent(x+w, y, ' ', nil, style)
	}
	return x + width
}

func (r *Renderer) drawHighlightedText(startX, y, maxX int, text string, spans []highlightSpan, baseStyle, highlightStyle tcell.Style) int {
	x := startX
	spanIdx := 0
	for idx, ru := range []rune(text) {
		if x >= maxX {
			break
		}
		for spanIdx < len(spans) && idx >= spans[spanIdx].end {
			spanIdx++
		}
		style := baseStyle
		if spanIdx < len(spans) && idx >= spans[spanIdx].start {
			style = highlightStyle
		}
		x = r.drawStyledRune(x, y, maxX, ru, style)
	}
	return x
}

// substringSpans locates the first occurrence of query in text, in runes.
func substringSpans(query, text string, caseSensitive bool) []highlightSpan {
	if query == "" || text == "" {
		return nil
	}
	pattern := []rune(query)
	target := []rune(text)
	if !caseSensitive {
		pattern = []rune(strings.ToLower(query))
		target = []rune(strings.ToLower(text))
		if len(target) != len([]rune(text)) {
			return nil
		}
	}
	for i := 0; i+len(pattern) <= len(target); i++ {
		match := true
		for j := range pattern {
			if target[i+j] != pattern[j] {
				match = false
				break
			}
		}
		if match {
			return []highlightSpan{{start: i, end: i + len(pattern)}}
		}
	}
	return nil
}
