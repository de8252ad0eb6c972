package textutil

import "strings"

// invisibleRunes are bidi controls and zero-width characters. In a file name
// they can disguise the real extension, e.g. "invoice\u202efdp.exe".
var invisibleRunes = map[rune]string{
	0x00AD: "⟪SHY⟫",
	0x061C: "⟪ALM⟫",
	0x180E: "⟪MVS⟫",
	0x200B: "⟪ZWSP⟫",
	0x200C: "⟪ZWNJ⟫",
	0x200D: "⟪ZWJ⟫",
	0x200E: "⟪LRM⟫",
	0x200F: "⟪RLM⟫",
	0x2028: "⟪LSEP⟫",
	0x2029: "⟪PSEP⟫",
	0x202A: "⟪LRE⟫",
	0x202B: "⟪RLE⟫",
	0x202C: "⟪PDF⟫",
	0x202D: "⟪LRO⟫",
	0x202E: "⟪RLO⟫",
	0x2060: "⟪WJ⟫",
	0x2066: "⟪LRI⟫",
	0x2067: "⟪RLI⟫",
	0x2068: "⟪FSI⟫",
	0x2069: "⟪PDI⟫",
	0x206A: "⟪ISS⟫",
	0x206B: "⟪ASS⟫",
	0x206C: "⟪IAFS⟫",
	0x206D: "⟪AAFS⟫",
	0x206E: "⟪NADS⟫",
	0x206F: "⟪NODS⟫",
	0xFEFF: "⟪BOM⟫",
}

func isInvisible(r rune) bool {
	_, ok := invisibleRunes[r]
	return ok
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// SanitizeTerminalText makes text safe to draw on one terminal line. Tabs and
// line breaks become spaces, other control characters become '?', and
// invisible runes are replaced by a visible label.
func SanitizeTerminalText(text string) string {
	if strings.IndexFunc(text, func(r rune) bool {
		return (isControl(r) && r != '\t') || isInvisible(r)
	}) < 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for _, r := range text {
		if label, ok := invisibleRunes[r]; ok {
			b.WriteString(label)
			continue
		}
		switch {
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case isControl(r):
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HasInvisibleRunes reports whether name contains characters that render as
// nothing, so what is shown may differ from what is opened.
func HasInvisibleRunes(name string) bool {
	return strings.IndexFunc(name, isInvisible) >= 0
}
