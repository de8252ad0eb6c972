package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeTerminalText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "safe-file.txt", "safe-file.txt"},
		{"tab kept", "a\tb", "a\tb"},
		{"escape sequence", "bad\x1b[31m\npath", "bad?[31m path"},
		{"delete", "x\x7fy", "x?y"},
		{"spoofed extension", "invoice\u202efdp.exe", "invoice⟪RLO⟫fdp.exe"},
		{"zero width", "re\u200bport", "re⟪ZWSP⟫port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTerminalText(tt.in); got != tt.want {
				t.Fatalf("SanitizeTerminalText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeTerminalTextMixedLineBreaks(t *testing.T) {
	got := SanitizeTerminalText("a\r\nb\tc\x00")
	if strings.ContainsAny(got, "\r\n\x00") {
		t.Fatalf("control characters left in %q", got)
	}
}

func TestHasInvisibleRunes(t *testing.T) {
	if HasInvisibleRunes("plain.txt") {
		t.Fatalf("plain name flagged")
	}
	if !HasInvisibleRunes("photo\u2067gpj.exe") {
		t.Fatalf("isolate rune not detected")
	}
	if HasInvisibleRunes("tab\there") {
		t.Fatalf("tab is not invisible")
	}
}
