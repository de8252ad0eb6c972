package render

import (
	"strings"

	statepkg "github.com/kk-code-lab/katsearch/internal/state"
)

// buildFooterHelpText returns the contextual footer hint string with leading/trailing padding.
func buildFooterHelpText(state *statepkg.AppState) string {
	parts := buildFooterHelpSegments(state)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, "  ") + " "
}

// buildFooterHelpSegments assembles context-aware help hints for the footer.
func buildFooterHelpSegments(state *statepkg.AppState) []string {
	if state == nil {
		return nil
	}

	switch {
	case state.Editing:
		return []string{
			"↵: search",
			"Esc: results",
			"^P/^N: recent",
		}
	case state.InfoVisible:
		return []string{
			"i/Esc: close",
			"s: folder size",
			"?: help",
		}
	}

	segments := []string{"↵: open", "r: reveal", "/: edit"}
	if state.SearchStatus == statepkg.SearchStatusRunning {
		segments = append(segments, "Esc: stop")
	}
	if state.ClipboardAvailable {
		segments = append(segments, "y: yank")
	}
	return append(segments, "?: help", "q: quit")
}
