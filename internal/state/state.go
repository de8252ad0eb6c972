// Package state holds the result browser's state and the reducer that
// applies actions to it.
package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/item"
)

type SearchStatus int

const (
	SearchStatusIdle SearchStatus = iota
	SearchStatusRunning
	SearchStatusComplete
	SearchStatusCancelled
	SearchStatusFailed
)

func (s SearchStatus) String() string {
	switch s {
	case SearchStatusRunning:
		return "searching"
	case SearchStatusComplete:
		return "done"
	case SearchStatusCancelled:
		return "cancelled"
	case SearchStatusFailed:
		return "failed"
	default:
		return ""
	}
}

// AppState is the single source of truth of the browser.
type AppState struct {
	// BaseQuery carries the filters given on the command line; the editable
	// query line only replaces its name pattern.
	BaseQuery catalog.Query

	// Query line
	Editing     bool
	QueryText   string
	QueryCursor int
	recentIndex int

	// Scan
	SearchToken   int
	SearchStatus  SearchStatus
	SearchStarted time.Time
	Summary       catalog.Summary
	Skipped       []catalog.SkippedVolume

	// Results
	Results       []*item.Item
	SelectedIndex int
	ScrollOffset  int
	Columns       []item.Column

	// Overlays
	HelpVisible bool
	InfoVisible bool

	ScreenWidth  int
	ScreenHeight int

	Message   string
	LastError error
	// ClipboardAvailable is set when a clipboard tool was found.
	ClipboardAvailable bool
	// LastYankTime drives the short highlight after copying a path.
	LastYankTime time.Time
}

// NewAppState starts with the query line open for editing.
func NewAppState(base catalog.Query, columns []item.Column) *AppState {
	return &AppState{
		BaseQuery:   base,
		Editing:     true,
		QueryText:   base.Name.Text,
		QueryCursor: len([]rune(base.Name.Text)),
		Columns:     columns,
		recentIndex: -1,
	}
}

// CurrentItem is the selected result, or nil.
func (s *AppState) CurrentItem() *item.Item {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Results) {
		return nil
	}
	return s.Results[s.SelectedIndex]
}

// BuildQuery combines the base filters with the query line. Prefixes select
// the match mode: "=" exact, "re:" regex; glob metacharacters imply a
// wildcard. Any uppercase letter makes the match case-sensitive.
func (s *AppState) BuildQuery() catalog.Query {
	q := s.BaseQuery
	text := strings.TrimSpace(s.QueryText)
	mode := catalog.InferMatchMode(text)
	switch {
	case strings.HasPrefix(text, "re:"):
		text, mode = strings.TrimPrefix(text, "re:"), catalog.MatchRegex
	case strings.HasPrefix(text, "="):
		text, mode = strings.TrimPrefix(text, "="), catalog.MatchExact
	}
	if s.BaseQuery.Name.Text == s.QueryText && s.BaseQuery.Name.Mode != catalog.MatchSubstring {
		mode = s.BaseQuery.Name.Mode
	}
	q.Name = catalog.NamePattern{
		Text:          text,
		Mode:          mode,
		CaseSensitive: s.BaseQuery.Name.CaseSensitive || queryHasUppercase(text),
	}
	return q
}

// VisibleRows is the number of result rows that fit between the header
// lines and the status line.
func (s *AppState) VisibleRows() int {
	rows := s.ScreenHeight - 3
	if rows < 1 {
		rows = 1
	}
	return rows
}

// StatusLabel summarises the scan for the status line.
func (s *AppState) StatusLabel() string {
	switch s.SearchStatus {
	case SearchStatusRunning:
		return fmt.Sprintf("Searching… %d found", len(s.Results))
	case SearchStatusComplete, SearchStatusCancelled:
		label := fmt.Sprintf("%d found, %d scanned in %s", len(s.Results), s.Summary.Scanned,
			s.Summary.Duration.Round(time.Millisecond))
		if s.SearchStatus == SearchStatusCancelled {
			label = "Cancelled: " + label
		}
		if n := len(s.Skipped); n > 0 {
			label += fmt.Sprintf(", %d skipped", n)
		}
		return label
	case SearchStatusFailed:
		if s.Summary.Err != nil {
			return "Search failed: " + s.Summary.Err.Error()
		}
		return "Search failed"
	default:
		return ""
	}
}

func (s *AppState) updateScrollVisibility() {
	visible := s.VisibleRows()
	if s.SelectedIndex < s.ScrollOffset {
		s.ScrollOffset = s.SelectedIndex
	} else if s.SelectedIndex >= s.ScrollOffset+visible {
		s.ScrollOffset = s.SelectedIndex - visible + 1
	}

	maxOffset := len(s.Results) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.ScrollOffset > maxOffset {
		s.ScrollOffset = maxOffset
	}
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}

func (s *AppState) clampSelection() {
	if s.SelectedIndex >= len(s.Results) {
		s.SelectedIndex = len(s.Results) - 1
	}
	if s.SelectedIndex < 0 {
		s.SelectedIndex = 0
	}
	s.updateScrollVisibility()
}
