package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/format"
	"github.com/kk-code-lab/katsearch/internal/item"
	statepkg "github.com/kk-code-lab/katsearch/internal/state"
)

func TestTruncateTextToWidth(t *testing.T) {
	r := NewRenderer(nil)

	tests := []struct {
		name   string
		text   string
		width  int
		expect string
	}{
		{
			name:   "fits without truncation",
			text:   "file.txt",
			width:  20,
			expect: "file.txt",
		},
		{
			name:   "adds ellipsis when needed",
			text:   "verylongname",
			width:  6,
			expect: "veryl…",
		},
		{
			name:   "only ellipsis when width too small",
			text:   "example",
			width:  1,
			expect: "…",
		},
		{
			name:   "multi-byte characters respected",
			text:   "你好世界",
			width:  5,
			expect: "你好…",
		},
		{
			name:   "returns empty when width is zero",
			text:   "anything",
			width:  0,
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := r.truncateTextToWidth(tt.text, tt.width)
			if actual != tt.expect {
				t.Fatalf("expected %q, got %q (width %d)", tt.expect, actual, tt.width)
			}
		})
	}
}

func TestMeasureTextWidth(t *testing.T) {
	r := NewRenderer(nil)

	if got := r.measureTextWidth("abc"); got != 3 {
		t.Fatalf("expected ASCII width 3, got %d", got)
	}

	if got := r.measureTextWidth("你好"); got != 4 {
		t.Fatalf("expected wide rune width 4, got %d", got)
	}
}

func TestPadLeftAlignsRight(t *testing.T) {
	r := NewRenderer(nil)
	if got := r.padLeft("1.5 kB", 9); got != "   1.5 kB" {
		t.Fatalf("padLeft = %q", got)
	}
}

func TestFitColumnsDropsTrailingColumns(t *testing.T) {
	cols := []item.Column{item.ColumnKind, item.ColumnSize, item.ColumnDateModified}

	if got := fitColumns(cols, 200); len(got) != 3 {
		t.Fatalf("wide terminal should keep all columns, got %v", got)
	}
	got := fitColumns(cols, 50)
	if len(got) != 2 || got[0] != item.ColumnKind || got[1] != item.ColumnSize {
		t.Fatalf("expected Kind and Size at width 50, got %v", got)
	}
	if nameWidth(got, 50) < minNameWidth {
		t.Fatalf("name column narrower than %d", minNameWidth)
	}
}

func TestSubstringSpans(t *testing.T) {
	spans := substringSpans("PORT", "quarterly-report.pdf", false)
	want := []highlightSpan{{start: 12, end: 16}}
	if len(spans) != 1 || spans[0] != want[0] {
		t.Fatalf("spans = %v, want %v", spans, want)
	}
	if spans := substringSpans("PORT", "quarterly-report.pdf", true); spans != nil {
		t.Fatalf("case-sensitive search should not match, got %v", spans)
	}
}

func newSimulationScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	return screen
}

func screenLine(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		cell := cells[y*w+x]
		if len(cell.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteString(string(cell.Runes))
	}
	return b.String()
}

func TestRenderResultsTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(path, make([]byte, 1500), 0o640); err != nil {
		t.Fatal(err)
	}

	screen := newSimulationScreen(t, 80, 8)
	r := NewRenderer(screen)

	state := statepkg.NewAppState(catalog.Query{}, []item.Column{item.ColumnSize})
	state.ScreenWidth, state.ScreenHeight = 80, 8
	state.QueryText = "report"
	state.Editing = false
	state.SearchStatus = statepkg.SearchStatusComplete
	state.Results = []*item.Item{item.New(path, item.Deps{Units: format.UnitsDecimal})}

	r.Render(state)

	if header := screenLine(screen, 0); !strings.HasPrefix(header, "Find: report") || !strings.Contains(header, "substring") {
		t.Fatalf("header = %q", header)
	}
	if titles := screenLine(screen, 1); !strings.HasPrefix(titles, "Name") || !strings.Contains(titles, "Size") {
		t.Fatalf("column titles = %q", titles)
	}
	row := screenLine(screen, 2)
	if !strings.HasPrefix(row, "report.txt") || !strings.Contains(row, "1.5 kB") {
		t.Fatalf("result row = %q", row)
	}
	if status := screenLine(screen, 7); !strings.Contains(status, "1 found") {
		t.Fatalf("status line = %q", status)
	}
}

func TestRenderShowsErrorMessage(t *testing.T) {
	screen := newSimulationScreen(t, 60, 5)
	r := NewRenderer(screen)

	state := statepkg.NewAppState(catalog.Query{}, nil)
	state.Editing = false
	state.Message = "Open"
	state.LastError = os.ErrPermission

	r.Render(state)

	if status := screenLine(screen, 4); !strings.Contains(status, "Open: permission denied") {
		t.Fatalf("status line = %q", status)
	}
}

func TestInfoPanelListsAttributes(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(nil)
	it := item.New(dir, item.Deps{})

	lines := r.buildInfoLines(it)
	labels := map[string]infoLine{}
	for _, line := range lines {
		labels[line.label] = line
	}
	if labels["Path"].value != dir {
		t.Fatalf("path line = %+v", labels["Path"])
	}
	folder, ok := labels["Folder size"]
	if !ok || !folder.unknown {
		t.Fatalf("folder size should wait for the explicit action, got %+v", folder)
	}
	if it.State(item.AttrFolderSize) != item.Unresolved {
		t.Fatalf("info panel walked the folder")
	}
}

func TestInfoPanelWarnsAboutInvisibleRunes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice\u202efdp.exe")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := NewRenderer(nil)
	for _, line := range r.buildInfoLines(item.New(path, item.Deps{})) {
		if line.label == "Warning" {
			return
		}
	}
	t.Fatalf("no warning for a name with a bidi override")
}
