package catalog

import (
	"errors"
	"testing"
	"time"

	fsutil "github.com/kk-code-lab/katsearch/internal/fs"
	"github.com/kk-code-lab/katsearch/internal/typeid"
)

type stubIdentifier struct {
	mime, uti, fileType, creator string
	err                          error
}

func (s stubIdentifier) MIMEType(fsutil.Entry) (string, error) { return s.mime, s.err }
func (s stubIdentifier) UTI(fsutil.Entry) (string, error)      { return s.uti, s.err }
func (s stubIdentifier) Kind(fsutil.Entry) (string, error)     { return "", s.err }
func (s stubIdentifier) HFSCodes(fsutil.Entry) (string, string, error) {
	return s.fileType, s.creator, s.err
}
func (s stubIdentifier) Icon(fsutil.Entry) (typeid.Icon, error) { return typeid.Icon{}, s.err }

func accepts(t *testing.T, q Query, e fsutil.Entry) bool {
	t.Helper()
	plan, err := Compile(q, stubIdentifier{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return plan.Criteria.Matches(e) && plan.Accept(e)
}

func TestCompileEmptyQueryMatchesEverything(t *testing.T) {
	plan, err := Compile(Query{}, stubIdentifier{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(plan.PostFilters) != 0 {
		t.Fatalf("expected no post-filters, got %d", len(plan.PostFilters))
	}
	for _, e := range []fsutil.Entry{
		{Name: "a"},
		{Name: ".hidden", IsDir: true},
		{Name: "zero", Size: 0},
	} {
		if !plan.Criteria.Matches(e) {
			t.Fatalf("empty criteria rejected %+v", e)
		}
	}
}

func TestCompileNameModes(t *testing.T) {
	tests := []struct {
		name    string
		pattern NamePattern
		entry   string
		want    bool
	}{
		{"substring folds ascii", NamePattern{Text: "report"}, "Q3-REPORT.pdf", true},
		{"substring case sensitive", NamePattern{Text: "report", CaseSensitive: true}, "Q3-REPORT.pdf", false},
		{"exact", NamePattern{Text: "notes.txt", Mode: MatchExact}, "NOTES.TXT", true},
		{"exact rejects longer", NamePattern{Text: "notes", Mode: MatchExact}, "notes.txt", false},
		{"wildcard", NamePattern{Text: "*.png", Mode: MatchWildcard}, "shot.PNG", true},
		{"wildcard case sensitive", NamePattern{Text: "*.png", Mode: MatchWildcard, CaseSensitive: true}, "shot.PNG", false},
		{"wildcard class", NamePattern{Text: "img[0-9].jpg", Mode: MatchWildcard}, "img7.jpg", true},
		{"regex", NamePattern{Text: `^draft-\d+$`, Mode: MatchRegex}, "DRAFT-12", true},
		{"regex case sensitive", NamePattern{Text: `^draft-\d+$`, Mode: MatchRegex, CaseSensitive: true}, "DRAFT-12", false},
		{"unicode full folding", NamePattern{Text: "straße"}, "STRASSE.txt", true},
		{"nfc normalization", NamePattern{Text: "caf\u00e9", Mode: MatchExact}, "cafe\u0301", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accepts(t, Query{Name: tt.pattern}, fsutil.Entry{Name: tt.entry})
			if got != tt.want {
				t.Fatalf("match(%q, %q)=%v want %v", tt.pattern.Text, tt.entry, got, tt.want)
			}
		})
	}
}

func TestCompileNativeHints(t *testing.T) {
	plan, err := Compile(Query{Name: NamePattern{Text: "IMG_*.jpeg", Mode: MatchWildcard}}, stubIdentifier{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if plan.Criteria.NameMode != NameSubstring || plan.Criteria.Name != ".jpeg" {
		t.Fatalf("wildcard hint = %v %q", plan.Criteria.NameMode, plan.Criteria.Name)
	}

	plan, err = Compile(Query{Name: NamePattern{Text: "grüße"}}, stubIdentifier{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if plan.Criteria.NameMode != NameAny {
		t.Fatalf("non-ASCII pattern should not be matched natively")
	}

	plan, err = Compile(Query{Name: NamePattern{Text: "exact", Mode: MatchExact, CaseSensitive: true}}, stubIdentifier{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if plan.Criteria.NameMode != NameExact || len(plan.PostFilters) != 0 {
		t.Fatalf("case-sensitive ASCII exact should be fully native: %+v", plan)
	}
}

func TestCompileRejectsBadPatterns(t *testing.T) {
	if _, err := Compile(Query{Name: NamePattern{Text: "(", Mode: MatchRegex}}, stubIdentifier{}); err == nil {
		t.Fatalf("expected regex error")
	}
	if _, err := Compile(Query{Name: NamePattern{Text: "[", Mode: MatchWildcard}}, stubIdentifier{}); err == nil {
		t.Fatalf("expected wildcard error")
	}
}

func TestLongestLiteral(t *testing.T) {
	tests := map[string]string{
		"*.png":          ".png",
		"IMG_????.jpeg":  ".jpeg",
		"report[0-9]*":   "report",
		"*":              "",
		`a\*bcd*`:        "bcd",
		"[abc]long*part": "long",
	}
	for pattern, want := range tests {
		if got := longestLiteral(pattern); got != want {
			t.Fatalf("longestLiteral(%q)=%q want %q", pattern, got, want)
		}
	}
}

func TestCompileSizeRangeExcludesDirectories(t *testing.T) {
	lo, hi := int64(1024), int64(4096)
	q := Query{Size: Int64Range{Min: &lo, Max: &hi}}
	tests := []struct {
		entry fsutil.Entry
		want  bool
	}{
		{fsutil.Entry{Name: "small", Size: 1023}, false},
		{fsutil.Entry{Name: "low", Size: 1024}, true},
		{fsutil.Entry{Name: "mid", Size: 2048}, true},
		{fsutil.Entry{Name: "high", Size: 4096}, true},
		{fsutil.Entry{Name: "big", Size: 4097}, false},
		{fsutil.Entry{Name: "dir", Size: 2048, IsDir: true}, false},
	}
	for _, tt := range tests {
		if got := accepts(t, q, tt.entry); got != tt.want {
			t.Fatalf("%s: got %v want %v", tt.entry.Name, got, tt.want)
		}
	}
}

func TestCompileSubsecondDateBounds(t *testing.T) {
	after := time.Date(2024, 5, 1, 12, 0, 0, 500_000_000, time.UTC)
	q := Query{Modified: TimeRange{After: &after}}
	plan, err := Compile(q, stubIdentifier{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !plan.Criteria.Modified.After.Equal(after.Truncate(time.Second)) {
		t.Fatalf("native bound not widened: %v", plan.Criteria.Modified.After)
	}

	early := fsutil.Entry{Name: "early", Modified: after.Add(-100 * time.Millisecond)}
	late := fsutil.Entry{Name: "late", Modified: after.Add(100 * time.Millisecond)}
	if !plan.Criteria.Matches(early) {
		t.Fatalf("native criteria should keep the widened candidate")
	}
	if plan.Accept(early) {
		t.Fatalf("post-filter should drop sub-second early entry")
	}
	if !plan.Criteria.Matches(late) || !plan.Accept(late) {
		t.Fatalf("late entry should match")
	}
}

func TestCompileDateRangeRejectsUnknownTimes(t *testing.T) {
	after := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	q := Query{Created: TimeRange{After: &after}}
	if accepts(t, q, fsutil.Entry{Name: "no-birth"}) {
		t.Fatalf("entry without a birth time must not satisfy a created bound")
	}
}

func TestCompileTypeAndOwnerFilters(t *testing.T) {
	uid := uint32(501)
	q := Query{
		Types: TypeFilter{UTIs: []string{"public.image"}, MIMETypes: []string{"image/*"}},
		Owner: OwnerFilter{UID: &uid},
	}
	png := stubIdentifier{uti: "public.png", mime: "image/png"}
	plan, err := Compile(q, png)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !plan.Accept(fsutil.Entry{Name: "a.png", UID: 501}) {
		t.Fatalf("png owned by 501 should match")
	}
	if plan.Accept(fsutil.Entry{Name: "a.png", UID: 0}) {
		t.Fatalf("owner filter ignored")
	}

	failing, err := Compile(q, stubIdentifier{err: errors.New("unreadable")})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if failing.Accept(fsutil.Entry{Name: "a.png", UID: 501}) {
		t.Fatalf("a failing post-filter must drop the entry")
	}
}

func TestCompileHFSCodes(t *testing.T) {
	q := Query{Types: TypeFilter{HFSType: "APPL"}}
	plan, err := Compile(q, stubIdentifier{fileType: "APPL", creator: "aplt"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !plan.Accept(fsutil.Entry{Name: "x"}) {
		t.Fatalf("matching type code rejected")
	}
	plan, _ = Compile(q, stubIdentifier{fileType: "TEXT"})
	if plan.Accept(fsutil.Entry{Name: "x"}) {
		t.Fatalf("wrong type code accepted")
	}
}
