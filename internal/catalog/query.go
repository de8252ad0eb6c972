package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// MatchMode selects how NamePattern.Text is compared against entry names.
type MatchMode int

const (
	MatchSubstring MatchMode = iota
	MatchExact
	MatchWildcard
	MatchRegex
)

var matchModeNames = map[MatchMode]string{
	MatchSubstring: "substring",
	MatchExact:     "exact",
	MatchWildcard:  "wildcard",
	MatchRegex:     "regex",
}

func (m MatchMode) String() string {
	if name, ok := matchModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MatchMode(%d)", int(m))
}

// ParseMatchMode is the inverse of MatchMode.String.
func ParseMatchMode(s string) (MatchMode, error) {
	for mode, name := range matchModeNames {
		if strings.EqualFold(s, name) {
			return mode, nil
		}
	}
	return MatchSubstring, fmt.Errorf("unknown match mode %q", s)
}

func (m MatchMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

func (m *MatchMode) UnmarshalYAML(value *yaml.Node) error {
	mode, err := ParseMatchMode(value.Value)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// EntryKind restricts matches to files or directories.
type EntryKind int

const (
	KindAny EntryKind = iota
	KindFiles
	KindDirectories
)

var entryKindNames = map[EntryKind]string{
	KindAny:         "any",
	KindFiles:       "files",
	KindDirectories: "directories",
}

func (k EntryKind) String() string {
	if name, ok := entryKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EntryKind(%d)", int(k))
}

func (k EntryKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

func (k *EntryKind) UnmarshalYAML(value *yaml.Node) error {
	for kind, name := range entryKindNames {
		if strings.EqualFold(value.Value, name) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown entry kind %q", value.Value)
}

// InferMatchMode picks wildcard matching for text containing glob
// metacharacters and substring matching otherwise.
func InferMatchMode(text string) MatchMode {
	if strings.ContainsAny(text, "*?[") {
		return MatchWildcard
	}
	return MatchSubstring
}

// NamePattern describes the name predicate of a query.
type NamePattern struct {
	Text          string    `yaml:"text,omitempty"`
	Mode          MatchMode `yaml:"mode"`
	CaseSensitive bool      `yaml:"case_sensitive,omitempty"`
}

// Int64Range is an inclusive range; a nil bound is unbounded.
type Int64Range struct {
	Min *int64 `yaml:"min,omitempty"`
	Max *int64 `yaml:"max,omitempty"`
}

// IsSet reports whether either bound is present.
func (r Int64Range) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// Contains reports whether v lies within the range.
func (r Int64Range) Contains(v int64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// TimeRange is an inclusive range of instants; a nil bound is unbounded.
type TimeRange struct {
	After  *time.Time `yaml:"after,omitempty"`
	Before *time.Time `yaml:"before,omitempty"`
}

// IsSet reports whether either bound is present.
func (r TimeRange) IsSet() bool {
	return r.After != nil || r.Before != nil
}

// Contains reports whether t lies within the range. A zero t (the value is
// unknown) only satisfies an unset range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.IsSet() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if r.After != nil && t.Before(*r.After) {
		return false
	}
	if r.Before != nil && t.After(*r.Before) {
		return false
	}
	return true
}

// TypeFilter restricts matches by entry kind and content type.
type TypeFilter struct {
	Kind        EntryKind `yaml:"kind"`
	UTIs        []string  `yaml:"utis,omitempty"`
	MIMETypes   []string  `yaml:"mime_types,omitempty"`
	HFSType     string    `yaml:"hfs_type,omitempty"`
	CreatorType string    `yaml:"creator_type,omitempty"`
}

// OwnerFilter restricts matches by numeric owner and group.
type OwnerFilter struct {
	UID *uint32 `yaml:"uid,omitempty"`
	GID *uint32 `yaml:"gid,omitempty"`
}

// Query is an immutable description of a catalog search. The zero value
// matches every entry on the current volume.
type Query struct {
	Name     NamePattern `yaml:"name"`
	Size     Int64Range  `yaml:"size,omitempty"`
	Created  TimeRange   `yaml:"created,omitempty"`
	Modified TimeRange   `yaml:"modified,omitempty"`
	Accessed TimeRange   `yaml:"accessed,omitempty"`
	Types    TypeFilter  `yaml:"types,omitempty"`
	Owner    OwnerFilter `yaml:"owner,omitempty"`
	// SkipHidden drops invisible entries and does not descend into
	// invisible directories.
	SkipHidden bool `yaml:"skip_hidden,omitempty"`
	// SkipPackages does not descend into package directories; the package
	// itself can still match.
	SkipPackages bool `yaml:"skip_packages,omitempty"`
	// Limit stops the scan after this many matches. Zero means no limit.
	Limit int      `yaml:"limit,omitempty"`
	Roots []string `yaml:"roots,omitempty"`
}

// Equal reports whether two queries describe the same search.
func (q Query) Equal(o Query) bool {
	return q.Name == o.Name &&
		int64PtrEqual(q.Size.Min, o.Size.Min) && int64PtrEqual(q.Size.Max, o.Size.Max) &&
		timeRangeEqual(q.Created, o.Created) &&
		timeRangeEqual(q.Modified, o.Modified) &&
		timeRangeEqual(q.Accessed, o.Accessed) &&
		q.Types.Kind == o.Types.Kind &&
		stringsEqual(q.Types.UTIs, o.Types.UTIs) &&
		stringsEqual(q.Types.MIMETypes, o.Types.MIMETypes) &&
		q.Types.HFSType == o.Types.HFSType &&
		q.Types.CreatorType == o.Types.CreatorType &&
		uint32PtrEqual(q.Owner.UID, o.Owner.UID) &&
		uint32PtrEqual(q.Owner.GID, o.Owner.GID) &&
		q.SkipHidden == o.SkipHidden &&
		q.SkipPackages == o.SkipPackages &&
		q.Limit == o.Limit &&
		stringsEqual(cleanRoots(q.Roots), cleanRoots(o.Roots))
}

// String renders a one-line summary, suitable for a recent-searches menu.
func (q Query) String() string {
	var b strings.Builder
	if q.Name.Text == "" {
		b.WriteString("(any name)")
	} else {
		fmt.Fprintf(&b, "%q", q.Name.Text)
	}

	var opts []string
	if q.Name.Text != "" && q.Name.Mode != MatchSubstring {
		opts = append(opts, q.Name.Mode.String())
	}
	if q.Name.CaseSensitive {
		opts = append(opts, "case-sensitive")
	}
	if q.Types.Kind != KindAny {
		opts = append(opts, q.Types.Kind.String()+" only")
	}
	if q.Size.IsSet() {
		opts = append(opts, "size "+formatBound(q.Size.Min)+"–"+formatBound(q.Size.Max))
	}
	for _, tr := range []struct {
		label string
		r     TimeRange
	}{{"created", q.Created}, {"modified", q.Modified}, {"accessed", q.Accessed}} {
		if tr.r.IsSet() {
			opts = append(opts, tr.label+" "+formatTime(tr.r.After)+"–"+formatTime(tr.r.Before))
		}
	}
	opts = append(opts, q.Types.UTIs...)
	opts = append(opts, q.Types.MIMETypes...)

	if len(q.Roots) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(q.Roots, ", "))
	}
	if len(opts) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(opts, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func formatBound(v *int64) string {
	if v == nil {
		return "∞"
	}
	if *v < 0 {
		return fmt.Sprint(*v)
	}
	return humanize.IBytes(uint64(*v))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "…"
	}
	return t.Format("2006-01-02")
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uint32PtrEqual(a, b *uint32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func timeRangeEqual(a, b TimeRange) bool {
	return timePtrEqual(a.After, b.After) && timePtrEqual(a.Before, b.Before)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cleanRoots(roots []string) []string {
	out := make([]string, len(roots))
	for i, r := range roots {
		out[i] = filepath.Clean(r)
	}
	return out
}
