package catalog

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	fsutil "github.com/kk-code-lab/katsearch/internal/fs"
	"github.com/kk-code-lab/katsearch/internal/typeid"
)

// NameMode is the name comparison the primitive performs natively.
type NameMode int

const (
	NameAny NameMode = iota
	NameExact
	NameSubstring
)

// Criteria is the restricted predicate a Primitive evaluates natively. The
// zero value matches everything.
type Criteria struct {
	Name          string
	NameMode      NameMode
	CaseSensitive bool
	Size          Int64Range
	// Date bounds are whole seconds, widened outward from the query.
	Created      TimeRange
	Modified     TimeRange
	Accessed     TimeRange
	Kind         EntryKind
	SkipHidden   bool
	SkipPackages bool
}

// Matches evaluates the native predicate against one entry.
func (c Criteria) Matches(e fsutil.Entry) bool {
	switch c.Kind {
	case KindFiles:
		if e.IsDir {
			return false
		}
	case KindDirectories:
		if !e.IsDir {
			return false
		}
	}

	if !c.matchName(e.Name) {
		return false
	}

	// Data length is a file attribute; directories never satisfy a size bound.
	if c.Size.IsSet() && (e.IsDir || !c.Size.Contains(e.Size)) {
		return false
	}

	return c.Created.Contains(e.Created) &&
		c.Modified.Contains(e.Modified) &&
		c.Accessed.Contains(e.Accessed)
}

// matchName folds both sides the same way the name post-filters do, so the
// native check never rejects a name a post-filter would accept.
func (c Criteria) matchName(name string) bool {
	if c.NameMode == NameAny {
		return true
	}
	want := c.Name
	if !c.CaseSensitive {
		name, want = foldName(name, false), foldName(want, false)
	}
	switch c.NameMode {
	case NameExact:
		return name == want
	case NameSubstring:
		return strings.Contains(name, want)
	default:
		return true
	}
}

// PostFilter is a client-side predicate for what the primitive cannot
// express. Entries failing any post-filter are dropped silently.
type PostFilter struct {
	Name  string
	Match func(e fsutil.Entry) bool
}

// Plan is a compiled query.
type Plan struct {
	Criteria    Criteria
	PostFilters []PostFilter
}

// Accept applies every post-filter in order.
func (p Plan) Accept(e fsutil.Entry) bool {
	for _, f := range p.PostFilters {
		if !f.Match(e) {
			return false
		}
	}
	return true
}

// Compile translates a query into native criteria plus post-filters.
func Compile(q Query, ident typeid.Identifier) (Plan, error) {
	plan := Plan{
		Criteria: Criteria{
			Size:         q.Size,
			Created:      widen(q.Created),
			Modified:     widen(q.Modified),
			Accessed:     widen(q.Accessed),
			Kind:         q.Types.Kind,
			SkipHidden:   q.SkipHidden,
			SkipPackages: q.SkipPackages,
		},
	}

	if err := compileName(q.Name, &plan); err != nil {
		return Plan{}, err
	}

	for _, d := range []struct {
		name  string
		r     TimeRange
		value func(fsutil.Entry) time.Time
	}{
		{"created", q.Created, func(e fsutil.Entry) time.Time { return e.Created }},
		{"modified", q.Modified, func(e fsutil.Entry) time.Time { return e.Modified }},
		{"accessed", q.Accessed, func(e fsutil.Entry) time.Time { return e.Accessed }},
	} {
		if !hasSubsecond(d.r) {
			continue
		}
		r, value := d.r, d.value
		plan.PostFilters = append(plan.PostFilters, PostFilter{
			Name:  d.name + "-exact",
			Match: func(e fsutil.Entry) bool { return r.Contains(value(e)) },
		})
	}

	plan.PostFilters = append(plan.PostFilters, typeFilters(q.Types, ident)...)

	if uid := q.Owner.UID; uid != nil {
		want := *uid
		plan.PostFilters = append(plan.PostFilters, PostFilter{
			Name:  "uid",
			Match: func(e fsutil.Entry) bool { return e.UID == want },
		})
	}
	if gid := q.Owner.GID; gid != nil {
		want := *gid
		plan.PostFilters = append(plan.PostFilters, PostFilter{
			Name:  "gid",
			Match: func(e fsutil.Entry) bool { return e.GID == want },
		})
	}

	return plan, nil
}

func compileName(p NamePattern, plan *Plan) error {
	if p.Text == "" {
		return nil
	}
	ascii := isASCII(p.Text)
	c := &plan.Criteria
	c.CaseSensitive = p.CaseSensitive

	switch p.Mode {
	case MatchExact, MatchSubstring:
		if ascii {
			c.Name = p.Text
			c.NameMode = NameSubstring
			if p.Mode == MatchExact {
				c.NameMode = NameExact
			}
		}
		if !ascii || !p.CaseSensitive {
			want := foldName(p.Text, p.CaseSensitive)
			exact := p.Mode == MatchExact
			cs := p.CaseSensitive
			plan.PostFilters = append(plan.PostFilters, PostFilter{
				Name: "name",
				Match: func(e fsutil.Entry) bool {
					got := foldName(e.Name, cs)
					if exact {
						return got == want
					}
					return strings.Contains(got, want)
				},
			})
		}

	case MatchWildcard:
		pattern := foldName(p.Text, p.CaseSensitive)
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid wildcard %q: %w", p.Text, err)
		}
		if hint := longestLiteral(p.Text); ascii && hint != "" {
			c.Name = hint
			c.NameMode = NameSubstring
		}
		cs := p.CaseSensitive
		plan.PostFilters = append(plan.PostFilters, PostFilter{
			Name: "wildcard",
			Match: func(e fsutil.Entry) bool {
				ok, _ := path.Match(pattern, foldName(e.Name, cs))
				return ok
			},
		})

	case MatchRegex:
		expr := p.Text
		if !p.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid regex %q: %w", p.Text, err)
		}
		plan.PostFilters = append(plan.PostFilters, PostFilter{
			Name:  "regex",
			Match: func(e fsutil.Entry) bool { return re.MatchString(norm.NFC.String(e.Name)) },
		})

	default:
		return fmt.Errorf("unknown match mode %v", p.Mode)
	}
	return nil
}

func typeFilters(t TypeFilter, ident typeid.Identifier) []PostFilter {
	var filters []PostFilter
	if len(t.UTIs) > 0 {
		wanted := t.UTIs
		filters = append(filters, PostFilter{
			Name: "uti",
			Match: func(e fsutil.Entry) bool {
				uti, err := ident.UTI(e)
				if err != nil {
					return false
				}
				for _, w := range wanted {
					if typeid.ConformsTo(uti, w) {
						return true
					}
				}
				return false
			},
		})
	}
	if len(t.MIMETypes) > 0 {
		wanted := t.MIMETypes
		filters = append(filters, PostFilter{
			Name: "mime",
			Match: func(e fsutil.Entry) bool {
				mimeType, err := ident.MIMEType(e)
				if err != nil {
					return false
				}
				for _, w := range wanted {
					if typeid.MatchMIME(w, mimeType) {
						return true
					}
				}
				return false
			},
		})
	}
	if t.HFSType != "" || t.CreatorType != "" {
		wantType, wantCreator := t.HFSType, t.CreatorType
		filters = append(filters, PostFilter{
			Name: "hfs-codes",
			Match: func(e fsutil.Entry) bool {
				fileType, creator, err := ident.HFSCodes(e)
				if err != nil {
					return false
				}
				return (wantType == "" || fileType == wantType) &&
					(wantCreator == "" || creator == wantCreator)
			},
		})
	}
	return filters
}

// foldName normalizes to NFC and, for case-insensitive matching, applies
// full Unicode case folding. A Caser is not safe for concurrent use, so one
// is made per call.
func foldName(s string, caseSensitive bool) string {
	s = norm.NFC.String(s)
	if caseSensitive {
		return s
	}
	return cases.Fold().String(s)
}

// longestLiteral returns the longest run of a wildcard pattern that contains
// no metacharacters.
func longestLiteral(pattern string) string {
	best, current := "", strings.Builder{}
	flush := func() {
		if current.Len() > len(best) {
			best = current.String()
		}
		current.Reset()
	}
	inClass := false
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case inClass:
			if ch == ']' {
				inClass = false
			}
		case ch == '[':
			flush()
			inClass = true
		case ch == '*' || ch == '?':
			flush()
		case ch == '\\':
			flush()
			i++
		default:
			current.WriteByte(ch)
		}
	}
	flush()
	return best
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func widen(r TimeRange) TimeRange {
	var out TimeRange
	if r.After != nil {
		t := r.After.Truncate(time.Second)
		out.After = &t
	}
	if r.Before != nil {
		t := r.Before.Truncate(time.Second)
		if !t.Equal(*r.Before) {
			t = t.Add(time.Second)
		}
		out.Before = &t
	}
	return out
}

func hasSubsecond(r TimeRange) bool {
	return (r.After != nil && r.After.Nanosecond() != 0) ||
		(r.Before != nil && r.Before.Nanosecond() != 0)
}
