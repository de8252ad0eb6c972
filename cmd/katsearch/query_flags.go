package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/kk-code-lab/katsearch/internal/catalog"
)

// searchFlags are the query options of the root command.
type searchFlags struct {
	dirsOnly  bool
	filesOnly bool

	exact         bool
	caseSensitive bool
	wildcard      bool
	regex         bool

	volumes []string
	limit   int

	minSize string
	maxSize string

	createdAfter, createdBefore   string
	modifiedAfter, modifiedBefore string
	accessedAfter, accessedBefore string

	utis      []string
	mimeTypes []string
	hfsType   string
	creator   string
	uid       uint32
	gid       uint32

	skipHidden   bool
	skipPackages bool
}

func (f *searchFlags) register(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.dirsOnly, "dirs", "d", false, "match directories only")
	fs.BoolVarP(&f.filesOnly, "files", "f", false, "match files only")
	fs.BoolVarP(&f.exact, "exact", "e", false, "match the whole name")
	fs.BoolVarP(&f.caseSensitive, "case-sensitive", "s", false, "match case")
	fs.BoolVarP(&f.wildcard, "wildcard", "w", false, "treat the pattern as a glob")
	fs.BoolVarP(&f.regex, "regex", "r", false, "treat the pattern as a regular expression")
	fs.StringArrayVarP(&f.volumes, "volume", "v", nil, "search the volume containing this path (repeatable)")
	fs.IntVarP(&f.limit, "limit", "l", 0, "stop after this many matches")
	fs.StringVar(&f.minSize, "min-size", "", "smallest size, e.g. 10MB")
	fs.StringVar(&f.maxSize, "max-size", "", "largest size, e.g. 1GiB")
	fs.StringVar(&f.createdAfter, "created-after", "", "created on or after this date")
	fs.StringVar(&f.createdBefore, "created-before", "", "created on or before this date")
	fs.StringVar(&f.modifiedAfter, "modified-after", "", "modified on or after this date")
	fs.StringVar(&f.modifiedBefore, "modified-before", "", "modified on or before this date")
	fs.StringVar(&f.accessedAfter, "accessed-after", "", "accessed on or after this date")
	fs.StringVar(&f.accessedBefore, "accessed-before", "", "accessed on or before this date")
	fs.StringSliceVar(&f.utis, "uti", nil, "type identifier to match, e.g. public.image")
	fs.StringSliceVar(&f.mimeTypes, "mime", nil, "MIME type to match, e.g. text/plain")
	fs.StringVar(&f.hfsType, "type", "", "four-character file type")
	fs.StringVar(&f.creator, "creator", "", "four-character creator code")
	fs.Uint32Var(&f.uid, "uid", 0, "numeric owner")
	fs.Uint32Var(&f.gid, "gid", 0, "numeric group")
	fs.BoolVar(&f.skipHidden, "skip-hidden", false, "ignore invisible entries")
	fs.BoolVar(&f.skipPackages, "skip-packages", false, "do not look inside packages")
}

// query builds the catalog query from the flags and the optional name
// pattern. Without a mode flag the mode is inferred from the pattern.
func (f *searchFlags) query(fs *pflag.FlagSet, pattern string) (catalog.Query, error) {
	q := catalog.Query{
		Name: catalog.NamePattern{
			Text:          pattern,
			Mode:          catalog.InferMatchMode(pattern),
			CaseSensitive: f.caseSensitive,
		},
		Limit:        f.limit,
		Roots:        f.volumes,
		SkipHidden:   f.skipHidden,
		SkipPackages: f.skipPackages,
	}
	switch {
	case f.exact:
		q.Name.Mode = catalog.MatchExact
	case f.wildcard:
		q.Name.Mode = catalog.MatchWildcard
	case f.regex:
		q.Name.Mode = catalog.MatchRegex
	}
	switch {
	case f.dirsOnly:
		q.Types.Kind = catalog.KindDirectories
	case f.filesOnly:
		q.Types.Kind = catalog.KindFiles
	}
	if f.limit < 0 {
		return q, fmt.Errorf("--limit must not be negative")
	}

	var err error
	if q.Size.Min, err = parseSize("--min-size", f.minSize); err != nil {
		return q, err
	}
	if q.Size.Max, err = parseSize("--max-size", f.maxSize); err != nil {
		return q, err
	}

	ranges := []struct {
		target        *catalog.TimeRange
		after, before string
		name          string
	}{
		{&q.Created, f.createdAfter, f.createdBefore, "created"},
		{&q.Modified, f.modifiedAfter, f.modifiedBefore, "modified"},
		{&q.Accessed, f.accessedAfter, f.accessedBefore, "accessed"},
	}
	for _, r := range ranges {
		if r.target.After, err = parseDate("--"+r.name+"-after", r.after, false); err != nil {
			return q, err
		}
		if r.target.Before, err = parseDate("--"+r.name+"-before", r.before, true); err != nil {
			return q, err
		}
	}

	q.Types.UTIs = f.utis
	q.Types.MIMETypes = f.mimeTypes
	if q.Types.HFSType, err = parseFourCharCode("--type", f.hfsType); err != nil {
		return q, err
	}
	if q.Types.CreatorType, err = parseFourCharCode("--creator", f.creator); err != nil {
		return q, err
	}
	if fs.Changed("uid") {
		uid := f.uid
		q.Owner.UID = &uid
	}
	if fs.Changed("gid") {
		gid := f.gid
		q.Owner.GID = &gid
	}

	// reject a bad pattern before scanning
	if _, err := catalog.Compile(q, nil); err != nil {
		return q, err
	}
	return q, nil
}

func parseSize(flag, s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flag, err)
	}
	if n > math.MaxInt64 {
		return nil, fmt.Errorf("%s: %s is too large", flag, s)
	}
	v := int64(n)
	return &v, nil
}

// parseDate reads a date in any common layout, in local time. An upper
// bound given as a bare date covers that whole day.
func parseDate(flag, s string, upper bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flag, err)
	}
	if upper && !strings.Contains(s, ":") && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseFourCharCode(flag, s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if len(s) > 4 {
		return "", fmt.Errorf("%s: %q is longer than four characters", flag, s)
	}
	return s, nil
}
