// Package format renders already-resolved file attributes for display.
package format

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Units selects the unit ladder used for human-readable sizes.
type Units int

const (
	// UnitsBinary uses powers of 1024 (KiB, MiB, ...).
	UnitsBinary Units = iota
	// UnitsDecimal uses powers of 1000 (kB, MB, ...).
	UnitsDecimal
)

func (u Units) String() string {
	if u == UnitsDecimal {
		return "decimal"
	}
	return "binary"
}

// ParseUnits accepts "binary"/"iec" and "decimal"/"si".
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "binary", "iec":
		return UnitsBinary, nil
	case "decimal", "si":
		return UnitsDecimal, nil
	default:
		return UnitsBinary, fmt.Errorf("unknown size units %q", s)
	}
}

// Size renders a byte count on the selected unit ladder.
func Size(n uint64, units Units) string {
	if units == UnitsDecimal {
		return humanize.Bytes(n)
	}
	return humanize.IBytes(n)
}

// RawSize renders the exact byte count with locale digit grouping.
func RawSize(n uint64, tag language.Tag) string {
	return message.NewPrinter(tag).Sprintf("%d bytes", n)
}

var (
	dateLocales = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.Icelandic,
		language.Japanese,
	}
	dateLayouts = []string{
		"Jan 2, 2006 at 3:04 PM",
		"2 Jan 2006 at 15:04",
		"02.01.2006, 15:04",
		"02/01/2006 15:04",
		"2.1.2006 kl. 15:04",
		"2006/01/02 15:04",
	}
	dateMatcher = language.NewMatcher(dateLocales)
)

// Date renders t in the local time zone using the layout closest to tag.
func Date(t time.Time, tag language.Tag) string {
	if t.IsZero() {
		return ""
	}
	_, idx, _ := dateMatcher.Match(tag)
	return t.Local().Format(dateLayouts[idx])
}

// ISODate renders t as an RFC 3339 timestamp.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// ParseLocale resolves a locale string such as "de_DE.UTF-8". An empty or
// unparsable value falls back to the LC_ALL/LANG environment, then English.
func ParseLocale(s string) language.Tag {
	candidates := []string{s, os.Getenv("LC_ALL"), os.Getenv("LANG")}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || c == "C" || c == "POSIX" {
			continue
		}
		if i := strings.IndexAny(c, ".@"); i >= 0 {
			c = c[:i]
		}
		if tag, err := language.Parse(strings.ReplaceAll(c, "_", "-")); err == nil {
			return tag
		}
	}
	return language.AmericanEnglish
}

// UnixMode converts Go file mode bits to the traditional 12-bit Unix form.
func UnixMode(mode os.FileMode) uint32 {
	bits := uint32(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		bits |= 0o4000
	}
	if mode&os.ModeSetgid != 0 {
		bits |= 0o2000
	}
	if mode&os.ModeSticky != 0 {
		bits |= 0o1000
	}
	return bits
}

// OctalPermissions renders mode bits as octal, e.g. "755" or "4755".
func OctalPermissions(mode os.FileMode) string {
	bits := UnixMode(mode)
	if bits&0o7000 != 0 {
		return fmt.Sprintf("%04o", bits)
	}
	return fmt.Sprintf("%03o", bits)
}

// Permissions renders mode bits in ls(1) style, e.g. "drwxr-xr-x".
func Permissions(mode os.FileMode) string {
	var b [10]byte
	b[0] = typeChar(mode)

	const rwx = "rwx"
	perm := mode.Perm()
	for i := 0; i < 9; i++ {
		if perm&(1<<uint(8-i)) != 0 {
			b[i+1] = rwx[i%3]
		} else {
			b[i+1] = '-'
		}
	}

	setSpecial := func(pos int, on bool, set, unset byte) {
		if !on {
			return
		}
		if b[pos] == 'x' {
			b[pos] = set
		} else {
			b[pos] = unset
		}
	}
	setSpecial(3, mode&os.ModeSetuid != 0, 's', 'S')
	setSpecial(6, mode&os.ModeSetgid != 0, 's', 'S')
	setSpecial(9, mode&os.ModeSticky != 0, 't', 'T')
	return string(b[:])
}

func typeChar(mode os.FileMode) byte {
	switch {
	case mode&os.ModeDir != 0:
		return 'd'
	case mode&os.ModeSymlink != 0:
		return 'l'
	case mode&os.ModeNamedPipe != 0:
		return 'p'
	case mode&os.ModeSocket != 0:
		return 's'
	case mode&os.ModeCharDevice != 0:
		return 'c'
	case mode&os.ModeDevice != 0:
		return 'b'
	default:
		return '-'
	}
}

// NameLookup resolves numeric owner IDs to account names.
type NameLookup struct {
	User  func(uid string) (string, error)
	Group func(gid string) (string, error)
}

// SystemLookup resolves names through the operating system account database.
func SystemLookup() NameLookup {
	return NameLookup{
		User: func(uid string) (string, error) {
			u, err := user.LookupId(uid)
			if err != nil {
				return "", err
			}
			return u.Username, nil
		},
		Group: func(gid string) (string, error) {
			g, err := user.LookupGroupId(gid)
			if err != nil {
				return "", err
			}
			return g.Name, nil
		},
	}
}

// UserName returns the account name for uid, or the number when unresolvable.
func (l NameLookup) UserName(uid uint32) string {
	return resolveName(l.User, uid)
}

// GroupName returns the group name for gid, or the number when unresolvable.
func (l NameLookup) GroupName(gid uint32) string {
	return resolveName(l.Group, gid)
}

func resolveName(lookup func(string) (string, error), id uint32) string {
	s := strconv.FormatUint(uint64(id), 10)
	if lookup == nil {
		return s
	}
	name, err := lookup(s)
	if err != nil || name == "" {
		return s
	}
	return name
}

// UserGroup joins owner and group as "user:group".
func UserGroup(userName, groupName string) string {
	return userName + ":" + groupName
}
