package fs

import (
	"encoding/binary"
	"errors"
)

// FinderInfoXattr is the extended attribute macOS uses for classic Finder
// metadata (type and creator codes, Finder flags, label color).
const FinderInfoXattr = "com.apple.FinderInfo"

const finderInfoLen = 32

// Finder flag bits from Finder.h.
const (
	FinderFlagHasBundle   uint16 = 0x2000
	FinderFlagIsInvisible uint16 = 0x4000
	FinderFlagIsAlias     uint16 = 0x8000
	finderFlagColorMask   uint16 = 0x000E
)

// FinderInfo is the decoded 32-byte Finder info record.
type FinderInfo struct {
	raw [finderInfoLen]byte
}

// ReadFinderInfo loads the Finder info record of path. It returns
// ErrNoAttribute when the file has none.
func ReadFinderInfo(path string) (FinderInfo, error) {
	data, err := GetXattr(path, FinderInfoXattr)
	if err != nil {
		return FinderInfo{}, err
	}
	return ParseFinderInfo(data)
}

// ParseFinderInfo decodes a raw Finder info record.
func ParseFinderInfo(data []byte) (FinderInfo, error) {
	var fi FinderInfo
	if len(data) < finderInfoLen {
		return fi, errors.New("finder info record too short")
	}
	copy(fi.raw[:], data[:finderInfoLen])
	return fi, nil
}

// FileType is the four-character HFS type code, or "" when unset.
func (fi FinderInfo) FileType() string {
	return fourCC(fi.raw[0:4])
}

// Creator is the four-character HFS creator code, or "" when unset.
func (fi FinderInfo) Creator() string {
	return fourCC(fi.raw[4:8])
}

// Flags returns the Finder flags word.
func (fi FinderInfo) Flags() uint16 {
	return binary.BigEndian.Uint16(fi.raw[8:10])
}

// Label returns the Finder label index (0 = none, 1..7 = colors).
func (fi FinderInfo) Label() int {
	return int(fi.Flags()&finderFlagColorMask) >> 1
}

// WithLabel returns a copy with the label color index replaced.
func (fi FinderInfo) WithLabel(label int) FinderInfo {
	flags := fi.Flags()&^finderFlagColorMask | uint16(label<<1)&finderFlagColorMask
	binary.BigEndian.PutUint16(fi.raw[8:10], flags)
	return fi
}

// Bytes returns the raw record for writing back.
func (fi FinderInfo) Bytes() []byte {
	out := make([]byte, finderInfoLen)
	copy(out, fi.raw[:])
	return out
}

func fourCC(b []byte) string {
	allZero := true
	for _, c := range b {
		if c != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return ""
	}
	return string(b)
}
