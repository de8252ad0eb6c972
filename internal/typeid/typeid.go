// Package typeid classifies filesystem entries: MIME type, uniform type
// identifier, a human-readable kind, classic HFS type/creator codes and an
// icon name.
package typeid

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	fsutil "github.com/kk-code-lab/katsearch/internal/fs"
)

// Icon is an opaque icon handle. On freedesktop systems it is an icon theme
// name such as "image-png" or "folder".
type Icon struct {
	Name string
}

// Identifier classifies entries. Implementations must be safe for concurrent
// use. Unknown classifications are reported as Unknown, not as errors.
type Identifier interface {
	MIMEType(e fsutil.Entry) (string, error)
	UTI(e fsutil.Entry) (string, error)
	Kind(e fsutil.Entry) (string, error)
	HFSCodes(e fsutil.Entry) (fileType, creator string, err error)
	Icon(e fsutil.Entry) (Icon, error)
}

// Detector is the default Identifier. It prefers file extensions and falls
// back to content sniffing for regular files.
type Detector struct {
	readFinderInfo func(path string) (fsutil.FinderInfo, error)
	detectFile     func(path string) (string, error)
}

// NewDetector returns a Detector backed by the real filesystem.
func NewDetector() *Detector {
	return &Detector{
		readFinderInfo: fsutil.ReadFinderInfo,
		detectFile: func(path string) (string, error) {
			m, err := mimetype.DetectFile(path)
			if err != nil {
				return "", err
			}
			return m.String(), nil
		},
	}
}

// MIMEType implements Identifier.
func (d *Detector) MIMEType(e fsutil.Entry) (string, error) {
	switch {
	case e.IsSymlink:
		return "inode/symlink", nil
	case e.IsDir:
		return "inode/directory", nil
	case !e.IsRegular():
		return Unknown, nil
	}

	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(e.Name))); byExt != "" {
		return stripParams(byExt), nil
	}
	if e.Size == 0 {
		return "application/x-empty", nil
	}
	sniffed, err := d.detectFile(e.FullPath)
	if err != nil {
		return "", err
	}
	return stripParams(sniffed), nil
}

// UTI implements Identifier.
func (d *Detector) UTI(e fsutil.Entry) (string, error) {
	switch {
	case e.IsSymlink:
		return utiSymlink, nil
	case e.IsDir:
		return directoryUTI(e), nil
	}

	if uti, ok := extensionUTIs[strings.ToLower(filepath.Ext(e.Name))]; ok {
		return uti, nil
	}
	if !e.IsRegular() {
		return Unknown, nil
	}

	mimeType, err := d.MIMEType(e)
	if err != nil {
		return "", err
	}
	if uti, ok := mimeUTIs[mimeType]; ok {
		if uti == utiData && e.Mode&0o111 != 0 {
			return utiUnixExecutable, nil
		}
		return uti, nil
	}
	switch {
	case strings.HasPrefix(mimeType, "text/"):
		return utiPlainText, nil
	case strings.HasPrefix(mimeType, "image/"):
		return "public.image", nil
	case strings.HasPrefix(mimeType, "audio/"):
		return "public.audio", nil
	case strings.HasPrefix(mimeType, "video/"):
		return "public.movie", nil
	case mimeType == Unknown:
		return Unknown, nil
	}
	return utiData, nil
}

// Kind implements Identifier.
func (d *Detector) Kind(e fsutil.Entry) (string, error) {
	uti, err := d.UTI(e)
	if err != nil {
		return "", err
	}
	if kind, ok := utiKinds[uti]; ok {
		return kind, nil
	}
	if uti == Unknown {
		return Unknown, nil
	}

	// Fall back to the MIME subtype, e.g. "WEBP image".
	mimeType, err := d.MIMEType(e)
	if err != nil {
		return "", err
	}
	if major, minor, ok := strings.Cut(mimeType, "/"); ok {
		switch major {
		case "image", "audio", "video":
			return strings.ToUpper(strings.TrimPrefix(minor, "x-")) + " " + major, nil
		case "text":
			return "Text Document", nil
		}
	}
	return "Document", nil
}

// HFSCodes implements Identifier. Files without Finder info report Unknown
// for both codes.
func (d *Detector) HFSCodes(e fsutil.Entry) (string, string, error) {
	fi, err := d.readFinderInfo(e.FullPath)
	if err != nil {
		if errors.Is(err, fsutil.ErrNoAttribute) || errors.Is(err, errors.ErrUnsupported) {
			return Unknown, Unknown, nil
		}
		return "", "", err
	}
	return orUnknown(fi.FileType()), orUnknown(fi.Creator()), nil
}

// Icon implements Identifier.
func (d *Detector) Icon(e fsutil.Entry) (Icon, error) {
	switch {
	case e.IsSymlink:
		return Icon{Name: "inode-symlink"}, nil
	case e.IsDir && strings.EqualFold(filepath.Ext(e.Name), ".app"):
		return Icon{Name: "application-x-executable"}, nil
	case e.IsDir && fsutil.IsPackageName(e.Name):
		return Icon{Name: "package-x-generic"}, nil
	case e.IsDir:
		return Icon{Name: "folder"}, nil
	}

	mimeType, err := d.MIMEType(e)
	if err != nil {
		return Icon{}, err
	}
	if mimeType == Unknown || mimeType == "" {
		return Icon{Name: "unknown"}, nil
	}
	return Icon{Name: strings.ReplaceAll(mimeType, "/", "-")}, nil
}

func directoryUTI(e fsutil.Entry) string {
	if strings.EqualFold(filepath.Ext(e.Name), ".app") {
		return utiApplication
	}
	if fsutil.IsPackageName(e.Name) {
		return utiPackage
	}
	if e.FullPath != "" && filepath.Dir(e.FullPath) == e.FullPath {
		return utiVolume
	}
	return utiFolder
}

func stripParams(mimeType string) string {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mediaType
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		return strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// MatchMIME reports whether mimeType matches pattern, where pattern may be a
// "type/*" wildcard.
func MatchMIME(pattern, mimeType string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	mimeType = strings.ToLower(mimeType)
	if major, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(mimeType, major+"/")
	}
	return pattern == mimeType
}
