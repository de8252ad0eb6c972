package osaction

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const desktopEntrySection = "Desktop Entry"

// desktopFile is a parsed freedesktop .desktop file.
type desktopFile struct {
	sections []desktopSection
}

type desktopSection struct {
	name   string
	values []desktopValue
}

// desktopValue is one key=value line. A [locale] suffix on the key is kept
// apart from the key itself.
type desktopValue struct {
	key    string
	locale string
	value  string
}

// find returns the unlocalized value of key in the named section.
func (f *desktopFile) find(section, key string) (string, bool) {
	for _, s := range f.sections {
		if s.name != section {
			continue
		}
		for _, v := range s.values {
			if v.key == key && v.locale == "" {
				return v.value, true
			}
		}
	}
	return "", false
}

func parseDesktopFile(r io.Reader) (*desktopFile, error) {
	f := &desktopFile{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("line %d: unterminated section header", lineNo)
			}
			f.sections = append(f.sections, desktopSection{name: line[1 : len(line)-1]})
			continue
		}
		if len(f.sections) == 0 {
			return nil, fmt.Errorf("line %d: key outside of any section", lineNo)
		}
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("line %d: expected key=value", lineNo)
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		locale := ""
		if open := strings.IndexByte(key, '['); open >= 0 {
			if !strings.HasSuffix(key, "]") {
				return nil, fmt.Errorf("line %d: unterminated locale in %q", lineNo, key)
			}
			locale = key[open+1 : len(key)-1]
			key = key[:open]
		}
		current := &f.sections[len(f.sections)-1]
		current.values = append(current.values, desktopValue{key: key, locale: locale, value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading desktop file: %w", err)
	}
	return f, nil
}

// splitList splits a semicolon-separated desktop-entry list.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// applicationDirs lists the XDG application directories in precedence order.
func applicationDirs(getenv func(string) string) []string {
	dataHome := getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home := getenv("HOME"); home != "" {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	dataDirs := getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}

	var dirs []string
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}
	for _, dir := range filepath.SplitList(dataDirs) {
		if dir != "" {
			dirs = append(dirs, filepath.Join(dir, "applications"))
		}
	}
	return dirs
}

// handlerDB maps MIME types to the desktop IDs of applications declaring them.
type handlerDB map[string][]string

// loadHandlerDB scans the application directories. An ID found in an earlier
// directory shadows the same ID further down. Unreadable files are skipped.
func loadHandlerDB(dirs []string) handlerDB {
	seen := map[string]bool{}
	db := handlerDB{}
	for _, dir := range dirs {
		var ids []string
		paths := map[string]string{}
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != dir {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".desktop") {
				return nil
			}
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				return nil
			}
			id := strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
			if seen[id] {
				return nil
			}
			seen[id] = true
			ids = append(ids, id)
			paths[id] = path
			return nil
		})
		sort.Strings(ids)

		for _, id := range ids {
			file, err := readDesktopFile(paths[id])
			if err != nil {
				continue
			}
			if hidden, _ := file.find(desktopEntrySection, "Hidden"); hidden == "true" {
				continue
			}
			if kind, ok := file.find(desktopEntrySection, "Type"); ok && kind != "Application" {
				continue
			}
			mimes, _ := file.find(desktopEntrySection, "MimeType")
			for _, mime := range splitList(mimes) {
				db[strings.ToLower(mime)] = append(db[strings.ToLower(mime)], id)
			}
		}
	}
	return db
}

func readDesktopFile(path string) (*desktopFile, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return parseDesktopFile(fh)
}
