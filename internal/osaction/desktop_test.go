package osaction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	fsutil "github.com/kk-code-lab/katsearch/internal/fs"
)

type commandLog struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	out   map[string]string
}

func (l *commandLog) run(_ context.Context, name string, args ...string) ([]byte, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	l.mu.Lock()
	l.calls = append(l.calls, line)
	l.mu.Unlock()
	for prefix, err := range l.fail {
		if strings.HasPrefix(line, prefix) {
			return nil, err
		}
	}
	for prefix, out := range l.out {
		if strings.HasPrefix(line, prefix) {
			return []byte(out), nil
		}
	}
	return nil, nil
}

func (l *commandLog) start(name string, args ...string) error {
	_, err := l.run(context.Background(), name, args...)
	return err
}

func lookPathFor(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return name, nil
			}
		}
		return "", errors.New("not found")
	}
}

type xattrStore map[string]map[string][]byte

func (s xattrStore) get(path, name string) ([]byte, error) {
	if v, ok := s[path][name]; ok {
		return v, nil
	}
	return nil, fsutil.ErrNoAttribute
}

func (s xattrStore) set(path, name string, value []byte) error {
	if s[path] == nil {
		s[path] = map[string][]byte{}
	}
	s[path][name] = value
	return nil
}

func (s xattrStore) del(path, name string) error {
	if _, ok := s[path][name]; !ok {
		return fsutil.ErrNoAttribute
	}
	delete(s[path], name)
	return nil
}

func testDesktop(goos string, tools ...string) (*Desktop, *commandLog, xattrStore) {
	log := &commandLog{fail: map[string]error{}, out: map[string]string{}}
	store := xattrStore{}
	d := newDesktop(goos, lookPathFor(tools...))
	d.run = log.run
	d.start = log.start
	d.getenv = func(string) string { return "" }
	d.getXattr = store.get
	d.setXattr = store.set
	d.delXattr = store.del
	return d, log, store
}

func TestDesktopLinuxReveal(t *testing.T) {
	d, log, _ := testDesktop("linux", "dbus-send", "xdg-open")
	if err := d.Reveal(context.Background(), "/data/a b.txt"); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if len(log.calls) != 1 || !strings.Contains(log.calls[0], "ShowItems") ||
		!strings.Contains(log.calls[0], "array:string:file:///data/a%20b.txt") {
		t.Fatalf("calls=%v", log.calls)
	}
}

func TestDesktopLinuxRevealFallsBackToParent(t *testing.T) {
	d, log, _ := testDesktop("linux", "xdg-open")
	if err := d.Reveal(context.Background(), "/data/file.txt"); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if len(log.calls) != 1 || log.calls[0] != "xdg-open /data" {
		t.Fatalf("calls=%v", log.calls)
	}
}

func TestDesktopMissingToolIsUnsupported(t *testing.T) {
	d, _, _ := testDesktop("linux")
	err := d.MoveToTrash(context.Background(), "/data/file.txt")
	if !errors.Is(err, ErrUnsupported) || !errors.Is(err, errors.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestDesktopTrashUsesGio(t *testing.T) {
	d, log, _ := testDesktop("linux", "gio")
	if err := d.MoveToTrash(context.Background(), "/data/old.log"); err != nil {
		t.Fatalf("trash: %v", err)
	}
	if len(log.calls) != 1 || log.calls[0] != "gio trash /data/old.log" {
		t.Fatalf("calls=%v", log.calls)
	}

	log.fail["gio trash"] = errors.New("exit status 1")
	if err := d.MoveToTrash(context.Background(), "/data/x"); err == nil {
		t.Fatalf("expected failure")
	}
}

func TestDesktopNotifyChanged(t *testing.T) {
	d, _, _ := testDesktop("linux")
	var changed []string
	d.OnChanged(func(path string) { changed = append(changed, path) })
	d.OnChanged(func(path string) { changed = append(changed, "second:"+path) })
	d.NotifyChanged("/data")
	if len(changed) != 2 || changed[0] != "/data" || changed[1] != "second:/data" {
		t.Fatalf("changed=%v", changed)
	}
}

func TestDesktopNotifyChangedSnapshotsListeners(t *testing.T) {
	d, _, _ := testDesktop("linux")
	calls := 0
	d.OnChanged(func(string) {
		calls++
		d.OnChanged(func(string) { calls += 10 })
	})
	d.NotifyChanged("/data")
	if calls != 1 {
		t.Fatalf("listener added during notify ran in the same round: calls=%d", calls)
	}
	d.NotifyChanged("/data")
	if calls != 12 {
		t.Fatalf("calls=%d, want 12", calls)
	}
}

func TestDesktopDarwinCommands(t *testing.T) {
	d, log, _ := testDesktop("darwin", "open", "osascript", "qlmanage")
	ctx := context.Background()
	if err := d.Reveal(ctx, "/Users/me/a.txt"); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if err := d.OpenWith(ctx, "/Users/me/a.txt", "com.apple.TextEdit"); err != nil {
		t.Fatalf("open with: %v", err)
	}
	if err := d.QuickLook(ctx, "/Users/me/a.txt"); err != nil {
		t.Fatalf("quicklook: %v", err)
	}
	if err := d.SetFinderComment(ctx, `/Users/me/"quoted".txt`, "hi"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	want := []string{
		"open -R /Users/me/a.txt",
		"open -b com.apple.TextEdit /Users/me/a.txt",
		"qlmanage -p /Users/me/a.txt",
		`osascript -e tell application "Finder" to set comment of (POSIX file "/Users/me/\"quoted\".txt" as alias) to "hi"`,
	}
	if len(log.calls) != len(want) {
		t.Fatalf("calls=%v", log.calls)
	}
	for i := range want {
		if log.calls[i] != want[i] {
			t.Fatalf("call %d = %q want %q", i, log.calls[i], want[i])
		}
	}
}

func TestDesktopLinuxLabelAndComment(t *testing.T) {
	d, _, store := testDesktop("linux")
	ctx := context.Background()
	path := "/data/report.pdf"

	if label, err := d.Label(ctx, path); err != nil || label != LabelNone {
		t.Fatalf("unset label=%d err=%v", label, err)
	}
	if err := d.SetLabel(ctx, path, LabelRed); err != nil {
		t.Fatalf("set label: %v", err)
	}
	if got := string(store[path][LabelXattr]); got != "6" {
		t.Fatalf("stored label=%q", got)
	}
	if label, _ := d.Label(ctx, path); label != LabelRed {
		t.Fatalf("label=%d", label)
	}
	if err := d.SetLabel(ctx, path, LabelNone); err != nil {
		t.Fatalf("clear label: %v", err)
	}
	if _, ok := store[path][LabelXattr]; ok {
		t.Fatalf("clearing the label should remove the attribute")
	}
	if err := d.SetLabel(ctx, path, 9); err == nil {
		t.Fatalf("out-of-range label accepted")
	}

	if err := d.SetFinderComment(ctx, path, "quarterly numbers"); err != nil {
		t.Fatalf("set comment: %v", err)
	}
	if got, err := d.FinderComment(ctx, path); err != nil || got != "quarterly numbers" {
		t.Fatalf("comment=%q err=%v", got, err)
	}
}

func TestDesktopDarwinLabelUsesFinderInfo(t *testing.T) {
	d, _, store := testDesktop("darwin")
	d.finderInfo = func(path string) (fsutil.FinderInfo, error) {
		raw, err := store.get(path, fsutil.FinderInfoXattr)
		if err != nil {
			return fsutil.FinderInfo{}, err
		}
		return fsutil.ParseFinderInfo(raw)
	}
	ctx := context.Background()
	if err := d.SetLabel(ctx, "/x", LabelBlue); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := d.Label(ctx, "/x"); err != nil || got != LabelBlue {
		t.Fatalf("label=%d err=%v", got, err)
	}
}

func writeDesktopFile(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, "applications", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDesktopHandlersFromDesktopEntries(t *testing.T) {
	home, system := t.TempDir(), t.TempDir()
	writeDesktopFile(t, system, "org.gnome.eog.desktop",
		"[Desktop Entry]\nType=Application\nName=Image Viewer\nMimeType=image/png;image/jpeg;\n")
	writeDesktopFile(t, system, "gimp.desktop",
		"[Desktop Entry]\nType=Application\nName=GIMP\nMimeType=image/png;\n")
	writeDesktopFile(t, system, "kde/okular.desktop",
		"[Desktop Entry]\nType=Application\nMimeType=application/pdf;\n")
	// A user-level entry with the same ID hides the system one.
	writeDesktopFile(t, home, "gimp.desktop", "[Desktop Entry]\nType=Application\nHidden=true\n")

	d, log, _ := testDesktop("linux", "xdg-mime")
	d.getenv = func(key string) string {
		switch key {
		case "XDG_DATA_HOME":
			return home
		case "XDG_DATA_DIRS":
			return system
		}
		return ""
	}
	d.mimeOf = func(path string) (string, error) {
		if strings.HasSuffix(path, ".pdf") {
			return "application/pdf", nil
		}
		return "image/png", nil
	}
	log.out["xdg-mime query default image/png"] = "org.gnome.eog.desktop\n"

	all, err := d.AllHandlers(context.Background(), "/pics/a.png")
	if err != nil {
		t.Fatalf("all handlers: %v", err)
	}
	if len(all) != 1 || all[0] != "org.gnome.eog.desktop" {
		t.Fatalf("handlers=%v", all)
	}

	pdf, err := d.AllHandlers(context.Background(), "/docs/a.pdf")
	if err != nil {
		t.Fatalf("pdf handlers: %v", err)
	}
	if len(pdf) != 1 || pdf[0] != "kde-okular.desktop" {
		t.Fatalf("pdf handlers=%v", pdf)
	}
}

func TestDesktopHandlerDBLoadsOnceConcurrently(t *testing.T) {
	d, _, _ := testDesktop("linux")
	calls := 0
	var mu sync.Mutex
	d.getenv = func(key string) string {
		if key == "XDG_DATA_DIRS" {
			mu.Lock()
			calls++
			mu.Unlock()
			return t.TempDir()
		}
		return ""
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.handlersFor("text/plain")
		}()
	}
	wg.Wait()
	_, _ = d.handlersFor("text/plain")
	mu.Lock()
	defer mu.Unlock()
	if calls == 0 || calls > 8 {
		t.Fatalf("unexpected load count %d", calls)
	}
	if d.handlers == nil {
		t.Fatalf("database should be cached")
	}
}

func TestParseDesktopFile(t *testing.T) {
	body := `# comment
[Desktop Entry]
Name=Files
Name[de]=Dateien
Exec=nautilus %U
MimeType=inode/directory;

[Desktop Action new-window]
Name=New Window
`
	f, err := parseDesktopFile(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, _ := f.find(desktopEntrySection, "Name"); got != "Files" {
		t.Fatalf("Name=%q", got)
	}
	if got, _ := f.find("Desktop Action new-window", "Name"); got != "New Window" {
		t.Fatalf("action Name=%q", got)
	}
	if len(f.sections[0].values) != 4 || f.sections[0].values[1].locale != "de" {
		t.Fatalf("values=%+v", f.sections[0].values)
	}

	for _, bad := range []string{"Name=orphan\n", "[Desktop Entry\n", "[Desktop Entry]\nnoequals\n"} {
		if _, err := parseDesktopFile(strings.NewReader(bad)); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLabelNames(t *testing.T) {
	if LabelName(LabelOrange) != "Orange" || LabelName(42) != "Label 42" {
		t.Fatalf("label names wrong")
	}
	if n, err := ParseLabel("purple"); err != nil || n != LabelPurple {
		t.Fatalf("ParseLabel(purple)=%d,%v", n, err)
	}
	if n, err := ParseLabel("5"); err != nil || n != LabelYellow {
		t.Fatalf("ParseLabel(5)=%d,%v", n, err)
	}
	if _, err := ParseLabel("teal"); err == nil {
		t.Fatalf("unknown label accepted")
	}
}
