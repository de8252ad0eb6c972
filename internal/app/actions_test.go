package app

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/language"

	"github.com/kk-code-lab/katsearch/internal/item"
	"github.com/kk-code-lab/katsearch/internal/osaction"
	"github.com/kk-code-lab/katsearch/internal/session"
	statepkg "github.com/kk-code-lab/katsearch/internal/state"
)

func TestNormalizeClipboardPathWindows(t *testing.T) {
	input := `C:\Users\me/project/sub/file.txt`
	got := normalizeClipboardPath(input, "windows")
	want := `C:\Users\me\project\sub\file.txt`
	if got != want {
		t.Fatalf("normalizeClipboardPath(%q, windows) = %q, want %q", input, got, want)
	}
}

func TestNormalizeClipboardPathUnix(t *testing.T) {
	input := "/tmp/project/dir/../file.txt"
	got := normalizeClipboardPath(input, "linux")
	want := "/tmp/project/file.txt"
	if got != want {
		t.Fatalf("normalizeClipboardPath(%q, linux) = %q, want %q", input, got, want)
	}
}

func TestDetectClipboardInternal(t *testing.T) {
	available := func(names ...string) func(string) (string, error) {
		return func(name string) (string, error) {
			for _, n := range names {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", exec.ErrNotFound
		}
	}

	tests := []struct {
		name  string
		goos  string
		tools []string
		want  []string
	}{
		{"wayland first", "linux", []string{"xclip", "wl-copy"}, []string{"/usr/bin/wl-copy"}},
		{"xclip selection", "linux", []string{"xclip"}, []string{"/usr/bin/xclip", "-selection", "clipboard"}},
		{"darwin", "darwin", []string{"pbcopy", "xclip"}, []string{"/usr/bin/pbcopy"}},
		{"none", "linux", nil, nil},
	}
	for _, tt := range tests {
		got, ok := detectClipboardInternal(tt.goos, available(tt.tools...))
		if ok != (tt.want != nil) {
			t.Fatalf("%s: ok = %v", tt.name, ok)
		}
		if strings.Join(got, " ") != strings.Join(tt.want, " ") {
			t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHandleClipboardSetsLastErrorOnFailure(t *testing.T) {
	app := newTestApplicationWithFile(t)
	app.clipboardAvail = true
	app.clipboardCmd = []string{"fake-clip", "--flag"}

	var recorded []string
	withFakeCommandBuilder(t, 7, &recorded, func() {
		app.handleClipboard()
	})

	if app.state.LastError == nil {
		t.Fatalf("expected clipboard failure to set LastError")
	}
	if got := app.state.LastError.Error(); !strings.Contains(got, "fake-clip") {
		t.Fatalf("expected error mentioning command, got %q", got)
	}
	if !app.state.LastYankTime.IsZero() {
		t.Fatalf("expected LastYankTime to remain zero on failure")
	}
	assertCommandRecorded(t, recorded, []string{"fake-clip", "--flag"})
}

func TestHandleClipboardUpdatesYankTimeOnSuccess(t *testing.T) {
	app := newTestApplicationWithFile(t)
	app.clipboardAvail = true
	app.clipboardCmd = []string{"fake-clip"}

	var recorded []string
	withFakeCommandBuilder(t, 0, &recorded, func() {
		app.handleClipboard()
	})

	if app.state.LastYankTime.IsZero() {
		t.Fatalf("expected LastYankTime to update on success")
	}
	if app.state.LastError != nil {
		t.Fatalf("expected LastError to remain nil on success, got %v", app.state.LastError)
	}
	assertCommandRecorded(t, recorded, []string{"fake-clip"})
}

func TestTrashRemovesResult(t *testing.T) {
	svc := &recordingService{}
	app := newTestApplicationWithFile(t)
	app.state.Results[0] = item.New(app.state.Results[0].Path(), item.Deps{Service: svc})

	app.handleAction(statepkg.TrashAction{})
	drainUntil(t, app, func() bool {
		return len(app.state.Results) == 0 && app.state.Message == "Move to Trash: sample.txt"
	})

	if got := svc.callList(); len(got) != 1 || !strings.HasPrefix(got[0], "trash ") {
		t.Fatalf("service calls = %v", got)
	}
}

func TestUnsupportedActionReportsMessage(t *testing.T) {
	svc := &recordingService{err: osaction.ErrUnsupported}
	app := newTestApplicationWithFile(t)
	app.state.Results[0] = item.New(app.state.Results[0].Path(), item.Deps{Service: svc})

	app.handleAction(statepkg.QuickLookAction{})
	drainUntil(t, app, func() bool { return app.state.LastError != nil })

	if app.state.Message != "Quick Look" || !strings.Contains(app.state.LastError.Error(), "not available") {
		t.Fatalf("message %q err %v", app.state.Message, app.state.LastError)
	}
	if len(app.state.Results) != 1 {
		t.Fatalf("failed action removed the result")
	}
}

func TestFolderSizeReportsTotals(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	app := newTestApplication(t)
	app.state.Results = []*item.Item{item.New(dir, item.Deps{Service: &recordingService{}})}

	app.handleAction(statepkg.FolderSizeAction{})
	drainUntil(t, app, func() bool { return strings.Contains(app.state.Message, "bytes in") })

	if !strings.Contains(app.state.Message, "100 bytes in 1 files") {
		t.Fatalf("message = %q", app.state.Message)
	}
	if got := app.state.Results[0].ColumnValue(context.Background(), item.ColumnSize); got == "?" {
		t.Fatalf("size column still unknown after folder size")
	}
}

func TestFolderSizeMessage(t *testing.T) {
	tests := []struct {
		name   string
		size   item.FolderSize
		locale language.Tag
		want   string
	}{
		{"complete", item.FolderSize{Bytes: 1234, Files: 2, Dirs: 1, Complete: true}, language.English,
			"docs: 1,234 bytes in 2 files, 1 folders"},
		{"partial", item.FolderSize{Bytes: 10, Files: 1, Unreadable: 3}, language.English,
			"docs: 10 bytes in 1 files, 0 folders (3 unreadable)"},
		{"german grouping", item.FolderSize{Bytes: 1234, Files: 1, Complete: true}, language.German,
			"docs: 1.234 bytes in 1 files, 0 folders"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := folderSizeMessage("docs", tt.size, tt.locale); got != tt.want {
				t.Fatalf("folderSizeMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToggleColumnUpdatesSessionAndState(t *testing.T) {
	app := newTestApplication(t)
	wasVisible := app.session.Columns.Visible(item.ColumnUTI)

	app.handleAction(statepkg.ToggleColumnAction{Column: item.ColumnUTI})

	if app.session.Columns.Visible(item.ColumnUTI) == wasVisible {
		t.Fatalf("session column not toggled")
	}
	found := false
	for _, c := range app.state.Columns {
		found = found || c == item.ColumnUTI
	}
	if found == wasVisible {
		t.Fatalf("state columns %v out of sync with session", app.state.Columns)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	code, err := strconv.Atoi(os.Getenv("HELPER_PROCESS_EXIT"))
	if err != nil {
		code = 1
	}
	os.Exit(code)
}

type recordingService struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *recordingService) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	return s.err
}

func (s *recordingService) callList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *recordingService) Open(_ context.Context, p string) error   { return s.record("open " + p) }
func (s *recordingService) Reveal(_ context.Context, p string) error { return s.record("reveal " + p) }
func (s *recordingService) RevealPackageContents(_ context.Context, p string) error {
	return s.record("contents " + p)
}
func (s *recordingService) OpenWith(_ context.Context, p, h string) error {
	return s.record("openwith " + p)
}
func (s *recordingService) ShowGetInfo(_ context.Context, p string) error  { return s.record("info " + p) }
func (s *recordingService) ShowOriginal(_ context.Context, p string) error { return s.record("original " + p) }
func (s *recordingService) QuickLook(_ context.Context, p string) error    { return s.record("quicklook " + p) }
func (s *recordingService) MoveToTrash(_ context.Context, p string) error  { return s.record("trash " + p) }
func (s *recordingService) DefaultHandler(context.Context, string) (string, error) {
	return "", osaction.ErrUnsupported
}
func (s *recordingService) AllHandlers(context.Context, string) ([]string, error) {
	return nil, osaction.ErrUnsupported
}
func (s *recordingService) Label(context.Context, string) (int, error)  { return 0, nil }
func (s *recordingService) SetLabel(context.Context, string, int) error { return nil }
func (s *recordingService) FinderComment(context.Context, string) (string, error) {
	return "", nil
}
func (s *recordingService) SetFinderComment(context.Context, string, string) error { return nil }
func (s *recordingService) NotifyChanged(string)                                   {}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	return newApplication(newTestScreen(t), Options{
		Session: session.New(),
		Deps:    item.Deps{Service: &recordingService{}},
	})
}

func newTestApplicationWithFile(t *testing.T) *Application {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	app := newTestApplication(t)
	app.state.Editing = false
	app.state.Results = []*item.Item{item.New(path, item.Deps{Service: &recordingService{}})}
	return app
}

func withFakeCommandBuilder(t *testing.T, exitCode int, recorded *[]string, fn func()) {
	t.Helper()
	orig := commandBuilder
	commandBuilder = func(name string, args ...string) *exec.Cmd {
		if recorded != nil {
			*recorded = append([]string{name}, args...)
		}
		return helperProcessCommand(exitCode, name, args...)
	}
	defer func() {
		commandBuilder = orig
	}()
	fn()
}

func helperProcessCommand(exitCode int, name string, args ...string) *exec.Cmd {
	cmdArgs := []string{"-test.run=TestHelperProcess", "--", name}
	cmdArgs = append(cmdArgs, args...)
	cmd := exec.Command(os.Args[0], cmdArgs...)
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_PROCESS=1",
		"HELPER_PROCESS_EXIT="+strconv.Itoa(exitCode),
	)
	return cmd
}

func newTestScreen(t *testing.T) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init screen: %v", err)
	}
	screen.SetSize(100, 20)
	t.Cleanup(func() {
		screen.Fini()
	})
	return screen
}

func assertCommandRecorded(t *testing.T, recorded, want []string) {
	t.Helper()
	if len(recorded) != len(want) {
		t.Fatalf("expected command %v, got %v", want, recorded)
	}
	for i := range want {
		if recorded[i] != want[i] {
			t.Fatalf("expected command %v, got %v", want, recorded)
		}
	}
}
