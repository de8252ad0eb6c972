package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/item"
	"github.com/kk-code-lab/katsearch/internal/session"
)

func newTestEnv() *cliEnv {
	return &cliEnv{
		session: session.New(),
		deps:    item.Deps{}.WithDefaults(),
		loaded:  true,
	}
}

func execute(t *testing.T, env *cliEnv, args ...string) (string, error) {
	t.Helper()
	cmd := NewCmdRoot(env)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestSearchPrintsPathsAndRecordsQuery(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"report-2023.txt":     "a",
		"sub/report-2024.txt": "b",
		"notes.md":            "c",
	})
	env := newTestEnv()

	out, err := execute(t, env, "report", "-v", dir)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	lines := strings.Fields(out)
	if len(lines) != 2 {
		t.Fatalf("expected 2 paths, got %q", out)
	}
	for _, line := range lines {
		if !strings.Contains(filepath.Base(line), "report") {
			t.Fatalf("unexpected match %q", line)
		}
	}
	if env.session.Recent.Len() != 1 {
		t.Fatalf("search not recorded in recent list")
	}
}

func TestSearchPrintsColumns(t *testing.T) {
	dir := writeTree(t, map[string]string{"data.bin": strings.Repeat("x", 2048)})
	env := newTestEnv()
	saved := env.session.Columns.VisibleColumns()

	out, err := execute(t, env, "data", "-v", dir, "-c", "size")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	rows := strings.Split(strings.TrimSpace(out), "\n")
	if len(rows) != 2 || !strings.HasPrefix(rows[0], "Path") {
		t.Fatalf("unexpected table %q", out)
	}
	if !strings.Contains(rows[1], "data.bin") || !strings.Contains(rows[1], "2.0 KiB") {
		t.Fatalf("row lacks path or size: %q", rows[1])
	}
	cols := env.session.Columns.VisibleColumns()
	if len(cols) != len(saved) {
		t.Fatalf("visible columns = %v, want unchanged %v", cols, saved)
	}
	for i := range cols {
		if cols[i] != saved[i] {
			t.Fatalf("visible columns = %v, want unchanged %v", cols, saved)
		}
	}
}

func TestSearchCancelledReportsInterrupt(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.txt": "a"})
	env := newTestEnv()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runSearch(ctx, env, catalog.Query{Roots: []string{dir}}, nil, false, &out, &out)
	if !errors.Is(err, errInterrupted) {
		t.Fatalf("err = %v, want interrupted", err)
	}
	if exitCode(err) != exitInterrupted {
		t.Fatalf("exit code = %d", exitCode(err))
	}
}

func TestConflictingModeFlags(t *testing.T) {
	if _, err := execute(t, newTestEnv(), "x", "-e", "-r"); err == nil {
		t.Fatalf("expected -e and -r to conflict")
	}
}

func TestRecentCommand(t *testing.T) {
	env := newTestEnv()
	env.session.Recent.Record(catalog.Query{Name: catalog.NamePattern{Text: "invoice"}})

	out, err := execute(t, env, "recent")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if !strings.Contains(out, `"invoice"`) {
		t.Fatalf("recent output %q lacks query", out)
	}

	if _, err := execute(t, env, "recent", "--clear"); err != nil {
		t.Fatalf("recent --clear: %v", err)
	}
	if env.session.Recent.Len() != 0 {
		t.Fatalf("recent list not cleared")
	}
}

func TestColumnsCommand(t *testing.T) {
	env := newTestEnv()
	out, err := execute(t, env, "columns", "--show", "mimetype", "--hide", "kind")
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if !env.session.Columns.Visible(item.ColumnMIMEType) || env.session.Columns.Visible(item.ColumnKind) {
		t.Fatalf("visibility not applied")
	}
	if !strings.Contains(out, "[x] MIMEType") || !strings.Contains(out, "[ ] Kind") {
		t.Fatalf("unexpected listing %q", out)
	}

	if _, err := execute(t, env, "columns", "--show", "bogus"); err == nil {
		t.Fatalf("expected unknown column error")
	}
}

func TestInfoCommand(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.txt": "hello"})
	out, err := execute(t, newTestEnv(), "info", filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"Path", "Size", "MIMEType", "text/plain"} {
		if !strings.Contains(out, want) {
			t.Fatalf("info output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "FolderSize") {
		t.Fatalf("folder size listed for a file")
	}

	if _, err := execute(t, newTestEnv(), "info", filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestInfoDates(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.txt": "hello"})
	path := filepath.Join(dir, "a.txt")
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	out, err := execute(t, newTestEnv(), "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	var modified string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "DateModified") {
			modified = line
		}
	}
	if !strings.Contains(modified, "("+mtime.Format(time.RFC3339)+")") &&
		!strings.Contains(modified, "("+mtime.Local().Format(time.RFC3339)+")") {
		t.Fatalf("DateModified row lacks ISO date: %q", modified)
	}
	if !strings.Contains(out, "Allocated") {
		t.Fatalf("info output lacks allocated size:\n%s", out)
	}
}

func TestInfoFolderSizeFillsSize(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.txt": "hello", "sub/b.txt": "world!"})

	tests := []struct {
		name     string
		args     []string
		wantSize string
	}{
		{"without walk", []string{"info", dir}, "failed"},
		{"with walk", []string{"info", "--folder-size", dir}, "resolved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, newTestEnv(), tt.args...)
			if err != nil {
				t.Fatalf("info: %v", err)
			}
			var size []string
			for _, line := range strings.Split(out, "\n") {
				if fields := strings.Fields(line); len(fields) > 1 && fields[0] == "Size" {
					size = fields
				}
			}
			if len(size) < 2 || size[1] != tt.wantSize {
				t.Fatalf("Size row = %v, want state %s\n%s", size, tt.wantSize, out)
			}
		})
	}
}

func TestSessionSavedOnClose(t *testing.T) {
	store := &session.MemoryStore{}
	sess, err := session.Open(store)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	env := &cliEnv{session: sess, loaded: true}
	if err := env.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := env.close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if store.Saves != 1 {
		t.Fatalf("saves = %d, want 1", store.Saves)
	}
}
