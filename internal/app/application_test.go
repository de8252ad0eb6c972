package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/item"
	"github.com/kk-code-lab/katsearch/internal/session"
	statepkg "github.com/kk-code-lab/katsearch/internal/state"
)

// drainUntil applies queued actions until done reports true.
func drainUntil(t *testing.T, app *Application, done func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !done() {
		select {
		case action := <-app.actionCh:
			app.handleAction(action)
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for actions (message %q, err %v)", app.state.Message, app.state.LastError)
		}
	}
}

func writeTree(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestStartSearchDeliversResults(t *testing.T) {
	dir := writeTree(t, "report-2024.txt", "report-2025.txt", "notes.md")
	sess := session.New()
	app := newApplication(newTestScreen(t), Options{
		Query: catalog.Query{
			Name:  catalog.NamePattern{Text: "report"},
			Roots: []string{dir},
		},
		Session:     sess,
		Deps:        item.Deps{Service: &recordingService{}},
		StartSearch: true,
	})

	if app.state.SearchStatus != statepkg.SearchStatusRunning {
		t.Fatalf("status = %v, want running", app.state.SearchStatus)
	}
	drainUntil(t, app, func() bool { return app.state.SearchStatus == statepkg.SearchStatusComplete })

	if len(app.state.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(app.state.Results))
	}
	if sess.Active() {
		t.Fatalf("session still reports an active scan")
	}
	if got := sess.Recent.All(); len(got) != 1 || got[0].Name.Text != "report" {
		t.Fatalf("recent = %v", got)
	}
}

func TestResubmitDropsStaleScan(t *testing.T) {
	dir := writeTree(t, "alpha.txt", "beta.txt")
	app := newApplication(newTestScreen(t), Options{
		Query:       catalog.Query{Name: catalog.NamePattern{Text: "alpha"}, Roots: []string{dir}},
		Session:     session.New(),
		Deps:        item.Deps{Service: &recordingService{}},
		StartSearch: true,
	})
	first := app.state.SearchToken

	app.state.QueryText = "beta"
	app.handleAction(statepkg.SubmitQueryAction{})
	if app.state.SearchToken == first {
		t.Fatalf("resubmit kept token %d", first)
	}
	drainUntil(t, app, func() bool { return app.state.SearchStatus == statepkg.SearchStatusComplete })

	for _, it := range app.state.Results {
		if it.Name() != "beta.txt" {
			t.Fatalf("stale result %q survived", it.Name())
		}
	}
	if got := app.session.Recent.All(); len(got) != 2 || got[0].Name.Text != "beta" {
		t.Fatalf("recent = %v", got)
	}
}

func TestMouseClickSelectsAndDoubleClickOpens(t *testing.T) {
	svc := &recordingService{}
	dir := writeTree(t, "a.txt", "b.txt")
	app := newTestApplication(t)
	app.state.Editing = false
	app.state.Results = []*item.Item{
		item.New(filepath.Join(dir, "a.txt"), item.Deps{Service: svc}),
		item.New(filepath.Join(dir, "b.txt"), item.Deps{Service: svc}),
	}

	click := tcell.NewEventMouse(3, firstResultRow+1, tcell.Button1, tcell.ModNone)
	app.handleMouse(click)
	app.processActions()
	if app.state.SelectedIndex != 1 {
		t.Fatalf("selected = %d, want 1", app.state.SelectedIndex)
	}

	app.handleMouse(click)
	app.processActions()
	drainUntil(t, app, func() bool { return len(svc.callList()) == 1 })
	if got := svc.callList()[0]; got != "open "+filepath.Join(dir, "b.txt") {
		t.Fatalf("call = %q", got)
	}
}

func TestMouseIgnoresClicksOutsideResults(t *testing.T) {
	app := newTestApplicationWithFile(t)
	app.handleMouse(tcell.NewEventMouse(3, 0, tcell.Button1, tcell.ModNone))
	app.handleMouse(tcell.NewEventMouse(3, firstResultRow+5, tcell.Button1, tcell.ModNone))

	select {
	case act := <-app.actionCh:
		t.Fatalf("expected no action, got %T", act)
	default:
	}
}

func TestCloseSavesSession(t *testing.T) {
	store := &session.MemoryStore{}
	sess, err := session.Open(store)
	if err != nil {
		t.Fatal(err)
	}
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	app := newApplication(screen, Options{Session: sess})
	sess.Recent.Record(catalog.Query{Name: catalog.NamePattern{Text: "kept"}})

	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if store.Saves != 1 || len(store.Snapshot.Recent) != 1 {
		t.Fatalf("store = %+v", store)
	}
}
