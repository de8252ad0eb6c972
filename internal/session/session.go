// Package session holds the process-wide state of a KatSearch run: recent
// searches, column visibility and the handle of the active scan.
package session

import (
	"context"
	"sync"

	"github.com/kk-code-lab/katsearch/internal/debuglog"
)

// Session is created once per process and passed to whoever needs it.
type Session struct {
	Recent  *RecentSearches
	Columns *ColumnSet

	store Store

	mu          sync.Mutex
	cancel      context.CancelFunc
	activeToken int
	nextToken   int
}

// New returns an empty session that is never persisted.
func New() *Session {
	return &Session{Recent: NewRecentSearches(nil), Columns: NewColumnSet()}
}

// Open restores a session from store. When the stored snapshot cannot be read
// the session starts empty and the error is returned alongside it.
func Open(store Store) (*Session, error) {
	s := New()
	s.store = store
	if store == nil {
		return s, nil
	}
	snap, err := store.Load()
	if err != nil {
		debuglog.Logf("session: restore failed: %v", err)
		return s, err
	}
	s.Recent = NewRecentSearches(snap.Recent)
	s.Columns.ApplyPrefs(snap.Columns)
	return s, nil
}

// Snapshot captures the persisted state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{Recent: s.Recent.All(), Columns: s.Columns.Prefs()}
}

// Begin registers cancel as the active scan, cancelling any previous one,
// and returns a token for End.
func (s *Session) Begin(cancel context.CancelFunc) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.nextToken++
	s.cancel = cancel
	s.activeToken = s.nextToken
	return s.activeToken
}

// CancelActive cancels the active scan and reports whether there was one.
func (s *Session) CancelActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	s.activeToken = 0
	return true
}

// End clears the active scan if token still names it.
func (s *Session) End(token int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != 0 && token == s.activeToken {
		s.cancel = nil
		s.activeToken = 0
	}
}

// Active reports whether a scan is registered.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Close cancels the active scan and saves the session.
func (s *Session) Close() error {
	s.CancelActive()
	if s.store == nil {
		return nil
	}
	return s.store.Save(s.Snapshot())
}
