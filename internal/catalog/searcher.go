package catalog

import (
	"context"
	"sync"
)

// Searcher runs at most one scan at a time on a background goroutine.
// Starting a scan cancels the previous one.
type Searcher struct {
	engine *Engine

	cancelMu sync.Mutex
	cancel   context.CancelFunc
	token    int
	wg       sync.WaitGroup
}

// NewSearcher wraps an engine for asynchronous use.
func NewSearcher(engine *Engine) *Searcher {
	return &Searcher{engine: engine}
}

// Start begins scanning q and returns the scan's token. callback receives
// match and skip updates followed by exactly one Done update. Updates from a
// superseded scan stop at the point its cancellation is observed; its Done
// update still arrives, with OutcomeCancelled.
func (s *Searcher) Start(q Query, callback func(Update)) int {
	s.cancelOngoingSearch()

	ctx, cancel := context.WithCancel(context.Background())
	token := s.setCancel(cancel)

	s.wg.Add(1)
	go func(ctx context.Context, cancel context.CancelFunc, token int) {
		defer s.wg.Done()
		defer s.clearCancel(token)
		defer cancel()

		summary := s.engine.Search(ctx, q, func(u Update) {
			if !s.isTokenCurrent(token) {
				return
			}
			callback(u)
		})
		callback(Update{Done: true, Summary: summary})
	}(ctx, cancel, token)

	return token
}

// Cancel stops the in-flight scan, if any.
func (s *Searcher) Cancel() {
	s.cancelOngoingSearch()
}

// Wait blocks until every scan started so far has delivered its Done update.
func (s *Searcher) Wait() {
	s.wg.Wait()
}

// Running reports whether token names the current, unfinished scan.
func (s *Searcher) Running(token int) bool {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	return s.token == token && s.cancel != nil
}

func (s *Searcher) cancelOngoingSearch() {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.token++
	}
}

func (s *Searcher) setCancel(cancel context.CancelFunc) int {
	s.cancelMu.Lock()
	s.token++
	token := s.token
	s.cancel = cancel
	s.cancelMu.Unlock()
	return token
}

func (s *Searcher) clearCancel(token int) {
	s.cancelMu.Lock()
	if s.token == token {
		s.cancel = nil
	}
	s.cancelMu.Unlock()
}

func (s *Searcher) isTokenCurrent(token int) bool {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	return s.token == token
}
