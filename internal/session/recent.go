package session

import (
	"sync"

	"github.com/kk-code-lab/katsearch/internal/catalog"
)

// RecentCapacity bounds the recent-searches list.
const RecentCapacity = 15

// RecentSearches is a bounded, newest-first list of past queries without
// duplicates. One writer and many readers may use it concurrently.
type RecentSearches struct {
	mu      sync.RWMutex
	queries []catalog.Query
}

// NewRecentSearches seeds the list, newest first. Duplicates and entries past
// capacity are dropped.
func NewRecentSearches(queries []catalog.Query) *RecentSearches {
	r := &RecentSearches{}
	for i := len(queries) - 1; i >= 0; i-- {
		r.Record(queries[i])
	}
	return r
}

// Record moves q to the front, removing an equal older entry and evicting the
// oldest entry once the list is full.
func (r *RecentSearches) Record(q catalog.Query) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]catalog.Query, 0, min(len(r.queries)+1, RecentCapacity))
	next = append(next, q)
	for _, existing := range r.queries {
		if len(next) == RecentCapacity {
			break
		}
		if existing.Equal(q) {
			continue
		}
		next = append(next, existing)
	}
	r.queries = next
}

// All returns a copy of the list, newest first.
func (r *RecentSearches) All() []catalog.Query {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Query, len(r.queries))
	copy(out, r.queries)
	return out
}

func (r *RecentSearches) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queries)
}

func (r *RecentSearches) Clear() {
	r.mu.Lock()
	r.queries = nil
	r.mu.Unlock()
}
