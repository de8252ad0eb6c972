package item

import "sync"

// State is the cache state of one attribute slot.
type State int

const (
	Unresolved State = iota
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unresolved"
	}
}

// slot caches one attribute. Its mutex serializes resolution, so a value is
// computed at most once until reset.
type slot struct {
	mu      sync.Mutex
	state   State
	value   any
	failure *Failure
}

// get returns the cached outcome, computing it first if needed. A cancelled
// computation is reported but not cached.
func (s *slot) get(attr Attribute, compute func() (any, error)) (any, *Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unresolved {
		value, err := compute()
		if err != nil {
			failure := classify(attr, err)
			if isCancellation(err) {
				return nil, failure
			}
			s.state, s.value, s.failure = Failed, nil, failure
		} else {
			s.state, s.value, s.failure = Resolved, value, nil
		}
	}
	return s.value, s.failure
}

// peek returns the cached outcome without computing.
func (s *slot) peek() (State, any, *Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.value, s.failure
}

func (s *slot) reset() {
	s.mu.Lock()
	s.state, s.value, s.failure = Unresolved, nil, nil
	s.mu.Unlock()
}
