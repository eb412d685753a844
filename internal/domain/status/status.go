// Package status holds the process-wide agent availability cell.
package status

import (
	"sync"
	"time"
)

// Availability is the shared service availability signal. Exactly one live
// instance exists per process, owned by a Store.
type Availability struct {
	Available bool      `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`
}

// Store guards the availability cell. A single background watcher writes it;
// any number of request paths read it. The mutex guarantees readers never
// observe a half-written value.
type Store struct {
	mu  sync.RWMutex
	cur Availability
	now func() time.Time // for testing
}

// NewStore creates a Store with a default "available" value.
func NewStore(source string) *Store {
	s := &Store{now: time.Now}
	s.cur = Availability{Available: true, UpdatedAt: s.now(), Source: source}
	return s
}

// Current returns the availability value at this instant.
func (s *Store) Current() Availability {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// TryUpdate sets the availability flag if it differs from the current value.
// It reports whether a transition happened; a no-op update returns
// changed=false so callers never broadcast an unchanged value.
func (s *Store) TryUpdate(available bool) (changed bool, updated Availability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur.Available == available {
		return false, s.cur
	}

	s.cur.Available = available
	s.cur.UpdatedAt = s.now()
	return true, s.cur
}
