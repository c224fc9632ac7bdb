package onboarding

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the live wizard drafts, one per user. It is an explicitly
// scoped container handed to the handler, not package state, so tests can
// run isolated stores side by side. Abandoned drafts expire after the TTL.
type Store struct {
	ttl time.Duration

	mu     sync.Mutex
	drafts map[uuid.UUID]*Draft
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	s := &Store{ttl: ttl, drafts: make(map[uuid.UUID]*Draft)}
	go s.evictLoop()
	return s
}

func (s *Store) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-s.ttl)
		s.mu.Lock()
		for id, d := range s.drafts {
			if d.UpdatedAt.Before(cutoff) {
				delete(s.drafts, id)
			}
		}
		s.mu.Unlock()
	}
}

// Start creates a fresh draft for the user, replacing any existing one.
// Returns a clone of the stored draft.
func (s *Store) Start(userID uuid.UUID, role string) *Draft {
	d := NewDraft(userID, role)
	d.UpdatedAt = time.Now()
	s.mu.Lock()
	s.drafts[userID] = d
	c := d.Clone()
	s.mu.Unlock()
	return c
}

// Get returns a clone of the user's draft, or nil. The live draft never
// leaves the lock; a concurrent Update cannot touch the returned copy.
func (s *Store) Get(userID uuid.UUID) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[userID]
	if !ok {
		return nil
	}
	return d.Clone()
}

// Update runs fn against the user's draft under the store lock. Returns
// false when no draft exists.
func (s *Store) Update(userID uuid.UUID, fn func(*Draft) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[userID]
	if !ok {
		return false, nil
	}
	if err := fn(d); err != nil {
		return true, err
	}
	d.UpdatedAt = time.Now()
	return true, nil
}

// Delete discards the draft. Called after a successful submit.
func (s *Store) Delete(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.drafts, userID)
	s.mu.Unlock()
}
