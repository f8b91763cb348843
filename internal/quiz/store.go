package quiz

import (
	"context"
	"sync"
	"time"
)

type storeEntry struct {
	mu      sync.Mutex
	session *Session
	touched time.Time
}

// Store keeps live sessions for front ends that serve many independent
// attempts (the HTTP API). Each session is guarded by its own mutex;
// sessions idle longer than the TTL are evicted by Sweep.
type Store struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*storeEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put registers a session and returns its id.
func (s *Store) Put(session *Session) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID()] = &storeEntry{session: session, touched: s.now()}
	return session.ID()
}

// With runs fn with exclusive access to the session.
func (s *Store) With(id string, fn func(*Session) error) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok {
		entry.touched = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Delete removes a session. It reports whether the id was known.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, entry := range s.entries {
		if entry.touched.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
