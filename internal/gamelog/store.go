package gamelog

import (
	"sync"
)

// Store holds the game log of the subject currently on screen. Contents are
// replaced wholesale when the subject changes; individual records are never
// mutated in place.
type Store struct {
	mu      sync.RWMutex
	subject Subject
	records []Record
	gen     uint64
}

func NewStore() *Store {
	return &Store{}
}

// Replace swaps in a new subject and its records and bumps the generation.
// The slice is copied so callers may reuse theirs.
func (s *Store) Replace(subject Subject, records []Record) uint64 {
	cp := make([]Record, len(records))
	copy(cp, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject = subject
	s.records = cp
	s.gen++
	return s.gen
}

// Records returns the stored records. The returned slice must not be modified.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

func (s *Store) Subject() Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subject
}

// Generation increments on every Replace. Consumers use it as a cheap
// identity for "the record set changed".
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Snapshot returns subject, records and generation under one lock.
func (s *Store) Snapshot() (Subject, []Record, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subject, s.records, s.gen
}
