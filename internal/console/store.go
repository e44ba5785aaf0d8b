package console

import "sync"

// Keyed is any record with an integer identity.
type Keyed interface {
	Key() int
}

// Store is the reconciling in-memory collection for one view: an
// ordered sequence of canonical records, at most one per identity.
// The snapshot load replaces it wholesale; every real-time delta and
// optimistic local edit applies exactly one of Upsert, Replace, or
// Remove. A created echo arriving after the optimistic apply hits the
// same key again, so all three operations are idempotent: Upsert
// replaces in place on a key collision instead of inserting a
// duplicate.
//
// Deltas arrive on the subscriber goroutine while the owning view reads
// from its own; the mutex serializes them.
type Store[T Keyed] struct {
	mu       sync.Mutex
	items    []T
	onChange func([]T)
}

func NewStore[T Keyed]() *Store[T] {
	return &Store[T]{}
}

// OnChange registers a callback invoked with a snapshot copy after
// every mutation that altered the store.
func (s *Store[T]) OnChange(fn func([]T)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Reset replaces the whole collection, preserving the given order.
func (s *Store[T]) Reset(items []T) {
	s.mu.Lock()
	s.items = append(s.items[:0:0], items...)
	s.notifyLocked()
	s.mu.Unlock()
}

// Upsert handles a created record: insert at the front (most recent
// first), or replace in place when the identity is already present.
func (s *Store[T]) Upsert(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(item.Key()); i >= 0 {
		s.items[i] = item
		s.notifyLocked()
		return
	}
	s.items = append([]T{item}, s.items...)
	s.notifyLocked()
}

// Replace swaps the record with a matching identity, keeping its
// position. An update for an unknown identity is dropped, not inserted.
func (s *Store[T]) Replace(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(item.Key())
	if i < 0 {
		return false
	}
	s.items[i] = item
	s.notifyLocked()
	return true
}

// Remove drops the record with the given identity; no-op if absent.
func (s *Store[T]) Remove(key int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(key)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.notifyLocked()
	return true
}

func (s *Store[T]) Get(key int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	i := s.indexLocked(key)
	if i < 0 {
		return zero, false
	}
	return s.items[i], true
}

// Items returns a copy in display order, never nil.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[T]) indexLocked(key int) int {
	for i, item := range s.items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store[T]) notifyLocked() {
	if s.onChange != nil {
		s.onChange(append([]T(nil), s.items...))
	}
}
