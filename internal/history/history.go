// Package history keeps the results of successful evaluations for a
// limited time.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/intel/webapps-scientific-calculator/internal/formula"
)

// DefaultRetention is how long an entry stays listed.
const DefaultRetention = 7 * 24 * time.Hour

// ErrIndex is returned for an index outside the listed entries.
var ErrIndex = errors.New("history index out of range")

// Entry is one evaluated formula.
type Entry struct {
	Formula string    `json:"formula"`
	Result  string    `json:"result"`
	Value   float64   `json:"value"`
	At      time.Time `json:"at"`
}

// Store is a retention-bounded, oldest-first list of entries. It is safe
// for concurrent use.
type Store struct {
	mu        sync.Mutex
	retention time.Duration
	entries   []Entry
}

// New returns an empty store. A non-positive retention keeps entries
// forever.
func New(retention time.Duration) *Store {
	return &Store{retention: retention}
}

// Record appends an entry.
func (s *Store) Record(f string, result float64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Entry{
		Formula: f,
		Result:  formula.FormatResult(result),
		Value:   result,
		At:      at,
	})
}

// List drops entries older than the retention window and returns a copy of
// the rest, oldest first.
func (s *Store) List(now time.Time) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now)
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get returns the entry at index as List would number it.
func (s *Store) Get(index int, now time.Time) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now)
	if index < 0 || index >= len(s.entries) {
		return Entry{}, ErrIndex
	}
	return s.entries[index], nil
}

// Len is the number of stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// prune assumes entries are in recording order; everything before the
// first fresh entry goes.
func (s *Store) prune(now time.Time) {
	if s.retention <= 0 {
		return
	}
	cutoff := now.Add(-s.retention)
	i := 0
	for i < len(s.entries) && s.entries[i].At.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.entries = append(s.entries[:0:0], s.entries[i:]...)
	}
}
