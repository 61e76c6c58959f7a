// Package memory implements the frequency store in process: a count map plus
// a separately maintained slice of phrases kept in ascending count order.
//
// Updates cost O(n) because the phrase is removed by linear scan and the
// slice is shifted on reinsertion. That is fine for demo-sized corpora; large
// dictionaries belong in the redis, postgres or bolt backends.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
)

// Options configures a Store.
type Options struct {
	// DefaultScore is returned by Get for unknown phrases.
	DefaultScore int64
}

// Store is an in-process ranked frequency store.
type Store struct {
	mu     sync.RWMutex
	scores map[string]int64
	sorted []string
	opts   Options
}

// New returns an empty Store. At most one Options value is used.
func New(opts ...Options) *Store {
	s := &Store{
		scores: make(map[string]int64),
	}
	if len(opts) > 0 {
		s.opts = opts[0]
	}
	return s
}

// Add increments phrase's count and moves it to its new ordered position.
func (s *Store) Add(_ context.Context, phrase string, increment int64) error {
	if err := store.ValidateIncrement(increment); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.scores[phrase]
	s.scores[phrase] += increment
	if existed {
		if i := s.position(phrase); i >= 0 {
			s.sorted = append(s.sorted[:i], s.sorted[i+1:]...)
		}
	}

	score := s.scores[phrase]
	at := sort.Search(len(s.sorted), func(i int) bool {
		return s.scores[s.sorted[i]] >= score
	})
	s.sorted = append(s.sorted, "")
	copy(s.sorted[at+1:], s.sorted[at:])
	s.sorted[at] = phrase
	return nil
}

func (s *Store) Get(_ context.Context, phrase string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[phrase]
	if !ok {
		return s.opts.DefaultScore, nil
	}
	return score, nil
}

func (s *Store) IndexOf(_ context.Context, phrase string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.scores[phrase]; !ok {
		return -1, nil
	}
	return int64(s.position(phrase)), nil
}

func (s *Store) Length(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.sorted)), nil
}

func (s *Store) Slice(_ context.Context, start, end int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lo, hi := store.Bounds(start, end, int64(len(s.sorted)))
	out := make([]string, hi-lo)
	copy(out, s.sorted[lo:hi])
	return out, nil
}

// Clean drops every phrase counted at most once. Those phrases form a prefix
// of the ordered slice.
func (s *Store) Clean(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cut := sort.Search(len(s.sorted), func(i int) bool {
		return s.scores[s.sorted[i]] > 1
	})
	for _, phrase := range s.sorted[:cut] {
		delete(s.scores, phrase)
	}
	s.sorted = append(s.sorted[:0], s.sorted[cut:]...)
	return int64(cut), nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = make(map[string]int64)
	s.sorted = nil
	return nil
}

// position finds phrase in the ordered slice by linear scan. Callers hold
// the lock.
func (s *Store) position(phrase string) int {
	for i, p := range s.sorted {
		if p == phrase {
			return i
		}
	}
	return -1
}
