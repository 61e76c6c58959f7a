package ingest

import (
	"context"
	"fmt"
	"sync"

	pkgredis "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/redis"
)

// Seen remembers which documents were already counted.
type Seen interface {
	// Mark records id and reports whether it was new.
	Mark(ctx context.Context, id string) (bool, error)
	// Forget removes id so a redelivered document is counted again.
	Forget(ctx context.Context, id string) error
}

// RedisSeen keeps document ids in a Redis set shared by every consumer.
type RedisSeen struct {
	client *pkgredis.Client
	key    string
}

func NewRedisSeen(client *pkgredis.Client, key string) *RedisSeen {
	return &RedisSeen{client: client, key: key}
}

func (s *RedisSeen) Mark(ctx context.Context, id string) (bool, error) {
	added, err := s.client.AddToSet(ctx, s.key, id)
	if err != nil {
		return false, fmt.Errorf("marking document %s: %w", id, err)
	}
	return added, nil
}

func (s *RedisSeen) Forget(ctx context.Context, id string) error {
	if err := s.client.RemoveFromSet(ctx, s.key, id); err != nil {
		return fmt.Errorf("forgetting document %s: %w", id, err)
	}
	return nil
}

// MemorySeen is a process-local Seen.
type MemorySeen struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemorySeen() *MemorySeen {
	return &MemorySeen{ids: make(map[string]struct{})}
}

func (s *MemorySeen) Mark(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false, nil
	}
	s.ids[id] = struct{}{}
	return true, nil
}

func (s *MemorySeen) Forget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
	return nil
}
