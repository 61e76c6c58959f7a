// Package redisstore implements the frequency store on a Redis sorted set.
// Every phrase is a member of one set whose score is the phrase's count, so
// concurrent increments from many processes are safe at the value level.
package redisstore

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/redis"
)

// DefaultKey is the sorted-set key used when Options.Key is empty.
const DefaultKey = "ngrams_frequency"

// Options configures a Store.
type Options struct {
	Key          string
	DefaultScore int64
}

// Store maps the frequency store contract onto sorted-set commands.
type Store struct {
	client *pkgredis.Client
	key    string
	opts   Options
}

// New returns a Store over client.
func New(client *pkgredis.Client, opts Options) *Store {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key, opts: opts}
}

// Key returns the sorted-set key holding the counts.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) Add(ctx context.Context, phrase string, increment int64) error {
	if err := store.ValidateIncrement(increment); err != nil {
		return err
	}
	if _, err := s.client.IncrMember(ctx, s.key, phrase, increment); err != nil {
		return fmt.Errorf("incrementing %q: %w", phrase, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, phrase string) (int64, error) {
	score, err := s.client.MemberScore(ctx, s.key, phrase)
	if err != nil {
		if pkgredis.IsNilError(err) {
			return s.opts.DefaultScore, nil
		}
		return 0, fmt.Errorf("reading score of %q: %w", phrase, err)
	}
	return int64(score), nil
}

func (s *Store) IndexOf(ctx context.Context, phrase string) (int64, error) {
	rank, err := s.client.MemberRank(ctx, s.key, phrase)
	if err != nil {
		if pkgredis.IsNilError(err) {
			return -1, nil
		}
		return 0, fmt.Errorf("reading rank of %q: %w", phrase, err)
	}
	return rank, nil
}

func (s *Store) Length(ctx context.Context) (int64, error) {
	n, err := s.client.Cardinality(ctx, s.key)
	if err != nil {
		return 0, fmt.Errorf("reading cardinality: %w", err)
	}
	return n, nil
}

// Slice translates the exclusive end of the contract into ZRANGE's inclusive
// stop. A stop of -1 means "last member" to Redis, so end == 0 is answered
// locally.
func (s *Store) Slice(ctx context.Context, start, end int64) ([]string, error) {
	stop := int64(-1)
	if end != store.ToEnd {
		if end == 0 {
			return []string{}, nil
		}
		stop = end - 1
	}
	members, err := s.client.RangeByIndex(ctx, s.key, start, stop)
	if err != nil {
		return nil, fmt.Errorf("ranging [%d, %d]: %w", start, stop, err)
	}
	return members, nil
}

// Clean removes members scoring within (-inf, 1].
func (s *Store) Clean(ctx context.Context) (int64, error) {
	removed, err := s.client.RemoveByMaxScore(ctx, s.key, 1)
	if err != nil {
		return 0, fmt.Errorf("removing rare phrases: %w", err)
	}
	return removed, nil
}

func (s *Store) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key); err != nil {
		return fmt.Errorf("deleting %s: %w", s.key, err)
	}
	return nil
}
