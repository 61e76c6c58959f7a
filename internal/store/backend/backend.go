// Package backend builds the frequency store selected in configuration and
// owns the connections behind it.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/boltstore"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/memory"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/pgstore"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/redisstore"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/resilience"
)

// Backend is an opened store plus the clients it was built on. Redis and
// Postgres are nil unless the matching backend was selected.
type Backend struct {
	Name     string
	Store    store.Store
	Redis    *pkgredis.Client
	Postgres *postgres.Client

	closers []func() error
}

// Options tune Open. Zero values are fine.
type Options struct {
	Retry   resilience.RetryConfig
	Breaker resilience.BreakerConfig
	Metrics *metrics.Metrics
}

// Open connects the configured backend, retrying the initial connection,
// and wraps the store with a circuit breaker (remote backends only) and
// instrumentation.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Backend, error) {
	logger := slog.Default().With("component", "backend")
	b := &Backend{Name: cfg.Store.Backend}

	var (
		s      store.Store
		remote bool
	)
	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		b.Name = config.BackendMemory
		s = memory.New(memory.Options{DefaultScore: cfg.Store.DefaultScore})

	case config.BackendRedis:
		var client *pkgredis.Client
		err := resilience.Retry(ctx, "redis-connect", opts.Retry, func(context.Context) error {
			var err error
			client, err = pkgredis.NewClient(cfg.Redis)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
		}
		b.Redis = client
		b.closers = append(b.closers, client.Close)
		s = redisstore.New(client, redisstore.Options{
			Key:          cfg.Store.Key,
			DefaultScore: cfg.Store.DefaultScore,
		})
		remote = true

	case config.BackendPostgres:
		var client *postgres.Client
		err := resilience.Retry(ctx, "postgres-connect", opts.Retry, func(context.Context) error {
			var err error
			client, err = postgres.New(cfg.Postgres)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
		}
		b.Postgres = client
		b.closers = append(b.closers, client.Close)
		pg := pgstore.New(client, pgstore.Options{DefaultScore: cfg.Store.DefaultScore})
		if err := pg.Migrate(ctx); err != nil {
			b.Close()
			return nil, err
		}
		s = pg
		remote = true

	case config.BackendBolt:
		bs, err := boltstore.Open(cfg.Store.BoltPath, boltstore.Options{DefaultScore: cfg.Store.DefaultScore})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, bs.Close)
		s = bs

	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownBackend, cfg.Store.Backend)
	}

	if remote {
		s = guard(s, resilience.NewBreaker(b.Name, opts.Breaker))
	}
	b.Store = store.Instrument(s, b.Name, opts.Metrics)
	logger.Info("store opened", "backend", b.Name)
	return b, nil
}

// Close releases every connection in reverse opening order and returns the
// first error.
func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}
