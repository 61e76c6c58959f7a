package backend

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/resilience"
)

// guarded routes every call through a circuit breaker so a dead remote
// backend fails fast with ErrStoreUnavailable instead of piling up requests.
type guarded struct {
	next    store.Store
	breaker *resilience.Breaker
}

func guard(s store.Store, b *resilience.Breaker) *guarded {
	return &guarded{next: s, breaker: b}
}

func (g *guarded) Add(ctx context.Context, phrase string, increment int64) error {
	return g.breaker.Execute(func() error {
		return g.next.Add(ctx, phrase, increment)
	})
}

func (g *guarded) Get(ctx context.Context, phrase string) (n int64, err error) {
	err = g.breaker.Execute(func() error {
		n, err = g.next.Get(ctx, phrase)
		return err
	})
	return n, err
}

func (g *guarded) IndexOf(ctx context.Context, phrase string) (rank int64, err error) {
	err = g.breaker.Execute(func() error {
		rank, err = g.next.IndexOf(ctx, phrase)
		return err
	})
	return rank, err
}

func (g *guarded) Length(ctx context.Context) (n int64, err error) {
	err = g.breaker.Execute(func() error {
		n, err = g.next.Length(ctx)
		return err
	})
	return n, err
}

func (g *guarded) Slice(ctx context.Context, start, end int64) (phrases []string, err error) {
	err = g.breaker.Execute(func() error {
		phrases, err = g.next.Slice(ctx, start, end)
		return err
	})
	return phrases, err
}

// Clean and Reset are always present on the wrapper; every backend this
// package builds supports both.
func (g *guarded) Clean(ctx context.Context) (removed int64, err error) {
	c, ok := g.next.(store.Cleaner)
	if !ok {
		return 0, apperrors.ErrCleanUnsupported
	}
	err = g.breaker.Execute(func() error {
		removed, err = c.Clean(ctx)
		return err
	})
	return removed, err
}

func (g *guarded) Reset(ctx context.Context) error {
	r, ok := g.next.(store.Resetter)
	if !ok {
		return apperrors.ErrResetUnsupported
	}
	return g.breaker.Execute(func() error {
		return r.Reset(ctx)
	})
}
