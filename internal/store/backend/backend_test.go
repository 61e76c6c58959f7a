package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/memory"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/storetest"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/resilience"
)

func open(t *testing.T, cfg *config.Config) *Backend {
	t.Helper()
	b, err := Open(context.Background(), cfg, Options{
		Retry: resilience.RetryConfig{MaxAttempts: 1},
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestOpenMemory(t *testing.T) {
	cfg := &config.Config{}
	b := open(t, cfg)
	assert.Equal(t, config.BackendMemory, b.Name)

	_, ok := b.Store.(store.Cleaner)
	assert.True(t, ok)
	require.NoError(t, b.Store.Add(context.Background(), "x", 2))
}

func TestOpenBolt(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{
		Backend:  config.BackendBolt,
		BoltPath: filepath.Join(t.TempDir(), "phrases.db"),
	}}
	b := open(t, cfg)
	n, err := b.Store.Length(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenRedisContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		mr := miniredis.RunT(t)
		cfg := &config.Config{
			Store: config.StoreConfig{Backend: config.BackendRedis},
			Redis: config.RedisConfig{Addr: mr.Addr()},
		}
		b := open(t, cfg)
		require.NotNil(t, b.Redis)
		return b.Store
	})
}

func TestOpenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendRedis},
		Redis: config.RedisConfig{Addr: addr},
	}
	_, err := Open(context.Background(), cfg, Options{
		Retry: resilience.RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond},
	})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Backend: "cassandra"}}, Options{})
	assert.ErrorIs(t, err, apperrors.ErrUnknownBackend)
}

type failing struct {
	*memory.Store
	calls int
}

func (f *failing) Length(context.Context) (int64, error) {
	f.calls++
	return 0, errors.New("connection refused")
}

func TestGuardOpensBreaker(t *testing.T) {
	inner := &failing{Store: memory.New()}
	g := guard(inner, resilience.NewBreaker("test", resilience.BreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Hour,
	}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.Length(ctx)
		require.Error(t, err)
	}
	_, err := g.Length(ctx)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.Equal(t, 2, inner.calls)

	// Clean shares the breaker
	_, err = g.Clean(ctx)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}
