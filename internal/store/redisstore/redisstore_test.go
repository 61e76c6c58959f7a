package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/storetest"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/redis"
)

func newClient(t *testing.T) (*pkgredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := pkgredis.NewClient(config.RedisConfig{Addr: mr.Addr(), PoolSize: 4})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		client, _ := newClient(t)
		return New(client, Options{})
	})
}

func TestUsesConfiguredKey(t *testing.T) {
	ctx := context.Background()
	client, mr := newClient(t)
	s := New(client, Options{Key: "custom"})

	require.NoError(t, s.Add(ctx, "the cat", 3))

	score, err := mr.ZScore("custom", "the cat")
	require.NoError(t, err)
	assert.Equal(t, 3.0, score)
	assert.False(t, mr.Exists(DefaultKey))
}

func TestDefaultScore(t *testing.T) {
	client, _ := newClient(t)
	s := New(client, Options{DefaultScore: 9})

	got, err := s.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)
}

func TestTiesAreLexicographic(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(t)
	s := New(client, Options{})

	require.NoError(t, s.Add(ctx, "beta", 1))
	require.NoError(t, s.Add(ctx, "alpha", 1))

	got, err := s.Slice(ctx, 0, store.ToEnd)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, got)
}

func TestBackendErrorPropagates(t *testing.T) {
	ctx := context.Background()
	client, mr := newClient(t)
	s := New(client, Options{})
	mr.Close()

	assert.Error(t, s.Add(ctx, "x", 1))
	_, err := s.Get(ctx, "x")
	assert.Error(t, err)
	_, err = s.IndexOf(ctx, "x")
	assert.Error(t, err)
}
