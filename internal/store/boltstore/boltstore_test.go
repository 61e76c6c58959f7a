package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/storetest"
)

func openTemp(t *testing.T, opts Options) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phrases.db")
	s, err := Open(path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, _ := openTemp(t, Options{})
		return s
	})
}

func TestCountsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "phrases.db")

	s, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "the cat", 2))
	require.NoError(t, s.Add(ctx, "mat", 1))
	require.NoError(t, s.Close())

	s, err = Open(path, Options{})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "the cat")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	all, err := s.Slice(ctx, 0, store.ToEnd)
	require.NoError(t, err)
	assert.Equal(t, []string{"mat", "the cat"}, all)
}

func TestTiesAreLexicographic(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t, Options{})
	require.NoError(t, s.Add(ctx, "beta", 2))
	require.NoError(t, s.Add(ctx, "alpha", 2))

	all, err := s.Slice(ctx, 0, store.ToEnd)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, all)
}

func TestDefaultScore(t *testing.T) {
	s, _ := openTemp(t, Options{DefaultScore: 3})
	got, err := s.Get(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}
