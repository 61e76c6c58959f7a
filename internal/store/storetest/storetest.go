// Package storetest runs the frequency store contract against any backend.
// Backend packages call Run from their own tests with a factory that returns
// an empty store.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
)

// Factory returns a fresh, empty store for one sub-test.
type Factory func(t *testing.T) store.Store

// Run exercises every contract property. Tie order among equal counts is
// backend-defined, so assertions only compare counts across positions.
func Run(t *testing.T, newStore Factory) {
	t.Run("GetSumsIncrements", func(t *testing.T) { testGetSumsIncrements(t, newStore(t)) })
	t.Run("AbsentDefaults", func(t *testing.T) { testAbsentDefaults(t, newStore(t)) })
	t.Run("RejectsInvalidIncrement", func(t *testing.T) { testRejectsInvalidIncrement(t, newStore(t)) })
	t.Run("LengthCountsDistinct", func(t *testing.T) { testLengthCountsDistinct(t, newStore(t)) })
	t.Run("SliceAscending", func(t *testing.T) { testSliceAscending(t, newStore(t)) })
	t.Run("IndexOfMatchesSlice", func(t *testing.T) { testIndexOfMatchesSlice(t, newStore(t)) })
	t.Run("SliceSemantics", func(t *testing.T) { testSliceSemantics(t, newStore(t)) })
	t.Run("Clean", func(t *testing.T) { testClean(t, newStore(t)) })
	t.Run("Reset", func(t *testing.T) { testReset(t, newStore(t)) })
}

func add(t *testing.T, s store.Store, counts map[string]int64) {
	t.Helper()
	ctx := context.Background()
	for phrase, n := range counts {
		require.NoError(t, s.Add(ctx, phrase, n))
	}
}

func testGetSumsIncrements(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "the cat", 1))
	require.NoError(t, s.Add(ctx, "the cat", 4))
	require.NoError(t, s.Add(ctx, "the cat", 2))
	require.NoError(t, s.Add(ctx, "mat", 3))

	got, err := s.Get(ctx, "the cat")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	got, err = s.Get(ctx, "mat")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func testAbsentDefaults(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, map[string]int64{"present": 2})

	got, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	rank, err := s.IndexOf(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rank)
}

func testRejectsInvalidIncrement(t *testing.T, s store.Store) {
	ctx := context.Background()
	assert.ErrorIs(t, s.Add(ctx, "zero", 0), store.ErrInvalidIncrement)
	assert.ErrorIs(t, s.Add(ctx, "negative", -1), store.ErrInvalidIncrement)

	n, err := s.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func testLengthCountsDistinct(t *testing.T, s store.Store) {
	ctx := context.Background()
	n, err := s.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	for _, p := range []string{"a", "b", "a", "c", "b", "a"} {
		require.NoError(t, s.Add(ctx, p, 1))
	}
	n, err = s.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func testSliceAscending(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, map[string]int64{"e": 5, "a": 1, "d": 4, "b": 2, "c": 3, "b2": 2})
	require.NoError(t, s.Add(ctx, "a", 6))

	n, err := s.Length(ctx)
	require.NoError(t, err)
	all, err := s.Slice(ctx, 0, n)
	require.NoError(t, err)
	require.Len(t, all, int(n))

	seen := make(map[string]bool, len(all))
	var prev int64 = -1
	for _, p := range all {
		assert.False(t, seen[p], "phrase %q enumerated twice", p)
		seen[p] = true
		count, err := s.Get(ctx, p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, count, prev, "slice must be non-decreasing in count")
		prev = count
	}
	assert.Equal(t, "a", all[len(all)-1], "a has the highest count")
}

func testIndexOfMatchesSlice(t *testing.T, s store.Store) {
	ctx := context.Background()
	counts := map[string]int64{"x": 3, "y": 1, "z": 2, "w": 2}
	add(t, s, counts)

	for phrase := range counts {
		rank, err := s.IndexOf(ctx, phrase)
		require.NoError(t, err)
		require.GreaterOrEqual(t, rank, int64(0))
		one, err := s.Slice(ctx, rank, rank+1)
		require.NoError(t, err)
		assert.Equal(t, []string{phrase}, one)
	}

	rank, err := s.IndexOf(ctx, "y")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rank)
	rank, err = s.IndexOf(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rank)
}

func testSliceSemantics(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, map[string]int64{"one": 1, "two": 2, "three": 3, "four": 4, "five": 5})

	tests := []struct {
		name       string
		start, end int64
		want       []string
	}{
		{"all", 0, store.ToEnd, []string{"one", "two", "three", "four", "five"}},
		{"middle", 1, 3, []string{"two", "three"}},
		{"last two", -2, store.ToEnd, []string{"four", "five"}},
		{"drop last", 0, -1, []string{"one", "two", "three", "four"}},
		{"negative range", -3, -1, []string{"three", "four"}},
		{"end zero", 0, 0, []string{}},
		{"start past end", 4, 2, []string{}},
		{"out of range", 10, store.ToEnd, []string{}},
		{"end past length", 3, 99, []string{"four", "five"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Slice(ctx, tt.start, tt.end)
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func testClean(t *testing.T, s store.Store) {
	cleaner, ok := s.(store.Cleaner)
	if !ok {
		t.Skip("backend does not support cleaning")
	}
	ctx := context.Background()
	add(t, s, map[string]int64{"rare": 1, "once": 1, "twice": 2, "often": 7})

	before, err := s.Length(ctx)
	require.NoError(t, err)

	removed, err := cleaner.Clean(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	after, err := s.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, before-removed, after)

	remaining, err := s.Slice(ctx, 0, store.ToEnd)
	require.NoError(t, err)
	assert.Equal(t, []string{"twice", "often"}, remaining)
	for _, p := range remaining {
		count, err := s.Get(ctx, p)
		require.NoError(t, err)
		assert.Greater(t, count, int64(1))
	}

	rank, err := s.IndexOf(ctx, "rare")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rank)

	removed, err = cleaner.Clean(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func testReset(t *testing.T, s store.Store) {
	resetter, ok := s.(store.Resetter)
	if !ok {
		t.Skip("backend does not support reset")
	}
	ctx := context.Background()
	add(t, s, map[string]int64{"a": 1, "b": 2})

	require.NoError(t, resetter.Reset(ctx))

	n, err := s.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}
