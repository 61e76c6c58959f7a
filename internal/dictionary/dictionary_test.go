package dictionary

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/memory"
	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/tracing"
)

// plainStore hides the optional capabilities of the store it wraps.
type plainStore struct {
	store.Store
}

type recordingStore struct {
	store.Store
	mu    sync.Mutex
	adds  map[string][]int64
	fails map[string]error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		Store: memory.New(),
		adds:  make(map[string][]int64),
		fails: make(map[string]error),
	}
}

func (r *recordingStore) Add(ctx context.Context, phrase string, inc int64) error {
	r.mu.Lock()
	r.adds[phrase] = append(r.adds[phrase], inc)
	err := r.fails[phrase]
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.Store.Add(ctx, phrase, inc)
}

func newDict(t *testing.T, s store.Store, opts ...Option) *Dictionary {
	t.Helper()
	d, err := New(s, opts...)
	require.NoError(t, err)
	return d
}

func TestParseEndToEnd(t *testing.T) {
	ctx := context.Background()
	d := newDict(t, memory.New())

	n, err := d.Parse(ctx, "the cat sat on the mat the cat ran", 2)
	require.NoError(t, err)
	assert.Equal(t, 17, n)

	want := map[string]int64{
		"the": 3, "cat": 2, "the cat": 2,
		"sat": 1, "on": 1, "mat": 1, "ran": 1,
		"cat sat": 1, "sat on": 1, "on the": 1, "the mat": 1, "mat the": 1, "cat ran": 1,
	}
	for phrase, count := range want {
		got, err := d.Get(ctx, phrase)
		require.NoError(t, err)
		assert.Equal(t, count, got, phrase)
	}
	length, err := d.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), length)

	removed, err := d.Clean(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), removed)

	rest, err := d.Slice(ctx, 0, store.ToEnd)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"the", "cat", "the cat"}, rest)

	top, err := d.Slice(ctx, -1, store.ToEnd)
	require.NoError(t, err)
	assert.Equal(t, []string{"the"}, top)

	rank, err := d.IndexOf(ctx, "the")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)
}

func TestAddAggregatesDuplicates(t *testing.T) {
	rec := newRecordingStore()
	d := newDict(t, rec, WithConcurrency(2))

	require.NoError(t, d.Add(context.Background(), "a", "b", "a", "", "a", "c", "b"))

	assert.Equal(t, map[string][]int64{
		"a": {3},
		"b": {2},
		"c": {1},
	}, rec.adds)
}

func TestAddReturnsFirstError(t *testing.T) {
	ctx := context.Background()
	rec := newRecordingStore()
	boom := errors.New("backend down")
	rec.fails["bad"] = boom
	d := newDict(t, rec)

	err := d.Add(ctx, "good", "bad", "fine")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"bad"`)

	// increments that reached the store are not rolled back
	assert.Contains(t, rec.adds, "good")
	assert.Contains(t, rec.adds, "fine")
}

// ctxStore refuses work once its context is done, as network backends do.
type ctxStore struct {
	store.Store
	failOn string
}

func (c *ctxStore) Add(ctx context.Context, phrase string, inc int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if phrase == c.failOn {
		return errors.New("boom")
	}
	return c.Store.Add(ctx, phrase, inc)
}

func TestAddFailureDoesNotCancelSiblings(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	d := newDict(t, &ctxStore{Store: mem, failOn: "bad"}, WithConcurrency(1))

	err := d.Add(ctx, "bad", "a", "b", "c", "d", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)

	for phrase, want := range map[string]int64{"a": 2, "b": 1, "c": 1, "d": 1} {
		got, err := mem.Get(ctx, phrase)
		require.NoError(t, err)
		assert.Equal(t, want, got, phrase)
	}
	length, err := mem.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), length)
}

func TestAddNothing(t *testing.T) {
	rec := newRecordingStore()
	d := newDict(t, rec)
	require.NoError(t, d.Add(context.Background()))
	require.NoError(t, d.Add(context.Background(), "", ""))
	assert.Empty(t, rec.adds)
}

func TestAddValuesFlattens(t *testing.T) {
	ctx := context.Background()
	d := newDict(t, memory.New())

	err := d.AddValues(ctx, "a", []string{"b", "a"}, []any{"c", 3, []any{"d", nil}}, 7, nil)
	require.NoError(t, err)

	for phrase, want := range map[string]int64{"a": 2, "b": 1, "c": 1, "d": 1} {
		got, err := d.Get(ctx, phrase)
		require.NoError(t, err)
		assert.Equal(t, want, got, phrase)
	}
	n, err := d.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, []string{"x", "y", "z"}, Flatten([]any{"x", []string{"y"}}, 1.5, "z"))
	assert.Empty(t, Flatten(42, map[string]string{"k": "v"}))
}

func TestAddBatched(t *testing.T) {
	ctx := context.Background()
	d := newDict(t, memory.New())

	var batches []int
	err := d.AddBatched(ctx, []string{"a", "b", "c", "a", "e"}, 2, func(n int) {
		batches = append(batches, n)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, batches)

	got, err := d.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestAddBatchedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := newDict(t, memory.New())
	err := d.AddBatched(ctx, []string{"a"}, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortIsStableByCount(t *testing.T) {
	ctx := context.Background()
	d := newDict(t, memory.New())
	require.NoError(t, d.Add(ctx, "a", "a", "a", "b", "c"))

	sorted, err := d.Sort(ctx, "c", "a", "b", "a", "unknown")
	require.NoError(t, err)
	assert.Equal(t, []string{"unknown", "c", "b", "a"}, sorted)
}

func TestCapabilities(t *testing.T) {
	ctx := context.Background()
	plain := plainStore{Store: memory.New()}

	_, err := New(plain, WithRequireClean())
	assert.ErrorIs(t, err, apperrors.ErrCleanUnsupported)

	d := newDict(t, plain)
	_, err = d.Clean(ctx)
	assert.ErrorIs(t, err, apperrors.ErrCleanUnsupported)
	assert.ErrorIs(t, d.Reset(ctx), apperrors.ErrResetUnsupported)

	_, err = New(nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	d := newDict(t, memory.New(), WithRequireClean())
	require.NoError(t, d.Add(ctx, "x", "y"))
	require.NoError(t, d.Reset(ctx))

	n, err := d.Length(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParseRecordsSpans(t *testing.T) {
	d, err := New(memory.New())
	require.NoError(t, err)

	ctx, root := tracing.StartSpan(context.Background(), "test", "trace-1")
	n, err := d.Parse(ctx, "one two three", 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	children := root.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "tokenize", children[0].Name)
	assert.Equal(t, "add", children[1].Name)
	assert.Equal(t, "trace-1", children[1].TraceID)
}
