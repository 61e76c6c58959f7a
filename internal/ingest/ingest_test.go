package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/memory"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/redis"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(&TextEvent{Text: "hello"}))

	err := Validate(&TextEvent{
		DocumentID: strings.Repeat("x", 256),
		Text:       "  ",
		MaxLength:  11,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 3)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t,
		"document_id: document id must be at most 255 characters; max_length: max length must be within 0..10; text: text is required",
		err.Error(),
	)
}

type recordingProducer struct {
	events []kafka.Event
	err    error
}

func (r *recordingProducer) Publish(_ context.Context, events ...kafka.Event) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, events...)
	return nil
}

func TestPublisherStampsEvent(t *testing.T) {
	prod := &recordingProducer{}
	p := NewPublisher(prod)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	ev, err := p.Publish(context.Background(), TextEvent{Source: "test", Text: "the cat"})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.DocumentID)
	assert.Equal(t, fixed, ev.PublishedAt)

	require.Len(t, prod.events, 1)
	assert.Equal(t, ev.DocumentID, prod.events[0].Key)
	assert.Equal(t, ev, prod.events[0].Value)
}

func TestPublisherKeepsDocumentID(t *testing.T) {
	prod := &recordingProducer{}
	ev, err := NewPublisher(prod).Publish(context.Background(), TextEvent{DocumentID: "doc-1", Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", ev.DocumentID)
	assert.Equal(t, "doc-1", prod.events[0].Key)
}

func TestPublisherRejectsInvalid(t *testing.T) {
	prod := &recordingProducer{}
	_, err := NewPublisher(prod).Publish(context.Background(), TextEvent{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, prod.events)
}

func TestPublisherWrapsProducerError(t *testing.T) {
	boom := errors.New("no brokers")
	_, err := NewPublisher(&recordingProducer{err: boom}).Publish(context.Background(), TextEvent{Text: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestMemorySeen(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySeen()

	first, err := s.Mark(ctx, "a")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = s.Mark(ctx, "a")
	require.NoError(t, err)
	assert.False(t, first)

	require.NoError(t, s.Forget(ctx, "a"))
	first, err = s.Mark(ctx, "a")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestRedisSeen(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := pkgredis.NewClient(config.RedisConfig{Addr: mr.Addr(), PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	s := NewRedisSeen(client, "docs-seen")

	first, err := s.Mark(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, first)
	first, err = s.Mark(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, first)

	ok, err := mr.SIsMember("docs-seen", "doc-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Forget(ctx, "doc-1"))
	ok, err = mr.SIsMember("docs-seen", "doc-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func encode(t *testing.T, ev TextEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestHandleMessageParsesOnce(t *testing.T) {
	dict, err := dictionary.New(memory.New())
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	handle := HandleMessage(dict, NewMemorySeen(), 2, m)

	ctx := context.Background()
	msg := encode(t, TextEvent{DocumentID: "d1", Text: "the cat sat on the mat the cat ran"})
	require.NoError(t, handle(ctx, []byte("d1"), msg))
	require.NoError(t, handle(ctx, []byte("d1"), msg))

	count, err := dict.Get(ctx, "the cat")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsParsedTotal.WithLabelValues("parsed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsParsedTotal.WithLabelValues("duplicate")))
}

func TestHandleMessageUsesKeyAndMaxLength(t *testing.T) {
	dict, err := dictionary.New(memory.New())
	require.NoError(t, err)
	handle := HandleMessage(dict, NewMemorySeen(), 1, nil)

	ctx := context.Background()
	msg := encode(t, TextEvent{Text: "a b c", MaxLength: 3})
	require.NoError(t, handle(ctx, []byte("k1"), msg))
	require.NoError(t, handle(ctx, []byte("k1"), msg))

	count, err := dict.Get(ctx, "a b c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHandleMessageAcknowledgesBadInput(t *testing.T) {
	dict, err := dictionary.New(memory.New())
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	handle := HandleMessage(dict, nil, 3, m)

	ctx := context.Background()
	assert.NoError(t, handle(ctx, nil, []byte("{not json")))
	assert.NoError(t, handle(ctx, nil, encode(t, TextEvent{Text: ""})))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsParsedTotal.WithLabelValues("invalid")))

	n, err := dict.Length(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingParser struct{ err error }

func (f failingParser) Parse(context.Context, string, int) (int, error) {
	return 0, f.err
}

func TestHandleMessageForgetsOnParseFailure(t *testing.T) {
	boom := errors.New("store down")
	seen := NewMemorySeen()
	handle := HandleMessage(failingParser{err: boom}, seen, 3, nil)

	ctx := context.Background()
	err := handle(ctx, nil, encode(t, TextEvent{DocumentID: "d9", Text: "hello"}))
	assert.ErrorIs(t, err, boom)

	first, err := seen.Mark(ctx, "d9")
	require.NoError(t, err)
	assert.True(t, first)
}

// flakyStore fails the first Add of one phrase and then recovers.
type flakyStore struct {
	store.Store
	phrase string
	failed bool
}

func (f *flakyStore) Add(ctx context.Context, phrase string, inc int64) error {
	if phrase == f.phrase && !f.failed {
		f.failed = true
		return errors.New("store down")
	}
	return f.Store.Add(ctx, phrase, inc)
}

func TestHandleMessageRedeliveryRecountsAppliedPhrases(t *testing.T) {
	mem := memory.New()
	dict, err := dictionary.New(&flakyStore{Store: mem, phrase: "beta"}, dictionary.WithConcurrency(1))
	require.NoError(t, err)
	handle := HandleMessage(dict, NewMemorySeen(), 1, nil)

	ctx := context.Background()
	msg := encode(t, TextEvent{DocumentID: "d7", Text: "alpha beta"})
	require.Error(t, handle(ctx, nil, msg))
	require.NoError(t, handle(ctx, nil, msg))

	alpha, err := mem.Get(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(2), alpha, "applied before the failure and again on redelivery")

	beta, err := mem.Get(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, int64(1), beta)
}
