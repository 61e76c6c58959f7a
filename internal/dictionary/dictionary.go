// Package dictionary is the frequency dictionary facade. It turns text into
// phrases, aggregates duplicates and fans the resulting increments out to a
// store.Store.
package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/phrase/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/tracing"
)

// DefaultConcurrency bounds the store calls in flight for one batch.
const DefaultConcurrency = 64

type Option func(*Dictionary)

// WithConcurrency limits concurrent store calls per operation. n < 1 means
// unbounded.
func WithConcurrency(n int) Option {
	return func(d *Dictionary) { d.concurrency = n }
}

// WithRequireClean makes New fail unless the store can prune rare phrases.
func WithRequireClean() Option {
	return func(d *Dictionary) { d.requireClean = true }
}

type Dictionary struct {
	store        store.Store
	concurrency  int
	requireClean bool
	logger       *slog.Logger
}

func New(s store.Store, opts ...Option) (*Dictionary, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil store", apperrors.ErrInvalidInput)
	}
	d := &Dictionary{
		store:       s,
		concurrency: DefaultConcurrency,
		logger:      slog.Default().With("component", "dictionary"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.requireClean {
		if _, ok := s.(store.Cleaner); !ok {
			return nil, apperrors.ErrCleanUnsupported
		}
	}
	return d, nil
}

// Store returns the wrapped store.
func (d *Dictionary) Store() store.Store {
	return d.store
}

// Parse extracts every phrase of up to maxLength words from text and adds
// them. It returns the number of phrase occurrences submitted.
func (d *Dictionary) Parse(ctx context.Context, text string, maxLength int) (int, error) {
	_, span := tracing.StartChildSpan(ctx, "tokenize")
	words := tokenizer.Words(text)
	phrases := tokenizer.Combine(words, maxLength)
	span.SetAttr("words", len(words))
	span.SetAttr("phrases", len(phrases))
	span.End()

	actx, span := tracing.StartChildSpan(ctx, "add")
	defer span.End()
	if err := d.Add(actx, phrases...); err != nil {
		return 0, err
	}
	return len(phrases), nil
}

// Add counts each phrase once per occurrence. Duplicates are folded into a
// single increment so the store sees one Add per distinct phrase. Empty
// phrases are ignored. A failing phrase does not stop the others: every
// increment is attempted under ctx and the first error is returned after
// all of them finish. Applied increments are not rolled back.
func (d *Dictionary) Add(ctx context.Context, phrases ...string) error {
	counts, order := aggregate(phrases)
	if len(order) == 0 {
		return nil
	}

	var g errgroup.Group
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for _, phrase := range order {
		inc := counts[phrase]
		g.Go(func() error {
			if err := d.store.Add(ctx, phrase, inc); err != nil {
				return fmt.Errorf("adding %q: %w", phrase, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		d.logger.Error("batch add failed", "distinct", len(order), "error", err)
		return err
	}
	d.logger.Debug("batch added", "phrases", len(phrases), "distinct", len(order))
	return nil
}

// AddValues accepts loosely typed input such as decoded JSON: nested
// []string and []any values are flattened and anything that is not a string
// is skipped.
func (d *Dictionary) AddValues(ctx context.Context, values ...any) error {
	return d.Add(ctx, Flatten(values...)...)
}

// AddBatched writes phrases batchSize at a time, calling progress with the
// size of each finished batch. It stops at the first failing batch.
func (d *Dictionary) AddBatched(ctx context.Context, phrases []string, batchSize int, progress func(n int)) error {
	if batchSize < 1 {
		batchSize = len(phrases)
	}
	for start := 0; start < len(phrases); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batchSize, len(phrases))
		if err := d.Add(ctx, phrases[start:end]...); err != nil {
			return fmt.Errorf("batch at %d: %w", start, err)
		}
		if progress != nil {
			progress(end - start)
		}
	}
	return nil
}

// Sort returns the distinct phrases ordered by ascending count. Phrases with
// equal counts keep their first-occurrence order. Reads have no side
// effects, so the first failure cancels the remaining lookups.
func (d *Dictionary) Sort(ctx context.Context, phrases ...string) ([]string, error) {
	_, order := aggregate(phrases)
	counts := make([]int64, len(order))

	g, gctx := errgroup.WithContext(ctx)
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for i, phrase := range order {
		g.Go(func() error {
			n, err := d.store.Get(gctx, phrase)
			if err != nil {
				return fmt.Errorf("getting %q: %w", phrase, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := make([]int, len(order))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return counts[idx[a]] < counts[idx[b]] })

	sorted := make([]string, len(order))
	for i, j := range idx {
		sorted[i] = order[j]
	}
	return sorted, nil
}

func (d *Dictionary) Get(ctx context.Context, phrase string) (int64, error) {
	return d.store.Get(ctx, phrase)
}

func (d *Dictionary) IndexOf(ctx context.Context, phrase string) (int64, error) {
	return d.store.IndexOf(ctx, phrase)
}

func (d *Dictionary) Length(ctx context.Context) (int64, error) {
	return d.store.Length(ctx)
}

// Slice uses Python slice semantics; pass store.ToEnd to read through the
// last phrase.
func (d *Dictionary) Slice(ctx context.Context, start, end int64) ([]string, error) {
	return d.store.Slice(ctx, start, end)
}

// Clean prunes phrases seen at most once.
func (d *Dictionary) Clean(ctx context.Context) (int64, error) {
	c, ok := d.store.(store.Cleaner)
	if !ok {
		return 0, apperrors.ErrCleanUnsupported
	}
	removed, err := c.Clean(ctx)
	if err != nil {
		return 0, err
	}
	d.logger.Info("dictionary cleaned", "removed", removed)
	return removed, nil
}

func (d *Dictionary) Reset(ctx context.Context) error {
	r, ok := d.store.(store.Resetter)
	if !ok {
		return apperrors.ErrResetUnsupported
	}
	if err := r.Reset(ctx); err != nil {
		return err
	}
	d.logger.Info("dictionary reset")
	return nil
}

// Flatten collects the strings found in values, descending into []string
// and []any. Other types are dropped.
func Flatten(values ...any) []string {
	out := make([]string, 0, len(values))
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case []string:
			out = append(out, t...)
		case []any:
			for _, e := range t {
				walk(e)
			}
		}
	}
	for _, v := range values {
		walk(v)
	}
	return out
}

func aggregate(phrases []string) (map[string]int64, []string) {
	counts := make(map[string]int64, len(phrases))
	order := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if _, seen := counts[p]; !seen {
			order = append(order, p)
		}
		counts[p]++
	}
	return counts, order
}
