// Package report summarizes a frequency dictionary: size and most common
// phrases, exports of the top phrases, periodic snapshots to PostgreSQL and
// periodic pruning.
package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
)

// DefaultTop is the number of phrases Stats lists when asked for none.
const DefaultTop = 10

// Source is the read side of a dictionary.
type Source interface {
	Get(ctx context.Context, phrase string) (int64, error)
	Length(ctx context.Context) (int64, error)
	Slice(ctx context.Context, start, end int64) ([]string, error)
}

type PhraseCount struct {
	Phrase string `json:"phrase"`
	Count  int64  `json:"count"`
}

type Stats struct {
	Size int64         `json:"size"`
	Top  []PhraseCount `json:"top"`
}

// Collect reports the dictionary size and its top most frequent phrases,
// most frequent first.
func Collect(ctx context.Context, src Source, top int) (Stats, error) {
	if top <= 0 {
		top = DefaultTop
	}
	size, err := src.Length(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("reading size: %w", err)
	}
	counts, err := TopPhrases(ctx, src, top)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Size: size, Top: counts}, nil
}

// TopPhrases returns up to n phrases in descending count order with their
// counts.
func TopPhrases(ctx context.Context, src Source, n int) ([]PhraseCount, error) {
	if n <= 0 {
		return []PhraseCount{}, nil
	}
	phrases, err := src.Slice(ctx, -int64(n), store.ToEnd)
	if err != nil {
		return nil, fmt.Errorf("reading top phrases: %w", err)
	}

	out := make([]PhraseCount, len(phrases))
	g, gctx := errgroup.WithContext(ctx)
	for i, phrase := range phrases {
		// Slice is ascending; flip it while filling.
		pos := len(phrases) - 1 - i
		out[pos].Phrase = phrase
		g.Go(func() error {
			c, err := src.Get(gctx, phrase)
			if err != nil {
				return fmt.Errorf("reading count of %q: %w", phrase, err)
			}
			out[pos].Count = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
