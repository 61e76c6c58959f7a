// Package analyzer ranks the distinctive phrases of a single text without
// touching any frequency store.
package analyzer

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/phrase/scorer"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/phrase/tokenizer"
)

const (
	DefaultMaxLength = 3
	DefaultThreshold = 0.5
)

type Options struct {
	MaxLength int
	// Threshold is the fraction of the rarity reference considered too
	// frequent to make a phrase interesting. Nil means DefaultThreshold;
	// zero keeps every phrase with an uncommon word.
	Threshold *float64
	// Filter defaults to scorer.Default().
	Filter *scorer.Filter
	// Reference defaults to Filter.Rarity().
	Reference *scorer.Reference
	// Limit caps the number of results; 0 keeps all.
	Limit int
}

func (o Options) withDefaults() Options {
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	if o.Threshold == nil {
		o.Threshold = ThresholdOf(DefaultThreshold)
	}
	if o.Filter == nil {
		o.Filter = scorer.Default()
	}
	if o.Reference == nil {
		o.Reference = o.Filter.Rarity()
	}
	return o
}

// ThresholdOf returns a pointer for Options.Threshold.
func ThresholdOf(v float64) *float64 {
	return &v
}

// Analyze extracts phrases from text, drops the ones made of common words and
// returns the rest ordered by descending score, ties broken by phrase.
func Analyze(text string, opts Options) []scorer.Scored {
	opts = opts.withDefaults()

	cands := tokenizer.Phrases(tokenizer.WordSpans(text), opts.MaxLength)
	cands = opts.Filter.DropByCommon(cands, opts.Reference, *opts.Threshold)
	scored := opts.Filter.Score(cands, opts.Reference)

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Phrase < scored[j].Phrase
	})
	if opts.Limit > 0 && len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}
	return scored
}
