// Package scorer decides which extracted phrases are worth keeping and ranks
// them by how unusual their words are.
//
// A baseline frequency list is split in two: its head plus a fixed list of
// contractions is the common set, and its tail is the rarity reference used
// for scoring.
package scorer

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
)

// DefaultCommonSize is how many baseline words are treated as common.
const DefaultCommonSize = 300

//go:embed words.txt
var englishWords string

var contractions = []string{
	"'tis", "'twas", "ain't", "aren't", "can't", "could've", "couldn't",
	"didn't", "doesn't", "don't", "hasn't", "he'd", "he'll", "he's", "how'd",
	"how'll", "how's", "i'd", "i'll", "i'm", "i've", "isn't", "it's",
	"might've", "mightn't", "must've", "mustn't", "shan't", "she'd", "she'll",
	"she's", "should've", "shouldn't", "that'll", "that's", "there's",
	"they'd", "they'll", "they're", "they've", "wasn't", "we'd", "we'll",
	"we're", "weren't", "what'd", "what's", "when", "when'd", "when'll",
	"when's", "where'd", "where'll", "where's", "who'd", "who'll", "who's",
	"why'd", "why'll", "why's", "won't", "would've", "wouldn't", "you'd",
	"you'll", "you're", "you've", "needn't", "haven't",
}

// Filter classifies words as common or not.
type Filter struct {
	common map[string]struct{}
	rarity *Reference
}

// NewFilter treats the first commonSize baseline words, plus the contraction
// list, as common. The remaining baseline words become the rarity reference.
// commonSize below 0 falls back to DefaultCommonSize.
func NewFilter(baseline *Reference, commonSize int) *Filter {
	if commonSize < 0 {
		commonSize = DefaultCommonSize
	}
	words := baseline.Words()
	if commonSize > len(words) {
		commonSize = len(words)
	}

	common := make(map[string]struct{}, commonSize+len(contractions))
	for _, w := range words[:commonSize] {
		common[w] = struct{}{}
	}
	for _, w := range contractions {
		common[w] = struct{}{}
	}
	return &Filter{
		common: common,
		rarity: NewReference(words[commonSize:]),
	}
}

var (
	englishOnce sync.Once
	english     *Reference

	defaultOnce   sync.Once
	defaultFilter *Filter
)

// English returns the embedded English word list, most frequent first.
func English() *Reference {
	englishOnce.Do(func() {
		ref, err := LoadReference(strings.NewReader(englishWords))
		if err != nil {
			panic("scorer: embedded word list: " + err.Error())
		}
		english = ref
	})
	return english
}

// Default returns the filter built from the embedded English frequency list.
func Default() *Filter {
	defaultOnce.Do(func() {
		defaultFilter = NewFilter(English(), DefaultCommonSize)
	})
	return defaultFilter
}

// Load builds a filter from the baseline at path, or from the embedded list
// when path is empty.
func Load(path string, commonSize int) (*Filter, error) {
	if path == "" {
		if commonSize < 0 || commonSize == DefaultCommonSize {
			return Default(), nil
		}
		return NewFilter(English(), commonSize), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word list: %w", err)
	}
	defer f.Close()
	ref, err := LoadReference(f)
	if err != nil {
		return nil, fmt.Errorf("loading word list %s: %w", path, err)
	}
	return NewFilter(ref, commonSize), nil
}

// Rarity is the part of the baseline that is not common.
func (f *Filter) Rarity() *Reference {
	return f.rarity
}

// IsCommon reports whether word is too short or too frequent to carry meaning
// on its own.
func (f *Filter) IsCommon(word string) bool {
	if len(word) < 3 {
		return true
	}
	_, ok := f.common[word]
	return ok
}
