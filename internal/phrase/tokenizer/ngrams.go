package tokenizer

import "strings"

// Span is a byte range [Start, End) of the original text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Candidate aggregates every occurrence of one phrase within a text.
type Candidate struct {
	Phrase string   `json:"phrase"`
	Words  []string `json:"words"`
	Size   int      `json:"size"`
	Freq   int      `json:"freq"`
	At     []Span   `json:"at"`
}

// Combine joins every window of 1..n consecutive words with a single space.
// Windows are emitted size-major: all unigrams in order, then all bigrams,
// and so on. n below 1 is treated as 1. That includes n == 0, which yields
// unigrams rather than no phrases: config, flags and request bodies use 0
// for "not set".
func Combine(words []string, n int) []string {
	if n < 1 {
		n = 1
	}
	phrases := make([]string, 0, windowCount(len(words), n))
	for size := 1; size <= n; size++ {
		for i := 0; i+size <= len(words); i++ {
			phrases = append(phrases, strings.Join(words[i:i+size], " "))
		}
	}
	return phrases
}

// Phrases builds the same windows as Combine but aggregates them by phrase
// text, recording the constituent words, how often the phrase occurred and
// the span of every occurrence. Candidates keep first-occurrence order.
func Phrases(words []Word, n int) []*Candidate {
	if n < 1 {
		n = 1
	}
	index := make(map[string]*Candidate)
	candidates := make([]*Candidate, 0)
	parts := make([]string, 0, n)

	for size := 1; size <= n; size++ {
		for i := 0; i+size <= len(words); i++ {
			window := words[i : i+size]
			parts = parts[:0]
			for _, w := range window {
				parts = append(parts, w.Text)
			}
			phrase := strings.Join(parts, " ")

			c, ok := index[phrase]
			if !ok {
				c = &Candidate{
					Phrase: phrase,
					Words:  append([]string(nil), parts...),
					Size:   size,
				}
				index[phrase] = c
				candidates = append(candidates, c)
			}
			c.Freq++
			c.At = append(c.At, Span{Start: window[0].Start, End: window[len(window)-1].End})
		}
	}
	return candidates
}

func windowCount(words, n int) int {
	total := 0
	for size := 1; size <= n && size <= words; size++ {
		total += words - size + 1
	}
	return total
}
