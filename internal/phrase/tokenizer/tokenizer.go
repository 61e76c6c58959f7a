// Package tokenizer turns raw text into normalized words and sliding-window
// n-gram phrases. Words are lowercased alphanumeric runs that may contain
// hyphens, periods, apostrophes and commas between alphanumerics; a trailing
// possessive 's is dropped.
package tokenizer

import (
	"regexp"
	"strings"
)

// wordPattern matches a run that starts and ends on an ASCII alphanumeric.
// Curly single quotes are accepted inside a run so that byte offsets still
// point into the caller's original text; they are normalized per word.
var wordPattern = regexp.MustCompile(`(?i)[a-z0-9](?:[a-z0-9\-.',\x{2018}\x{2019}]*[a-z0-9])?`)

var quoteReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

// Word is a normalized word and the byte span [Start, End) of its match in
// the original text.
type Word struct {
	Text  string
	Start int
	End   int
}

// Words returns the normalized words of text in order.
func Words(text string) []string {
	spans := WordSpans(text)
	words := make([]string, len(spans))
	for i, w := range spans {
		words[i] = w.Text
	}
	return words
}

// WordSpans is Words plus the location of every match.
func WordSpans(text string) []Word {
	matches := wordPattern.FindAllStringIndex(text, -1)
	words := make([]Word, 0, len(matches))
	for _, m := range matches {
		word := normalize(text[m[0]:m[1]])
		if word == "" {
			continue
		}
		words = append(words, Word{Text: word, Start: m[0], End: m[1]})
	}
	return words
}

func normalize(raw string) string {
	word := strings.ToLower(quoteReplacer.Replace(raw))
	return strings.TrimSuffix(word, "'s")
}
