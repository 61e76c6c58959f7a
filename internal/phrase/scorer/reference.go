package scorer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Reference is a word list ordered from most to least common.
type Reference struct {
	words []string
	rank  map[string]int
}

// NewReference builds a Reference from words in frequency order. Repeated
// words keep their first rank.
func NewReference(words []string) *Reference {
	r := &Reference{
		words: make([]string, 0, len(words)),
		rank:  make(map[string]int, len(words)),
	}
	for _, w := range words {
		if _, dup := r.rank[w]; dup {
			continue
		}
		r.rank[w] = len(r.words)
		r.words = append(r.words, w)
	}
	return r
}

// LoadReference reads one word per line. Blank lines and lines starting with
// '#' are skipped; words are lowercased.
func LoadReference(rd io.Reader) (*Reference, error) {
	var words []string
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	return NewReference(words), nil
}

func (r *Reference) Len() int {
	return len(r.words)
}

// IndexOf returns the rank of word, or -1 if it is not listed.
func (r *Reference) IndexOf(word string) int {
	if i, ok := r.rank[word]; ok {
		return i
	}
	return -1
}

// Words returns a copy of the list.
func (r *Reference) Words() []string {
	return append([]string(nil), r.words...)
}
