package scorer

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/phrase/tokenizer"
)

// Scored is a candidate with its significance score.
type Scored struct {
	*tokenizer.Candidate
	Score int64 `json:"score"`
}

// DropByCommon keeps the candidates that say something. A candidate is
// dropped when its last word is common. Otherwise it is kept if at least one
// of its words is not common and is either missing from ref or ranked past
// round(ref.Len()*threshold).
func (f *Filter) DropByCommon(cands []*tokenizer.Candidate, ref *Reference, threshold float64) []*tokenizer.Candidate {
	minIndex := int(math.Round(float64(ref.Len()) * threshold))

	kept := make([]*tokenizer.Candidate, 0, len(cands))
	for _, c := range cands {
		if len(c.Words) == 0 || f.IsCommon(c.Words[len(c.Words)-1]) {
			continue
		}
		for _, w := range c.Words {
			if f.IsCommon(w) {
				continue
			}
			if i := ref.IndexOf(w); i < 0 || i > minIndex {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

// Score sums a per-word rarity over each candidate and scales it by how often
// the candidate occurred. Common words add nothing, listed words add their
// rank plus one and unlisted words add ref.Len()+1.
func (f *Filter) Score(cands []*tokenizer.Candidate, ref *Reference) []Scored {
	unknown := int64(ref.Len() + 1)

	scored := make([]Scored, len(cands))
	for i, c := range cands {
		var base int64
		for _, w := range c.Words {
			if f.IsCommon(w) {
				continue
			}
			if idx := ref.IndexOf(w); idx >= 0 {
				base += int64(idx + 1)
			} else {
				base += unknown
			}
		}
		scored[i] = Scored{
			Candidate: c,
			Score:     int64(math.Round(Multiplier(c.Freq) * float64(base))),
		}
	}
	return scored
}

// Multiplier grows from 1 toward 2 as freq increases, with diminishing
// returns: 1 + atan(freq/20)*2/pi.
func Multiplier(freq int) float64 {
	return 1 + math.Atan(float64(freq)/20)*2/math.Pi
}
