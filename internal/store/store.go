// Package store defines the ranked frequency store contract: a phrase → count
// structure that also answers rank and ordered range queries. Backends live
// in the sub-packages memory, redisstore, pgstore and boltstore.
//
// Ordering among phrases with equal counts is backend-defined. The memory
// backend puts the most recently updated phrase first; the Redis, Postgres
// and bbolt backends order ties lexicographically.
package store

import (
	"context"
	"fmt"
	"math"

	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
)

// ToEnd passed as the end index of Slice means "through the last element".
const ToEnd int64 = math.MaxInt64

// ErrInvalidIncrement is returned by Add for increments below 1.
var ErrInvalidIncrement = fmt.Errorf("%w: increment must be a positive integer", apperrors.ErrInvalidInput)

// Store is the ranked phrase → count contract every backend satisfies.
type Store interface {
	// Add increases phrase's count by increment, creating the record if
	// absent. The update is atomic per phrase.
	Add(ctx context.Context, phrase string, increment int64) error
	// Get returns the stored count or the backend's default for an
	// unknown phrase.
	Get(ctx context.Context, phrase string) (int64, error)
	// IndexOf returns the phrase's ascending rank by count, or -1.
	IndexOf(ctx context.Context, phrase string) (int64, error)
	// Length returns the number of distinct phrases.
	Length(ctx context.Context) (int64, error)
	// Slice returns phrases in ascending count order using Python slice
	// semantics: negative indices count from the end and end is exclusive.
	Slice(ctx context.Context, start, end int64) ([]string, error)
}

// Cleaner is implemented by stores that can prune rare phrases.
type Cleaner interface {
	// Clean deletes every phrase with a count of at most 1 and returns how
	// many were removed.
	Clean(ctx context.Context) (int64, error)
}

// Resetter is implemented by stores that can drop every record.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Bounds resolves Python-style slice indices against a sequence of length n
// and returns the half-open range [lo, hi). hi < lo never happens; an empty
// selection yields lo == hi.
func Bounds(start, end, n int64) (lo, hi int64) {
	lo = clampIndex(start, n)
	if end == ToEnd {
		hi = n
	} else {
		hi = clampIndex(end, n)
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func clampIndex(i, n int64) int64 {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
		return i
	}
	if i > n {
		return n
	}
	return i
}

// ValidateIncrement checks the Add precondition shared by all backends.
func ValidateIncrement(increment int64) error {
	if increment < 1 {
		return ErrInvalidIncrement
	}
	return nil
}
