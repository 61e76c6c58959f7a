package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/metrics"
)

// Instrumented records Prometheus metrics and debug logs around every call
// of the wrapped Store.
type Instrumented struct {
	next    Store
	backend string
	m       *metrics.Metrics
	logger  *slog.Logger
}

type instrumentedCleaner struct {
	*Instrumented
	cleaner Cleaner
}

type instrumentedCleanResetter struct {
	*instrumentedCleaner
	resetter Resetter
}

type instrumentedResetter struct {
	*Instrumented
	resetter Resetter
}

// Instrument wraps s so each operation is counted and timed under the given
// backend label. The returned Store implements Cleaner and Resetter exactly
// when s does.
func Instrument(s Store, backend string, m *metrics.Metrics) Store {
	base := &Instrumented{
		next:    s,
		backend: backend,
		m:       m,
		logger:  slog.Default().With("component", "store", "backend", backend),
	}
	cleaner, canClean := s.(Cleaner)
	resetter, canReset := s.(Resetter)
	switch {
	case canClean && canReset:
		return &instrumentedCleanResetter{
			instrumentedCleaner: &instrumentedCleaner{Instrumented: base, cleaner: cleaner},
			resetter:            resetter,
		}
	case canClean:
		return &instrumentedCleaner{Instrumented: base, cleaner: cleaner}
	case canReset:
		return &instrumentedResetter{Instrumented: base, resetter: resetter}
	default:
		return base
	}
}

// Unwrap returns the decorated store.
func (s *Instrumented) Unwrap() Store {
	return s.next
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Debug("store operation failed", "op", op, "error", err)
	}
	if s.m == nil {
		return
	}
	s.m.StoreOperationsTotal.WithLabelValues(s.backend, op, status).Inc()
	s.m.StoreOperationDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

func (s *Instrumented) Add(ctx context.Context, phrase string, increment int64) error {
	start := time.Now()
	err := s.next.Add(ctx, phrase, increment)
	s.observe("add", start, err)
	if err == nil && s.m != nil {
		s.m.PhrasesAddedTotal.Add(float64(increment))
	}
	return err
}

func (s *Instrumented) Get(ctx context.Context, phrase string) (int64, error) {
	start := time.Now()
	count, err := s.next.Get(ctx, phrase)
	s.observe("get", start, err)
	return count, err
}

func (s *Instrumented) IndexOf(ctx context.Context, phrase string) (int64, error) {
	start := time.Now()
	rank, err := s.next.IndexOf(ctx, phrase)
	s.observe("index_of", start, err)
	return rank, err
}

func (s *Instrumented) Length(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.next.Length(ctx)
	s.observe("length", start, err)
	return n, err
}

func (s *Instrumented) Slice(ctx context.Context, start, end int64) ([]string, error) {
	began := time.Now()
	phrases, err := s.next.Slice(ctx, start, end)
	s.observe("slice", began, err)
	return phrases, err
}

func (s *instrumentedCleaner) Clean(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := s.cleaner.Clean(ctx)
	s.observe("clean", start, err)
	if err == nil {
		s.logger.Info("store cleaned", "removed", removed)
		if s.m != nil {
			s.m.PhrasesCleanedTotal.Add(float64(removed))
		}
	}
	return removed, err
}

func (s *instrumentedCleanResetter) Reset(ctx context.Context) error {
	return reset(ctx, s.Instrumented, s.resetter)
}

func (s *instrumentedResetter) Reset(ctx context.Context) error {
	return reset(ctx, s.Instrumented, s.resetter)
}

func reset(ctx context.Context, s *Instrumented, r Resetter) error {
	start := time.Now()
	err := r.Reset(ctx)
	s.observe("reset", start, err)
	return err
}
