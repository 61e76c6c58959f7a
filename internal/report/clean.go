package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/resilience"
)

// Cleaner prunes rare phrases.
type Cleaner interface {
	Clean(ctx context.Context) (int64, error)
}

// StartPeriodicClean calls c.Clean every interval until ctx is done. Each run
// must finish within one interval. m may be nil. The returned channel is
// closed when the loop exits.
func StartPeriodicClean(ctx context.Context, c Cleaner, interval time.Duration, m *metrics.Metrics) <-chan struct{} {
	logger := slog.Default().With("component", "periodic-clean")
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				start := time.Now()
				var removed int64
				err := resilience.WithTimeout(ctx, interval, "periodic-clean", func(ctx context.Context) error {
					var err error
					removed, err = c.Clean(ctx)
					return err
				})
				if err != nil {
					logger.Error("clean failed", "error", err)
					continue
				}
				if m != nil {
					m.PhrasesCleanedTotal.Add(float64(removed))
				}
				logger.Info("rare phrases dropped", "removed", removed, "took", time.Since(start))
			case <-ctx.Done():
				return
			}
		}
	}()
	logger.Info("periodic clean started", "interval", interval)
	return done
}
