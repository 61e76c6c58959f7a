package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/tracing"
)

// Parser is satisfied by *dictionary.Dictionary.
type Parser interface {
	Parse(ctx context.Context, text string, maxLength int) (int, error)
}

const (
	statusParsed    = "parsed"
	statusDuplicate = "duplicate"
	statusInvalid   = "invalid"
	statusError     = "error"
)

// HandleMessage returns the consumer callback for the documents topic.
// Messages that can never be parsed are acknowledged; a failed parse is
// returned so the message stays uncommitted. Phrases added before the
// failure are not rolled back and are counted again on redelivery. seen and
// m may be nil.
func HandleMessage(p Parser, seen Seen, defaultMaxLength int, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "ingest-handler")
	count := func(status string) {
		if m != nil {
			m.DocumentsParsedTotal.WithLabelValues(status).Inc()
		}
	}

	return func(ctx context.Context, key []byte, value []byte) error {
		ev, err := kafka.DecodeJSON[TextEvent](value)
		if err != nil {
			logger.Warn("dropping undecodable message", "key", string(key), "error", err)
			count(statusInvalid)
			return nil
		}
		if ev.DocumentID == "" {
			ev.DocumentID = string(key)
		}
		if err := Validate(&ev); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				logger.Warn("dropping invalid document", "document_id", ev.DocumentID, "fields", ve.Fields)
			}
			count(statusInvalid)
			return nil
		}

		if seen != nil && ev.DocumentID != "" {
			first, err := seen.Mark(ctx, ev.DocumentID)
			if err != nil {
				count(statusError)
				return err
			}
			if !first {
				logger.Debug("skipping duplicate document", "document_id", ev.DocumentID)
				count(statusDuplicate)
				return nil
			}
		}

		maxLength := ev.MaxLength
		if maxLength == 0 {
			maxLength = defaultMaxLength
		}
		tctx, span := tracing.StartSpan(ctx, "ingest.document", ev.DocumentID)
		span.SetAttr("bytes", len(ev.Text))
		n, err := p.Parse(tctx, ev.Text, maxLength)
		span.End()
		span.Log(logger)
		if err != nil {
			if seen != nil && ev.DocumentID != "" {
				if ferr := seen.Forget(ctx, ev.DocumentID); ferr != nil {
					logger.Error("failed to forget document", "document_id", ev.DocumentID, "error", ferr)
				}
			}
			count(statusError)
			return fmt.Errorf("parsing document %s: %w", ev.DocumentID, err)
		}
		count(statusParsed)
		logger.Info("document parsed",
			"document_id", ev.DocumentID,
			"source", ev.Source,
			"phrases", n,
		)
		return nil
	}
}
