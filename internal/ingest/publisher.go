package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/kafka"
)

// EventProducer is satisfied by *kafka.Producer.
type EventProducer interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

type Publisher struct {
	producer EventProducer
	now      func() time.Time
	logger   *slog.Logger
}

func NewPublisher(producer EventProducer) *Publisher {
	return &Publisher{
		producer: producer,
		now:      time.Now,
		logger:   slog.Default().With("component", "ingest-publisher"),
	}
}

// Publish validates ev, fills in a document id and publish time when absent,
// and writes it keyed by document id. The stamped event is returned.
func (p *Publisher) Publish(ctx context.Context, ev TextEvent) (TextEvent, error) {
	if err := Validate(&ev); err != nil {
		return ev, err
	}
	if ev.DocumentID == "" {
		ev.DocumentID = uuid.New().String()
	}
	if ev.PublishedAt.IsZero() {
		ev.PublishedAt = p.now().UTC()
	}
	if err := p.producer.Publish(ctx, kafka.Event{Key: ev.DocumentID, Value: ev}); err != nil {
		return ev, fmt.Errorf("publishing document %s: %w", ev.DocumentID, err)
	}
	p.logger.Info("document published",
		"document_id", ev.DocumentID,
		"source", ev.Source,
		"bytes", len(ev.Text),
	)
	return ev, nil
}
