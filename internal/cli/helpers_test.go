package cli

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/kafka"
)

type recordingProducer struct {
	events []kafka.Event
}

func (r *recordingProducer) Publish(_ context.Context, events ...kafka.Event) error {
	r.events = append(r.events, events...)
	return nil
}
