// Package ingest moves text documents through Kafka: Publisher puts them on
// the documents topic and HandleMessage parses them into a dictionary on the
// consuming side.
package ingest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
)

const (
	maxTextLength       = 1 << 20
	maxDocumentIDLength = 255
	maxPhraseLength     = 10
)

// TextEvent is the JSON payload carried on the documents topic.
type TextEvent struct {
	DocumentID  string    `json:"document_id"`
	Source      string    `json:"source,omitempty"`
	Text        string    `json:"text"`
	MaxLength   int       `json:"max_length,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// Validate checks the event before it is published or parsed. A zero
// MaxLength means the consumer's default.
func Validate(ev *TextEvent) error {
	errs := make(map[string]string)

	if strings.TrimSpace(ev.Text) == "" {
		errs["text"] = "text is required"
	} else if len(ev.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
	if len(ev.DocumentID) > maxDocumentIDLength {
		errs["document_id"] = fmt.Sprintf("document id must be at most %d characters", maxDocumentIDLength)
	}
	if ev.MaxLength < 0 || ev.MaxLength > maxPhraseLength {
		errs["max_length"] = fmt.Sprintf("max length must be within 0..%d", maxPhraseLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
