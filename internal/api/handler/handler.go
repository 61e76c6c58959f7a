// Package handler implements the phrase daemon's HTTP endpoints on top of a
// Dictionary.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/ingest"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/phrase/scorer"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/report"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/logger"
)

const maxBodyBytes = 2 << 20

// StatsSource answers GET /api/v1/stats. *report.StatsCache satisfies it;
// Direct wraps a plain dictionary.
type StatsSource interface {
	Collect(ctx context.Context, top int) (report.Stats, bool, error)
}

// Direct computes stats on every request.
type Direct struct {
	Src report.Source
}

func (d Direct) Collect(ctx context.Context, top int) (report.Stats, bool, error) {
	stats, err := report.Collect(ctx, d.Src, top)
	return stats, false, err
}

type Config struct {
	// MaxPhraseLength applies to parse requests that do not set one.
	MaxPhraseLength int
	Analyze         analyzer.Options
}

type Handler struct {
	dict      *dictionary.Dictionary
	stats     StatsSource
	publisher *ingest.Publisher
	cfg       Config
	logger    *slog.Logger
}

// New returns a Handler. A nil stats source computes stats directly; a nil
// publisher makes POST /api/v1/documents answer 503.
func New(dict *dictionary.Dictionary, stats StatsSource, pub *ingest.Publisher, cfg Config) *Handler {
	if stats == nil {
		stats = Direct{Src: dict}
	}
	if cfg.MaxPhraseLength <= 0 {
		cfg.MaxPhraseLength = analyzer.DefaultMaxLength
	}
	return &Handler{
		dict:      dict,
		stats:     stats,
		publisher: pub,
		cfg:       cfg,
		logger:    slog.Default().With("component", "api-handler"),
	}
}

type parseRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
}

// Parse counts every phrase of the posted text.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.MaxLength <= 0 {
		req.MaxLength = h.cfg.MaxPhraseLength
	}
	n, err := h.dict.Parse(r.Context(), req.Text, req.MaxLength)
	if err != nil {
		h.fail(w, r, "parse", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"phrases": n})
}

type phrasesRequest struct {
	Phrases []string `json:"phrases"`
}

type addRequest struct {
	Phrases []any `json:"phrases"`
}

// AddPhrases counts each posted phrase once per occurrence. Entries that
// are not strings are skipped rather than failing the batch; "added" is the
// number of phrases actually submitted.
func (h *Handler) AddPhrases(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if !h.decode(w, r, &req) {
		return
	}
	added := 0
	for _, p := range dictionary.Flatten(req.Phrases...) {
		if p != "" {
			added++
		}
	}
	if err := h.dict.AddValues(r.Context(), req.Phrases...); err != nil {
		h.fail(w, r, "add", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

// ListPhrases returns Slice(start, end) in ascending count order. end
// defaults to the end of the dictionary.
func (h *Handler) ListPhrases(w http.ResponseWriter, r *http.Request) {
	start, err := queryInt(r, "start", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := queryInt(r, "end", store.ToEnd)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	phrases, err := h.dict.Slice(r.Context(), start, end)
	if err != nil {
		h.fail(w, r, "slice", err)
		return
	}
	if phrases == nil {
		phrases = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"phrases": phrases})
}

type phraseResponse struct {
	Phrase string `json:"phrase"`
	Count  int64  `json:"count"`
	Rank   int64  `json:"rank"`
}

// GetPhrase reports a phrase's count and ascending rank. Unknown phrases
// get the store's default count and rank -1.
func (h *Handler) GetPhrase(w http.ResponseWriter, r *http.Request) {
	phrase := r.PathValue("phrase")
	count, err := h.dict.Get(r.Context(), phrase)
	if err != nil {
		h.fail(w, r, "get", err)
		return
	}
	rank, err := h.dict.IndexOf(r.Context(), phrase)
	if err != nil {
		h.fail(w, r, "index", err)
		return
	}
	h.writeJSON(w, http.StatusOK, phraseResponse{Phrase: phrase, Count: count, Rank: rank})
}

// Sort orders the posted phrases by ascending stored count.
func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	var req phrasesRequest
	if !h.decode(w, r, &req) {
		return
	}
	sorted, err := h.dict.Sort(r.Context(), req.Phrases...)
	if err != nil {
		h.fail(w, r, "sort", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"phrases": sorted})
}

func (h *Handler) Clean(w http.ResponseWriter, r *http.Request) {
	removed, err := h.dict.Clean(r.Context())
	if err != nil {
		h.fail(w, r, "clean", err)
		return
	}
	logger.FromContext(r.Context()).Info("dictionary cleaned", "removed", removed)
	h.writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.dict.Reset(r.Context()); err != nil {
		h.fail(w, r, "reset", err)
		return
	}
	logger.FromContext(r.Context()).Warn("dictionary reset")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	top, err := queryInt(r, "top", report.DefaultTop)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, hit, err := h.stats.Collect(r.Context(), int(top))
	if err != nil {
		h.fail(w, r, "stats", err)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// Export streams the top phrases as JSON, or the annotated form with
// ?pretty=true.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", report.DefaultExportLimit)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pretty, _ := strconv.ParseBool(r.URL.Query().Get("pretty"))

	// Encode before writing headers so store errors still map to a status.
	var buf bytes.Buffer
	if _, err := report.Export(r.Context(), h.dict, &buf, report.ExportOptions{Limit: int(limit), Pretty: pretty}); err != nil {
		h.fail(w, r, "export", err)
		return
	}
	if pretty {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

type analyzeRequest struct {
	Text      string  `json:"text"`
	MaxLength int     `json:"max_length"`
	Threshold *float64 `json:"threshold"`
	Limit     int     `json:"limit"`
}

// Analyze ranks the distinctive phrases of one text without touching the
// dictionary.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Threshold != nil && (*req.Threshold < 0 || *req.Threshold > 1) {
		h.writeError(w, http.StatusBadRequest, "threshold must be within [0, 1]")
		return
	}
	opts := h.cfg.Analyze
	if req.MaxLength > 0 {
		opts.MaxLength = req.MaxLength
	}
	if req.Threshold != nil {
		opts.Threshold = req.Threshold
	}
	if req.Limit > 0 {
		opts.Limit = req.Limit
	}
	results := analyzer.Analyze(req.Text, opts)
	if results == nil {
		results = []scorer.Scored{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"phrases": results})
}

// PublishDocument queues a document for asynchronous parsing.
func (h *Handler) PublishDocument(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		h.writeError(w, http.StatusServiceUnavailable, "document streaming is disabled")
		return
	}
	var ev ingest.TextEvent
	if !h.decode(w, r, &ev) {
		return
	}
	ev, err := h.publisher.Publish(r.Context(), ev)
	if err != nil {
		var ve *ingest.ValidationError
		if errors.As(err, &ve) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": ve.Fields,
			})
			return
		}
		h.fail(w, r, "publish", err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]any{
		"document_id":  ev.DocumentID,
		"published_at": ev.PublishedAt,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := apperrors.HTTPStatusCode(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "op", op, "error", err, "status_code", status)
	} else {
		log.Warn("request rejected", "op", op, "error", err, "status_code", status)
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
