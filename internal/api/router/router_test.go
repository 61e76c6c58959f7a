package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/api/handler"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/ingest"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/memory"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/middleware"
)

type server struct {
	t       *testing.T
	handler http.Handler
	metrics *metrics.Metrics
}

func newServer(t *testing.T, pub *ingest.Publisher) *server {
	t.Helper()
	dict, err := dictionary.New(memory.New())
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	h := handler.New(dict, nil, pub, handler.Config{MaxPhraseLength: 2})
	return &server{t: t, handler: New(h, health.NewChecker(0), Options{Metrics: m}), metrics: m}
}

func (s *server) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestParseThenQuery(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(http.MethodPost, "/api/v1/parse", `{"text":"the cat sat on the mat the cat ran"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 17, decode[map[string]int](t, rec)["phrases"])

	rec = s.do(http.MethodGet, "/api/v1/phrases/the%20cat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, "the cat", got["phrase"])
	assert.Equal(t, 2.0, got["count"])

	rec = s.do(http.MethodGet, "/api/v1/phrases/zebra", "")
	got = decode[map[string]any](t, rec)
	assert.Equal(t, 0.0, got["count"])
	assert.Equal(t, -1.0, got["rank"])

	rec = s.do(http.MethodPost, "/api/v1/clean", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), decode[map[string]int64](t, rec)["removed"])

	rec = s.do(http.MethodGet, "/api/v1/phrases?start=-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"the"}, decode[map[string][]string](t, rec)["phrases"])

	rec = s.do(http.MethodGet, "/api/v1/stats?top=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"size":3,"top":[{"phrase":"the","count":3}]}`, rec.Body.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(
		s.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/v1/parse", "200"),
	))
}

func TestAddSkipsNonStringEntries(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(http.MethodPost, "/api/v1/phrases", `{"phrases":["cat",1,"cat",null,{"x":1},["dog",true],""]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, decode[map[string]int](t, rec)["added"])

	rec = s.do(http.MethodGet, "/api/v1/phrases/cat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, rec)["count"])

	rec = s.do(http.MethodGet, "/api/v1/phrases/dog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["count"])
}

func TestAddSortAndExport(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(http.MethodPost, "/api/v1/phrases", `{"phrases":["b","a","b","c","b","a"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/sort", `{"phrases":["b","a","c","a","x"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"x", "c", "a", "b"}, decode[map[string][]string](t, rec)["phrases"])

	rec = s.do(http.MethodGet, "/api/v1/export?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[\"b\",\"a\"]\n", rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/export?limit=1&pretty=true", "")
	assert.Equal(t, "[\n\t\"b\" // #0, 3\n]\n", rec.Body.String())

	rec = s.do(http.MethodDelete, "/api/v1/phrases", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/api/v1/phrases", "")
	assert.Empty(t, decode[map[string][]string](t, rec)["phrases"])
}

func TestBadRequests(t *testing.T) {
	s := newServer(t, nil)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/parse", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/phrases?start=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/stats?top=many", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/analyze", `{"text":"x","threshold":2}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodPut, "/api/v1/clean", "").Code)
}

func TestAnalyze(t *testing.T) {
	s := newServer(t, nil)
	text := "The telescope observed the nebula. The telescope observed the nebula again."

	rec := s.do(http.MethodPost, "/api/v1/analyze", `{"text":`+jsonString(text)+`,"limit":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[map[string][]map[string]any](t, rec)["phrases"]
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 3)
	for _, p := range got {
		assert.NotEqual(t, "the", p["phrase"])
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

type recordingProducer struct {
	events []kafka.Event
}

func (r *recordingProducer) Publish(_ context.Context, events ...kafka.Event) error {
	r.events = append(r.events, events...)
	return nil
}

func TestPublishDocument(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable,
		newServer(t, nil).do(http.MethodPost, "/api/v1/documents", `{"text":"x"}`).Code)

	prod := &recordingProducer{}
	s := newServer(t, ingest.NewPublisher(prod))

	rec := s.do(http.MethodPost, "/api/v1/documents", `{"document_id":"d1","text":"hello world"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "d1", decode[map[string]any](t, rec)["document_id"])
	require.Len(t, prod.events, 1)

	rec = s.do(http.MethodPost, "/api/v1/documents", `{"text":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[map[string]any](t, rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "text")
}

func TestHealthAndRequestID(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/ready", "").Code)
}

func TestRateLimitedWrites(t *testing.T) {
	dict, err := dictionary.New(memory.New())
	require.NoError(t, err)
	h := handler.New(dict, nil, nil, handler.Config{})
	srv := New(h, health.NewChecker(0), Options{Limiter: pkgmw.NewLimiter(1, time.Minute)})

	post := func() int {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/clean", nil))
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
