// Package router wires the phrase daemon's routes and applies the middleware
// chain (RequestID → CORS → Metrics → RateLimit → Timeout).
package router

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/api/handler"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/middleware"
)

// Options are the optional middleware settings. Zero values disable each
// layer.
type Options struct {
	Metrics *metrics.Metrics
	Timeout time.Duration
	Limiter *pkgmw.Limiter
}

// New builds the full HTTP handler.
//
// Route table:
//
//	POST   /api/v1/parse              → count phrases of a text
//	POST   /api/v1/phrases            → count explicit phrases
//	GET    /api/v1/phrases            → ascending slice (?start&end)
//	DELETE /api/v1/phrases            → reset the dictionary
//	GET    /api/v1/phrases/{phrase}   → count and rank
//	POST   /api/v1/sort               → order phrases by count
//	POST   /api/v1/clean              → prune phrases seen once
//	GET    /api/v1/stats              → size and top phrases (?top)
//	GET    /api/v1/export             → top phrases as JSON (?limit&pretty)
//	POST   /api/v1/analyze            → one-shot distinctive phrases
//	POST   /api/v1/documents          → queue a document on Kafka
//	GET    /health/live, /health/ready
//
// Health probes skip the rate limit, timeout and metrics middleware.
func New(h *handler.Handler, checker *health.Checker, opts Options) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/parse", h.Parse)
	api.HandleFunc("POST /api/v1/phrases", h.AddPhrases)
	api.HandleFunc("GET /api/v1/phrases", h.ListPhrases)
	api.HandleFunc("DELETE /api/v1/phrases", h.Reset)
	api.HandleFunc("GET /api/v1/phrases/{phrase}", h.GetPhrase)
	api.HandleFunc("POST /api/v1/sort", h.Sort)
	api.HandleFunc("POST /api/v1/clean", h.Clean)
	api.HandleFunc("GET /api/v1/stats", h.Stats)
	api.HandleFunc("GET /api/v1/export", h.Export)
	api.HandleFunc("POST /api/v1/analyze", h.Analyze)
	api.HandleFunc("POST /api/v1/documents", h.PublishDocument)

	var chain http.Handler = api
	if opts.Timeout > 0 {
		chain = pkgmw.Timeout(opts.Timeout)(chain)
	}
	if opts.Limiter != nil {
		chain = pkgmw.RateLimit(opts.Limiter)(chain)
	}
	if opts.Metrics != nil {
		chain = pkgmw.Metrics(opts.Metrics)(chain)
	}

	root := http.NewServeMux()
	root.HandleFunc("GET /health/live", checker.LiveHandler())
	root.HandleFunc("GET /health/ready", checker.ReadyHandler())
	root.Handle("/api/", chain)

	return pkgmw.RequestID(pkgmw.CORS(pkgmw.DefaultCORSConfig())(root))
}
