// Command loadtest drives a running phrased with a mix of parse and read
// requests and prints per-operation throughput and latency.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	// WriteRatio is the fraction of requests that parse text.
	WriteRatio float64
	MaxLength  int
}

var sentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"A stitch in time saves nine, or so the saying goes.",
	"Distributed systems fail in partial and surprising ways.",
	"The telescope observed a faint nebula near the horizon.",
	"She sells sea shells by the sea shore every summer.",
	"Every frequency table eventually meets a long tail of rare phrases.",
	"The cat sat on the mat and the cat ran away.",
	"Good tests describe behavior rather than implementation.",
}

var lookups = []string{"the", "the cat", "sea shells", "nebula", "rare phrases", "quick brown fox"}

func main() {
	cfg := Config{}
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "base URL of phrased")
	flag.IntVar(&cfg.Concurrency, "concurrency", 10, "number of concurrent workers")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "test duration")
	flag.Float64Var(&cfg.WriteRatio, "write-ratio", 0.3, "fraction of requests that parse text")
	flag.IntVar(&cfg.MaxLength, "n", 3, "max phrase length sent with parse requests")
	flag.Parse()

	fmt.Println("=== Phrase Daemon Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Write ratio: %.2f\n\n", cfg.WriteRatio)

	start := time.Now()
	stats := run(cfg)
	stats.Report(os.Stdout, time.Since(start))

	if stats.Total() == 0 {
		fmt.Println("WARNING: No requests completed. Is phrased running?")
		os.Exit(1)
	}
}

func run(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		rng := rand.New(rand.NewPCG(uint64(w), uint64(time.Now().UnixNano())))
		g.Go(func() error {
			for ctx.Err() == nil {
				op, req := nextRequest(ctx, cfg, rng)
				started := time.Now()
				resp, err := client.Do(req)
				elapsed := time.Since(started)
				if err != nil {
					if ctx.Err() == nil {
						stats.Record(op, elapsed, 0, err)
					}
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				stats.Record(op, elapsed, resp.StatusCode, nil)
			}
			return nil
		})
	}
	g.Wait()
	return stats
}

func nextRequest(ctx context.Context, cfg Config, rng *rand.Rand) (string, *http.Request) {
	if rng.Float64() < cfg.WriteRatio {
		body, _ := json.Marshal(map[string]any{
			"text":       sentences[rng.IntN(len(sentences))],
			"max_length": cfg.MaxLength,
		})
		return "parse", mustNewRequest(ctx, http.MethodPost, cfg.BaseURL+"/api/v1/parse", body)
	}
	if rng.IntN(2) == 0 {
		return "stats", mustNewRequest(ctx, http.MethodGet, cfg.BaseURL+"/api/v1/stats?top=10", nil)
	}
	phrase := lookups[rng.IntN(len(lookups))]
	return "lookup", mustNewRequest(ctx, http.MethodGet, cfg.BaseURL+"/api/v1/phrases/"+url.PathEscape(phrase), nil)
}

func mustNewRequest(ctx context.Context, method, rawURL string, body []byte) *http.Request {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		panic(fmt.Sprintf("creating request: %v", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}
