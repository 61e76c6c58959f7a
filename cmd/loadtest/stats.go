package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"
)

// opStats accumulates results for one request kind.
type opStats struct {
	mu          sync.Mutex
	total       int64
	errors      int64
	latencies   []time.Duration
	statusCodes map[int]int64
}

// Stats groups results by operation name.
type Stats struct {
	mu  sync.Mutex
	ops map[string]*opStats
}

func NewStats() *Stats {
	return &Stats{ops: make(map[string]*opStats)}
}

func (s *Stats) op(name string) *opStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.ops[name]
	if !ok {
		o = &opStats{statusCodes: make(map[int]int64)}
		s.ops[name] = o
	}
	return o
}

// Record counts a request. A transport error has status 0.
func (s *Stats) Record(op string, d time.Duration, status int, err error) {
	o := s.op(op)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.total++
	if err != nil {
		o.errors++
		return
	}
	if status < 200 || status >= 300 {
		o.errors++
	}
	o.latencies = append(o.latencies, d)
	o.statusCodes[status]++
}

// Total is the number of requests recorded across operations.
func (s *Stats) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, o := range s.ops {
		o.mu.Lock()
		n += o.total
		o.mu.Unlock()
	}
	return n
}

// Report prints one block per operation, in name order.
func (s *Stats) Report(w io.Writer, elapsed time.Duration) {
	s.mu.Lock()
	names := make([]string, 0, len(s.ops))
	for name := range s.ops {
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Strings(names)

	for _, name := range names {
		o := s.op(name)
		o.mu.Lock()
		latencies := append([]time.Duration(nil), o.latencies...)
		total, errs := o.total, o.errors
		codes := make([]int, 0, len(o.statusCodes))
		for code := range o.statusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		counts := make([]int64, len(codes))
		for i, code := range codes {
			counts[i] = o.statusCodes[code]
		}
		o.mu.Unlock()

		fmt.Fprintf(w, "=== %s ===\n", name)
		fmt.Fprintf(w, "Requests:     %d\n", total)
		fmt.Fprintf(w, "Errors:       %d (%.2f%%)\n", errs, pct(errs, total))
		if elapsed > 0 {
			fmt.Fprintf(w, "Requests/sec: %.2f\n", float64(total)/elapsed.Seconds())
		}
		if len(latencies) > 0 {
			sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
			fmt.Fprintf(w, "Latency:      min %s  avg %s  p50 %s  p95 %s  p99 %s  max %s  stddev %s\n",
				latencies[0], mean(latencies),
				percentile(latencies, 50), percentile(latencies, 95), percentile(latencies, 99),
				latencies[len(latencies)-1], stddev(latencies))
		}
		for i, code := range codes {
			fmt.Fprintf(w, "  %d: %d\n", code, counts[i])
		}
		fmt.Fprintln(w)
	}
}

func pct(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func mean(ds []time.Duration) time.Duration {
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}

func stddev(ds []time.Duration) time.Duration {
	avg := float64(mean(ds))
	var sq float64
	for _, d := range ds {
		diff := float64(d) - avg
		sq += diff * diff
	}
	return time.Duration(math.Sqrt(sq / float64(len(ds))))
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
