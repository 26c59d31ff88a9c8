package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
)

// defaultLoadQueries cover the three topics of the reference corpus plus a
// few queries that match nothing.
var defaultLoadQueries = []string{
	"artificial intelligence",
	"machine learning",
	"neural networks",
	"roman empire",
	"history of europe",
	"industrial revolution",
	"football",
	"history of sport",
	"olympic games",
	"intelligence sport",
	"quantum chromodynamics",
	"the is a",
}

type loadTestConfig struct {
	BaseURL     string
	Endpoint    string
	Concurrency int
	Duration    time.Duration
	Limit       int
	Queries     []string
}

type loadStats struct {
	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64

	mu          sync.Mutex
	latencies   []time.Duration
	statusCodes map[int]int64
}

func newLoadStats() *loadStats {
	return &loadStats{
		latencies:   make([]time.Duration, 0, 10000),
		statusCodes: make(map[int]int64),
	}
}

func (s *loadStats) record(latency time.Duration, status int, err error) {
	s.total.Add(1)
	if err != nil {
		s.failed.Add(1)
		return
	}
	if status >= 200 && status < 300 {
		s.succeeded.Add(1)
	} else {
		s.failed.Add(1)
	}

	s.mu.Lock()
	s.latencies = append(s.latencies, latency)
	s.statusCodes[status]++
	s.mu.Unlock()
}

func newLoadTestCmd() *cobra.Command {
	lc := loadTestConfig{Queries: defaultLoadQueries}
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Send concurrent queries to a running query service",
		Long: `Replay a fixed set of queries against a running "docsearch serve" instance
from several workers for a fixed duration, then print throughput, latency
percentiles and the status code distribution.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lc.Endpoint != "rank" && lc.Endpoint != "search" {
				return fmt.Errorf("endpoint must be rank or search, got %q", lc.Endpoint)
			}
			if lc.Concurrency < 1 {
				return fmt.Errorf("concurrency must be at least 1")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== docsearch load test ===")
			fmt.Fprintf(out, "Target:      %s/api/v1/%s\n", lc.BaseURL, lc.Endpoint)
			fmt.Fprintf(out, "Concurrency: %d\n", lc.Concurrency)
			fmt.Fprintf(out, "Duration:    %s\n", lc.Duration)
			fmt.Fprintf(out, "Queries:     %d unique\n\n", len(lc.Queries))

			stats := runLoadTest(cmd.Context(), lc)
			return printLoadReport(out, stats, lc.Duration)
		},
	}
	f := cmd.Flags()
	f.StringVar(&lc.BaseURL, "url", "http://localhost:8080", "base URL of the query service")
	f.StringVar(&lc.Endpoint, "endpoint", "rank", "endpoint to exercise: rank or search")
	f.IntVar(&lc.Concurrency, "concurrency", 10, "number of concurrent workers")
	f.DurationVar(&lc.Duration, "duration", 30*time.Second, "test duration")
	f.IntVar(&lc.Limit, "limit", 10, "limit parameter sent with rank requests")
	return cmd
}

func runLoadTest(ctx context.Context, lc loadTestConfig) *loadStats {
	stats := newLoadStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        lc.Concurrency * 2,
			MaxIdleConnsPerHost: lc.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	defer client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, lc.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < lc.Concurrency; w++ {
		wg.Add(1)
		go func(next int) {
			defer wg.Done()
			for ctx.Err() == nil {
				target := loadTargetURL(lc, lc.Queries[next%len(lc.Queries)])
				next++

				start := time.Now()
				status, err := doLoadRequest(ctx, client, target)
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					return
				}
				stats.record(time.Since(start), status, err)
			}
		}(w)
	}
	wg.Wait()
	return stats
}

func loadTargetURL(lc loadTestConfig, query string) string {
	params := url.Values{"q": {query}}
	if lc.Endpoint == "rank" && lc.Limit > 0 {
		params.Set("limit", fmt.Sprint(lc.Limit))
	}
	return fmt.Sprintf("%s/api/v1/%s?%s", lc.BaseURL, lc.Endpoint, params.Encode())
}

func doLoadRequest(ctx context.Context, client *http.Client, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func printLoadReport(w io.Writer, stats *loadStats, duration time.Duration) error {
	total := stats.total.Load()
	failed := stats.failed.Load()

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", total)
	fmt.Fprintf(w, "Successful:      %d\n", stats.succeeded.Load())
	fmt.Fprintf(w, "Errors:          %d\n", failed)
	if total == 0 {
		return fmt.Errorf("no requests completed, is the service running?")
	}
	fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(failed)/float64(total)*100)
	fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(total)/duration.Seconds())

	stats.mu.Lock()
	latencies := append([]time.Duration(nil), stats.latencies...)
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	counts := make(map[int]int64, len(stats.statusCodes))
	for code, n := range stats.statusCodes {
		counts[code] = n
	}
	stats.mu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", latencies[0])
		fmt.Fprintf(w, "Avg:    %s\n", sum/time.Duration(len(latencies)))
		fmt.Fprintf(w, "P50:    %s\n", latencyPercentile(latencies, 50))
		fmt.Fprintf(w, "P95:    %s\n", latencyPercentile(latencies, 95))
		fmt.Fprintf(w, "P99:    %s\n", latencyPercentile(latencies, 99))
		fmt.Fprintf(w, "Max:    %s\n", latencies[len(latencies)-1])
	}

	sort.Ints(codes)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, counts[code])
	}
	return nil
}

// latencyPercentile uses the nearest-rank method on sorted.
func latencyPercentile(sorted []time.Duration, p float64) time.Duration {
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
