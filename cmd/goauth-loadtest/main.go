package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/password"
	"github.com/MrEthical07/goAuthClient/provider/memory"
	"github.com/MrEthical07/goAuthClient/storage/redisarea"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		clients     = flag.Int("clients", 64, "number of session managers")
		concurrency = flag.Int("concurrency", 8, "concurrent Refresh callers per manager")
		rounds      = flag.Int("rounds", 20, "refresh rounds")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gaclt", "credential key prefix")
	)
	flag.Parse()

	if *clients <= 0 || *concurrency <= 0 || *rounds <= 0 {
		fmt.Fprintln(os.Stderr, "clients, concurrency, and rounds must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	pw := password.DefaultConfig()
	pw.Memory, pw.Time = 8*1024, 1
	cfg := memory.DefaultConfig([]byte("goauth-loadtest-signing-key-0123456789"))
	cfg.Password = pw
	backend, err := memory.NewDemo(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backend: %v\n", err)
		os.Exit(1)
	}

	areas := make([]*redisarea.Area, *clients)
	for i := range areas {
		areas[i] = redisarea.New(client, fmt.Sprintf("%s:%d", *prefix, i), 0)
	}

	fmt.Printf("signing in %d managers...\n", *clients)
	startLogin := time.Now()
	managers, err := signIn(ctx, backend, areas)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign-in failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("signed in in %s\n", time.Since(startLogin).Round(time.Millisecond))

	refreshStats, exchanges := runRefreshPhase(ctx, managers, *rounds, *concurrency)
	for _, m := range managers {
		m.Close()
	}
	restoreStats := runRestorePhase(ctx, backend, areas)

	fmt.Println("---- results ----")
	printStats("refresh", refreshStats)
	fmt.Printf("refresh: exchanges=%d callers=%d live_sessions=%d\n", exchanges, refreshStats.ops, backend.SessionCount())
	printStats("restore", restoreStats)
}

func newManager(backend goAuthClient.CredentialService, area *redisarea.Area) (*goAuthClient.Manager, error) {
	return goAuthClient.New().
		WithCredentialService(backend).
		WithDurableArea(area).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithMetricsEnabled(true).
		Build()
}

func signIn(ctx context.Context, backend *memory.Service, areas []*redisarea.Area) ([]*goAuthClient.Manager, error) {
	out := make([]*goAuthClient.Manager, len(areas))
	for i, area := range areas {
		m, err := newManager(backend, area)
		if err != nil {
			return nil, err
		}
		if err := m.Initialize(ctx); err != nil {
			return nil, err
		}
		demo := memory.DemoAccounts[i%len(memory.DemoAccounts)]
		if err := m.Login(ctx, goAuthClient.LoginRequest{Email: demo.Email, Password: demo.Password, RememberMe: true}); err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// runRefreshPhase has every manager absorb bursts of concurrent Refresh
// calls. It returns caller latencies and the number of exchanges that
// reached the backend.
func runRefreshPhase(ctx context.Context, managers []*goAuthClient.Manager, rounds, concurrency int) (phaseStats, uint64) {
	var (
		wg        sync.WaitGroup
		failures  int64
		latencies = make([]time.Duration, 0, len(managers)*rounds*concurrency)
		mu        sync.Mutex
	)

	start := time.Now()
	for _, m := range managers {
		wg.Add(1)
		go func(m *goAuthClient.Manager) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				var burst sync.WaitGroup
				for c := 0; c < concurrency; c++ {
					burst.Add(1)
					go func() {
						defer burst.Done()
						t0 := time.Now()
						err := m.Refresh(ctx)
						d := time.Since(t0)
						if err != nil {
							atomic.AddInt64(&failures, 1)
						}
						mu.Lock()
						latencies = append(latencies, d)
						mu.Unlock()
					}()
				}
				burst.Wait()
			}
		}(m)
	}
	wg.Wait()
	total := time.Since(start)

	var exchanges uint64
	for _, m := range managers {
		snap := m.MetricsSnapshot()
		exchanges += snap.Counters[goAuthClient.MetricRefreshSuccess] + snap.Counters[goAuthClient.MetricRefreshFailure]
	}
	return computeStats(total, latencies, failures), exchanges
}

// runRestorePhase rebuilds every manager from its Redis area, as a process
// restart would.
func runRestorePhase(ctx context.Context, backend *memory.Service, areas []*redisarea.Area) phaseStats {
	var (
		failures  int64
		latencies = make([]time.Duration, 0, len(areas))
	)

	start := time.Now()
	for _, area := range areas {
		m, err := newManager(backend, area)
		if err != nil {
			failures++
			continue
		}
		t0 := time.Now()
		err = m.Initialize(ctx)
		latencies = append(latencies, time.Since(t0))
		if err != nil || !m.IsAuthenticated() {
			failures++
		}
		m.Close()
	}
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
