package main

import (
	"io"
	"strings"
	"testing"
)

func benchOutput(isBlockedNs, incNs string) string {
	var b strings.Builder
	b.WriteString("goos: linux\ngoarch: amd64\npkg: github.com/MrEthical07/goAuthClient\n")
	for _, ns := range []string{incNs, incNs, incNs} {
		b.WriteString("BenchmarkMetricsInc-8   \t100000000\t" + ns + " ns/op\t0 B/op\t0 allocs/op\n")
	}
	b.WriteString("BenchmarkMetricsIncDisabledParallel-8\t1000000000\t0.4 ns/op\t0 B/op\t0 allocs/op\n")
	b.WriteString("BenchmarkMetricsObserveServiceLatencyParallel-8\t50000000\t22 ns/op\t0 B/op\t0 allocs/op\n")
	b.WriteString("BenchmarkMetricsIncRefreshCyclePadded-8\t90000000\t3.1 ns/op\t0 B/op\t0 allocs/op\n")
	b.WriteString("BenchmarkMetricsIncRefreshCyclePacked-8\t30000000\t30 ns/op\t0 B/op\t0 allocs/op\n")
	b.WriteString("BenchmarkManagerIsBlocked-8\t20000000\t" + isBlockedNs + " ns/op\t0 B/op\t0 allocs/op\n")
	b.WriteString("PASS\nok  \tgithub.com/MrEthical07/goAuthClient\t9.1s\n")
	return b.String()
}

func mustParse(t *testing.T, s string) samples {
	t.Helper()
	out, err := parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return out
}

func TestParseKeepsTrackedBenchmarksOnly(t *testing.T) {
	got := mustParse(t, benchOutput("50", "1.5"))

	if _, ok := got["BenchmarkMetricsIncRefreshCyclePacked"]; ok {
		t.Fatal("untracked benchmark must be skipped")
	}
	if n := len(got["BenchmarkMetricsInc"]["ns/op"]); n != 3 {
		t.Fatalf("expected 3 samples across runs, got %d", n)
	}
	if v := got["BenchmarkManagerIsBlocked"]["allocs/op"]; len(v) != 1 || v[0] != 0 {
		t.Fatalf("unexpected allocs samples %v", v)
	}
}

func TestCompareFlagsRegressions(t *testing.T) {
	baseline := mustParse(t, benchOutput("50", "1.5"))

	if failures := compare(io.Discard, baseline, mustParse(t, benchOutput("60", "1.6")), defaultThreshold); len(failures) != 0 {
		t.Fatalf("expected no failures within threshold, got %v", failures)
	}

	failures := compare(io.Discard, baseline, mustParse(t, benchOutput("90", "1.5")), defaultThreshold)
	if len(failures) != 1 || !strings.Contains(failures[0], "BenchmarkManagerIsBlocked ns/op") {
		t.Fatalf("expected one IsBlocked regression, got %v", failures)
	}
}

func TestCompareReportsMissingSamples(t *testing.T) {
	baseline := mustParse(t, benchOutput("50", "1.5"))
	candidate := mustParse(t, "BenchmarkMetricsInc-8\t1\t1.5 ns/op\t0 allocs/op\n")

	failures := compare(io.Discard, baseline, candidate, defaultThreshold)
	if len(failures) == 0 || !strings.HasPrefix(failures[0], "missing samples") {
		t.Fatalf("expected missing sample failures, got %v", failures)
	}
}

func TestTrimProcsAndMedian(t *testing.T) {
	if got := trimProcs("BenchmarkManagerIsBlocked-16"); got != "BenchmarkManagerIsBlocked" {
		t.Fatalf("trimProcs = %q", got)
	}
	if got := trimProcs("BenchmarkMetricsInc"); got != "BenchmarkMetricsInc" {
		t.Fatalf("trimProcs without suffix = %q", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Fatalf("median = %v", got)
	}
}
