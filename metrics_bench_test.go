package goAuthClient

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricRefreshSuccess)
	}
}

func BenchmarkMetricsIncDisabledParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricRefreshSuccess)
		}
	})
}

func BenchmarkMetricsObserveServiceLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	d := 40 * time.Millisecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricServiceLatency, d)
		}
	})
}

type packedBenchmarkMetrics struct {
	counters [metricIDCount]uint64
}

func (m *packedBenchmarkMetrics) Inc(id MetricID) {
	atomic.AddUint64(&m.counters[id], 1)
}

// The counters a busy session touches together: a refresh cycle plus its
// scheduling and the occasional stale completion.
var refreshCycleMetricIDs = [...]MetricID{
	MetricRefreshSuccess,
	MetricRefreshScheduled,
	MetricRefreshDeduplicated,
	MetricStaleCompletion,
}

func BenchmarkMetricsIncRefreshCyclePadded(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(refreshCycleMetricIDs[idx%len(refreshCycleMetricIDs)])
			idx++
		}
	})
}

func BenchmarkMetricsIncRefreshCyclePacked(b *testing.B) {
	m := &packedBenchmarkMetrics{}
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(refreshCycleMetricIDs[idx%len(refreshCycleMetricIDs)])
			idx++
		}
	})
}

func BenchmarkManagerIsBlocked(b *testing.B) {
	clock := newFakeClock()
	m, err := New().WithCredentialService(newFakeService(clock)).WithClock(clock.Now).Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	defer m.Close()
	for i := 0; i < 5; i++ {
		_ = m.Login(context.Background(), LoginRequest{Email: testEmail, Password: "wrong-password"})
	}
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = m.IsBlocked()
		}
	})
}
