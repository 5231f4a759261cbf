package goAuthClient

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by goAuthClient APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins accepted by the credential service.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts logins rejected or failed in transport.
	MetricLoginFailure
	// MetricLoginRateLimited counts logins refused by the local cooldown.
	MetricLoginRateLimited
	// MetricLoginOffline counts credential operations refused while offline.
	MetricLoginOffline
	// MetricRegisterSuccess is an exported constant or variable used by the session manager.
	MetricRegisterSuccess
	// MetricRegisterFailure is an exported constant or variable used by the session manager.
	MetricRegisterFailure
	// MetricRefreshSuccess is an exported constant or variable used by the session manager.
	MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the session manager.
	MetricRefreshFailure
	// MetricRefreshScheduled counts refresh timers armed.
	MetricRefreshScheduled
	// MetricRefreshDeduplicated counts refresh callers that joined an in-flight exchange.
	MetricRefreshDeduplicated
	// MetricLogout is an exported constant or variable used by the session manager.
	MetricLogout
	// MetricLogoutRemoteFailure counts remote logout calls that failed or were skipped offline.
	MetricLogoutRemoteFailure
	// MetricSessionExpired counts sessions expired locally after a 401 response.
	MetricSessionExpired
	// MetricInitializeSuccess is an exported constant or variable used by the session manager.
	MetricInitializeSuccess
	// MetricInitializeFailure is an exported constant or variable used by the session manager.
	MetricInitializeFailure
	// MetricStaleCompletion counts operation results discarded because the session changed.
	MetricStaleCompletion
	// MetricStorageFailure counts credential storage reads or writes that failed.
	MetricStorageFailure
	// MetricValidationRejected counts requests rejected by client-side validation.
	MetricValidationRejected
	// MetricProfileUpdated is an exported constant or variable used by the session manager.
	MetricProfileUpdated
	// MetricPasswordChanged is an exported constant or variable used by the session manager.
	MetricPasswordChanged
	// MetricPasswordResetRequested is an exported constant or variable used by the session manager.
	MetricPasswordResetRequested
	// MetricPasswordResetCompleted is an exported constant or variable used by the session manager.
	MetricPasswordResetCompleted
	// MetricServiceLatency is the credential service call latency histogram.
	MetricServiceLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters for session manager operations.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of [Metrics].
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns counters that stay at zero unless cfg.Enabled is set.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the service latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id. It is lock-free and safe for concurrent use.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only MetricServiceLatency
// carries a histogram; other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricServiceLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current counter value.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter, and the latency histogram when enabled.
// A disabled Metrics returns empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricServiceLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricServiceLatency].buckets[i])
		}
		s.Histograms[MetricServiceLatency] = buckets
	}

	return s
}

// Bucket upper bounds: 5ms 10ms 25ms 50ms 100ms 250ms 500ms +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
