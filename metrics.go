package phoneAuth

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by phoneAuth APIs.
//
// MetricID values index the counters and histograms held by [Metrics].
type MetricID uint16

const (
	// MetricOTPSent is an exported constant or variable used by the authentication engine.
	MetricOTPSent MetricID = iota
	// MetricOTPQuotaExceeded is an exported constant or variable used by the authentication engine.
	MetricOTPQuotaExceeded
	// MetricOTPDeliveryFailed is an exported constant or variable used by the authentication engine.
	MetricOTPDeliveryFailed
	// MetricOTPLoginSuccess is an exported constant or variable used by the authentication engine.
	MetricOTPLoginSuccess
	// MetricOTPLoginFailure is an exported constant or variable used by the authentication engine.
	MetricOTPLoginFailure
	// MetricOTPLocked is an exported constant or variable used by the authentication engine.
	MetricOTPLocked
	// MetricPasswordLoginSuccess is an exported constant or variable used by the authentication engine.
	MetricPasswordLoginSuccess
	// MetricPasswordLoginFailure is an exported constant or variable used by the authentication engine.
	MetricPasswordLoginFailure
	// MetricPasswordLoginLocked is an exported constant or variable used by the authentication engine.
	MetricPasswordLoginLocked
	// MetricPasswordLoginNoPassword is an exported constant or variable used by the authentication engine.
	MetricPasswordLoginNoPassword
	// MetricPasswordSet is an exported constant or variable used by the authentication engine.
	MetricPasswordSet
	// MetricPasswordReset is an exported constant or variable used by the authentication engine.
	MetricPasswordReset
	// MetricPasswordPolicyRejected is an exported constant or variable used by the authentication engine.
	MetricPasswordPolicyRejected
	// MetricPasswordHashUpgraded is an exported constant or variable used by the authentication engine.
	MetricPasswordHashUpgraded
	// MetricAccountCreated is an exported constant or variable used by the authentication engine.
	MetricAccountCreated
	// MetricSessionIssued is an exported constant or variable used by the authentication engine.
	MetricSessionIssued
	// MetricCounterUnavailable is an exported constant or variable used by the authentication engine.
	MetricCounterUnavailable
	// MetricSendOTPLatency is an exported constant or variable used by the authentication engine.
	MetricSendOTPLatency
	// MetricLoginOTPLatency is an exported constant or variable used by the authentication engine.
	MetricLoginOTPLatency
	// MetricLoginPasswordLatency is an exported constant or variable used by the authentication engine.
	MetricLoginPasswordLatency
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

// Metrics defines a public type used by phoneAuth APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot defines a public type used by phoneAuth APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics may return an error when input validation, dependency calls, or security checks fail.
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
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

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to counter id. It is a no-op on a nil or disabled Metrics.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram of id. Only the flow latency IDs
// (MetricSendOTPLatency, MetricLoginOTPLatency, MetricLoginPasswordLatency)
// have histograms.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if !isLatencyMetric(id) {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value describes the value operation and its observable behavior.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, len(latencyMetrics)),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range latencyMetrics {
			buckets := make([]uint64, histBucketCount)
			for i := 0; i < histBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

var latencyMetrics = [...]MetricID{
	MetricSendOTPLatency,
	MetricLoginOTPLatency,
	MetricLoginPasswordLatency,
}

func isLatencyMetric(id MetricID) bool {
	for _, l := range latencyMetrics {
		if l == id {
			return true
		}
	}
	return false
}

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
