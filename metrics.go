package gourdianclaims

import "sync/atomic"

type metricID int

const (
	metricIssued metricID = iota
	metricIssueFailure
	metricVerified
	metricTampered
	metricExpired
	metricDecodeError
	metricCacheHit
	metricCacheMiss
	metricCacheError
	metricResolved
	metricResolvedAbsent
	metricResolveFailed
	metricCount
)

// Metrics counts token operations. A nil *Metrics is valid and counts nothing.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

// MetricsSnapshot is a point in time copy of the counters.
type MetricsSnapshot struct {
	Issued              uint64
	IssueFailures       uint64
	Verified            uint64
	TamperedOrMalformed uint64
	Expired             uint64
	DecodeErrors        uint64
	CacheHits           uint64
	CacheMisses         uint64
	CacheErrors         uint64
	Resolved            uint64
	ResolvedAbsent      uint64
	ResolveFailures     uint64
}

// NewMetrics returns a zeroed counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) inc(id metricID) {
	if m == nil {
		return
	}
	m.counters[id].Add(1)
}

func (m *Metrics) incDiagnostic(diag Diagnostic) {
	switch diag {
	case DiagnosticTamperedOrMalformed:
		m.inc(metricTampered)
	case DiagnosticExpired:
		m.inc(metricExpired)
	case DiagnosticDecodeError:
		m.inc(metricDecodeError)
	}
}

func (m *Metrics) incState(state ResolutionState) {
	switch state {
	case StateResolved:
		m.inc(metricResolved)
	case StateResolvedAbsent:
		m.inc(metricResolvedAbsent)
	case StateFailed:
		m.inc(metricResolveFailed)
	}
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Issued:              m.counters[metricIssued].Load(),
		IssueFailures:       m.counters[metricIssueFailure].Load(),
		Verified:            m.counters[metricVerified].Load(),
		TamperedOrMalformed: m.counters[metricTampered].Load(),
		Expired:             m.counters[metricExpired].Load(),
		DecodeErrors:        m.counters[metricDecodeError].Load(),
		CacheHits:           m.counters[metricCacheHit].Load(),
		CacheMisses:         m.counters[metricCacheMiss].Load(),
		CacheErrors:         m.counters[metricCacheError].Load(),
		Resolved:            m.counters[metricResolved].Load(),
		ResolvedAbsent:      m.counters[metricResolvedAbsent].Load(),
		ResolveFailures:     m.counters[metricResolveFailed].Load(),
	}
}
