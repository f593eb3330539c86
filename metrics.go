package dictcol

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    updateCounter  prometheus.CounterVec
//	    matchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordKeyUpdate(op string, rows int, duration time.Duration, err error) {
//	    p.updateCounter.WithLabelValues(op).Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordKeyUpdate is called after each single-column key operation
	// (add_keys, remove_keys, remove_unused_keys, set_keys).
	// rows is the column's row count; err is nil if successful.
	RecordKeyUpdate(op string, rows int, duration time.Duration, err error)

	// RecordMatch is called after each match operation. columns is the
	// total number of dictionary columns re-keyed.
	RecordMatch(columns int, duration time.Duration, err error)

	// RecordEncode is called after each encode operation.
	RecordEncode(rows int, duration time.Duration, err error)

	// RecordDecode is called after each decode operation.
	RecordDecode(rows int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordKeyUpdate(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMatch(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordEncode(int, time.Duration, error)            {}
func (NoopMetricsCollector) RecordDecode(int, time.Duration, error)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	KeyUpdateCount      atomic.Int64
	KeyUpdateErrors     atomic.Int64
	KeyUpdateRows       atomic.Int64
	KeyUpdateTotalNanos atomic.Int64
	MatchCount          atomic.Int64
	MatchColumns        atomic.Int64
	MatchErrors         atomic.Int64
	MatchTotalNanos     atomic.Int64
	EncodeCount         atomic.Int64
	EncodeErrors        atomic.Int64
	DecodeCount         atomic.Int64
	DecodeErrors        atomic.Int64
}

// RecordKeyUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordKeyUpdate(op string, rows int, duration time.Duration, err error) {
	b.KeyUpdateCount.Add(1)
	b.KeyUpdateRows.Add(int64(rows))
	b.KeyUpdateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.KeyUpdateErrors.Add(1)
	}
}

// RecordMatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatch(columns int, duration time.Duration, err error) {
	b.MatchCount.Add(1)
	b.MatchColumns.Add(int64(columns))
	b.MatchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MatchErrors.Add(1)
	}
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(rows int, duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	if err != nil {
		b.EncodeErrors.Add(1)
	}
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(rows int, duration time.Duration, err error) {
	b.DecodeCount.Add(1)
	if err != nil {
		b.DecodeErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		KeyUpdateCount:    b.KeyUpdateCount.Load(),
		KeyUpdateErrors:   b.KeyUpdateErrors.Load(),
		KeyUpdateRows:     b.KeyUpdateRows.Load(),
		KeyUpdateAvgNanos: b.getAvgKeyUpdateNanos(),
		MatchCount:        b.MatchCount.Load(),
		MatchColumns:      b.MatchColumns.Load(),
		MatchErrors:       b.MatchErrors.Load(),
		EncodeCount:       b.EncodeCount.Load(),
		EncodeErrors:      b.EncodeErrors.Load(),
		DecodeCount:       b.DecodeCount.Load(),
		DecodeErrors:      b.DecodeErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgKeyUpdateNanos() int64 {
	count := b.KeyUpdateCount.Load()
	if count == 0 {
		return 0
	}
	return b.KeyUpdateTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	KeyUpdateCount    int64
	KeyUpdateErrors   int64
	KeyUpdateRows     int64
	KeyUpdateAvgNanos int64
	MatchCount        int64
	MatchColumns      int64
	MatchErrors       int64
	EncodeCount       int64
	EncodeErrors      int64
	DecodeCount       int64
	DecodeErrors      int64
}
