package canon

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see the
// canonprom and canonotel packages for ready-made collectors.
//
// Implementations are called from inside interning hot paths and must be
// safe for concurrent use.
type MetricsCollector interface {
	// RecordIntern is called after each successful intern.
	// hit reports whether an existing canonical instance was returned.
	RecordIntern(store string, hit bool, duration time.Duration)

	// RecordPoisoned is called once when a store becomes unusable.
	RecordPoisoned(store string)

	// RecordFallback is called when off-heap promotion of size bytes was
	// placed on the heap instead.
	RecordFallback(store string, size int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIntern(string, bool, time.Duration) {}
func (NoopMetricsCollector) RecordPoisoned(string)                    {}
func (NoopMetricsCollector) RecordFallback(string, int)               {}

// BasicMetricsCollector provides simple in-memory metrics collection
// aggregated over all stores.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InternCount      atomic.Int64
	InternHits       atomic.Int64
	InternMisses     atomic.Int64
	InternTotalNanos atomic.Int64
	PoisonedCount    atomic.Int64
	FallbackCount    atomic.Int64
	FallbackBytes    atomic.Int64
}

// RecordIntern implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIntern(_ string, hit bool, duration time.Duration) {
	b.InternCount.Add(1)
	b.InternTotalNanos.Add(duration.Nanoseconds())
	if hit {
		b.InternHits.Add(1)
	} else {
		b.InternMisses.Add(1)
	}
}

// RecordPoisoned implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPoisoned(string) {
	b.PoisonedCount.Add(1)
}

// RecordFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFallback(_ string, size int) {
	b.FallbackCount.Add(1)
	b.FallbackBytes.Add(int64(size))
}

// HitRate returns the fraction of interns answered by an existing instance.
func (b *BasicMetricsCollector) HitRate() float64 {
	n := b.InternCount.Load()
	if n == 0 {
		return 0
	}
	return float64(b.InternHits.Load()) / float64(n)
}

// AverageInternLatency returns the mean intern duration.
func (b *BasicMetricsCollector) AverageInternLatency() time.Duration {
	n := b.InternCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(b.InternTotalNanos.Load() / n)
}
