// Package canonotel records canon store metrics with OpenTelemetry.
package canonotel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hupe1980/canon"
)

// ScopeName is the instrumentation scope used by NewCollectorFromProvider.
const ScopeName = "github.com/hupe1980/canon"

var _ canon.MetricsCollector = (*Collector)(nil)

// Collector implements canon.MetricsCollector with OpenTelemetry
// instruments.
type Collector struct {
	interns       metric.Int64Counter
	internLatency metric.Float64Histogram
	poisoned      metric.Int64Counter
	fallbacks     metric.Int64Counter
	fallbackBytes metric.Int64Counter
}

// NewCollectorFromProvider creates a Collector using a meter named
// ScopeName from mp.
func NewCollectorFromProvider(mp metric.MeterProvider) (*Collector, error) {
	return NewCollector(mp.Meter(ScopeName))
}

// NewCollector creates all instruments on meter.
func NewCollector(meter metric.Meter) (*Collector, error) {
	c := &Collector{}
	var err error

	c.interns, err = meter.Int64Counter(
		"canon.interns",
		metric.WithDescription("Number of intern operations"),
		metric.WithUnit("{intern}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create interns counter: %w", err)
	}

	c.internLatency, err = meter.Float64Histogram(
		"canon.intern.duration",
		metric.WithDescription("Intern latency in microseconds"),
		metric.WithUnit("us"),
	)
	if err != nil {
		return nil, fmt.Errorf("create intern duration histogram: %w", err)
	}

	c.poisoned, err = meter.Int64Counter(
		"canon.poisoned",
		metric.WithDescription("Stores that became unusable"),
		metric.WithUnit("{store}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create poisoned counter: %w", err)
	}

	c.fallbacks, err = meter.Int64Counter(
		"canon.offheap.fallbacks",
		metric.WithDescription("Off-heap promotions placed on the heap instead"),
		metric.WithUnit("{promotion}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fallbacks counter: %w", err)
	}

	c.fallbackBytes, err = meter.Int64Counter(
		"canon.offheap.fallback.size",
		metric.WithDescription("Bytes placed on the heap by off-heap fallbacks"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fallback bytes counter: %w", err)
	}

	return c, nil
}

// RecordIntern implements canon.MetricsCollector.
func (c *Collector) RecordIntern(store string, hit bool, d time.Duration) {
	ctx := context.Background()
	c.interns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("store", store),
		attribute.Bool("hit", hit),
	))
	c.internLatency.Record(ctx, float64(d.Nanoseconds())/1e3, storeAttr(store))
}

// RecordPoisoned implements canon.MetricsCollector.
func (c *Collector) RecordPoisoned(store string) {
	c.poisoned.Add(context.Background(), 1, storeAttr(store))
}

// RecordFallback implements canon.MetricsCollector.
func (c *Collector) RecordFallback(store string, size int) {
	ctx := context.Background()
	c.fallbacks.Add(ctx, 1, storeAttr(store))
	c.fallbackBytes.Add(ctx, int64(size), storeAttr(store))
}

func storeAttr(store string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("store", store))
}
