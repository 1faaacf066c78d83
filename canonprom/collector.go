// Package canonprom exports canon store metrics to Prometheus.
//
//	c, err := canonprom.NewCollector(prometheus.DefaultRegisterer)
//	if err != nil { ... }
//	canon.Configure(canon.WithMetricsCollector(c))
package canonprom

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/canon"
)

var _ canon.MetricsCollector = (*Collector)(nil)

// Collector implements canon.MetricsCollector with Prometheus instruments.
type Collector struct {
	interns       *prometheus.CounterVec
	internLatency *prometheus.HistogramVec
	poisoned      *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	fallbackBytes *prometheus.CounterVec
}

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name. Defaults to "canon".
	Namespace string

	// Buckets for the intern latency histogram. Defaults to sub-millisecond
	// exponential buckets starting at 100ns.
	Buckets []float64
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer, optFns ...func(o *Options)) (*Collector, error) {
	opts := Options{
		Namespace: "canon",
		Buckets:   prometheus.ExponentialBuckets(100e-9, 4, 10),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		interns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "interns_total",
			Help:      "Total interns, partitioned by store and whether an existing instance was returned.",
		}, []string{"store", "hit"}),
		internLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "intern_duration_seconds",
			Help:      "Latency of intern operations.",
			Buckets:   opts.Buckets,
		}, []string{"store"}),
		poisoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "poisoned_total",
			Help:      "Stores that became unusable after an abnormal exit inside a critical section.",
		}, []string{"store"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "offheap_fallbacks_total",
			Help:      "Off-heap promotions that were placed on the heap instead.",
		}, []string{"store"}),
		fallbackBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "offheap_fallback_bytes_total",
			Help:      "Bytes placed on the heap by off-heap fallbacks.",
		}, []string{"store"}),
	}

	for _, col := range []prometheus.Collector{c.interns, c.internLatency, c.poisoned, c.fallbacks, c.fallbackBytes} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("canonprom: register: %w", err)
		}
	}

	return c, nil
}

// RecordIntern implements canon.MetricsCollector.
func (c *Collector) RecordIntern(store string, hit bool, d time.Duration) {
	c.interns.WithLabelValues(store, strconv.FormatBool(hit)).Inc()
	c.internLatency.WithLabelValues(store).Observe(d.Seconds())
}

// RecordPoisoned implements canon.MetricsCollector.
func (c *Collector) RecordPoisoned(store string) {
	c.poisoned.WithLabelValues(store).Inc()
}

// RecordFallback implements canon.MetricsCollector.
func (c *Collector) RecordFallback(store string, size int) {
	c.fallbacks.WithLabelValues(store).Inc()
	c.fallbackBytes.WithLabelValues(store).Add(float64(size))
}
