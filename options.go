package canon

import (
	"sync"

	"github.com/hupe1980/canon/internal/resource"
)

type options struct {
	name             string
	logger           *Logger
	metricsCollector MetricsCollector
	offHeap          bool
	offHeapLimit     int64
	chunkSize        int
	budget           *resource.Controller
}

func defaultOptions() options {
	return options{
		logger:           NewLogger(nil),
		metricsCollector: NoopMetricsCollector{},
		offHeap:          true,
	}
}

// Option configures a Store, or the process-wide defaults via Configure.
type Option func(*options)

// WithName sets the store name used in logs, errors and metrics.
// Defaults to the element type.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger.
//
// If nil is passed, NoopLogger is used.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
//
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithOffHeap enables or disables off-heap promotion for string and []byte
// stores. Enabled by default. Other element types always live on the heap.
func WithOffHeap(enabled bool) Option {
	return func(o *options) {
		o.offHeap = enabled
	}
}

// WithOffHeapLimit caps the total size of off-heap mappings shared by all
// stores configured with the same call. Past the cap, payloads are copied
// onto the heap. Zero or negative means unlimited.
func WithOffHeapLimit(bytes int64) Option {
	return func(o *options) {
		o.offHeapLimit = bytes
		o.budget = nil
	}
}

// WithChunkSize sets the size of each off-heap mapping. It is rounded up
// to a power of two. Zero selects the default of 1 MiB.
func WithChunkSize(bytes int) Option {
	return func(o *options) {
		o.chunkSize = bytes
	}
}

func buildOptions(base options, opts []Option) options {
	for _, opt := range opts {
		opt(&base)
	}
	if base.offHeapLimit > 0 && base.budget == nil {
		base.budget = resource.NewController(resource.Config{
			MemoryLimitBytes: base.offHeapLimit,
		})
	}
	return base
}

var (
	defaultsMu sync.RWMutex
	defaults   = defaultOptions()
)

// Configure sets the defaults used by stores initialized afterwards,
// including the per-type stores behind String, Bytes and Of. A store is
// initialized on first use and keeps its configuration from then on.
//
// Each call starts from the built-in defaults.
func Configure(opts ...Option) {
	o := buildOptions(defaultOptions(), opts)
	o.name = ""

	defaultsMu.Lock()
	defaults = o
	defaultsMu.Unlock()
}

func currentDefaults() options {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaults
}
