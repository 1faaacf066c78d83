package canon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Logger is the slog.Logger used by stores. Records written through
// WithStore carry the store name.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps handler. A nil handler writes text at Info and above to
// stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger writes JSON records at level and above to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger writes key=value records at level and above to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards every record.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithStore returns a logger that tags records with the store name.
func (l *Logger) WithStore(name string) *Logger {
	return &Logger{Logger: l.With("store", name)}
}

// LogStoreCreated logs the lazy creation of a store. offHeapLimit is zero
// when off-heap memory is unbounded.
func (l *Logger) LogStoreCreated(ctx context.Context, offHeap bool, offHeapLimit int64) {
	l.DebugContext(ctx, "store created",
		"off_heap", offHeap,
		"off_heap_limit", offHeapLimit,
	)
}

// LogFallback logs an off-heap promotion that was placed on the heap. The
// first fallback of a store is a warning, later ones are debug records.
func (l *Logger) LogFallback(ctx context.Context, first bool, size int, err error, offHeap fmt.Stringer) {
	level := slog.LevelDebug
	if first {
		level = slog.LevelWarn
	}
	if !l.Enabled(ctx, level) {
		return
	}

	attrs := []any{"bytes", size, "error", err}
	if offHeap != nil {
		attrs = append(attrs, "off_heap", offHeap.String())
	}
	l.Log(ctx, level, "off-heap promotion fell back to heap", attrs...)
}
