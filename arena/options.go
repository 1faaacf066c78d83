package arena

import (
	"log/slog"
	"time"
)

// Observer receives arena events. Implementations must be safe for
// concurrent use and must not call back into the arena.
type Observer interface {
	// OnInsert is called after every successful Insert or InsertOwned.
	// hit reports whether an existing canonical instance was returned.
	OnInsert(hit bool, duration time.Duration)

	// OnPoison is called once, when the arena becomes unusable.
	OnPoison()
}

type config[T any] struct {
	name     string
	hasher   Hasher[T]
	promoter Promoter[T]
	observer Observer
	logger   *slog.Logger
}

// Option configures an Arena.
type Option[T any] func(*config[T])

// WithName sets the name used in logs, errors and metrics. Defaults to the
// element type.
func WithName[T any](name string) Option[T] {
	return func(c *config[T]) {
		c.name = name
	}
}

// WithHasher overrides the content hasher.
func WithHasher[T any](h Hasher[T]) Option[T] {
	return func(c *config[T]) {
		if h != nil {
			c.hasher = h
		}
	}
}

// WithPromoter sets how InsertOwned gives values indefinite lifetime.
//
// If nil is passed, Heap is used.
func WithPromoter[T any](p Promoter[T]) Option[T] {
	return func(c *config[T]) {
		if p == nil {
			p = Heap[T]()
		}
		c.promoter = p
	}
}

// WithObserver registers an Observer. Pass nil to disable.
func WithObserver[T any](o Observer) Option[T] {
	return func(c *config[T]) {
		c.observer = o
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(c *config[T]) {
		if l != nil {
			c.logger = l
		}
	}
}
