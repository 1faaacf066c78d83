package canon

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/canon/arena"
)

// Store is a typed, lazily initialized interning store. The underlying
// arena is created on first use with the options in effect at that time.
//
// A Store is safe for concurrent use. The zero value is not usable; create
// stores with NewStore or NewStoreWith.
type Store[T any] struct {
	arena        func() *arena.Arena[T]
	statsOffHeap func() arena.OffHeapStats
}

// StoreStats reports store counters.
type StoreStats struct {
	arena.Stats

	// OffHeap is zero for stores that do not promote off-heap.
	OffHeap arena.OffHeapStats
}

// NewStore creates a store for a comparable type. String stores hash with
// xxHash64.
func NewStore[T comparable](opts ...Option) *Store[T] {
	return newStore(func() arena.Hasher[T] {
		if h, ok := any(arena.Strings()).(arena.Hasher[T]); ok {
			return h
		}
		return arena.Comparable[T]()
	}, opts)
}

// NewStoreWith creates a store with an explicit hasher, for content that
// is not comparable such as []byte.
func NewStoreWith[T any](h arena.Hasher[T], opts ...Option) *Store[T] {
	return newStore(func() arena.Hasher[T] { return h }, opts)
}

type offHeapPromoter interface {
	Stats() arena.OffHeapStats
	fmt.Stringer
}

func newStore[T any](hasher func() arena.Hasher[T], opts []Option) *Store[T] {
	s := &Store[T]{}
	var offHeap offHeapPromoter

	s.arena = sync.OnceValue(func() *arena.Arena[T] {
		o := buildOptions(currentDefaults(), opts)
		if o.name == "" {
			o.name = reflect.TypeFor[T]().String()
		}

		logger := o.logger.WithStore(o.name)

		promoter, oh := newPromoter[T](o, logger)
		offHeap = oh

		a := arena.NewWith(hasher(),
			arena.WithName[T](o.name),
			arena.WithPromoter(promoter),
			arena.WithObserver[T](&storeObserver{name: o.name, mc: o.metricsCollector}),
			arena.WithLogger[T](o.logger.Logger),
		)
		logger.LogStoreCreated(context.Background(), oh != nil, o.budget.MemoryLimit())
		return a
	})

	s.statsOffHeap = func() arena.OffHeapStats {
		if offHeap == nil {
			return arena.OffHeapStats{}
		}
		return offHeap.Stats()
	}

	return s
}

// newPromoter picks the promoter for T. The second result is non-nil when
// payloads go off-heap.
func newPromoter[T any](o options, logger *Logger) (arena.Promoter[T], offHeapPromoter) {
	var (
		warned atomic.Bool
		usage  offHeapPromoter
	)
	cfg := arena.OffHeapConfig{
		ChunkSize: o.chunkSize,
		OnFallback: func(size int, err error) {
			logger.LogFallback(context.Background(), !warned.Swap(true), size, err, usage)
			o.metricsCollector.RecordFallback(o.name, size)
		},
	}
	if o.budget != nil {
		cfg.Budget = o.budget
	}

	var zero T
	switch any(zero).(type) {
	case string:
		if o.offHeap {
			p := arena.NewOffHeapStrings(cfg)
			usage = p
			return any(p).(arena.Promoter[T]), p
		}
		return any(arena.HeapStrings()).(arena.Promoter[T]), nil
	case []byte:
		if o.offHeap {
			p := arena.NewOffHeapBytes(cfg)
			usage = p
			return any(p).(arena.Promoter[T]), p
		}
		return any(arena.HeapBytes()).(arena.Promoter[T]), nil
	default:
		return arena.Heap[T](), nil
	}
}

// Intern returns the handle of the canonical instance equal to v, taking
// ownership of v on a miss. It panics with a *PoisonedError if the store
// is poisoned.
func (s *Store[T]) Intern(v T) Handle[T] {
	h, err := s.TryIntern(v)
	if err != nil {
		panic(err)
	}
	return h
}

// TryIntern is like Intern but returns the error instead of panicking.
func (s *Store[T]) TryIntern(v T) (Handle[T], error) {
	p, err := s.arena().InsertOwned(v)
	if err != nil {
		return Handle[T]{}, err
	}
	return handleOf(p), nil
}

// InternPtr returns the handle of the canonical instance equal to *p. On a
// miss p itself becomes canonical: the caller must never modify *p again.
// It panics if p is nil or the store is poisoned.
func (s *Store[T]) InternPtr(p *T) Handle[T] {
	h, err := s.TryInternPtr(p)
	if err != nil {
		panic(err)
	}
	return h
}

// TryInternPtr is like InternPtr but returns the error instead of
// panicking.
func (s *Store[T]) TryInternPtr(p *T) (Handle[T], error) {
	c, err := s.arena().Insert(p)
	if err != nil {
		return Handle[T]{}, err
	}
	return handleOf(c), nil
}

// Name returns the store name.
func (s *Store[T]) Name() string {
	return s.arena().Name()
}

// Len returns the number of distinct canonical instances.
func (s *Store[T]) Len() int {
	return s.arena().Len()
}

// Stats returns the current counters.
func (s *Store[T]) Stats() StoreStats {
	return StoreStats{
		Stats:   s.arena().Stats(),
		OffHeap: s.statsOffHeap(),
	}
}

// All iterates handles in first-seen order.
func (s *Store[T]) All() iter.Seq[Handle[T]] {
	return func(yield func(Handle[T]) bool) {
		for _, p := range s.arena().All() {
			if !yield(handleOf(p)) {
				return
			}
		}
	}
}

type storeObserver struct {
	name string
	mc   MetricsCollector
}

func (o *storeObserver) OnInsert(hit bool, d time.Duration) {
	o.mc.RecordIntern(o.name, hit, d)
}

func (o *storeObserver) OnPoison() {
	o.mc.RecordPoisoned(o.name)
}
