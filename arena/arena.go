package arena

import (
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/canon/internal/conv"
)

// Stats reports arena counters.
type Stats struct {
	Entries  int    // distinct canonical instances
	Hits     uint64 // inserts answered by an existing instance
	Misses   uint64 // inserts that appended a new instance
	Poisoned bool
}

// Arena is an append-only, deduplicating store that owns one canonical
// instance per distinct value.
type Arena[T any] struct {
	name     string
	hasher   Hasher[T]
	promoter Promoter[T]
	observer Observer
	logger   *slog.Logger

	mu       sync.RWMutex
	values   []*T                // insertion order; never shrinks or reorders
	index    map[uint64][]uint32 // content hash -> positions in values
	poisoned atomic.Bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an arena for a comparable type using the Comparable hasher.
func New[T comparable](opts ...Option[T]) *Arena[T] {
	return NewWith(Comparable[T](), opts...)
}

// NewWith creates an arena with an explicit hasher. Use it for content
// that is not comparable, such as []byte.
func NewWith[T any](h Hasher[T], opts ...Option[T]) *Arena[T] {
	cfg := config[T]{
		name:     reflect.TypeFor[T]().String(),
		hasher:   h,
		promoter: Heap[T](),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.hasher == nil {
		panic("arena: nil hasher")
	}

	a := &Arena[T]{
		name:     cfg.name,
		hasher:   cfg.hasher,
		promoter: cfg.promoter,
		observer: cfg.observer,
		logger:   cfg.logger.With("arena", cfg.name),
		index:    make(map[uint64][]uint32),
	}

	a.logger.Debug("arena created")

	return a
}

// Name returns the arena name.
func (a *Arena[T]) Name() string {
	return a.name
}

// Insert returns the canonical instance equal to *p. On a miss p itself
// becomes the canonical instance: the caller hands the arena a reference
// that is never released and must not modify *p afterwards.
func (a *Arena[T]) Insert(p *T) (*T, error) {
	if p == nil {
		return nil, ErrNilValue
	}
	return a.insert(*p, p)
}

// InsertOwned returns the canonical instance equal to v. On a miss the
// arena takes ownership of v through its Promoter. Promotion only happens
// on a miss, so hits never consume permanent memory.
func (a *Arena[T]) InsertOwned(v T) (*T, error) {
	return a.insert(v, nil)
}

func (a *Arena[T]) insert(v T, adopt *T) (*T, error) {
	if a.poisoned.Load() {
		return nil, a.poisonedError()
	}

	var start time.Time
	if a.observer != nil {
		start = time.Now()
	}

	h := a.hasher.Hash(v)

	ref, err := a.lookup(h, v)
	if err != nil {
		return nil, err
	}

	hit := ref != nil
	if !hit {
		ref, hit, err = a.add(h, v, adopt)
		if err != nil {
			return nil, err
		}
	}

	if hit {
		a.hits.Add(1)
	} else {
		a.misses.Add(1)
	}

	if a.observer != nil {
		a.observer.OnInsert(hit, time.Since(start))
	}

	return ref, nil
}

// lookup is the read-locked fast path.
func (a *Arena[T]) lookup(h uint64, v T) (ref *T, err error) {
	a.mu.RLock()
	done := false
	defer func() {
		if !done {
			a.poison()
		}
		a.mu.RUnlock()
	}()

	if a.poisoned.Load() {
		done = true
		return nil, a.poisonedError()
	}

	ref = a.find(h, v)
	done = true
	return ref, nil
}

// add repeats the lookup under the write lock and appends on a miss, so
// the existence check and the append form one critical section.
func (a *Arena[T]) add(h uint64, v T, adopt *T) (ref *T, hit bool, err error) {
	a.mu.Lock()
	done := false
	defer func() {
		if !done {
			a.poison()
		}
		a.mu.Unlock()
	}()

	if a.poisoned.Load() {
		done = true
		return nil, false, a.poisonedError()
	}

	if ref = a.find(h, v); ref != nil {
		done = true
		return ref, true, nil
	}

	pos, err := conv.IntToUint32(len(a.values))
	if err != nil {
		done = true
		return nil, false, fmt.Errorf("arena %s: %w", a.name, err)
	}

	if adopt != nil {
		ref = adopt
	} else {
		ref = a.promoter.Promote(v)
	}

	a.values = append(a.values, ref)
	a.index[h] = append(a.index[h], pos)

	done = true
	return ref, false, nil
}

// find must be called with mu held.
func (a *Arena[T]) find(h uint64, v T) *T {
	for _, pos := range a.index[h] {
		if c := a.values[pos]; a.hasher.Equal(*c, v) {
			return c
		}
	}
	return nil
}

// poison runs in a deferred call while mu is still held and the goroutine
// is panicking or exiting.
func (a *Arena[T]) poison() {
	if a.poisoned.Swap(true) {
		return
	}
	a.logger.Error("arena poisoned: abnormal exit inside critical section",
		"entries", len(a.values),
	)
	if a.observer != nil {
		a.observer.OnPoison()
	}
}

func (a *Arena[T]) poisonedError() error {
	return &PoisonedError{Name: a.name}
}

// Poisoned reports whether the arena has become unusable.
func (a *Arena[T]) Poisoned() bool {
	return a.poisoned.Load()
}

// Get returns the canonical instance at position i (first-seen order).
func (a *Arena[T]) Get(i int) (*T, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.poisoned.Load() {
		return nil, a.poisonedError()
	}
	if i < 0 || i >= len(a.values) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, i, len(a.values))
	}
	return a.values[i], nil
}

// Len returns the number of distinct canonical instances. It never
// decreases.
func (a *Arena[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.values)
}

// All iterates canonical instances in first-seen order over a snapshot
// taken when iteration starts. A poisoned arena yields nothing.
func (a *Arena[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		a.mu.RLock()
		if a.poisoned.Load() {
			a.mu.RUnlock()
			return
		}
		// Entries below len are never rewritten, so the snapshot stays valid
		// after the lock is released even if values is reallocated.
		snapshot := a.values[:len(a.values):len(a.values)]
		a.mu.RUnlock()

		for i, p := range snapshot {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Stats returns the current counters.
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Entries:  a.Len(),
		Hits:     a.hits.Load(),
		Misses:   a.misses.Load(),
		Poisoned: a.poisoned.Load(),
	}
}

func (a *Arena[T]) String() string {
	s := a.Stats()
	return fmt.Sprintf("Arena{name: %s, entries: %d, hits: %d, misses: %d, poisoned: %t}",
		a.name, s.Entries, s.Hits, s.Misses, s.Poisoned)
}
