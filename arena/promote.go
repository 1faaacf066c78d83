package arena

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/canon/internal/slab"
)

// Promoter gives a value indefinite lifetime. The returned pointer is kept
// by the arena for the rest of the process and is never released.
type Promoter[T any] interface {
	Promote(v T) *T
}

// PromoterFunc adapts a function to a Promoter.
type PromoterFunc[T any] func(v T) *T

// Promote implements Promoter.
func (f PromoterFunc[T]) Promote(v T) *T { return f(v) }

// Heap returns a Promoter that copies the value into a fresh heap
// allocation. The arena's sequence keeps it reachable forever.
func Heap[T any]() Promoter[T] {
	return PromoterFunc[T](func(v T) *T {
		p := new(T)
		*p = v
		return p
	})
}

// HeapStrings clones string content so a canonical string never pins the
// (possibly much larger) buffer it was sliced from.
func HeapStrings() Promoter[string] {
	return PromoterFunc[string](func(v string) *string {
		s := strings.Clone(v)
		return &s
	})
}

// HeapBytes deep-copies byte content so later writes to the caller's
// buffer cannot change the canonical value. The canonical empty value is a
// non-nil empty slice.
func HeapBytes() Promoter[[]byte] {
	return PromoterFunc[[]byte](func(v []byte) *[]byte {
		b := slices.Clip(slices.Clone(v))
		if b == nil {
			b = []byte{}
		}
		return &b
	})
}

// MemoryBudget limits how much off-heap memory a promoter may map.
type MemoryBudget interface {
	AcquireMemory(amount int64) error
	ReleaseMemory(amount int64)
}

// OffHeapConfig configures an off-heap promoter.
type OffHeapConfig struct {
	// ChunkSize is the size of each anonymous mapping. Zero means 1 MiB.
	ChunkSize int

	// Budget, when set, is charged for every chunk mapped.
	Budget MemoryBudget

	// OnFallback is called when a value is placed on the heap instead,
	// with ErrTooLarge for oversized values or the mapping/budget error.
	OnFallback func(size int, err error)
}

// OffHeapStats reports off-heap promotion metrics.
type OffHeapStats struct {
	// ChunkSize is the effective, power of two, mapping size.
	ChunkSize       int
	ChunksAllocated uint64
	ChunksSealed    uint64
	BytesReserved   uint64
	BytesUsed       uint64
	Fallbacks       uint64
	// Usage is BytesUsed as a percentage of BytesReserved.
	Usage float64
}

// OffHeap promotes string or byte content into never-freed anonymous
// mappings. Values that cannot be placed off-heap are cloned onto the heap.
type OffHeap[T string | []byte] struct {
	slab       *slab.Slab
	onFallback func(size int, err error)
	fallbacks  atomic.Uint64
}

// NewOffHeapStrings creates an off-heap promoter for strings.
func NewOffHeapStrings(cfg OffHeapConfig) *OffHeap[string] {
	return newOffHeap[string](cfg)
}

// NewOffHeapBytes creates an off-heap promoter for byte slices. Sealed
// chunks are read-only, so writing through a canonical slice may fault.
func NewOffHeapBytes(cfg OffHeapConfig) *OffHeap[[]byte] {
	return newOffHeap[[]byte](cfg)
}

func newOffHeap[T string | []byte](cfg OffHeapConfig) *OffHeap[T] {
	var opts []slab.Option
	if cfg.Budget != nil {
		opts = append(opts, slab.WithMemoryAcquirer(cfg.Budget))
	}
	return &OffHeap[T]{
		slab:       slab.New(cfg.ChunkSize, opts...),
		onFallback: cfg.OnFallback,
	}
}

// Promote implements Promoter.
func (o *OffHeap[T]) Promote(v T) *T {
	switch x := any(v).(type) {
	case string:
		s, err := o.slab.CopyString(x)
		if err != nil {
			o.fallback(len(x), err)
			s = strings.Clone(x)
		}
		return any(&s).(*T)
	case []byte:
		b, err := o.slab.CopyBytes(x)
		if err != nil {
			o.fallback(len(x), err)
			b = slices.Clip(slices.Clone(x))
		}
		if b == nil {
			b = []byte{}
		}
		return any(&b).(*T)
	default:
		panic("unreachable")
	}
}

func (o *OffHeap[T]) fallback(size int, err error) {
	o.fallbacks.Add(1)
	if o.onFallback != nil {
		o.onFallback(size, err)
	}
}

// Stats returns off-heap usage for this promoter.
func (o *OffHeap[T]) Stats() OffHeapStats {
	s := o.slab.Stats()
	return OffHeapStats{
		ChunksAllocated: s.ChunksAllocated,
		ChunksSealed:    s.ChunksSealed,
		BytesReserved:   s.BytesReserved,
		BytesUsed:       s.BytesUsed,
		Fallbacks:       o.fallbacks.Load(),
		ChunkSize:       o.slab.ChunkSize(),
		Usage:           o.slab.Usage(),
	}
}

// String summarizes off-heap usage for logs.
func (o *OffHeap[T]) String() string {
	return fmt.Sprintf("%s fallbacks=%d", o.slab, o.fallbacks.Load())
}
