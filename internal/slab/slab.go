package slab

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/canon/internal/conv"
	"github.com/hupe1980/canon/internal/mmap"
)

// MemoryAcquirer reserves memory before the slab maps a new chunk.
type MemoryAcquirer interface {
	AcquireMemory(amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrMaxChunksExceeded is returned when the slab exceeds the maximum number of chunks.
	ErrMaxChunksExceeded = errors.New("slab: max chunks exceeded")
	// ErrTooLarge is returned for values that should not be placed in a chunk.
	ErrTooLarge = errors.New("slab: value too large")
)

const (
	// DefaultChunkSize is the default size of a chunk (1MB).
	DefaultChunkSize = 1024 * 1024
	// DefaultAlignment is the default memory alignment (8 bytes).
	DefaultAlignment = 8
	// MaxChunks limits the number of chunks to prevent runaway growth.
	// Limit to 64GB addressable space with 1MB chunks.
	MaxChunks = 65536
)

// Stats tracks slab memory usage metrics.
//
// Note on semantics:
//   - BytesReserved: total memory mapped from the OS
//   - BytesUsed: actual bytes requested by allocations (before alignment)
//   - BytesWasted: padding added for alignment
//   - ChunksSealed: retired chunks that were made read-only
type Stats struct {
	ChunksAllocated uint64
	ChunksSealed    uint64
	BytesReserved   uint64
	BytesUsed       uint64
	BytesWasted     uint64
	TotalAllocs     uint64
}

type atomicStats struct {
	ChunksAllocated atomic.Uint64
	ChunksSealed    atomic.Uint64
	BytesReserved   atomic.Uint64
	BytesUsed       atomic.Uint64
	BytesWasted     atomic.Uint64
	TotalAllocs     atomic.Uint64
}

type chunk struct {
	data    []byte
	mapping *mmap.Mapping
	offset  atomic.Int64 // reserved bytes; MUST be atomic, bumped without locks
	written atomic.Int64 // bytes whose copy has completed
	retired atomic.Bool
	sealed  atomic.Bool
}

// Slab is an off-heap, append-only byte allocator.
type Slab struct {
	chunkSize int
	maxValue  int
	alignment int
	current   atomic.Pointer[chunk]
	mu        sync.Mutex
	chunks    []*chunk // protected by mu
	stats     atomicStats
	acquirer  MemoryAcquirer
}

// Option is a configuration option for Slab.
type Option func(*Slab)

// WithMemoryAcquirer sets the memory acquirer for the slab.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(s *Slab) {
		s.acquirer = acquirer
	}
}

// New creates a new Slab with the given chunk size. No memory is mapped
// until the first allocation.
func New(chunkSize int, opts ...Option) *Slab {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	// Round up to next power of 2.
	chunkBits := bits.Len(uint(chunkSize - 1)) //nolint:gosec // chunkSize > 0
	chunkSize = 1 << chunkBits

	s := &Slab{
		chunkSize: chunkSize,
		maxValue:  chunkSize / 4,
		alignment: DefaultAlignment,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ChunkSize returns the effective (power of two) chunk size.
func (s *Slab) ChunkSize() int {
	return s.chunkSize
}

// CopyBytes copies b into the slab and returns the off-heap copy. The
// returned slice has len == cap. Empty input yields a nil slice.
func (s *Slab) CopyBytes(b []byte) ([]byte, error) {
	c, dst, err := s.alloc(len(b))
	if err != nil || dst == nil {
		return nil, err
	}
	copy(dst, b)
	s.commit(c, len(dst))
	return dst[:len(b):len(b)], nil
}

// CopyString copies str into the slab and returns a string backed by
// off-heap memory.
func (s *Slab) CopyString(str string) (string, error) {
	c, dst, err := s.alloc(len(str))
	if err != nil {
		return "", err
	}
	if dst == nil {
		return "", nil
	}
	copy(dst, str)
	s.commit(c, len(dst))
	return unsafe.String(&dst[0], len(str)), nil //nolint:gosec // dst is off-heap and never freed
}

// alloc reserves size bytes and returns the owning chunk and the aligned
// region.
func (s *Slab) alloc(size int) (*chunk, []byte, error) {
	if size <= 0 {
		return nil, nil, nil
	}
	if size > s.maxValue {
		return nil, nil, ErrTooLarge
	}

	mask := s.alignment - 1
	alignedSize := (size + mask) & ^mask

	for {
		curr := s.current.Load()
		if curr != nil {
			if data, ok := s.tryAllocInChunk(curr, size, alignedSize); ok {
				return curr, data, nil
			}
		}

		// Current chunk is full (or none mapped yet). Only one goroutine
		// maps the next chunk; the rest retry once current changes.
		s.mu.Lock()
		if s.current.Load() != curr {
			s.mu.Unlock()
			continue
		}

		if err := s.allocateChunkLocked(); err != nil {
			s.mu.Unlock()
			return nil, nil, err
		}
		s.mu.Unlock()

		if curr != nil {
			curr.retired.Store(true)
			s.maybeSeal(curr)
		}
	}
}

func (s *Slab) tryAllocInChunk(curr *chunk, size, alignedSize int) ([]byte, bool) {
	for {
		oldOffset := curr.offset.Load()
		newOffset := oldOffset + int64(alignedSize)

		if newOffset > int64(len(curr.data)) {
			return nil, false
		}

		if curr.offset.CompareAndSwap(oldOffset, newOffset) {
			sizeU64, _ := conv.IntToUint64(size)
			s.stats.BytesUsed.Add(sizeU64)
			wastedU64, _ := conv.IntToUint64(alignedSize - size)
			s.stats.BytesWasted.Add(wastedU64)
			s.stats.TotalAllocs.Add(1)

			return curr.data[oldOffset:newOffset:newOffset], true
		}
	}
}

func (s *Slab) allocateChunkLocked() error {
	if len(s.chunks) >= MaxChunks {
		return ErrMaxChunksExceeded
	}

	chunkSize64 := int64(s.chunkSize)
	if s.acquirer != nil {
		if err := s.acquirer.AcquireMemory(chunkSize64); err != nil {
			return err
		}
	}

	mapping, err := mmap.MapAnon(s.chunkSize)
	if err != nil {
		if s.acquirer != nil {
			s.acquirer.ReleaseMemory(chunkSize64)
		}
		return fmt.Errorf("failed to map anonymous memory for chunk: %w", err)
	}

	newChunk := &chunk{
		data:    mapping.Bytes(),
		mapping: mapping,
	}
	s.chunks = append(s.chunks, newChunk)

	s.stats.ChunksAllocated.Add(1)
	reserved, _ := conv.IntToUint64(mapping.Size())
	s.stats.BytesReserved.Add(reserved)

	s.current.Store(newChunk)

	return nil
}

func (s *Slab) commit(c *chunk, alignedSize int) {
	c.written.Add(int64(alignedSize))
	if c.retired.Load() {
		s.maybeSeal(c)
	}
}

// maybeSeal makes a retired chunk read-only once every reservation made so
// far has been written. written is read before offset: if they match, no
// reservation below offset can still be in flight.
func (s *Slab) maybeSeal(c *chunk) {
	written := c.written.Load()
	if written != c.offset.Load() {
		return
	}
	if !c.sealed.CompareAndSwap(false, true) {
		return
	}
	n, err := conv.Int64ToInt(written)
	if err != nil {
		return
	}
	if err := c.mapping.Seal(n); err == nil {
		s.stats.ChunksSealed.Add(1)
	}
}

// Stats returns the current slab statistics.
func (s *Slab) Stats() Stats {
	return Stats{
		ChunksAllocated: s.stats.ChunksAllocated.Load(),
		ChunksSealed:    s.stats.ChunksSealed.Load(),
		BytesReserved:   s.stats.BytesReserved.Load(),
		BytesUsed:       s.stats.BytesUsed.Load(),
		BytesWasted:     s.stats.BytesWasted.Load(),
		TotalAllocs:     s.stats.TotalAllocs.Load(),
	}
}

// Usage returns the memory usage percentage.
func (s *Slab) Usage() float64 {
	stats := s.Stats()
	if stats.BytesReserved == 0 {
		return 0
	}
	return float64(stats.BytesUsed) / float64(stats.BytesReserved) * 100
}

// String formats the counters as key=value pairs.
func (s *Slab) String() string {
	stats := s.Stats()
	return fmt.Sprintf(
		"chunks=%d sealed=%d reserved=%.2fMiB used=%.2fMiB wasted=%.2fKiB usage=%.1f%% allocs=%d",
		stats.ChunksAllocated,
		stats.ChunksSealed,
		float64(stats.BytesReserved)/(1024*1024),
		float64(stats.BytesUsed)/(1024*1024),
		float64(stats.BytesWasted)/1024,
		s.Usage(),
		stats.TotalAllocs,
	)
}
