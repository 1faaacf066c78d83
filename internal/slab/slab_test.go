package slab

import (
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/canon/internal/resource"
)

func TestSlab_New(t *testing.T) {
	t.Run("default chunk size", func(t *testing.T) {
		s := New(0)
		assert.Equal(t, DefaultChunkSize, s.ChunkSize())
		assert.Equal(t, uint64(0), s.Stats().ChunksAllocated, "no chunk before first use")
	})

	t.Run("rounds up to power of two", func(t *testing.T) {
		s := New(1025)
		assert.Equal(t, 2048, s.ChunkSize())
	})
}

func TestSlab_CopyBytes(t *testing.T) {
	t.Run("basic copy", func(t *testing.T) {
		s := New(4096)

		src := []byte("Hello, World")
		dst, err := s.CopyBytes(src)
		require.NoError(t, err)
		assert.Equal(t, src, dst)
		assert.Equal(t, len(dst), cap(dst))

		// The copy does not alias the source.
		src[0] = 'J'
		assert.Equal(t, "Hello, World", string(dst))
	})

	t.Run("empty", func(t *testing.T) {
		s := New(4096)
		dst, err := s.CopyBytes(nil)
		require.NoError(t, err)
		assert.Nil(t, dst)
	})

	t.Run("alignment", func(t *testing.T) {
		s := New(4096)
		for _, size := range []int{1, 3, 5, 7, 9, 15, 17} {
			dst, err := s.CopyBytes(make([]byte, size))
			require.NoError(t, err)
			ptr := uintptr(unsafe.Pointer(&dst[0]))
			assert.Zero(t, ptr%uintptr(DefaultAlignment), "size=%d", size)
		}
	})

	t.Run("too large", func(t *testing.T) {
		s := New(4096)
		_, err := s.CopyBytes(make([]byte, 2048))
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}

func TestSlab_CopyString(t *testing.T) {
	s := New(4096)

	str, err := s.CopyString("Bonjour")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", str)

	empty, err := s.CopyString("")
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestSlab_MultipleChunksAndSealing(t *testing.T) {
	s := New(16384)

	var kept []string
	for i := 0; i < 400; i++ {
		str, err := s.CopyString(fmt.Sprintf("value-%04d-%s", i, string(make([]byte, 100))))
		require.NoError(t, err)
		kept = append(kept, str)
	}

	stats := s.Stats()
	assert.Greater(t, stats.ChunksAllocated, uint64(1))
	assert.Equal(t, uint64(400), stats.TotalAllocs)
	assert.GreaterOrEqual(t, stats.ChunksSealed, uint64(1))

	// Addresses are stable and contents intact, sealed chunks included.
	for i, str := range kept {
		assert.Equal(t, fmt.Sprintf("value-%04d", i), str[:10])
	}
}

func TestSlab_MemoryAcquirer(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 4096})
	s := New(4096, WithMemoryAcquirer(rc))

	_, err := s.CopyBytes(make([]byte, 1000))
	require.NoError(t, err)
	assert.Equal(t, int64(4096), rc.MemoryUsage())

	// Fill the first chunk; the next one would exceed the budget.
	for i := 0; i < 3; i++ {
		_, err = s.CopyBytes(make([]byte, 1000))
		require.NoError(t, err)
	}
	_, err = s.CopyBytes(make([]byte, 1000))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, uint64(1), s.Stats().ChunksAllocated)
}

func TestSlab_Concurrent(t *testing.T) {
	s := New(DefaultChunkSize)

	const goroutines = 64
	const copiesPerGoroutine = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for j := 0; j < copiesPerGoroutine; j++ {
				want := fmt.Sprintf("g%d-%d", g, j)
				got, err := s.CopyString(want)
				if err != nil || got != want {
					t.Errorf("copy %q: got %q, err %v", want, got, err)
					return
				}
			}
		}(g)
	}

	wg.Wait()

	assert.Equal(t, uint64(goroutines*copiesPerGoroutine), s.Stats().TotalAllocs)
}

func TestSlab_String(t *testing.T) {
	s := New(4096)
	_, err := s.CopyBytes(make([]byte, 512))
	require.NoError(t, err)

	assert.Contains(t, s.String(), "chunks=1 ")
	assert.Contains(t, s.String(), "usage=12.5%")
	assert.InDelta(t, 12.5, s.Usage(), 0.01)
}

func BenchmarkSlab_CopyString(b *testing.B) {
	s := New(DefaultChunkSize)
	b.ReportAllocs()
	for b.Loop() {
		_, _ = s.CopyString("Hello, World")
	}
}
