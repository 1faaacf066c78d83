package arena

import (
	"errors"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/canon/internal/resource"
)

func TestHeap(t *testing.T) {
	p := Heap[int]().Promote(7)
	assert.Equal(t, 7, *p)
	assert.NotSame(t, p, Heap[int]().Promote(7))
}

func TestHeapStrings(t *testing.T) {
	big := strings.Repeat("x", 1024)
	s := big[:3]

	p := HeapStrings().Promote(s)
	assert.Equal(t, "xxx", *p)
	assert.NotEqual(t, unsafe.StringData(big), unsafe.StringData(*p))
}

func TestHeapBytes(t *testing.T) {
	src := make([]byte, 3, 64)
	copy(src, "abc")

	p := HeapBytes().Promote(src)
	assert.Equal(t, []byte("abc"), *p)
	assert.Equal(t, len(*p), cap(*p))

	src[0] = 'z'
	assert.Equal(t, []byte("abc"), *p)
}

func TestHeapBytes_EmptyIsNonNil(t *testing.T) {
	for _, src := range [][]byte{nil, {}, make([]byte, 0, 8)} {
		p := HeapBytes().Promote(src)
		assert.NotNil(t, *p)
		assert.Empty(t, *p)

		q := NewOffHeapBytes(OffHeapConfig{}).Promote(src)
		assert.NotNil(t, *q)
		assert.Empty(t, *q)
	}
}

func TestOffHeapStrings(t *testing.T) {
	o := NewOffHeapStrings(OffHeapConfig{ChunkSize: 4096})
	a := New[string](WithPromoter[string](o))

	x, err := a.InsertOwned("off-heap")
	require.NoError(t, err)
	y, err := a.InsertOwned(strings.Clone("off-heap"))
	require.NoError(t, err)
	assert.Same(t, x, y)

	empty, err := a.InsertOwned("")
	require.NoError(t, err)
	assert.Equal(t, "", *empty)

	stats := o.Stats()
	assert.Equal(t, uint64(1), stats.ChunksAllocated)
	assert.Equal(t, uint64(len("off-heap")), stats.BytesUsed)
	assert.Zero(t, stats.Fallbacks)
	assert.Equal(t, 4096, stats.ChunkSize)
	assert.InDelta(t, 100*8.0/4096, stats.Usage, 0.001)
	assert.Contains(t, o.String(), "chunks=1 ")
}

func TestOffHeapBytes(t *testing.T) {
	o := NewOffHeapBytes(OffHeapConfig{})
	a := NewWith(Bytes(), WithPromoter[[]byte](o))

	x, err := a.InsertOwned([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), *x)
	assert.Equal(t, len(*x), cap(*x))

	e, err := a.InsertOwned(nil)
	require.NoError(t, err)
	assert.NotNil(t, *e)
	assert.Empty(t, *e)
}

func TestOffHeap_FallbackTooLarge(t *testing.T) {
	var gotErr error
	var gotSize int
	o := NewOffHeapStrings(OffHeapConfig{
		ChunkSize: 4096,
		OnFallback: func(size int, err error) {
			gotSize, gotErr = size, err
		},
	})

	big := strings.Repeat("y", 2000)
	p := o.Promote(big)
	assert.Equal(t, big, *p)
	assert.ErrorIs(t, gotErr, ErrTooLarge)
	assert.Equal(t, 2000, gotSize)
	assert.Equal(t, uint64(1), o.Stats().Fallbacks)
	assert.Contains(t, o.String(), "fallbacks=1")
}

func TestOffHeap_FallbackBudget(t *testing.T) {
	budget := resource.NewController(resource.Config{MemoryLimitBytes: 4096})

	var errs []error
	o := NewOffHeapBytes(OffHeapConfig{
		ChunkSize:  4096,
		Budget:     budget,
		OnFallback: func(_ int, err error) { errs = append(errs, err) },
	})

	for i := 0; i < 6; i++ {
		v := []byte(strings.Repeat(string(rune('a'+i)), 1000))
		p := o.Promote(v)
		assert.Equal(t, v, *p)
	}

	assert.Equal(t, int64(4096), budget.MemoryUsage())
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.True(t, errors.Is(err, resource.ErrMemoryLimitExceeded))
	}
	assert.Equal(t, uint64(1), o.Stats().ChunksAllocated)
}
