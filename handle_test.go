package canon

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandle_Zero(t *testing.T) {
	var h Handle[string]
	assert.True(t, h.IsZero())
	assert.Equal(t, uintptr(0), h.Addr())
	assert.Equal(t, "<nil>", h.String())
	assert.Panics(t, func() { _ = h.Value() })
}

func TestHandle_String(t *testing.T) {
	assert.Equal(t, "printed", String("printed").String())
	assert.Equal(t, "raw", Bytes([]byte("raw")).String())
	assert.Equal(t, "12", Of(12).String())
}

func TestHandle_InternIsIdentity(t *testing.T) {
	h := String("self")
	assert.Equal(t, h, h.Intern())
}

func TestCompare(t *testing.T) {
	a := String("cmp-a")
	b := String("cmp-b")

	assert.Equal(t, 0, Compare(a, a))
	assert.Equal(t, -Compare(a, b), Compare(b, a))
	assert.NotEqual(t, 0, Compare(a, b))
}

func TestCompareValues(t *testing.T) {
	hs := []Handle[string]{String("pear"), String("apple"), String("fig")}
	slices.SortFunc(hs, CompareValues[string])

	var got []string
	for _, h := range hs {
		got = append(got, h.Value())
	}
	assert.Equal(t, []string{"apple", "fig", "pear"}, got)

	assert.Equal(t, -1, CompareValues(Handle[string]{}, String("x")))
	assert.Equal(t, 1, CompareValues(String("x"), Handle[string]{}))
	assert.Equal(t, 0, CompareValues(Of(3), Of(3)))
}
