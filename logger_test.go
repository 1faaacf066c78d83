package canon

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_WithStore(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.WithStore("names").LogStoreCreated(context.Background(), true, 4096)

	out := buf.String()
	assert.Contains(t, out, "store=names")
	assert.Contains(t, out, "off_heap=true")
	assert.Contains(t, out, "off_heap_limit=4096")
}

func TestLogger_LogFallbackWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, nil))

	err := errors.New("no room")
	l.LogFallback(context.Background(), true, 100, err, nil)
	l.LogFallback(context.Background(), false, 200, err, nil)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "fell back to heap"))
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "bytes=100")
	assert.NotContains(t, out, "bytes=200")
}

func TestStore_FallbackLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, nil))

	s := NewStore[string](WithName("big"), WithChunkSize(4096), WithLogger(l))
	for _, c := range "abc" {
		s.Intern(strings.Repeat(string(c), 2000))
	}

	out := buf.String()
	assert.Equal(t, uint64(3), s.Stats().OffHeap.Fallbacks)
	assert.Equal(t, 1, strings.Count(out, "fell back to heap"))
	assert.Contains(t, out, "store=big")
	assert.Contains(t, out, "fallbacks=1")
}
