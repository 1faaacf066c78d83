package canonprom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/canon"
)

func TestCollector_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.RecordIntern("string", false, time.Microsecond)
	c.RecordIntern("string", true, time.Microsecond)
	c.RecordIntern("string", true, time.Microsecond)
	c.RecordPoisoned("int")
	c.RecordFallback("[]uint8", 2048)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.interns.WithLabelValues("string", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.interns.WithLabelValues("string", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.poisoned.WithLabelValues("int")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fallbacks.WithLabelValues("[]uint8")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(c.fallbackBytes.WithLabelValues("[]uint8")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.internLatency))
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)

	_, err = NewCollector(reg, func(o *Options) { o.Namespace = "other" })
	assert.NoError(t, err)
}

func TestCollector_WithStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	s := canon.NewStore[string](
		canon.WithName("words"),
		canon.WithMetricsCollector(c),
		canon.WithLogger(canon.NoopLogger()),
	)
	s.Intern("a")
	s.Intern("a")
	s.Intern("b")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.interns.WithLabelValues("words", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.interns.WithLabelValues("words", "true")))
}
