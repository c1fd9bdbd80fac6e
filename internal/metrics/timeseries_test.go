package metrics

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSeriesBufferRing(t *testing.T) {
	buf := NewTimeSeriesBuffer(3)
	base := time.Now()

	for i := 0; i < 5; i++ {
		buf.Add(TimeSeriesPoint{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Values:    map[string]int64{"value": int64(i)},
		})
	}

	assert.Equal(t, 3, buf.Len())
	points := buf.Since(base.Add(-time.Minute))
	require.Len(t, points, 3)
	assert.Equal(t, int64(2), points[0].Values["value"])
	assert.Equal(t, int64(4), points[2].Values["value"])
}

func TestTimeSeriesBufferSince(t *testing.T) {
	buf := NewTimeSeriesBuffer(10)
	now := time.Now()
	buf.Add(TimeSeriesPoint{Timestamp: now.Add(-10 * time.Minute)})
	buf.Add(TimeSeriesPoint{Timestamp: now.Add(-time.Minute)})

	assert.Len(t, buf.Since(now.Add(-5*time.Minute)), 1)
	assert.Empty(t, NewTimeSeriesBuffer(0).Since(now.Add(-time.Hour)))
}

func TestTimeSeriesCollectorCollect(t *testing.T) {
	m := New(zerolog.Nop())
	c := NewTimeSeriesCollector(m, 10, time.Hour)

	m.ObserveDocument("GL_MarketDocument", "A65", "ok", 5, time.Millisecond)
	c.Collect(time.Now())

	recent := c.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, int64(1), recent[0].Values["documents_total"])
	assert.Equal(t, int64(5), recent[0].Values["rows_total"])
}

func TestTimeSeriesCollectorStartStop(t *testing.T) {
	c := NewTimeSeriesCollector(New(zerolog.Nop()), 10, 5*time.Millisecond)
	c.Start()

	assert.Eventually(t, func() bool { return c.buffer.Len() > 0 }, time.Second, 5*time.Millisecond)
	c.Stop()
	c.Stop()
}
