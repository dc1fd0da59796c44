package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/fusionstream/config"
	"github.com/c360/fusionstream/telemetry"
)

// sampleN builds a sample tagged with a sequence number for ordering checks.
func sampleN(n int) *telemetry.Sample {
	return &telemetry.Sample{
		Timestamp:  time.Unix(int64(n), 0).UTC(),
		Confidence: float64(n),
	}
}

// fakeClock lets tests drive the throttle deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBuffer(size int, interval time.Duration) (*Buffer, *fakeClock) {
	b := New(config.WindowConfig{Size: size, MinInterval: interval}, nil)
	clk := &fakeClock{t: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)}
	b.now = clk.now
	return b, clk
}

func TestIngestThrottlesFromLastAccepted(t *testing.T) {
	b, clk := newTestBuffer(100, 100*time.Millisecond)

	require.True(t, b.Ingest(sampleN(0)))

	// 50ms later: inside the minimum gap, dropped.
	clk.advance(50 * time.Millisecond)
	assert.False(t, b.Ingest(sampleN(1)))

	// 100ms after the first accepted sample. The dropped sample did not
	// move the reference point, so this one is accepted.
	clk.advance(50 * time.Millisecond)
	assert.True(t, b.Ingest(sampleN(2)))

	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, float64(0), snap[0].Confidence)
	assert.Equal(t, float64(2), snap[1].Confidence)

	assert.Equal(t, int64(2), b.Accepted())
	assert.Equal(t, int64(1), b.Throttled())
}

func TestIngestBoundaryGapIsAccepted(t *testing.T) {
	b, clk := newTestBuffer(10, 100*time.Millisecond)

	require.True(t, b.Ingest(sampleN(0)))
	clk.advance(100 * time.Millisecond)
	assert.True(t, b.Ingest(sampleN(1)), "gap equal to the minimum interval must pass")
}

func TestZeroIntervalDisablesThrottle(t *testing.T) {
	b, _ := newTestBuffer(10, 0)

	for i := 0; i < 5; i++ {
		require.True(t, b.Ingest(sampleN(i)))
	}
	assert.Equal(t, 5, b.Len())
}

func TestEvictionKeepsLastN(t *testing.T) {
	b, clk := newTestBuffer(100, 100*time.Millisecond)

	for i := 0; i < 105; i++ {
		require.True(t, b.Ingest(sampleN(i)))
		clk.advance(100 * time.Millisecond)
	}

	assert.Equal(t, 100, b.Len())
	assert.Equal(t, 100, b.Cap())

	snap := b.Snapshot()
	require.Len(t, snap, 100)
	assert.Equal(t, float64(5), snap[0].Confidence, "oldest surviving sample")
	assert.Equal(t, float64(104), snap[99].Confidence, "newest sample")
}

func TestSnapshotIsACopy(t *testing.T) {
	b, clk := newTestBuffer(10, 100*time.Millisecond)

	require.True(t, b.Ingest(sampleN(7)))

	snap := b.Snapshot()
	require.Len(t, snap, 1)
	snap[0].Confidence = -1

	clk.advance(100 * time.Millisecond)
	require.True(t, b.Ingest(sampleN(8)))

	again := b.Snapshot()
	require.Len(t, again, 2)
	assert.Equal(t, float64(7), again[0].Confidence, "caller mutation must not reach the window")
}

func TestLatest(t *testing.T) {
	b, clk := newTestBuffer(10, 100*time.Millisecond)

	assert.Nil(t, b.Latest())

	require.True(t, b.Ingest(sampleN(1)))
	clk.advance(100 * time.Millisecond)
	require.True(t, b.Ingest(sampleN(2)))

	latest := b.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, float64(2), latest.Confidence)
}

func TestStatsCountsEvictions(t *testing.T) {
	b, clk := newTestBuffer(3, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		if i > 0 {
			clk.advance(100 * time.Millisecond)
		}
		require.True(t, b.Ingest(sampleN(i)))
	}
	clk.advance(10 * time.Millisecond)
	assert.False(t, b.Ingest(sampleN(99)), "inside the gap, throttled")

	stats := b.Stats()
	assert.Equal(t, int64(5), stats.Accepted)
	assert.Equal(t, int64(1), stats.Throttled)
	assert.Equal(t, int64(2), stats.Evicted)
	assert.Equal(t, 3, stats.Depth)
	assert.Equal(t, 3, stats.Capacity)
}

func TestDefaultSizeWhenUnset(t *testing.T) {
	b := New(config.WindowConfig{}, nil)
	assert.Equal(t, 100, b.Cap())
}
