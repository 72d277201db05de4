package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tick should only emit a report once the configured interval has elapsed.
func TestProfiler_TickReportsAfterInterval(t *testing.T) {
	p := NewProfiler(WithInterval(100 * time.Millisecond))

	assert.False(t, p.Tick())
	assert.False(t, p.Tick())

	time.Sleep(120 * time.Millisecond)
	assert.True(t, p.Tick())

	// Counters reset after a report, so the next tick starts a new window.
	assert.False(t, p.Tick())
}

// WithInterval should clamp intervals below the minimum to 100ms.
func TestProfiler_WithIntervalClampsMinimum(t *testing.T) {
	p := NewProfiler(WithInterval(time.Millisecond))
	require.Equal(t, 100*time.Millisecond, p.updateInterval)

	p = NewProfiler(WithInterval(5 * time.Second))
	require.Equal(t, 5*time.Second, p.updateInterval)
}

// The worst frame duration should track the largest gap between ticks and
// reset after each report.
func TestProfiler_TracksWorstFrame(t *testing.T) {
	p := NewProfiler(WithInterval(time.Hour))

	p.Tick()
	time.Sleep(30 * time.Millisecond)
	p.Tick()
	time.Sleep(5 * time.Millisecond)
	p.Tick()

	require.GreaterOrEqual(t, p.worstFrame, 30*time.Millisecond)
}
