package profiler

import "time"

// ProfilerOption defines a functional option for configuring a Profiler
// during creation.
type ProfilerOption func(*Profiler)

// WithInterval sets how often the profiler writes a report to the log.
// Intervals below 100ms are clamped to avoid flooding the log.
//
// Parameters:
//   - interval: the duration between reports
//
// Returns:
//   - ProfilerOption: a function that applies the interval to the profiler
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval < 100*time.Millisecond {
			interval = 100 * time.Millisecond
		}
		p.updateInterval = interval
	}
}
