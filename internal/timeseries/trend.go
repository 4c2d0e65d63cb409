// Package timeseries provides bounded trend tracking for dashboard metrics.
//
// A TrendBuffer keeps the most recent gauge samples for the performance
// graphs; a RateCounter turns cumulative admin counters (Questions, rule
// hits) into per-second rates between refreshes. Both are owned by the
// update loop: no internal locking.
package timeseries

import "time"

// DefaultCapacity is the number of samples kept per metric, enough for two
// minutes of history at the one-second refresh interval.
const DefaultCapacity = 120

// Clock interface for testing with deterministic time.
type Clock interface {
	Now() time.Time
}

// realClock uses time.Now() for production.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Sample is one recorded gauge value.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// TrendBuffer is a fixed-capacity ring of samples. Appending past capacity
// overwrites the oldest sample.
type TrendBuffer struct {
	samples  []Sample
	writeIdx int
	capacity int
}

// NewTrendBuffer creates a buffer holding up to capacity samples.
// Non-positive capacity falls back to DefaultCapacity.
func NewTrendBuffer(capacity int) *TrendBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &TrendBuffer{
		samples:  make([]Sample, 0, capacity),
		capacity: capacity,
	}
}

// Append records a sample, evicting the oldest when full.
func (b *TrendBuffer) Append(ts time.Time, v float64) {
	s := Sample{Timestamp: ts, Value: v}
	if len(b.samples) < b.capacity {
		b.samples = append(b.samples, s)
		return
	}
	b.samples[b.writeIdx] = s
	b.writeIdx = (b.writeIdx + 1) % b.capacity
}

// Len returns the number of recorded samples.
func (b *TrendBuffer) Len() int { return len(b.samples) }

// Values returns the sample values oldest to newest.
func (b *TrendBuffer) Values() []float64 {
	out := make([]float64, 0, len(b.samples))
	if len(b.samples) < b.capacity {
		for _, s := range b.samples {
			out = append(out, s.Value)
		}
		return out
	}
	for i := 0; i < b.capacity; i++ {
		out = append(out, b.samples[(b.writeIdx+i)%b.capacity].Value)
	}
	return out
}

// Latest returns the newest sample value, or 0 when empty.
func (b *TrendBuffer) Latest() float64 {
	if len(b.samples) == 0 {
		return 0
	}
	idx := len(b.samples) - 1
	if len(b.samples) == b.capacity {
		idx = (b.writeIdx + b.capacity - 1) % b.capacity
	}
	return b.samples[idx].Value
}

// Max returns the largest recorded value, or 0 when empty.
func (b *TrendBuffer) Max() float64 {
	max := 0.0
	for _, s := range b.samples {
		if s.Value > max {
			max = s.Value
		}
	}
	return max
}

// Reset discards all samples.
func (b *TrendBuffer) Reset() {
	b.samples = b.samples[:0]
	b.writeIdx = 0
}

// RateCounter derives a per-second rate from a cumulative counter observed
// at each refresh. The first observation yields zero; a counter that moves
// backwards (stats reset on the server) also yields zero and re-bases.
type RateCounter struct {
	clock    Clock
	lastAt   time.Time
	lastVal  float64
	observed bool
}

// NewRateCounter creates a counter using the real clock.
func NewRateCounter() *RateCounter {
	return NewRateCounterWithClock(realClock{})
}

// NewRateCounterWithClock creates a counter with a custom clock for testing.
func NewRateCounterWithClock(clock Clock) *RateCounter {
	return &RateCounter{clock: clock}
}

// Observe records the counter's current value and returns the per-second
// rate since the previous observation.
func (r *RateCounter) Observe(value float64) float64 {
	now := r.clock.Now()
	defer func() {
		r.lastAt = now
		r.lastVal = value
		r.observed = true
	}()

	if !r.observed {
		return 0
	}
	elapsed := now.Sub(r.lastAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	delta := value - r.lastVal
	if delta < 0 {
		return 0
	}
	return delta / elapsed
}

// Reset forgets the previous observation.
func (r *RateCounter) Reset() {
	r.observed = false
	r.lastVal = 0
}
