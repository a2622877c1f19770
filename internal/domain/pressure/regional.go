package pressure

import (
	"time"
)

// Regional owns the ordered, time-bounded reading history for one region
// plus the current per-source values derived from it. Mutated only by the
// pressure store.
type Regional struct {
	Region      string
	LastUpdated time.Time

	readings []*Reading
	current  map[Source]float64
}

// NewRegional creates an empty regional pressure record.
func NewRegional(region string) *Regional {
	return &Regional{
		Region:  region,
		current: make(map[Source]float64),
	}
}

// Append records a new reading, updates the current value for its source,
// and evicts readings beyond maxReadings or older than window (FIFO).
func (rp *Regional) Append(r *Reading, maxReadings int, window time.Duration) {
	rp.current[r.Source] = Clamp01(r.Value)
	rp.readings = append(rp.readings, r)
	rp.LastUpdated = r.Timestamp
	rp.prune(r.Timestamp, maxReadings, window)
}

func (rp *Regional) prune(now time.Time, maxReadings int, window time.Duration) {
	cutoff := now.Add(-window)
	start := 0
	for start < len(rp.readings) && rp.readings[start].Timestamp.Before(cutoff) {
		start++
	}
	if excess := len(rp.readings) - start - maxReadings; excess > 0 {
		start += excess
	}
	if start > 0 {
		rp.readings = append(rp.readings[:0], rp.readings[start:]...)
	}
}

// Current returns a copy of the per-source current values.
func (rp *Regional) Current() map[Source]float64 {
	out := make(map[Source]float64, len(rp.current))
	for s, v := range rp.current {
		out[s] = v
	}
	return out
}

// CurrentValue returns the current value for one source, zero if absent.
func (rp *Regional) CurrentValue(s Source) float64 {
	return rp.current[s]
}

// Scale multiplies the current value of one source by factor, clamped.
// Used for both decay and mitigation application.
func (rp *Regional) Scale(s Source, factor float64) {
	if v, ok := rp.current[s]; ok {
		rp.current[s] = Clamp01(v * factor)
	}
}

// ScaleAll multiplies every current source value by factor.
func (rp *Regional) ScaleAll(factor float64) {
	for s := range rp.current {
		rp.Scale(s, factor)
	}
}

// WeightedAverage computes Σ(value*weight)/Σ(weight) over sources that are
// present. Absent sources are excluded from both sums. Missing weight
// entries default to 1.0.
func (rp *Regional) WeightedAverage(weights map[Source]float64) float64 {
	var num, den float64
	for s, v := range rp.current {
		w, ok := weights[s]
		if !ok {
			w = 1.0
		}
		num += v * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return Clamp01(num / den)
}

// Trend returns the linear-regression slope (pressure units per hour) over
// the last n readings. Fewer than 2 readings yields 0.
func (rp *Regional) Trend(n int) float64 {
	readings := rp.readings
	if len(readings) > n {
		readings = readings[len(readings)-n:]
	}
	if len(readings) < 2 {
		return 0
	}

	t0 := readings[0].Timestamp
	var sumX, sumY, sumXY, sumXX float64
	for _, r := range readings {
		x := r.Timestamp.Sub(t0).Hours()
		sumX += x
		sumY += r.Value
		sumXY += x * r.Value
		sumXX += x * x
	}
	fn := float64(len(readings))
	den := fn*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / den
}

// Velocity is the difference between the last two readings normalized to a
// per-hour rate. Fewer than 2 readings yields 0.
func (rp *Regional) Velocity() float64 {
	if len(rp.readings) < 2 {
		return 0
	}
	last := rp.readings[len(rp.readings)-1]
	prev := rp.readings[len(rp.readings)-2]
	hours := last.Timestamp.Sub(prev.Timestamp).Hours()
	if hours <= 0 {
		return 0
	}
	return (last.Value - prev.Value) / hours
}

// TimeAboveThreshold accumulates the duration the recorded pressure sat at
// or above threshold, scanning interval boundaries between readings. The
// final interval is closed by now.
func (rp *Regional) TimeAboveThreshold(threshold float64, now time.Time) time.Duration {
	var total time.Duration
	for i, r := range rp.readings {
		if r.Value < threshold {
			continue
		}
		var end time.Time
		if i+1 < len(rp.readings) {
			end = rp.readings[i+1].Timestamp
		} else {
			end = now
		}
		if end.After(r.Timestamp) {
			total += end.Sub(r.Timestamp)
		}
	}
	return total
}

// ReadingCount returns the number of retained readings.
func (rp *Regional) ReadingCount() int {
	return len(rp.readings)
}

// Empty reports whether any reading has ever been retained.
func (rp *Regional) Empty() bool {
	return len(rp.readings) == 0
}
