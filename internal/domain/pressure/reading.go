package pressure

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Clamp01 clamps v to [0,1]. NaN is treated as 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Reading is a single pressure measurement pushed by an external subsystem.
// Immutable once created; newer readings supersede it, it is never mutated.
type Reading struct {
	ID         uuid.UUID
	Source     Source
	Value      float64
	Region     string // empty means global
	Timestamp  time.Time
	Confidence float64
	Detail     map[string]any
}

// NewReading builds a validated reading. Out-of-range values are clamped,
// never rejected.
func NewReading(source Source, value float64, region string, confidence float64) *Reading {
	return &Reading{
		ID:         uuid.New(),
		Source:     source,
		Value:      Clamp01(value),
		Region:     region,
		Timestamp:  clock.Now(),
		Confidence: Clamp01(confidence),
	}
}

// WithDetail attaches a free-form detail map and returns the reading.
func (r *Reading) WithDetail(detail map[string]any) *Reading {
	r.Detail = detail
	return r
}

// Global reports whether the reading applies to the whole world rather
// than a single region.
func (r *Reading) Global() bool {
	return r.Region == ""
}
