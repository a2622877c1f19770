package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// ReadingBuilder builds test pressure readings
type ReadingBuilder struct {
	t          *testing.T
	id         uuid.UUID
	source     pressure.Source
	value      float64
	region     string
	timestamp  time.Time
	confidence float64
	detail     map[string]any
}

// NewReadingBuilder creates a new ReadingBuilder with defaults
func NewReadingBuilder(t *testing.T) *ReadingBuilder {
	t.Helper()
	return &ReadingBuilder{
		t:          t,
		id:         uuid.New(),
		source:     pressure.SourceEconomic,
		value:      0.5,
		timestamp:  time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		confidence: 1.0,
	}
}

// WithSource sets the pressure source
func (b *ReadingBuilder) WithSource(source pressure.Source) *ReadingBuilder {
	b.source = source
	return b
}

// WithValue sets the pressure value
func (b *ReadingBuilder) WithValue(value float64) *ReadingBuilder {
	b.value = value
	return b
}

// WithRegion scopes the reading to a region
func (b *ReadingBuilder) WithRegion(region string) *ReadingBuilder {
	b.region = region
	return b
}

// WithTimestamp sets the measurement time
func (b *ReadingBuilder) WithTimestamp(ts time.Time) *ReadingBuilder {
	b.timestamp = ts
	return b
}

// WithConfidence sets the confidence weight
func (b *ReadingBuilder) WithConfidence(confidence float64) *ReadingBuilder {
	b.confidence = confidence
	return b
}

// WithDetail attaches a detail map
func (b *ReadingBuilder) WithDetail(detail map[string]any) *ReadingBuilder {
	b.detail = detail
	return b
}

// Build creates the reading
func (b *ReadingBuilder) Build() *pressure.Reading {
	return &pressure.Reading{
		ID:         b.id,
		Source:     b.source,
		Value:      pressure.Clamp01(b.value),
		Region:     b.region,
		Timestamp:  b.timestamp,
		Confidence: pressure.Clamp01(b.confidence),
		Detail:     b.detail,
	}
}

// ReadingSeries builds n readings for one source spaced evenly over the
// window ending at end, with values interpolated from first to last.
func ReadingSeries(t *testing.T, source pressure.Source, region string, first, last float64, n int, end time.Time, window time.Duration) []*pressure.Reading {
	t.Helper()
	if n < 2 {
		n = 2
	}
	step := window / time.Duration(n-1)
	start := end.Add(-window)

	readings := make([]*pressure.Reading, 0, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		readings = append(readings, NewReadingBuilder(t).
			WithSource(source).
			WithRegion(region).
			WithValue(first+(last-first)*frac).
			WithTimestamp(start.Add(step*time.Duration(i))).
			Build())
	}
	return readings
}
