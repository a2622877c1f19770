package pressure_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

func TestClamp01(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 0.42, 0.42},
		{"zero", 0, 0},
		{"one", 1, 1},
		{"negative", -0.5, 0},
		{"above one", 1.7, 1},
		{"NaN treated as zero", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 1},
		{"negative infinity", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pressure.Clamp01(tt.in))
		})
	}
}

func TestNewReading(t *testing.T) {
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pressure.SetClock(&pressure.MockClock{CurrentTime: fixed})
	defer pressure.ResetClock()

	tests := []struct {
		name     string
		source   pressure.Source
		value    float64
		region   string
		validate func(t *testing.T, r *pressure.Reading)
	}{
		{
			name:   "creates regional reading",
			source: pressure.SourceEconomic,
			value:  0.7,
			region: "ironmark",
			validate: func(t *testing.T, r *pressure.Reading) {
				assert.NotEqual(t, uuid.Nil, r.ID)
				assert.Equal(t, pressure.SourceEconomic, r.Source)
				assert.Equal(t, 0.7, r.Value)
				assert.Equal(t, "ironmark", r.Region)
				assert.Equal(t, fixed, r.Timestamp)
				assert.False(t, r.Global())
			},
		},
		{
			name:   "empty region means global",
			source: pressure.SourcePolitical,
			value:  0.3,
			validate: func(t *testing.T, r *pressure.Reading) {
				assert.True(t, r.Global())
			},
		},
		{
			name:   "out-of-range value clamped not rejected",
			source: pressure.SourceSocial,
			value:  1.9,
			validate: func(t *testing.T, r *pressure.Reading) {
				assert.Equal(t, 1.0, r.Value)
			},
		},
		{
			name:   "NaN value clamped to zero",
			source: pressure.SourceSocial,
			value:  math.NaN(),
			validate: func(t *testing.T, r *pressure.Reading) {
				assert.Equal(t, 0.0, r.Value)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pressure.NewReading(tt.source, tt.value, tt.region, 1.0)
			require.NotNil(t, r)
			tt.validate(t, r)
		})
	}
}

func TestParseSource(t *testing.T) {
	for _, s := range pressure.AllSources() {
		got, ok := pressure.ParseSource(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	_, ok := pressure.ParseSource("arcane")
	assert.False(t, ok)
}
