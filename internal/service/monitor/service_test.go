package monitor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
	"github.com/sharronesofer/worldchaos/internal/service/monitor"
	"github.com/sharronesofer/worldchaos/internal/testutil/fixtures"
)

var baseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testConfig() config.PressureConfig {
	return config.PressureConfig{
		DecayRate:         0.02,
		Window:            24 * time.Hour,
		MaxReadings:       100,
		CriticalThreshold: 0.8,
		TrendSamples:      20,
		Weights: map[string]float64{
			"economic":  1.0,
			"political": 1.0,
			"social":    1.0,
		},
	}
}

func newService(t *testing.T) (monitor.Service, *pressure.MockClock) {
	t.Helper()
	clock := &pressure.MockClock{CurrentTime: baseTime}
	return monitor.NewService(testConfig(), clock, nil), clock
}

func TestService_Record(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	svc.Record(ctx, fixtures.NewReadingBuilder(t).
		WithSource(pressure.SourceEconomic).
		WithValue(0.7).
		WithRegion("ironmark").
		WithTimestamp(baseTime).
		Build())

	snap := svc.Snapshot(ctx, "ironmark")
	assert.Equal(t, 0.7, snap.Value(pressure.SourceEconomic))
	assert.Equal(t, 1, snap.ReadingCount)

	t.Run("empty region maps to the global pseudo-region", func(t *testing.T) {
		svc.Record(ctx, fixtures.NewReadingBuilder(t).
			WithSource(pressure.SourcePolitical).
			WithValue(0.4).
			WithTimestamp(baseTime).
			Build())

		snap := svc.Snapshot(ctx, pressure.GlobalRegion)
		assert.Equal(t, 0.4, snap.Value(pressure.SourcePolitical))
	})

	t.Run("nil reading ignored", func(t *testing.T) {
		svc.Record(ctx, nil)
		assert.Len(t, svc.Regions(ctx), 2)
	})
}

func TestService_UpdateSources(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	svc.UpdateSources(ctx, "ironmark", map[pressure.Source]float64{
		pressure.SourceEconomic: 0.5,
		pressure.SourceSocial:   1.8, // clamped
		pressure.Source("wild"): 0.9, // unknown, ignored
	})

	snap := svc.Snapshot(ctx, "ironmark")
	assert.Equal(t, 0.5, snap.Value(pressure.SourceEconomic))
	assert.Equal(t, 1.0, snap.Value(pressure.SourceSocial))
	assert.Zero(t, snap.Value(pressure.Source("wild")))
	assert.Equal(t, 2, snap.ReadingCount)
}

func TestService_Decay(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	svc.UpdateSources(ctx, "ironmark", map[pressure.Source]float64{pressure.SourceEconomic: 0.5})
	svc.UpdateSources(ctx, "veyra", map[pressure.Source]float64{pressure.SourceEconomic: 0.4})

	svc.Decay(ctx, "ironmark")
	assert.InDelta(t, 0.49, svc.Snapshot(ctx, "ironmark").Value(pressure.SourceEconomic), 1e-9)
	assert.InDelta(t, 0.4, svc.Snapshot(ctx, "veyra").Value(pressure.SourceEconomic), 1e-9)

	svc.DecayAll(ctx)
	assert.InDelta(t, 0.4802, svc.Snapshot(ctx, "ironmark").Value(pressure.SourceEconomic), 1e-9)
	assert.InDelta(t, 0.392, svc.Snapshot(ctx, "veyra").Value(pressure.SourceEconomic), 1e-9)

	// Decaying an unknown region is a no-op.
	svc.Decay(ctx, "nowhere")
}

func TestService_ApplyMitigations(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	svc.UpdateSources(ctx, "ironmark", map[pressure.Source]float64{
		pressure.SourceEconomic: 0.8,
		pressure.SourceSocial:   0.6,
	})
	svc.UpdateSources(ctx, "veyra", map[pressure.Source]float64{
		pressure.SourceEconomic: 0.5,
	})

	t.Run("scoped factor suppresses matching source and region only", func(t *testing.T) {
		f := fixtures.NewFactorBuilder(t).
			WithBase(0.5).
			WithDecayRate(0).
			WithCreatedAt(baseTime).
			WithRegion("ironmark").
			WithScope(pressure.SourceEconomic).
			Build()

		svc.ApplyMitigations(ctx, "ironmark", []*mitigation.Factor{f})

		snap := svc.Snapshot(ctx, "ironmark")
		assert.InDelta(t, 0.4, snap.Value(pressure.SourceEconomic), 1e-9)
		assert.InDelta(t, 0.6, snap.Value(pressure.SourceSocial), 1e-9)
	})

	t.Run("global factor applies across regions", func(t *testing.T) {
		f := fixtures.NewFactorBuilder(t).
			WithBase(0.2).
			WithDecayRate(0).
			WithCreatedAt(baseTime).
			Build()

		svc.ApplyMitigationsAll(ctx, []*mitigation.Factor{f})

		assert.InDelta(t, 0.32, svc.Snapshot(ctx, "ironmark").Value(pressure.SourceEconomic), 1e-9)
		assert.InDelta(t, 0.4, svc.Snapshot(ctx, "veyra").Value(pressure.SourceEconomic), 1e-9)
	})
}

func TestService_Snapshot(t *testing.T) {
	svc, clock := newService(t)
	ctx := context.Background()

	t.Run("unknown region yields empty snapshot", func(t *testing.T) {
		snap := svc.Snapshot(ctx, "nowhere")
		assert.True(t, snap.Empty())
		assert.Equal(t, "nowhere", snap.Region)
	})

	t.Run("time above critical uses the configured threshold", func(t *testing.T) {
		svc.Record(ctx, fixtures.NewReadingBuilder(t).
			WithSource(pressure.SourcePolitical).
			WithValue(0.9).
			WithRegion("ironmark").
			WithTimestamp(baseTime).
			Build())
		clock.Advance(2 * time.Hour)

		snap := svc.Snapshot(ctx, "ironmark")
		assert.Equal(t, 2*time.Hour, snap.TimeAboveCritical)
	})
}

func TestService_GlobalSnapshot(t *testing.T) {
	svc, clock := newService(t)
	ctx := context.Background()

	t.Run("no regions yields empty snapshot", func(t *testing.T) {
		snap := svc.GlobalSnapshot(ctx)
		assert.True(t, snap.Empty())
		assert.Equal(t, pressure.GlobalRegion, snap.Region)
	})

	t.Run("per-source mean across regions", func(t *testing.T) {
		svc.UpdateSources(ctx, "ironmark", map[pressure.Source]float64{
			pressure.SourceEconomic: 0.8,
			pressure.SourceSocial:   0.4,
		})
		svc.UpdateSources(ctx, "veyra", map[pressure.Source]float64{
			pressure.SourceEconomic: 0.4,
		})

		snap := svc.GlobalSnapshot(ctx)
		// economic mean (0.8+0.4)/2, social only present in one region.
		assert.InDelta(t, 0.6, snap.Value(pressure.SourceEconomic), 1e-9)
		assert.InDelta(t, 0.4, snap.Value(pressure.SourceSocial), 1e-9)
		assert.InDelta(t, 0.5, snap.WeightedAverage, 1e-9)
		assert.Equal(t, 3, snap.ReadingCount)
	})

	t.Run("history feeds trend and velocity", func(t *testing.T) {
		clock.Advance(time.Hour)
		svc.UpdateSources(ctx, "ironmark", map[pressure.Source]float64{
			pressure.SourceEconomic: 1.0,
			pressure.SourceSocial:   0.8,
		})

		snap := svc.GlobalSnapshot(ctx)
		assert.Positive(t, snap.Velocity)
		assert.Positive(t, snap.Trend)
	})
}

func TestService_RegionalScores(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	svc.UpdateSources(ctx, "ironmark", map[pressure.Source]float64{
		pressure.SourceEconomic: 0.8,
		pressure.SourceSocial:   0.4,
	})
	svc.UpdateSources(ctx, "veyra", map[pressure.Source]float64{
		pressure.SourceEconomic: 0.2,
	})

	scores := svc.RegionalScores(ctx)
	require.Len(t, scores, 2)
	assert.InDelta(t, 0.6, scores["ironmark"], 1e-9)
	assert.InDelta(t, 0.2, scores["veyra"], 1e-9)
}
