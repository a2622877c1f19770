package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharronesofer/worldchaos/internal/domain/errors"
	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
	"github.com/sharronesofer/worldchaos/internal/service/ledger"
	"github.com/sharronesofer/worldchaos/internal/testutil/fixtures"
)

var baseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testConfig() config.MitigationConfig {
	return config.MitigationConfig{
		Ceiling:          0.8,
		DefaultDecayRate: 0.05,
		DecayRates: map[string]float64{
			"festival":   0.2,
			"propaganda": 0.15,
		},
	}
}

func TestService_Add(t *testing.T) {
	svc := ledger.NewService(testConfig(), nil)
	ctx := context.Background()

	t.Run("nil factor rejected", func(t *testing.T) {
		err := svc.Add(ctx, nil)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	})

	t.Run("explicit decay rate preserved", func(t *testing.T) {
		f := fixtures.NewFactorBuilder(t).WithDecayRate(0.3).Build()
		require.NoError(t, svc.Add(ctx, f))
		assert.Equal(t, 0.3, f.DecayRate)
	})

	t.Run("missing rate falls back to per-type table", func(t *testing.T) {
		f := fixtures.NewFactorBuilder(t).
			WithType(mitigation.TypeFestival).
			WithDecayRate(0).
			Build()
		require.NoError(t, svc.Add(ctx, f))
		assert.Equal(t, 0.2, f.DecayRate)
	})

	t.Run("unknown type falls back to the default rate", func(t *testing.T) {
		f := fixtures.NewFactorBuilder(t).
			WithType(mitigation.TypeEconomicAid).
			WithDecayRate(0).
			Build()
		require.NoError(t, svc.Add(ctx, f))
		assert.Equal(t, 0.05, f.DecayRate)
	})
}

func TestService_Remove(t *testing.T) {
	svc := ledger.NewService(testConfig(), nil)
	ctx := context.Background()

	f := fixtures.NewFactorBuilder(t).Build()
	require.NoError(t, svc.Add(ctx, f))
	require.Len(t, svc.Active(ctx), 1)

	require.NoError(t, svc.Remove(ctx, f.ID))
	assert.Empty(t, svc.Active(ctx))

	err := svc.Remove(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestService_CombinedEffectiveness(t *testing.T) {
	svc := ledger.NewService(testConfig(), nil)

	steady := func(base float64) *mitigation.Factor {
		return fixtures.NewFactorBuilder(t).
			WithBase(base).
			WithDecayRate(0).
			WithCreatedAt(baseTime).
			Build()
	}

	tests := []struct {
		name    string
		factors []*mitigation.Factor
		want    float64
	}{
		{
			name:    "no factors",
			factors: nil,
			want:    0,
		},
		{
			name:    "single factor passes through",
			factors: []*mitigation.Factor{steady(0.4)},
			want:    0.4,
		},
		{
			name:    "diminishing returns for a second factor",
			factors: []*mitigation.Factor{steady(0.5), steady(0.5)},
			// 0.5 + 0.5*(1-0.5)
			want: 0.75,
		},
		{
			name:    "stacking clamps at the ceiling",
			factors: []*mitigation.Factor{steady(0.7), steady(0.7), steady(0.7)},
			want:    0.8,
		},
		{
			name:    "spent factors contribute nothing",
			factors: []*mitigation.Factor{steady(0.4), fixtures.NewFactorBuilder(t).WithBase(0.5).WithDecayRate(1.0).WithCreatedAt(baseTime.Add(-20 * time.Hour)).Build()},
			want:    0.4,
		},
		{
			name:    "nil entries skipped",
			factors: []*mitigation.Factor{nil, steady(0.3)},
			want:    0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, svc.CombinedEffectiveness(tt.factors, baseTime), 1e-9)
		})
	}
}

func TestService_CombinedEffectiveness_Decay(t *testing.T) {
	svc := ledger.NewService(testConfig(), nil)

	f := fixtures.NewFactorBuilder(t).
		WithBase(0.6).
		WithDecayRate(0.05).
		WithCreatedAt(baseTime).
		Build()

	at := svc.CombinedEffectiveness([]*mitigation.Factor{f}, baseTime)
	later := svc.CombinedEffectiveness([]*mitigation.Factor{f}, baseTime.Add(10*time.Hour))
	assert.InDelta(t, 0.6, at, 1e-9)
	assert.Less(t, later, at)
	assert.Positive(t, later)
}

func TestService_ExpireSweep(t *testing.T) {
	svc := ledger.NewService(testConfig(), nil)
	ctx := context.Background()

	keeper := fixtures.NewFactorBuilder(t).
		WithBase(0.5).WithDecayRate(0.01).WithCreatedAt(baseTime).Build()
	expiring := fixtures.NewFactorBuilder(t).
		WithBase(0.5).WithDecayRate(0.01).WithCreatedAt(baseTime).
		WithExpiry(baseTime.Add(time.Hour)).Build()

	require.NoError(t, svc.Add(ctx, keeper))
	require.NoError(t, svc.Add(ctx, expiring))

	removed := svc.ExpireSweep(ctx, baseTime.Add(30*time.Minute))
	assert.Empty(t, removed)
	assert.Len(t, svc.Active(ctx), 2)

	removed = svc.ExpireSweep(ctx, baseTime.Add(2*time.Hour))
	require.Len(t, removed, 1)
	assert.Equal(t, expiring.ID, removed[0].ID)
	assert.Len(t, svc.Active(ctx), 1)
}

func TestService_Summaries(t *testing.T) {
	svc := ledger.NewService(testConfig(), nil)
	ctx := context.Background()

	f := fixtures.NewFactorBuilder(t).
		WithType(mitigation.TypeMilitaryPresence).
		WithBase(0.4).
		WithDecayRate(0).
		WithCreatedAt(baseTime).
		WithRegion("ironmark").
		Build()
	require.NoError(t, svc.Add(ctx, f))

	sums := svc.Summaries(ctx, baseTime)
	require.Len(t, sums, 1)
	assert.Equal(t, f.ID, sums[0].ID)
	assert.Equal(t, mitigation.TypeMilitaryPresence, sums[0].Type)
	assert.InDelta(t, 0.4, sums[0].Effectiveness, 1e-9)
	assert.Equal(t, "ironmark", sums[0].Region)
}
