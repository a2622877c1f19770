package simulation_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
	"github.com/sharronesofer/worldchaos/internal/service/ledger"
	"github.com/sharronesofer/worldchaos/internal/service/monitor"
	"github.com/sharronesofer/worldchaos/internal/service/scoring"
	"github.com/sharronesofer/worldchaos/internal/service/simulation"
	"github.com/sharronesofer/worldchaos/internal/testutil/fixtures"
)

var baseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Calculate(ctx context.Context, snap *pressure.Snapshot, factors []*mitigation.Factor) (*scoring.Result, error) {
	args := m.Called(ctx, snap, factors)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.Result), args.Error(1)
}

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Evaluate(ctx context.Context, result *scoring.Result, snap *pressure.Snapshot) ([]*chaos.Event, error) {
	args := m.Called(ctx, result, snap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chaos.Event), args.Error(1)
}

func (m *MockEngine) PendingCascades() int {
	args := m.Called()
	return args.Int(0)
}

func testConfig() *config.Config {
	return &config.Config{
		Simulation: config.SimulationConfig{
			TickInterval: 10 * time.Millisecond,
			ScoreTimeout: time.Second,
		},
		Pressure: config.PressureConfig{
			DecayRate:         0.02,
			Window:            24 * time.Hour,
			MaxReadings:       100,
			CriticalThreshold: 0.8,
			TrendSamples:      20,
			Weights: map[string]float64{
				"economic":      1.0,
				"political":     1.0,
				"social":        1.0,
				"environmental": 1.0,
				"diplomatic":    1.0,
			},
		},
		Mitigation: config.MitigationConfig{
			Ceiling:          0.8,
			DefaultDecayRate: 0.05,
		},
	}
}

type harness struct {
	sim     *simulation.Simulation
	scorer  *MockScorer
	engine  *MockEngine
	monitor monitor.Service
	ledger  ledger.Service
	state   *chaos.State
	clock   *chaos.MockClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testConfig()
	clock := &chaos.MockClock{CurrentTime: baseTime}
	pclock := &pressure.MockClock{CurrentTime: baseTime}

	h := &harness{
		scorer:  &MockScorer{},
		engine:  &MockEngine{},
		monitor: monitor.NewService(cfg.Pressure, pclock, zap.NewNop()),
		ledger:  ledger.NewService(cfg.Mitigation, zap.NewNop()),
		state:   chaos.NewState(),
		clock:   clock,
	}
	h.sim = simulation.New(cfg, simulation.Deps{
		Monitor: h.monitor,
		Ledger:  h.ledger,
		Scorer:  h.scorer,
		Engine:  h.engine,
		State:   h.state,
		Clock:   clock,
	}, zap.NewNop())
	return h
}

func moderateResult() *scoring.Result {
	return &scoring.Result{
		Score: 0.65,
		Level: chaos.LevelModerate,
		Contributions: map[pressure.Source]float64{
			pressure.SourceEconomic: 1.0,
		},
		Candidates:   []chaos.EventType{chaos.EventTradeDisruption},
		CalculatedAt: baseTime,
	}
}

func TestTick_UpdatesStateFromScore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.sim.Record(ctx, fixtures.NewReadingBuilder(t).
		WithSource(pressure.SourceEconomic).
		WithValue(0.8).
		WithRegion("ironmark").
		Build())

	result := moderateResult()
	h.scorer.On("Calculate", mock.Anything, mock.Anything, mock.Anything).Return(result, nil).Once()
	h.engine.On("Evaluate", mock.Anything, result, mock.Anything).Return(nil, nil).Once()

	require.NoError(t, h.sim.Tick(ctx))

	assert.Equal(t, 0.65, h.state.Score())
	assert.Equal(t, chaos.LevelModerate, h.state.Level())
	assert.Equal(t, chaos.LevelDormant, h.state.PreviousLevel())

	snap := h.sim.Snapshot()
	// The sample recorded this tick carries the level the tick
	// classified, not the level before it.
	require.NotEmpty(t, snap.ScoreHistory)
	last := snap.ScoreHistory[len(snap.ScoreHistory)-1]
	assert.Equal(t, 0.65, last.Score)
	assert.Equal(t, chaos.LevelModerate, last.Level)
	assert.Contains(t, snap.RegionalScores, "ironmark")
	// Economic templates inherit risk from the economic contribution.
	assert.Greater(t, snap.Risk[chaos.EventEconomicCollapse], 0.0)

	h.scorer.AssertExpectations(t)
	h.engine.AssertExpectations(t)
}

func TestTick_ScoreFailurePropagates(t *testing.T) {
	h := newHarness(t)

	h.scorer.On("Calculate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, stderrors.New("snapshot incoherent")).Once()

	err := h.sim.Tick(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score calculation")
	assert.Equal(t, 0.0, h.state.Score())
	h.engine.AssertNumberOfCalls(t, "Evaluate", 0)
}

func TestTick_TriggerFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)

	result := moderateResult()
	h.scorer.On("Calculate", mock.Anything, mock.Anything, mock.Anything).Return(result, nil).Once()
	h.engine.On("Evaluate", mock.Anything, result, mock.Anything).
		Return(nil, stderrors.New("sink unavailable")).Once()

	require.NoError(t, h.sim.Tick(context.Background()))
	assert.Equal(t, 0.65, h.state.Score())
	h.engine.AssertExpectations(t)
}

func TestTick_SweepsExpiredMitigations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	expired := fixtures.NewFactorBuilder(t).
		WithType(mitigation.TypeFestival).
		WithCreatedAt(baseTime.Add(-48 * time.Hour)).
		WithExpiry(baseTime.Add(-time.Hour)).
		Build()
	live := fixtures.NewFactorBuilder(t).
		WithExpiry(baseTime.Add(24 * time.Hour)).
		Build()
	require.NoError(t, h.sim.AddMitigation(ctx, expired))
	require.NoError(t, h.sim.AddMitigation(ctx, live))

	result := moderateResult()
	// Only the live factor survives the sweep and reaches the scorer.
	h.scorer.On("Calculate", mock.Anything, mock.Anything,
		mock.MatchedBy(func(factors []*mitigation.Factor) bool {
			return len(factors) == 1 && factors[0].ID == live.ID
		})).Return(result, nil).Once()
	h.engine.On("Evaluate", mock.Anything, result, mock.Anything).Return(nil, nil).Once()

	require.NoError(t, h.sim.Tick(ctx))

	snap := h.sim.Snapshot()
	require.Len(t, snap.Mitigations, 1)
	assert.Equal(t, live.ID, snap.Mitigations[0].ID)
	h.scorer.AssertExpectations(t)
}

func TestMitigationPassthroughs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	factor := fixtures.NewFactorBuilder(t).Build()
	require.NoError(t, h.sim.AddMitigation(ctx, factor))
	require.NoError(t, h.sim.RemoveMitigation(ctx, factor))
	assert.Error(t, h.sim.RemoveMitigation(ctx, factor))
}

func TestUpdatePressureSources(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.sim.UpdatePressureSources(ctx, "ironmark", map[pressure.Source]float64{
		pressure.SourceSocial:   0.7,
		pressure.SourceEconomic: 0.4,
	})

	snap := h.monitor.Snapshot(ctx, "ironmark")
	assert.InDelta(t, 0.7, snap.Sources[pressure.SourceSocial], 1e-9)
	assert.InDelta(t, 0.4, snap.Sources[pressure.SourceEconomic], 1e-9)
}

func TestReset(t *testing.T) {
	h := newHarness(t)

	result := moderateResult()
	h.scorer.On("Calculate", mock.Anything, mock.Anything, mock.Anything).Return(result, nil).Once()
	h.engine.On("Evaluate", mock.Anything, result, mock.Anything).Return(nil, nil).Once()
	require.NoError(t, h.sim.Tick(context.Background()))
	require.Equal(t, 0.65, h.state.Score())

	h.sim.Reset()
	assert.Equal(t, 0.0, h.state.Score())
	assert.Equal(t, chaos.LevelDormant, h.state.Level())
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	h := newHarness(t)

	result := moderateResult()
	h.scorer.On("Calculate", mock.Anything, mock.Anything, mock.Anything).Return(result, nil)
	h.engine.On("Evaluate", mock.Anything, result, mock.Anything).Return(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := h.sim.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEmpty(t, h.scorer.Calls)
}
