package simulation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/domain/errors"
	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
	"github.com/sharronesofer/worldchaos/internal/metrics"
	"github.com/sharronesofer/worldchaos/internal/service/ledger"
	"github.com/sharronesofer/worldchaos/internal/service/monitor"
	"github.com/sharronesofer/worldchaos/internal/service/scoring"
	"github.com/sharronesofer/worldchaos/internal/service/trigger"
)

// Simulation is the root owning every engine service; it drives the tick
// sequence decay -> mitigate -> score -> trigger -> record. All engine
// state is constructed here once per simulation instance, never held in
// package globals.
type Simulation struct {
	cfg       *config.Config
	monitor   monitor.Service
	ledger    ledger.Service
	scorer    scoring.Service
	engine    trigger.Service
	state     *chaos.State
	templates map[chaos.EventType]*chaos.Template
	clock     chaos.Clock
	logger    *zap.Logger
	tracer    trace.Tracer
	registry  *metrics.Registry
}

// Deps collects the injected services for New.
type Deps struct {
	Monitor   monitor.Service
	Ledger    ledger.Service
	Scorer    scoring.Service
	Engine    trigger.Service
	State     *chaos.State
	Templates map[chaos.EventType]*chaos.Template
	Clock     chaos.Clock
	Registry  *metrics.Registry
}

// New wires a simulation root from its dependencies.
func New(cfg *config.Config, deps Deps, logger *zap.Logger) *Simulation {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = chaos.RealClock{}
	}
	templates := deps.Templates
	if templates == nil {
		templates = chaos.DefaultTemplates()
	}
	return &Simulation{
		cfg:       cfg,
		monitor:   deps.Monitor,
		ledger:    deps.Ledger,
		scorer:    deps.Scorer,
		engine:    deps.Engine,
		state:     deps.State,
		templates: templates,
		clock:     clock,
		logger:    logger,
		tracer:    otel.Tracer("worldchaos/simulation"),
		registry:  deps.Registry,
	}
}

// Run drives ticks at the configured interval until the context ends.
// Tick failures are logged and never stop the loop; the worst outcome of
// any tick is "no events triggered".
func (s *Simulation) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Simulation.TickInterval)
	defer ticker.Stop()

	s.logger.Info("simulation loop started",
		zap.Duration("tick_interval", s.cfg.Simulation.TickInterval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.Error("tick failed", zap.Error(err))
			}
		}
	}
}

// Tick runs one full simulation step.
func (s *Simulation) Tick(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "simulation.tick")
	defer span.End()

	start := s.clock.Now()

	if removed := s.ledger.ExpireSweep(ctx, start); len(removed) > 0 {
		span.AddEvent("mitigations expired",
			trace.WithAttributes(attribute.Int("count", len(removed))))
		if s.registry != nil {
			s.registry.RecordExpiredMitigations(ctx, int64(len(removed)))
		}
	}

	s.monitor.DecayAll(ctx)
	factors := s.ledger.Active(ctx)
	s.monitor.ApplyMitigationsAll(ctx, factors)

	snap := s.monitor.GlobalSnapshot(ctx)

	// Scoring is bounded by a configurable timeout; a timeout is a
	// calculation failure for this tick, not retried.
	scoreCtx, cancel := context.WithTimeout(ctx, s.cfg.Simulation.ScoreTimeout)
	scoreStart := s.clock.Now()
	result, err := s.scorer.Calculate(scoreCtx, snap, factors)
	cancel()
	if s.registry != nil {
		s.registry.RecordScoring(ctx, s.clock.Now().Sub(scoreStart), err != nil)
	}
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "score calculation")
	}

	now := s.clock.Now()
	// Classify before sampling so history entries carry this tick's
	// level, not the previous one.
	if s.state.UpdateLevel(result.Level, now) {
		s.logger.Info("chaos level changed",
			zap.String("from", s.state.PreviousLevel().String()),
			zap.String("to", result.Level.String()),
			zap.Float64("score", result.Score))
		if s.registry != nil {
			s.registry.RecordLevelTransition(ctx, s.state.PreviousLevel().String(), result.Level.String())
		}
	}
	s.state.UpdateScore(result.Score, snap.Trend, snap.Velocity, result.Contributions, s.monitor.RegionalScores(ctx), now)
	s.state.SetMitigations(s.ledger.Summaries(ctx, now))

	fired, err := s.engine.Evaluate(ctx, result, snap)
	if err != nil {
		// Never fatal; record and carry on with risk bookkeeping.
		span.RecordError(err)
		s.logger.Warn("trigger evaluation failed", zap.Error(err))
	}

	s.state.RecalculateRisk(result.MitigationEffect, s.templates, now)

	if s.registry != nil {
		s.registry.RecordTick(ctx, result.Score, int64(result.Level),
			int64(s.state.ActiveEventCount()), s.clock.Now().Sub(start))
		s.registry.SetRegionCount(int64(len(s.monitor.Regions(ctx))))
		s.registry.SetActiveFactors(int64(len(factors)))
		s.registry.SetPendingCascades(int64(s.engine.PendingCascades()))
	}

	span.SetAttributes(
		attribute.Float64("chaos.score", result.Score),
		attribute.String("chaos.level", result.Level.String()),
		attribute.Int("events.fired", len(fired)),
	)
	return nil
}

// Record is the single-reading ingress for external collaborators.
func (s *Simulation) Record(ctx context.Context, r *pressure.Reading) {
	s.monitor.Record(ctx, r)
	if s.registry != nil && r != nil {
		s.registry.RecordReading(ctx, string(r.Source), r.Value)
	}
}

// UpdatePressureSources is the batch ingress: one value per source.
func (s *Simulation) UpdatePressureSources(ctx context.Context, region string, values map[pressure.Source]float64) {
	s.monitor.UpdateSources(ctx, region, values)
	if s.registry != nil {
		for source, value := range values {
			s.registry.RecordReading(ctx, string(source), value)
		}
	}
}

// AddMitigation registers a mitigation factor.
func (s *Simulation) AddMitigation(ctx context.Context, f *mitigation.Factor) error {
	return s.ledger.Add(ctx, f)
}

// RemoveMitigation drops a mitigation factor by ID.
func (s *Simulation) RemoveMitigation(ctx context.Context, f *mitigation.Factor) error {
	return s.ledger.Remove(ctx, f.ID)
}

// Snapshot exports the chaos state for persistence or telemetry.
func (s *Simulation) Snapshot() *chaos.Snapshot {
	return s.state.Snapshot(s.clock.Now())
}

// State exposes the aggregate for read access by external consumers.
func (s *Simulation) State() *chaos.State {
	return s.state
}

// Reset clears the chaos state at a world-reset boundary.
func (s *Simulation) Reset() {
	s.state.Reset()
	s.logger.Info("chaos state reset")
}
