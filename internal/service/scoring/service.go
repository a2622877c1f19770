package scoring

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/domain/errors"
	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
)

// scoreMitigationFactor halves the mitigation effect when reducing the
// chaos score. Pressure-level mitigation (monitor service) applies the full
// effect; the two formulas are deliberately kept distinct, matching the
// observed behavior.
const scoreMitigationFactor = 0.5

// temporalExponent is the non-linear scaling applied to temporal pressure.
const temporalExponent = 1.5

// service implements the Service interface
type service struct {
	cfg        config.ScoringConfig
	weights    map[pressure.Source]float64
	thresholds chaos.Thresholds
	templates  map[chaos.EventType]*chaos.Template
	combiner   Combiner
	clock      chaos.Clock
	logger     *zap.Logger
}

// NewService creates a chaos scorer. Threshold entries with unknown level
// names are ignored; an empty table falls back to the defaults.
func NewService(
	cfg config.ScoringConfig,
	pressureCfg config.PressureConfig,
	templates map[chaos.EventType]*chaos.Template,
	combiner Combiner,
	clock chaos.Clock,
	logger *zap.Logger,
) Service {
	if clock == nil {
		clock = chaos.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if templates == nil {
		templates = chaos.DefaultTemplates()
	}

	weights := make(map[pressure.Source]float64, len(pressureCfg.Weights))
	for name, w := range pressureCfg.Weights {
		if src, ok := pressure.ParseSource(name); ok {
			weights[src] = w
		}
	}

	var rows []chaos.LevelThreshold
	for name, min := range cfg.Thresholds {
		if level, ok := chaos.ParseLevel(name); ok {
			rows = append(rows, chaos.LevelThreshold{Level: level, Min: min})
		}
	}
	thresholds := chaos.DefaultThresholds()
	if len(rows) > 0 {
		thresholds = chaos.NewThresholds(rows)
	}

	return &service{
		cfg:        cfg,
		weights:    weights,
		thresholds: thresholds,
		templates:  templates,
		combiner:   combiner,
		clock:      clock,
		logger:     logger,
	}
}

func (s *service) Calculate(ctx context.Context, snap *pressure.Snapshot, factors []*mitigation.Factor) (*Result, error) {
	now := s.clock.Now()
	if snap == nil || snap.Empty() {
		return EmptyResult(now), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrScoringTimeout.WithCause(err)
	}

	weighted := s.weightedPressure(snap)
	temporal := s.temporalFactor(snap)
	total := weighted + temporal

	combined := 0.0
	if s.combiner != nil && len(factors) > 0 {
		combined = s.combiner.CombinedEffectiveness(factors, now)
	}

	score := pressure.Clamp01(total * (1 - scoreMitigationFactor*combined))
	level := s.thresholds.Classify(score)

	if err := ctx.Err(); err != nil {
		return nil, errors.ErrScoringTimeout.WithCause(err)
	}

	result := &Result{
		Score:            score,
		Level:            level,
		WeightedPressure: weighted,
		TemporalFactor:   temporal,
		TotalPressure:    total,
		MitigationEffect: combined,
		Contributions:    s.contributions(snap),
		Candidates:       s.candidates(snap, level),
		CalculatedAt:     now,
	}
	s.logger.Debug("chaos score calculated",
		zap.Float64("score", score),
		zap.String("level", level.String()),
		zap.Int("candidates", len(result.Candidates)))
	return result, nil
}

// weightedPressure computes Σ(value*weight)/Σ(weight) over present
// non-temporal sources. Absent sources are excluded from both sums.
func (s *service) weightedPressure(snap *pressure.Snapshot) float64 {
	var num, den float64
	for src, v := range snap.Sources {
		if src == pressure.SourceTemporal {
			continue
		}
		w := s.weight(src)
		num += pressure.Clamp01(v) * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return pressure.Clamp01(num / den)
}

// temporalFactor scales the temporal channel non-linearly and caps its
// contribution.
func (s *service) temporalFactor(snap *pressure.Snapshot) float64 {
	if !s.cfg.TemporalEnabled {
		return 0
	}
	tp := pressure.Clamp01(snap.Value(pressure.SourceTemporal))
	if tp == 0 {
		return 0
	}
	factor := math.Pow(tp, temporalExponent) * s.cfg.TemporalWeight
	if factor > s.cfg.TemporalCap {
		factor = s.cfg.TemporalCap
	}
	return factor
}

// contributions attributes a fraction of total weighted pressure to each
// present source.
func (s *service) contributions(snap *pressure.Snapshot) map[pressure.Source]float64 {
	var total float64
	for src, v := range snap.Sources {
		total += pressure.Clamp01(v) * s.weight(src)
	}
	out := make(map[pressure.Source]float64, len(snap.Sources))
	if total == 0 {
		for src := range snap.Sources {
			out[src] = 0
		}
		return out
	}
	for src, v := range snap.Sources {
		out[src] = pressure.Clamp01(v) * s.weight(src) / total
	}
	return out
}

// candidates maps each source above the activation threshold to its event
// types, filters by chaos level, adds catastrophic-only types when a single
// source runs hot enough, and truncates to the configured top-N ranking by
// driving pressure.
func (s *service) candidates(snap *pressure.Snapshot, level chaos.Level) []chaos.EventType {
	type candidate struct {
		eventType chaos.EventType
		driver    float64
	}
	var list []candidate
	seen := make(map[chaos.EventType]bool)

	add := func(et chaos.EventType, driver float64) {
		if seen[et] {
			return
		}
		tmpl, ok := s.templates[et]
		if !ok || level < tmpl.MinLevel {
			return
		}
		if tmpl.CatastrophicOnly && driver < s.cfg.CatastrophicThreshold {
			return
		}
		seen[et] = true
		list = append(list, candidate{eventType: et, driver: driver})
	}

	maxSource := 0.0
	for src, v := range snap.Sources {
		v = pressure.Clamp01(v)
		if v > maxSource {
			maxSource = v
		}
		if v < s.cfg.ActivationThreshold {
			continue
		}
		for _, et := range chaos.SourceEvents[src] {
			add(et, v)
		}
	}
	if maxSource >= s.cfg.CatastrophicThreshold {
		for _, et := range chaos.CatastrophicEvents {
			add(et, maxSource)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].driver != list[j].driver {
			return list[i].driver > list[j].driver
		}
		return list[i].eventType < list[j].eventType
	})
	if len(list) > s.cfg.MaxCandidates {
		list = list[:s.cfg.MaxCandidates]
	}

	out := make([]chaos.EventType, len(list))
	for i, c := range list {
		out[i] = c.eventType
	}
	return out
}

func (s *service) weight(src pressure.Source) float64 {
	if w, ok := s.weights[src]; ok {
		return w
	}
	return 1.0
}
