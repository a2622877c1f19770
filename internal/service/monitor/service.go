package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
)

// service implements the Service interface
type service struct {
	cfg     config.PressureConfig
	weights map[pressure.Source]float64
	clock   pressure.Clock
	logger  *zap.Logger

	mu      sync.RWMutex
	regions map[string]*pressure.Regional
	global  *pressure.Global
}

// NewService creates a pressure monitor. A nil clock defaults to system
// time; a nil logger is replaced with a no-op logger.
func NewService(cfg config.PressureConfig, clock pressure.Clock, logger *zap.Logger) Service {
	if clock == nil {
		clock = pressure.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	weights := make(map[pressure.Source]float64, len(cfg.Weights))
	for name, w := range cfg.Weights {
		if src, ok := pressure.ParseSource(name); ok {
			weights[src] = w
		}
	}
	return &service{
		cfg:     cfg,
		weights: weights,
		clock:   clock,
		logger:  logger,
		regions: make(map[string]*pressure.Regional),
		global:  pressure.NewGlobal(),
	}
}

func (s *service) Record(_ context.Context, r *pressure.Reading) {
	if r == nil {
		return
	}
	region := r.Region
	if region == "" {
		region = pressure.GlobalRegion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rp := s.regionOrCreateLocked(region)
	rp.Append(r, s.cfg.MaxReadings, s.cfg.Window)
	s.logger.Debug("pressure reading recorded",
		zap.String("region", region),
		zap.String("source", r.Source.String()),
		zap.Float64("value", r.Value))
}

func (s *service) UpdateSources(ctx context.Context, region string, values map[pressure.Source]float64) {
	now := s.clock.Now()
	for src, v := range values {
		if !src.Valid() {
			s.logger.Warn("unknown pressure source ignored", zap.String("source", src.String()))
			continue
		}
		r := &pressure.Reading{
			Source:     src,
			Value:      pressure.Clamp01(v),
			Region:     region,
			Timestamp:  now,
			Confidence: 1.0,
		}
		s.Record(ctx, r)
	}
}

func (s *service) Decay(_ context.Context, region string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rp, ok := s.regions[region]; ok {
		rp.ScaleAll(1 - s.cfg.DecayRate)
	}
}

func (s *service) DecayAll(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	factor := 1 - s.cfg.DecayRate
	for _, rp := range s.regions {
		rp.ScaleAll(factor)
	}
}

func (s *service) ApplyMitigations(_ context.Context, region string, factors []*mitigation.Factor) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rp, ok := s.regions[region]
	if !ok {
		return
	}
	s.applyLocked(rp, factors, now)
}

func (s *service) ApplyMitigationsAll(_ context.Context, factors []*mitigation.Factor) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rp := range s.regions {
		s.applyLocked(rp, factors, now)
	}
}

func (s *service) applyLocked(rp *pressure.Regional, factors []*mitigation.Factor, now time.Time) {
	for src := range rp.Current() {
		for _, f := range factors {
			if !f.AppliesTo(rp.Region, src) {
				continue
			}
			e := f.EffectivenessAt(now)
			if e <= 0 {
				continue
			}
			rp.Scale(src, 1-e)
		}
	}
}

func (s *service) Snapshot(_ context.Context, region string) *pressure.Snapshot {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rp, ok := s.regions[region]
	if !ok || rp.Empty() {
		return pressure.EmptySnapshot(region, now)
	}
	return &pressure.Snapshot{
		Region:            region,
		Sources:           rp.Current(),
		WeightedAverage:   rp.WeightedAverage(s.weights),
		Trend:             rp.Trend(s.cfg.TrendSamples),
		Velocity:          rp.Velocity(),
		TimeAboveCritical: rp.TimeAboveThreshold(s.cfg.CriticalThreshold, now),
		ReadingCount:      rp.ReadingCount(),
		Taken:             now,
	}
}

func (s *service) GlobalSnapshot(_ context.Context) *pressure.Snapshot {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.regions) == 0 {
		return pressure.EmptySnapshot(pressure.GlobalRegion, now)
	}

	// Per-source mean across regions that carry the source.
	sums := make(map[pressure.Source]float64)
	counts := make(map[pressure.Source]int)
	readings := 0
	var maxAboveCritical time.Duration
	for _, rp := range s.regions {
		for src, v := range rp.Current() {
			sums[src] += v
			counts[src]++
		}
		readings += rp.ReadingCount()
		if d := rp.TimeAboveThreshold(s.cfg.CriticalThreshold, now); d > maxAboveCritical {
			maxAboveCritical = d
		}
	}
	sources := make(map[pressure.Source]float64, len(sums))
	var num, den float64
	for src, sum := range sums {
		v := sum / float64(counts[src])
		sources[src] = v
		w, ok := s.weights[src]
		if !ok {
			w = 1.0
		}
		num += v * w
		den += w
	}
	weighted := 0.0
	if den > 0 {
		weighted = pressure.Clamp01(num / den)
	}

	s.global.Update(weighted, sources, now)

	return &pressure.Snapshot{
		Region:            pressure.GlobalRegion,
		Sources:           sources,
		WeightedAverage:   weighted,
		Trend:             s.global.Trend(),
		Velocity:          s.global.Velocity(),
		TimeAboveCritical: maxAboveCritical,
		ReadingCount:      readings,
		Taken:             now,
	}
}

func (s *service) Regions(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.regions))
	for region := range s.regions {
		out = append(out, region)
	}
	return out
}

func (s *service) RegionalScores(_ context.Context) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.regions))
	for region, rp := range s.regions {
		out[region] = rp.WeightedAverage(s.weights)
	}
	return out
}

func (s *service) regionOrCreateLocked(region string) *pressure.Regional {
	rp, ok := s.regions[region]
	if !ok {
		rp = pressure.NewRegional(region)
		s.regions[region] = rp
	}
	return rp
}
