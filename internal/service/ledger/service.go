package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sharronesofer/worldchaos/internal/domain/errors"
	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
)

// expiredRetention bounds the audit list of expired factors.
const expiredRetention = 50

// service implements the Service interface
type service struct {
	cfg    config.MitigationConfig
	logger *zap.Logger

	mu      sync.RWMutex
	active  map[uuid.UUID]*mitigation.Factor
	expired []*mitigation.Factor
}

// NewService creates a mitigation ledger.
func NewService(cfg config.MitigationConfig, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		cfg:    cfg,
		logger: logger,
		active: make(map[uuid.UUID]*mitigation.Factor),
	}
}

func (s *service) Add(_ context.Context, f *mitigation.Factor) error {
	if f == nil {
		return errors.NewValidationError("NIL_FACTOR", "mitigation factor cannot be nil")
	}
	if f.DecayRate == 0 {
		// A missing decay rate falls back to the per-type table, then the
		// documented default.
		if rate, ok := s.cfg.DecayRates[string(f.Type)]; ok {
			f.DecayRate = rate
		} else {
			f.DecayRate = s.cfg.DefaultDecayRate
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active[f.ID] = f
	s.logger.Info("mitigation added",
		zap.String("id", f.ID.String()),
		zap.String("type", string(f.Type)),
		zap.Float64("base", f.Base),
		zap.String("region", f.Region))
	return nil
}

func (s *service) Remove(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[id]; !ok {
		return errors.ErrFactorNotFound
	}
	delete(s.active, id)
	return nil
}

func (s *service) Active(_ context.Context) []*mitigation.Factor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*mitigation.Factor, 0, len(s.active))
	for _, f := range s.active {
		out = append(out, f)
	}
	return out
}

func (s *service) EffectivenessAt(f *mitigation.Factor, now time.Time) float64 {
	if f == nil {
		return 0
	}
	return f.EffectivenessAt(now)
}

// CombinedEffectiveness accumulates combined = combined + e*(1-combined)
// per factor, so each additional mitigation contributes less, then clamps
// to the ceiling: stacking can never fully eliminate chaos.
func (s *service) CombinedEffectiveness(factors []*mitigation.Factor, now time.Time) float64 {
	combined := 0.0
	for _, f := range factors {
		if f == nil {
			continue
		}
		e := f.EffectivenessAt(now)
		if e <= 0 {
			continue
		}
		combined += e * (1 - combined)
	}
	if combined > s.cfg.Ceiling {
		combined = s.cfg.Ceiling
	}
	return combined
}

func (s *service) ExpireSweep(_ context.Context, now time.Time) []*mitigation.Factor {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*mitigation.Factor
	for id, f := range s.active {
		if f.Expired(now) {
			removed = append(removed, f)
			delete(s.active, id)
		}
	}
	if len(removed) > 0 {
		s.expired = append(s.expired, removed...)
		if len(s.expired) > expiredRetention {
			s.expired = s.expired[len(s.expired)-expiredRetention:]
		}
		s.logger.Info("mitigations expired", zap.Int("count", len(removed)))
	}
	return removed
}

func (s *service) Summaries(_ context.Context, now time.Time) []mitigation.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]mitigation.Summary, 0, len(s.active))
	for _, f := range s.active {
		out = append(out, f.Summarize(now))
	}
	return out
}
