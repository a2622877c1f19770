package trigger

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
)

// maybeScheduleCascade rolls the cascade probability for a freshly fired
// event and, on success, schedules one secondary event after the
// template's cascade delay. The delay is a timer on its own goroutine so
// one cascade's wait never stalls unrelated evaluations, and no lock is
// held while waiting.
func (s *service) maybeScheduleCascade(ctx context.Context, parent *chaos.Event) {
	tmpl, ok := s.templates[parent.Type]
	if !ok || parent.CascadeProbability <= 0 || len(tmpl.CascadeTargets) == 0 {
		return
	}

	p := parent.CascadeProbability * (1 + (s.rng.Float64()*2-1)*s.cfg.CascadeVariance)
	if s.rng.Float64() >= p {
		return
	}

	// One secondary type, chosen uniformly.
	target := tmpl.CascadeTargets[int(s.rng.Float64()*float64(len(tmpl.CascadeTargets)))%len(tmpl.CascadeTargets)]
	if s.state.OnCooldown(target, "", s.clock.Now()) {
		s.logger.Debug("cascade target on cooldown at schedule time",
			zap.String("parent", string(parent.Type)),
			zap.String("target", string(target)))
		s.recordSuppressed(ctx, target, "cooldown")
		return
	}

	s.mu.Lock()
	s.pendingCascades++
	s.mu.Unlock()

	go s.runCascade(ctx, parent, target)
}

func (s *service) runCascade(ctx context.Context, parent *chaos.Event, target chaos.EventType) {
	defer func() {
		s.mu.Lock()
		s.pendingCascades--
		s.mu.Unlock()
	}()

	delay := parent.CascadeDelay
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			s.logger.Debug("cascade cancelled", zap.String("target", string(target)))
			return
		case <-timer.C:
		}
	}

	now := s.clock.Now()

	// The target may have gone on cooldown for an unrelated reason while
	// the delay elapsed; re-check immediately before firing. Cascades pass
	// through every limit the primary path does.
	if s.state.OnCooldown(target, "", now) {
		s.logger.Debug("cascade target on cooldown after delay", zap.String("target", string(target)))
		s.recordSuppressed(ctx, target, "cooldown")
		return
	}
	if s.limitsReached(now) {
		s.logger.Debug("cascade dropped at rate limit", zap.String("target", string(target)))
		s.recordSuppressed(ctx, target, "rate_limit")
		return
	}
	tmpl := s.templateFor(target)
	if tmpl.MaxConcurrent > 0 && s.state.ActiveCountByType(target) >= tmpl.MaxConcurrent {
		s.recordSuppressed(ctx, target, "concurrency")
		return
	}

	event, err := s.fire(ctx, tmpl, s.state.Score(), parent, now)
	if err != nil {
		s.logger.Warn("cascade event dropped", zap.String("target", string(target)), zap.Error(err))
		return
	}

	// Cascades can themselves cascade through the same machinery.
	s.maybeScheduleCascade(ctx, event)
}
