package trigger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
	"github.com/sharronesofer/worldchaos/internal/metrics"
	"github.com/sharronesofer/worldchaos/internal/service/scoring"
)

// regionRankDecay reduces inclusion probability per rank when selecting
// affected regions: 1 - 0.2*rank.
const regionRankDecay = 0.2

// severityNoise is the uniform noise half-width injected into the score
// before the severity breakpoints.
const severityNoise = 0.1

// service implements the Service interface
type service struct {
	cfg       config.TriggerConfig
	templates map[chaos.EventType]*chaos.Template
	levelProb map[chaos.Level]float64
	state     *chaos.State
	sink      EventSink
	rng       RNG
	clock     chaos.Clock
	registry  *metrics.Registry
	logger    *zap.Logger
	limiter   *rate.Limiter

	mu              sync.Mutex
	hourStart       time.Time
	hourlyCount     int
	pendingCascades int
}

// NewService creates a trigger engine. A nil RNG gets a time-seeded source;
// templates default to the built-in table. The registry is optional.
func NewService(
	cfg config.TriggerConfig,
	templates map[chaos.EventType]*chaos.Template,
	state *chaos.State,
	sink EventSink,
	rng RNG,
	clock chaos.Clock,
	registry *metrics.Registry,
	logger *zap.Logger,
) Service {
	if clock == nil {
		clock = chaos.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = NewRNG(time.Now().UnixNano())
	}
	if templates == nil {
		templates = chaos.DefaultTemplates()
	}

	levelProb := make(map[chaos.Level]float64, len(cfg.BaseLevelProbability))
	for name, p := range cfg.BaseLevelProbability {
		if level, ok := chaos.ParseLevel(name); ok {
			levelProb[level] = p
		}
	}

	// The minimum-interval gate is pure rate limiting with no randomness.
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MinEvalInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinEvalInterval), 1)
	}

	return &service{
		cfg:       cfg,
		templates: templates,
		levelProb: levelProb,
		state:     state,
		sink:      sink,
		rng:       rng,
		clock:     clock,
		registry:  registry,
		logger:    logger,
		limiter:   limiter,
	}
}

func (s *service) Evaluate(ctx context.Context, result *scoring.Result, snap *pressure.Snapshot) ([]*chaos.Event, error) {
	if result == nil {
		return nil, nil
	}
	now := s.clock.Now()

	s.state.ResetDailyIfRolledOver(now)
	s.rollHour(now)

	// Hard gates before any probability roll.
	if !s.limiter.Allow() {
		return nil, nil
	}
	if s.state.DailyEventCount() >= s.cfg.MaxEventsPerDay {
		s.logger.Debug("daily trigger limit reached")
		return nil, nil
	}
	if s.state.ActiveEventCount() >= s.cfg.MaxConcurrentEvents {
		s.logger.Debug("max concurrent events reached")
		return nil, nil
	}

	if expired := s.state.SweepExpiredEvents(now); len(expired) > 0 {
		s.logger.Info("events expired", zap.Int("count", len(expired)))
	}
	s.state.CleanExpiredCooldowns(now)

	candidates := s.scoreCandidates(ctx, result, now)

	var fired []*chaos.Event
	for _, c := range candidates {
		if s.limitsReached(now) {
			break
		}
		if s.rng.Float64() >= c.probability {
			continue
		}
		event, err := s.fire(ctx, c.template, result.Score, nil, now)
		if err != nil {
			// A single failed candidate never aborts the rest of the pass.
			s.logger.Warn("candidate event dropped",
				zap.String("type", string(c.template.Type)),
				zap.Error(err))
			continue
		}
		fired = append(fired, event)
	}

	for _, event := range fired {
		s.maybeScheduleCascade(ctx, event)
	}
	return fired, nil
}

type candidate struct {
	template    *chaos.Template
	probability float64
}

// scoreCandidates computes trigger probabilities for candidates that pass
// cooldown and concurrency screens, ranked descending.
func (s *service) scoreCandidates(ctx context.Context, result *scoring.Result, now time.Time) []candidate {
	var out []candidate
	for _, et := range result.Candidates {
		tmpl := s.templateFor(et)
		if s.state.OnCooldown(et, "", now) {
			s.recordSuppressed(ctx, et, "cooldown")
			continue
		}
		if tmpl.MaxConcurrent > 0 && s.state.ActiveCountByType(et) >= tmpl.MaxConcurrent {
			s.recordSuppressed(ctx, et, "concurrency")
			continue
		}
		p := s.triggerProbability(tmpl, result)
		if p <= 0 {
			continue
		}
		out = append(out, candidate{template: tmpl, probability: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].probability != out[j].probability {
			return out[i].probability > out[j].probability
		}
		return out[i].template.Type < out[j].template.Type
	})
	return out
}

func (s *service) triggerProbability(tmpl *chaos.Template, result *scoring.Result) float64 {
	base := s.levelProb[result.Level]
	p := base *
		result.Contribution(tmpl.Source) *
		tmpl.Rarity *
		tmpl.Weight *
		severityModifier(tmpl.BaseSeverity)
	p *= 1 + (s.rng.Float64()*2-1)*s.cfg.Variance
	return pressure.Clamp01(p)
}

// severityModifier damps probability for templates whose base severity is
// heavier; catastrophes stay rare even under high chaos.
func severityModifier(sev chaos.Severity) float64 {
	switch sev {
	case chaos.SeverityMinor:
		return 1.2
	case chaos.SeverityModerate:
		return 1.0
	case chaos.SeverityMajor:
		return 0.85
	case chaos.SeverityCritical:
		return 0.7
	case chaos.SeverityCatastrophic:
		return 0.55
	default:
		return 1.0
	}
}

// fire materializes one event: severity from the noisy score, affected
// regions from the regional score ranking, cooldowns for type and regions,
// then the state record and sink publish.
func (s *service) fire(ctx context.Context, tmpl *chaos.Template, score float64, parent *chaos.Event, now time.Time) (event *chaos.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			event = nil
			err = fmt.Errorf("materializing %s: %v", tmpl.Type, r)
		}
	}()

	noisy := pressure.Clamp01(score + (s.rng.Float64()*2-1)*severityNoise)
	severity := chaos.SeverityFromScore(noisy)
	if severity < tmpl.BaseSeverity && tmpl.CatastrophicOnly {
		severity = tmpl.BaseSeverity
	}

	regions := s.selectRegions()
	event = chaos.NewEvent(tmpl, severity, regions, now)
	if parent != nil {
		event.ParentID = &parent.ID
	}
	event.Activate()

	cooldown := tmpl.BaseCooldown
	if cooldown <= 0 {
		cooldown = s.cfg.DefaultCooldown
	}
	cooldown = time.Duration(float64(cooldown) * severity.DurationScale())
	s.state.SetCooldown(tmpl.Type, "", cooldown, now)
	for _, region := range regions {
		s.state.SetCooldown(tmpl.Type, region, cooldown, now)
	}

	s.state.RecordEvent(event, now)
	s.countTrigger(now)

	if s.sink != nil {
		if perr := s.sink.Publish(ctx, event); perr != nil {
			s.logger.Warn("event publish failed", zap.String("id", event.ID.String()), zap.Error(perr))
		}
	}

	if s.registry != nil {
		s.registry.RecordEvent(ctx, string(event.Type), parent != nil)
	}

	s.logger.Info("chaos event triggered",
		zap.String("type", string(event.Type)),
		zap.String("severity", event.Severity.String()),
		zap.Strings("regions", event.Regions),
		zap.Bool("cascade", parent != nil))
	return event, nil
}

func (s *service) recordSuppressed(ctx context.Context, et chaos.EventType, reason string) {
	if s.registry == nil {
		return
	}
	s.registry.RecordSuppressed(ctx, string(et), reason)
}

// selectRegions ranks regional scores descending and probabilistically
// includes the top K, with inclusion probability decaying per rank. At
// least one region is guaranteed whenever any exist.
func (s *service) selectRegions() []string {
	scores := s.state.RegionalScores()
	if len(scores) == 0 {
		return nil
	}

	type ranked struct {
		region string
		score  float64
	}
	all := make([]ranked, 0, len(scores))
	for region, score := range scores {
		if region == pressure.GlobalRegion {
			continue
		}
		all = append(all, ranked{region: region, score: score})
	}
	if len(all) == 0 {
		return nil
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].region < all[j].region
	})

	topK := s.cfg.RegionTopK
	if topK > len(all) {
		topK = len(all)
	}
	var selected []string
	for rank := 0; rank < topK; rank++ {
		p := 1 - regionRankDecay*float64(rank)
		if s.rng.Float64() < p {
			selected = append(selected, all[rank].region)
		}
	}
	if len(selected) == 0 {
		selected = append(selected, all[0].region)
	}
	return selected
}

// limitsReached checks the hourly and concurrency caps mid-iteration.
func (s *service) limitsReached(now time.Time) bool {
	s.mu.Lock()
	hourly := s.hourlyCount
	s.mu.Unlock()
	if hourly >= s.cfg.MaxEventsPerHour {
		return true
	}
	if s.state.DailyEventCount() >= s.cfg.MaxEventsPerDay {
		return true
	}
	return s.state.ActiveEventCount() >= s.cfg.MaxConcurrentEvents
}

func (s *service) countTrigger(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollHourLocked(now)
	s.hourlyCount++
}

func (s *service) rollHour(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollHourLocked(now)
}

func (s *service) rollHourLocked(now time.Time) {
	hour := now.Truncate(time.Hour)
	if !hour.Equal(s.hourStart) {
		s.hourStart = hour
		s.hourlyCount = 0
	}
}

// templateFor resolves a template, falling back to documented defaults for
// unregistered types instead of failing.
func (s *service) templateFor(et chaos.EventType) *chaos.Template {
	if tmpl, ok := s.templates[et]; ok {
		return tmpl
	}
	s.logger.Warn("no template registered, using defaults", zap.String("type", string(et)))
	return &chaos.Template{
		Type:         et,
		BaseSeverity: chaos.SeverityModerate,
		BaseDuration: chaos.DefaultDuration,
		BaseCooldown: chaos.DefaultCooldown,
		Weight:       chaos.DefaultWeight,
		Rarity:       chaos.DefaultRarity,
	}
}

func (s *service) PendingCascades() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingCascades
}
