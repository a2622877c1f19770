package chaos

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// History buffer bounds. Oldest entries are dropped first.
const (
	EventHistorySize      = 100
	ScoreHistorySize      = 100
	TransitionHistorySize = 50
)

// Risk assessment scaling constants.
const (
	riskTrendBoost         = 0.5
	riskVelocityBoost      = 0.3
	riskMitigationDiscount = 0.4
)

type cooldownKey struct {
	Type   EventType
	Region string
}

// LevelTransition records one change of chaos level.
type LevelTransition struct {
	At   time.Time `json:"at"`
	From Level     `json:"from"`
	To   Level     `json:"to"`
}

// ScoreSample is one entry of the bounded score history.
type ScoreSample struct {
	At    time.Time `json:"at"`
	Score float64   `json:"score"`
	Level Level     `json:"level"`
}

// EventRecord is the compact history entry kept after an event leaves the
// active set.
type EventRecord struct {
	ID          uuid.UUID `json:"id"`
	Type        EventType `json:"type"`
	Severity    Severity  `json:"severity"`
	Regions     []string  `json:"regions,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
	Cascaded    bool      `json:"cascaded"`
}

// State is the single mutable aggregate for one simulation run. Every
// component writes through it; external consumers read snapshots. All
// mutation is serialized behind the internal mutex, and no method holds the
// lock across a suspension point.
type State struct {
	mu sync.RWMutex

	currentLevel  Level
	previousLevel Level
	currentScore  float64
	trend         float64
	velocity      float64
	momentum      float64

	contributions  map[pressure.Source]float64
	regionalScores map[string]float64
	mitigations    []mitigation.Summary

	cooldowns    map[cooldownKey]*Cooldown
	activeEvents map[uuid.UUID]*Event
	eventHistory []EventRecord
	scoreHistory []ScoreSample
	transitions  []LevelTransition
	risk         map[EventType]float64

	dailyEventCount int
	dailyCountDay   time.Time
	lastEventAt     time.Time
}

// NewState creates an empty aggregate at level dormant.
func NewState() *State {
	return &State{
		contributions:  make(map[pressure.Source]float64),
		regionalScores: make(map[string]float64),
		cooldowns:      make(map[cooldownKey]*Cooldown),
		activeEvents:   make(map[uuid.UUID]*Event),
		risk:           make(map[EventType]float64),
	}
}

// UpdateLevel records a (time, from, to) transition only if the level
// actually changed.
func (s *State) UpdateLevel(newLevel Level, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newLevel == s.currentLevel {
		return false
	}
	s.transitions = append(s.transitions, LevelTransition{At: now, From: s.currentLevel, To: newLevel})
	if len(s.transitions) > TransitionHistorySize {
		s.transitions = s.transitions[len(s.transitions)-TransitionHistorySize:]
	}
	s.previousLevel = s.currentLevel
	s.currentLevel = newLevel
	return true
}

// UpdateScore stores the latest scoring output and appends to the bounded
// score history.
func (s *State) UpdateScore(score, trend, velocity float64, contributions map[pressure.Source]float64, regional map[string]float64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	score = pressure.Clamp01(score)
	// Momentum is an exponential moving average of velocity.
	s.momentum = 0.7*s.momentum + 0.3*velocity
	s.currentScore = score
	s.trend = trend
	s.velocity = velocity

	s.contributions = make(map[pressure.Source]float64, len(contributions))
	for src, v := range contributions {
		s.contributions[src] = v
	}
	s.regionalScores = make(map[string]float64, len(regional))
	for r, v := range regional {
		s.regionalScores[r] = pressure.Clamp01(v)
	}

	s.scoreHistory = append(s.scoreHistory, ScoreSample{At: now, Score: score, Level: s.currentLevel})
	if len(s.scoreHistory) > ScoreHistorySize {
		s.scoreHistory = s.scoreHistory[len(s.scoreHistory)-ScoreHistorySize:]
	}
}

// SetMitigations replaces the exported mitigation summaries.
func (s *State) SetMitigations(sums []mitigation.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mitigations = sums
}

// RecordEvent appends a compact record to the bounded event history, adds
// the event to the active map, and bumps the daily counter.
func (s *State) RecordEvent(e *Event, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetDailyLocked(now)
	s.activeEvents[e.ID] = e
	s.eventHistory = append(s.eventHistory, EventRecord{
		ID:          e.ID,
		Type:        e.Type,
		Severity:    e.Severity,
		Regions:     e.Regions,
		TriggeredAt: e.TriggeredAt,
		Cascaded:    e.ParentID != nil,
	})
	if len(s.eventHistory) > EventHistorySize {
		s.eventHistory = s.eventHistory[len(s.eventHistory)-EventHistorySize:]
	}
	s.dailyEventCount++
	s.lastEventAt = now
}

// ResolveEvent terminates an active event and drops it from the active map.
func (s *State) ResolveEvent(id uuid.UUID, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.activeEvents[id]
	if !ok {
		return false
	}
	e.Resolve(now)
	delete(s.activeEvents, id)
	return true
}

// SweepExpiredEvents expires events whose duration elapsed, removing them
// from the active map. Returns the expired events for auditing.
func (s *State) SweepExpiredEvents(now time.Time) []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*Event
	for id, e := range s.activeEvents {
		if e.ExpireIfDue(now) {
			expired = append(expired, e)
			delete(s.activeEvents, id)
		}
	}
	return expired
}

// ActiveEventCount returns the size of the active-event map.
func (s *State) ActiveEventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activeEvents)
}

// ActiveCountByType counts active events of one type.
func (s *State) ActiveCountByType(t EventType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.activeEvents {
		if e.Type == t {
			n++
		}
	}
	return n
}

// SetCooldown records a trigger, overwriting the (type, region) entry.
func (s *State) SetCooldown(t EventType, region string, d time.Duration, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := cooldownKey{Type: t, Region: region}
	s.cooldowns[key] = &Cooldown{Type: t, Region: region, LastTriggered: now, Duration: d}
}

// OnCooldown reports whether the type-level gate or the per-region gate is
// still closed.
func (s *State) OnCooldown(t EventType, region string, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cd, ok := s.cooldowns[cooldownKey{Type: t}]; ok && cd.Active(now) {
		return true
	}
	if region != "" {
		if cd, ok := s.cooldowns[cooldownKey{Type: t, Region: region}]; ok && cd.Active(now) {
			return true
		}
	}
	return false
}

// CooldownProgress is the elapsed fraction of the type-level cooldown, 1 if
// none is set.
func (s *State) CooldownProgress(t EventType, now time.Time) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cd, ok := s.cooldowns[cooldownKey{Type: t}]
	if !ok {
		return 1
	}
	return cd.Progress(now)
}

// CleanExpiredCooldowns removes entries whose elapsed time reached their
// duration. Returns the number removed.
func (s *State) CleanExpiredCooldowns(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, cd := range s.cooldowns {
		if !cd.Active(now) {
			delete(s.cooldowns, key)
			removed++
		}
	}
	return removed
}

// RecalculateRisk derives a per-event-type risk score from the current
// score, trend and velocity boosts, and the mitigation discount, scaled by
// the template source's contribution fraction. Types on cooldown recover
// risk linearly as the cooldown elapses.
func (s *State) RecalculateRisk(mitigationEffect float64, templates map[EventType]*Template, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.currentScore
	if s.trend > 0 {
		base += s.trend * riskTrendBoost
	}
	if s.velocity > 0 {
		base += s.velocity * riskVelocityBoost
	}
	base -= mitigationEffect * riskMitigationDiscount

	risk := make(map[EventType]float64, len(templates))
	for t, tmpl := range templates {
		r := base * s.contributions[tmpl.Source]
		if cd, ok := s.cooldowns[cooldownKey{Type: t}]; ok && cd.Active(now) {
			r *= cd.Progress(now)
		}
		risk[t] = pressure.Clamp01(r)
	}
	s.risk = risk
}

// RiskAssessment returns a copy of the per-event-type risk map.
func (s *State) RiskAssessment() map[EventType]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[EventType]float64, len(s.risk))
	for t, r := range s.risk {
		out[t] = r
	}
	return out
}

// ResetDailyIfRolledOver zeroes the daily event counter when the calendar
// day changed since the last reset. Reports whether a reset happened.
func (s *State) ResetDailyIfRolledOver(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetDailyLocked(now)
}

func (s *State) resetDailyLocked(now time.Time) bool {
	day := now.Truncate(24 * time.Hour)
	if day.Equal(s.dailyCountDay) {
		return false
	}
	first := s.dailyCountDay.IsZero()
	s.dailyCountDay = day
	if first {
		return false
	}
	s.dailyEventCount = 0
	return true
}

// DailyEventCount returns today's trigger count.
func (s *State) DailyEventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyEventCount
}

// Level returns the current chaos level.
func (s *State) Level() Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLevel
}

// PreviousLevel returns the level before the last transition.
func (s *State) PreviousLevel() Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previousLevel
}

// Score returns the current chaos score.
func (s *State) Score() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentScore
}

// RegionalScores returns a copy of the per-region score map.
func (s *State) RegionalScores() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.regionalScores))
	for r, v := range s.regionalScores {
		out[r] = v
	}
	return out
}

// Transitions returns a copy of the recorded level transitions.
func (s *State) Transitions() []LevelTransition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LevelTransition, len(s.transitions))
	copy(out, s.transitions)
	return out
}

// Reset clears the aggregate at a world-reset boundary. The instance
// itself survives for the process lifetime.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentLevel = LevelDormant
	s.previousLevel = LevelDormant
	s.currentScore = 0
	s.trend = 0
	s.velocity = 0
	s.momentum = 0
	s.contributions = make(map[pressure.Source]float64)
	s.regionalScores = make(map[string]float64)
	s.mitigations = nil
	s.cooldowns = make(map[cooldownKey]*Cooldown)
	s.activeEvents = make(map[uuid.UUID]*Event)
	s.eventHistory = nil
	s.scoreHistory = nil
	s.transitions = nil
	s.risk = make(map[EventType]float64)
	s.dailyEventCount = 0
	s.dailyCountDay = time.Time{}
	s.lastEventAt = time.Time{}
}
