package chaos

import (
	"time"

	"github.com/google/uuid"

	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// EventType names one kind of narrative disruption.
type EventType string

const (
	EventPoliticalUpheaval EventType = "political_upheaval"
	EventCoupAttempt       EventType = "coup_attempt"
	EventEconomicCollapse  EventType = "economic_collapse"
	EventTradeDisruption   EventType = "trade_disruption"
	EventSocialUnrest      EventType = "social_unrest"
	EventMassMigration     EventType = "mass_migration"
	EventNaturalDisaster   EventType = "natural_disaster"
	EventFamine            EventType = "famine"
	EventWar               EventType = "war"
	EventDiplomaticCrisis  EventType = "diplomatic_crisis"
	EventPlague            EventType = "plague"
	EventRegimeCollapse    EventType = "regime_collapse"
	EventTemporalAnomaly   EventType = "temporal_anomaly"
)

// EventStatus is the lifecycle state machine:
// PENDING -> ACTIVE -> (RESOLVED | EXPIRED).
type EventStatus int

const (
	StatusPending EventStatus = iota
	StatusActive
	StatusResolved
	StatusExpired
)

func (s EventStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusResolved:
		return "resolved"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Template is the static, read-only configuration for one event kind.
// Narrative content is opaque to this engine; templates carry only the
// numeric parameters.
type Template struct {
	Type               EventType
	Source             pressure.Source // pressure source mapped to this event
	BaseSeverity       Severity
	BaseDuration       time.Duration
	BaseCooldown       time.Duration
	Weight             float64 // pressure->event mapping weight
	Rarity             float64 // lower is rarer
	MinLevel           Level   // lowest chaos level that allows this event
	CatastrophicOnly   bool    // requires a single source >= 0.8
	MaxConcurrent      int     // per-type concurrency cap
	CascadeTargets     []EventType
	CascadeProbability float64
	CascadeDelay       time.Duration
}

// Event is an instantiated occurrence of a template.
type Event struct {
	ID                 uuid.UUID     `json:"id"`
	Type               EventType     `json:"type"`
	Severity           Severity      `json:"severity"`
	Regions            []string      `json:"regions,omitempty"`
	Global             bool          `json:"global"`
	TriggeredAt        time.Time     `json:"triggered_at"`
	Duration           time.Duration `json:"duration"`
	CascadeProbability float64       `json:"cascade_probability"`
	CascadeDelay       time.Duration `json:"cascade_delay"`
	Status             EventStatus   `json:"status"`
	ParentID           *uuid.UUID    `json:"parent_id,omitempty"` // set for cascaded events
	EndedAt            *time.Time    `json:"ended_at,omitempty"`
}

// NewEvent instantiates a pending event from a template.
func NewEvent(tmpl *Template, severity Severity, regions []string, now time.Time) *Event {
	return &Event{
		ID:                 uuid.New(),
		Type:               tmpl.Type,
		Severity:           severity,
		Regions:            regions,
		Global:             len(regions) == 0,
		TriggeredAt:        now,
		Duration:           time.Duration(float64(tmpl.BaseDuration) * severity.DurationScale()),
		CascadeProbability: tmpl.CascadeProbability,
		CascadeDelay:       tmpl.CascadeDelay,
		Status:             StatusPending,
	}
}

// Activate moves a pending event to active.
func (e *Event) Activate() {
	if e.Status == StatusPending {
		e.Status = StatusActive
	}
}

// Resolve terminates an active event normally.
func (e *Event) Resolve(now time.Time) {
	if e.Status == StatusActive || e.Status == StatusPending {
		e.Status = StatusResolved
		e.EndedAt = &now
	}
}

// ExpiresAt is the moment the event runs out of duration.
func (e *Event) ExpiresAt() time.Time {
	return e.TriggeredAt.Add(e.Duration)
}

// ExpireIfDue expires the event once its duration elapsed. Reports whether
// the transition happened.
func (e *Event) ExpireIfDue(now time.Time) bool {
	if e.Status != StatusActive && e.Status != StatusPending {
		return false
	}
	if now.Before(e.ExpiresAt()) {
		return false
	}
	e.Status = StatusExpired
	e.EndedAt = &now
	return true
}
