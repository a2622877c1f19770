package mitigation

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// Type tags the in-world origin of a mitigation factor.
type Type string

const (
	TypeDiplomaticTreaty Type = "diplomatic_treaty"
	TypeEconomicAid      Type = "economic_aid"
	TypeMilitaryPresence Type = "military_presence"
	TypeReliefEffort     Type = "relief_effort"
	TypeFestival         Type = "festival"
	TypePropaganda       Type = "propaganda"
)

// EffectivenessFloor is the value below which a factor counts as spent.
const EffectivenessFloor = 0.01

// Factor is a time-decaying suppressor of pressure or chaos score. The
// struct is never mutated after creation; effectiveness is reinterpreted
// from elapsed time at read time.
type Factor struct {
	ID           uuid.UUID
	Type         Type
	SourceEntity string
	Base         float64 // effectiveness at creation, [0,1]
	DecayRate    float64 // exponential decay constant, per hour
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	Region       string            // empty means global scope
	Scope        []pressure.Source // empty means all sources
}

// New builds a factor with clamped base effectiveness.
func New(t Type, sourceEntity string, base, decayRate float64, createdAt time.Time) *Factor {
	return &Factor{
		ID:           uuid.New(),
		Type:         t,
		SourceEntity: sourceEntity,
		Base:         pressure.Clamp01(base),
		DecayRate:    math.Max(0, decayRate),
		CreatedAt:    createdAt,
	}
}

// WithExpiry sets an absolute expiry time.
func (f *Factor) WithExpiry(at time.Time) *Factor {
	f.ExpiresAt = &at
	return f
}

// WithRegion scopes the factor to one region.
func (f *Factor) WithRegion(region string) *Factor {
	f.Region = region
	return f
}

// WithScope restricts the factor to specific pressure sources.
func (f *Factor) WithScope(sources ...pressure.Source) *Factor {
	f.Scope = sources
	return f
}

// EffectivenessAt is the pure time-decay function: base * exp(-rate * h).
// Returns 0 past expiry or once below the negligible floor.
func (f *Factor) EffectivenessAt(now time.Time) float64 {
	if f.ExpiresAt != nil && now.After(*f.ExpiresAt) {
		return 0
	}
	hours := now.Sub(f.CreatedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	e := f.Base * math.Exp(-f.DecayRate*hours)
	if e < EffectivenessFloor {
		return 0
	}
	return pressure.Clamp01(e)
}

// Expired reports whether the factor should leave the active set.
func (f *Factor) Expired(now time.Time) bool {
	if f.ExpiresAt != nil && now.After(*f.ExpiresAt) {
		return true
	}
	return f.EffectivenessAt(now) == 0
}

// AppliesTo reports whether the factor's region and source scopes cover the
// given region and pressure source.
func (f *Factor) AppliesTo(region string, source pressure.Source) bool {
	if f.Region != "" && f.Region != region {
		return false
	}
	if len(f.Scope) == 0 {
		return true
	}
	for _, s := range f.Scope {
		if s == source {
			return true
		}
	}
	return false
}

// Summary is the compact representation exported in state snapshots.
type Summary struct {
	ID            uuid.UUID `json:"id"`
	Type          Type      `json:"type"`
	SourceEntity  string    `json:"source_entity"`
	Effectiveness float64   `json:"effectiveness"`
	Region        string    `json:"region,omitempty"`
}

// Summarize captures the factor's state at now.
func (f *Factor) Summarize(now time.Time) Summary {
	return Summary{
		ID:            f.ID,
		Type:          f.Type,
		SourceEntity:  f.SourceEntity,
		Effectiveness: f.EffectivenessAt(now),
		Region:        f.Region,
	}
}
