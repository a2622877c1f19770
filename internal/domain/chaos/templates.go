package chaos

import (
	"time"

	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// Fallback template values for missing configuration entries.
const (
	DefaultWeight   = 1.0
	DefaultRarity   = 1.0
	DefaultCooldown = 48 * time.Hour
	DefaultDuration = 24 * time.Hour
)

// SourceEvents maps each pressure source to the event types it can raise.
var SourceEvents = map[pressure.Source][]EventType{
	pressure.SourceEconomic:      {EventEconomicCollapse, EventTradeDisruption},
	pressure.SourcePolitical:     {EventPoliticalUpheaval, EventCoupAttempt},
	pressure.SourceSocial:        {EventSocialUnrest, EventMassMigration},
	pressure.SourceEnvironmental: {EventNaturalDisaster, EventFamine},
	pressure.SourceDiplomatic:    {EventWar, EventDiplomaticCrisis},
	pressure.SourceTemporal:      {EventTemporalAnomaly},
}

// CatastrophicEvents become candidates only when a single source reads 0.8
// or higher.
var CatastrophicEvents = []EventType{EventRegimeCollapse, EventPlague}

// DefaultTemplates is the built-in event table. Configuration entries
// override individual fields; unknown types fall back to these values.
func DefaultTemplates() map[EventType]*Template {
	templates := map[EventType]*Template{
		EventPoliticalUpheaval: {
			Source:             pressure.SourcePolitical,
			BaseSeverity:       SeverityMajor,
			BaseDuration:       3 * 24 * time.Hour,
			BaseCooldown:       72 * time.Hour,
			Weight:             1.2,
			Rarity:             0.8,
			MinLevel:           LevelModerate,
			MaxConcurrent:      1,
			CascadeTargets:     []EventType{EventCoupAttempt, EventSocialUnrest},
			CascadeProbability: 0.35,
			CascadeDelay:       6 * time.Hour,
		},
		EventCoupAttempt: {
			Source:        pressure.SourcePolitical,
			BaseSeverity:  SeverityCritical,
			BaseDuration:  24 * time.Hour,
			BaseCooldown:  7 * 24 * time.Hour,
			Weight:        0.9,
			Rarity:        0.4,
			MinLevel:      LevelHigh,
			MaxConcurrent: 1,
		},
		EventEconomicCollapse: {
			Source:             pressure.SourceEconomic,
			BaseSeverity:       SeverityCritical,
			BaseDuration:       7 * 24 * time.Hour,
			BaseCooldown:       10 * 24 * time.Hour,
			Weight:             1.1,
			Rarity:             0.5,
			MinLevel:           LevelHigh,
			MaxConcurrent:      1,
			CascadeTargets:     []EventType{EventSocialUnrest, EventPoliticalUpheaval},
			CascadeProbability: 0.4,
			CascadeDelay:       12 * time.Hour,
		},
		EventTradeDisruption: {
			Source:        pressure.SourceEconomic,
			BaseSeverity:  SeverityModerate,
			BaseDuration:  2 * 24 * time.Hour,
			BaseCooldown:  36 * time.Hour,
			Weight:        1.0,
			Rarity:        1.2,
			MinLevel:      LevelLow,
			MaxConcurrent: 2,
		},
		EventSocialUnrest: {
			Source:        pressure.SourceSocial,
			BaseSeverity:  SeverityModerate,
			BaseDuration:  2 * 24 * time.Hour,
			BaseCooldown:  48 * time.Hour,
			Weight:        1.0,
			Rarity:        1.3,
			MinLevel:      LevelLow,
			MaxConcurrent: 2,
		},
		EventMassMigration: {
			Source:        pressure.SourceSocial,
			BaseSeverity:  SeverityModerate,
			BaseDuration:  5 * 24 * time.Hour,
			BaseCooldown:  5 * 24 * time.Hour,
			Weight:        0.9,
			Rarity:        0.9,
			MinLevel:      LevelLow,
			MaxConcurrent: 1,
		},
		EventNaturalDisaster: {
			Source:             pressure.SourceEnvironmental,
			BaseSeverity:       SeverityMajor,
			BaseDuration:       4 * 24 * time.Hour,
			BaseCooldown:       6 * 24 * time.Hour,
			Weight:             1.0,
			Rarity:             0.7,
			MinLevel:           LevelModerate,
			MaxConcurrent:      2,
			CascadeTargets:     []EventType{EventFamine, EventPlague},
			CascadeProbability: 0.3,
			CascadeDelay:       24 * time.Hour,
		},
		EventFamine: {
			Source:        pressure.SourceEnvironmental,
			BaseSeverity:  SeverityMajor,
			BaseDuration:  14 * 24 * time.Hour,
			BaseCooldown:  14 * 24 * time.Hour,
			Weight:        0.8,
			Rarity:        0.6,
			MinLevel:      LevelModerate,
			MaxConcurrent: 1,
		},
		EventWar: {
			Source:             pressure.SourceDiplomatic,
			BaseSeverity:       SeverityCatastrophic,
			BaseDuration:       30 * 24 * time.Hour,
			BaseCooldown:       30 * 24 * time.Hour,
			Weight:             1.3,
			Rarity:             0.3,
			MinLevel:           LevelHigh,
			MaxConcurrent:      1,
			CascadeTargets:     []EventType{EventFamine, EventMassMigration},
			CascadeProbability: 0.5,
			CascadeDelay:       48 * time.Hour,
		},
		EventDiplomaticCrisis: {
			Source:        pressure.SourceDiplomatic,
			BaseSeverity:  SeverityModerate,
			BaseDuration:  3 * 24 * time.Hour,
			BaseCooldown:  72 * time.Hour,
			Weight:        1.0,
			Rarity:        1.1,
			MinLevel:      LevelLow,
			MaxConcurrent: 2,
		},
		EventPlague: {
			Source:           pressure.SourceEnvironmental,
			BaseSeverity:     SeverityCatastrophic,
			BaseDuration:     21 * 24 * time.Hour,
			BaseCooldown:     60 * 24 * time.Hour,
			Weight:           0.7,
			Rarity:           0.2,
			MinLevel:         LevelHigh,
			CatastrophicOnly: true,
			MaxConcurrent:    1,
		},
		EventRegimeCollapse: {
			Source:           pressure.SourcePolitical,
			BaseSeverity:     SeverityCatastrophic,
			BaseDuration:     10 * 24 * time.Hour,
			BaseCooldown:     45 * 24 * time.Hour,
			Weight:           0.8,
			Rarity:           0.25,
			MinLevel:         LevelCritical,
			CatastrophicOnly: true,
			MaxConcurrent:    1,
		},
		EventTemporalAnomaly: {
			Source:        pressure.SourceTemporal,
			BaseSeverity:  SeverityMajor,
			BaseDuration:  24 * time.Hour,
			BaseCooldown:  96 * time.Hour,
			Weight:        0.6,
			Rarity:        0.5,
			MinLevel:      LevelModerate,
			MaxConcurrent: 1,
		},
	}
	for t, tmpl := range templates {
		tmpl.Type = t
	}
	return templates
}
