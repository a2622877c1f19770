package fixtures

import (
	"testing"
	"time"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// TemplateBuilder builds test event templates
type TemplateBuilder struct {
	t    *testing.T
	tmpl chaos.Template
}

// NewTemplateBuilder creates a new TemplateBuilder with defaults
func NewTemplateBuilder(t *testing.T) *TemplateBuilder {
	t.Helper()
	return &TemplateBuilder{
		t: t,
		tmpl: chaos.Template{
			Type:          chaos.EventSocialUnrest,
			Source:        pressure.SourceSocial,
			BaseSeverity:  chaos.SeverityModerate,
			BaseDuration:  24 * time.Hour,
			BaseCooldown:  48 * time.Hour,
			Weight:        1.0,
			Rarity:        1.0,
			MinLevel:      chaos.LevelLow,
			MaxConcurrent: 2,
		},
	}
}

// WithType sets the event type
func (b *TemplateBuilder) WithType(t chaos.EventType) *TemplateBuilder {
	b.tmpl.Type = t
	return b
}

// WithSource sets the driving pressure source
func (b *TemplateBuilder) WithSource(s pressure.Source) *TemplateBuilder {
	b.tmpl.Source = s
	return b
}

// WithWeight sets the mapping weight
func (b *TemplateBuilder) WithWeight(w float64) *TemplateBuilder {
	b.tmpl.Weight = w
	return b
}

// WithRarity sets the rarity multiplier
func (b *TemplateBuilder) WithRarity(r float64) *TemplateBuilder {
	b.tmpl.Rarity = r
	return b
}

// WithMinLevel sets the minimum chaos level
func (b *TemplateBuilder) WithMinLevel(l chaos.Level) *TemplateBuilder {
	b.tmpl.MinLevel = l
	return b
}

// WithCatastrophicOnly marks the template catastrophic-gated
func (b *TemplateBuilder) WithCatastrophicOnly() *TemplateBuilder {
	b.tmpl.CatastrophicOnly = true
	return b
}

// WithCooldown sets the base cooldown
func (b *TemplateBuilder) WithCooldown(d time.Duration) *TemplateBuilder {
	b.tmpl.BaseCooldown = d
	return b
}

// WithMaxConcurrent sets the per-type concurrency cap
func (b *TemplateBuilder) WithMaxConcurrent(n int) *TemplateBuilder {
	b.tmpl.MaxConcurrent = n
	return b
}

// WithCascade wires cascade targets onto the template
func (b *TemplateBuilder) WithCascade(prob float64, delay time.Duration, targets ...chaos.EventType) *TemplateBuilder {
	b.tmpl.CascadeTargets = targets
	b.tmpl.CascadeProbability = prob
	b.tmpl.CascadeDelay = delay
	return b
}

// Build creates the template
func (b *TemplateBuilder) Build() *chaos.Template {
	tmpl := b.tmpl
	return &tmpl
}

// SnapshotBuilder builds test pressure snapshots
type SnapshotBuilder struct {
	t    *testing.T
	snap pressure.Snapshot
}

// NewSnapshotBuilder creates a new SnapshotBuilder with defaults
func NewSnapshotBuilder(t *testing.T) *SnapshotBuilder {
	t.Helper()
	return &SnapshotBuilder{
		t: t,
		snap: pressure.Snapshot{
			Region:  pressure.GlobalRegion,
			Sources: map[pressure.Source]float64{},
			Taken:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		},
	}
}

// WithSource sets one source value
func (b *SnapshotBuilder) WithSource(s pressure.Source, v float64) *SnapshotBuilder {
	b.snap.Sources[s] = v
	return b
}

// WithWeightedAverage sets the precomputed weighted average
func (b *SnapshotBuilder) WithWeightedAverage(v float64) *SnapshotBuilder {
	b.snap.WeightedAverage = v
	return b
}

// WithTrend sets the trend slope
func (b *SnapshotBuilder) WithTrend(v float64) *SnapshotBuilder {
	b.snap.Trend = v
	return b
}

// WithVelocity sets the velocity
func (b *SnapshotBuilder) WithVelocity(v float64) *SnapshotBuilder {
	b.snap.Velocity = v
	return b
}

// WithTimeAboveCritical sets the sustained-critical duration
func (b *SnapshotBuilder) WithTimeAboveCritical(d time.Duration) *SnapshotBuilder {
	b.snap.TimeAboveCritical = d
	return b
}

// WithReadingCount sets the backing reading count
func (b *SnapshotBuilder) WithReadingCount(n int) *SnapshotBuilder {
	b.snap.ReadingCount = n
	return b
}

// Build creates the snapshot
func (b *SnapshotBuilder) Build() *pressure.Snapshot {
	snap := b.snap
	return &snap
}
