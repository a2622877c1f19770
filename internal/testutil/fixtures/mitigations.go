package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// FactorBuilder builds test mitigation factors
type FactorBuilder struct {
	t            *testing.T
	id           uuid.UUID
	factorType   mitigation.Type
	sourceEntity string
	base         float64
	decayRate    float64
	createdAt    time.Time
	expiresAt    *time.Time
	region       string
	scope        []pressure.Source
}

// NewFactorBuilder creates a new FactorBuilder with defaults
func NewFactorBuilder(t *testing.T) *FactorBuilder {
	t.Helper()
	return &FactorBuilder{
		t:            t,
		id:           uuid.New(),
		factorType:   mitigation.TypeDiplomaticTreaty,
		sourceEntity: "kingdom_of_veyra",
		base:         0.5,
		decayRate:    0.05,
		createdAt:    time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

// WithType sets the factor type
func (b *FactorBuilder) WithType(t mitigation.Type) *FactorBuilder {
	b.factorType = t
	return b
}

// WithSourceEntity sets the originating entity
func (b *FactorBuilder) WithSourceEntity(entity string) *FactorBuilder {
	b.sourceEntity = entity
	return b
}

// WithBase sets the initial effectiveness
func (b *FactorBuilder) WithBase(base float64) *FactorBuilder {
	b.base = base
	return b
}

// WithDecayRate sets the hourly decay constant
func (b *FactorBuilder) WithDecayRate(rate float64) *FactorBuilder {
	b.decayRate = rate
	return b
}

// WithCreatedAt sets the creation time
func (b *FactorBuilder) WithCreatedAt(at time.Time) *FactorBuilder {
	b.createdAt = at
	return b
}

// WithExpiry sets an absolute expiry
func (b *FactorBuilder) WithExpiry(at time.Time) *FactorBuilder {
	b.expiresAt = &at
	return b
}

// WithRegion scopes the factor to one region
func (b *FactorBuilder) WithRegion(region string) *FactorBuilder {
	b.region = region
	return b
}

// WithScope restricts the factor to specific sources
func (b *FactorBuilder) WithScope(sources ...pressure.Source) *FactorBuilder {
	b.scope = sources
	return b
}

// Build creates the factor
func (b *FactorBuilder) Build() *mitigation.Factor {
	return &mitigation.Factor{
		ID:           b.id,
		Type:         b.factorType,
		SourceEntity: b.sourceEntity,
		Base:         pressure.Clamp01(b.base),
		DecayRate:    b.decayRate,
		CreatedAt:    b.createdAt,
		ExpiresAt:    b.expiresAt,
		Region:       b.region,
		Scope:        b.scope,
	}
}
