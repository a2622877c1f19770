package monitor

import (
	"context"

	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// Service is the pressure store: it ingests readings from external
// collaborators, applies decay and mitigation, and produces aggregated
// snapshots for the scorer.
type Service interface {
	// Record validates and appends a reading to its region, clamping
	// out-of-range values rather than rejecting them.
	Record(ctx context.Context, r *pressure.Reading)
	// UpdateSources is the batch ingress: one value per source for a region.
	UpdateSources(ctx context.Context, region string, values map[pressure.Source]float64)
	// Decay multiplies every current source value of a region by
	// (1 - decayRate). Called once per tick.
	Decay(ctx context.Context, region string)
	// DecayAll decays every known region.
	DecayAll(ctx context.Context)
	// ApplyMitigations suppresses pressure for every factor whose region
	// and source scope match. Factors compose multiplicatively per source.
	ApplyMitigations(ctx context.Context, region string, factors []*mitigation.Factor)
	// ApplyMitigationsAll applies the factors against every known region.
	ApplyMitigationsAll(ctx context.Context, factors []*mitigation.Factor)
	// Snapshot returns the immutable aggregated view of one region.
	// Unknown or empty regions yield an all-zero snapshot.
	Snapshot(ctx context.Context, region string) *pressure.Snapshot
	// GlobalSnapshot aggregates all regions into the global view and
	// advances the global pressure history.
	GlobalSnapshot(ctx context.Context) *pressure.Snapshot
	// Regions lists known region identifiers.
	Regions(ctx context.Context) []string
	// RegionalScores returns each region's weighted-average pressure.
	RegionalScores(ctx context.Context) map[string]float64
}
