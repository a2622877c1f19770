package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
)

// Service tracks active mitigation factors, their time-based effectiveness
// decay, and the diminishing-returns composition of stacked factors.
type Service interface {
	// Add registers a factor in the active set.
	Add(ctx context.Context, f *mitigation.Factor) error
	// Remove drops a factor by ID.
	Remove(ctx context.Context, id uuid.UUID) error
	// Active returns the factors currently in the active set.
	Active(ctx context.Context) []*mitigation.Factor
	// EffectivenessAt evaluates one factor's decayed effectiveness at now.
	EffectivenessAt(f *mitigation.Factor, now time.Time) float64
	// CombinedEffectiveness composes the factors with diminishing returns,
	// clamped to the configured ceiling.
	CombinedEffectiveness(factors []*mitigation.Factor, now time.Time) float64
	// ExpireSweep moves factors past expiry out of the active set and
	// returns the removed list for auditing.
	ExpireSweep(ctx context.Context, now time.Time) []*mitigation.Factor
	// Summaries exports compact summaries of the active set.
	Summaries(ctx context.Context, now time.Time) []mitigation.Summary
}
