package scoring

import (
	"context"
	"time"

	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// Service is the chaos scorer: a pure function of the pressure snapshot,
// the active mitigations, and configuration.
type Service interface {
	Calculate(ctx context.Context, snap *pressure.Snapshot, factors []*mitigation.Factor) (*Result, error)
}

// Combiner composes stacked mitigation effectiveness. Implemented by the
// mitigation ledger.
type Combiner interface {
	CombinedEffectiveness(factors []*mitigation.Factor, now time.Time) float64
}
