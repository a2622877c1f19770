package trigger

import (
	"context"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
	"github.com/sharronesofer/worldchaos/internal/service/scoring"
)

// Service is the event trigger engine: it turns scorer output into fired
// chaos events under cooldowns, concurrency caps, and rate limits, and
// schedules cascading secondary events.
type Service interface {
	// Evaluate runs one trigger pass. Rate-limit misses and empty results
	// are normal "no trigger" outcomes, never errors. The context also
	// bounds the lifetime of any cascade scheduled by this pass.
	Evaluate(ctx context.Context, result *scoring.Result, snap *pressure.Snapshot) ([]*chaos.Event, error)
	// PendingCascades reports cascades waiting on their delay.
	PendingCascades() int
}

// EventSink receives fired events for delivery to the narrative layer.
// Delivery and retry semantics belong to the sink.
type EventSink interface {
	Publish(ctx context.Context, event *chaos.Event) error
}

// RNG is the injectable randomness source. Severity, region selection, and
// cascade rolls each consume independent draws; tests supply a scripted
// sequence for determinism.
type RNG interface {
	Float64() float64
}
