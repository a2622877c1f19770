package scoring

import (
	"time"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// Result is the scorer output consumed by the trigger engine: a bounded
// chaos score, its discrete level, and the ranked candidate event types.
type Result struct {
	Score            float64
	Level            chaos.Level
	WeightedPressure float64
	TemporalFactor   float64
	TotalPressure    float64
	MitigationEffect float64
	Contributions    map[pressure.Source]float64
	Candidates       []chaos.EventType
	CalculatedAt     time.Time
}

// Contribution returns the fraction of total pressure attributed to one
// source, defaulting to 1.0 for sources with no mapping. The default keeps
// trigger probability neutral when a template has no pressure data.
func (r *Result) Contribution(src pressure.Source) float64 {
	if len(r.Contributions) == 0 {
		return 1.0
	}
	if c, ok := r.Contributions[src]; ok {
		return c
	}
	return 1.0
}

// EmptyResult is the guaranteed no-failure output for an empty pressure
// snapshot: score 0, lowest level, no candidates.
func EmptyResult(now time.Time) *Result {
	return &Result{
		Level:         chaos.LevelDormant,
		Contributions: make(map[pressure.Source]float64),
		CalculatedAt:  now,
	}
}
