package chaos

import (
	"sort"

	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// Level is the discrete severity classification of the chaos score.
type Level int

const (
	LevelDormant Level = iota
	LevelStable
	LevelLow
	LevelModerate
	LevelHigh
	LevelCritical
	LevelCatastrophic
)

func (l Level) String() string {
	switch l {
	case LevelDormant:
		return "dormant"
	case LevelStable:
		return "stable"
	case LevelLow:
		return "low"
	case LevelModerate:
		return "moderate"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	case LevelCatastrophic:
		return "catastrophic"
	default:
		return "unknown"
	}
}

// ParseLevel maps a config string to a Level.
func ParseLevel(s string) (Level, bool) {
	for l := LevelDormant; l <= LevelCatastrophic; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return LevelDormant, false
}

// LevelThreshold is one row of the classification table: scores at or above
// Min classify as at least Level.
type LevelThreshold struct {
	Level Level
	Min   float64
}

// Thresholds is the ordered classification table. Build with NewThresholds
// so classification is monotonic regardless of input order.
type Thresholds struct {
	rows []LevelThreshold
}

// NewThresholds sorts the rows by minimum score ascending. A higher score
// can never classify to a lower level.
func NewThresholds(rows []LevelThreshold) Thresholds {
	sorted := make([]LevelThreshold, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })
	return Thresholds{rows: sorted}
}

// DefaultThresholds matches the documented table: >=0.3 low, >=0.6
// moderate, >=0.8 high, with the upper tiers above that.
func DefaultThresholds() Thresholds {
	return NewThresholds([]LevelThreshold{
		{Level: LevelDormant, Min: 0.0},
		{Level: LevelStable, Min: 0.05},
		{Level: LevelLow, Min: 0.3},
		{Level: LevelModerate, Min: 0.6},
		{Level: LevelHigh, Min: 0.8},
		{Level: LevelCritical, Min: 0.9},
		{Level: LevelCatastrophic, Min: 0.97},
	})
}

// Classify returns the highest level whose minimum the score meets. The
// set of satisfied rows only grows with the score, so classification is
// monotonic even for a misordered table.
func (t Thresholds) Classify(score float64) Level {
	score = pressure.Clamp01(score)
	level := LevelDormant
	for _, row := range t.rows {
		if score >= row.Min && row.Level > level {
			level = row.Level
		}
	}
	return level
}
