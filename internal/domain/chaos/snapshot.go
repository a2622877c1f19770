package chaos

import (
	"time"

	"github.com/sharronesofer/worldchaos/internal/domain/mitigation"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
)

// Snapshot is the export view of the aggregate for persistence and
// telemetry. The wire format is owned by the consumer.
type Snapshot struct {
	Taken          time.Time                   `json:"taken"`
	Score          float64                     `json:"score"`
	Level          string                      `json:"level"`
	PreviousLevel  string                      `json:"previous_level"`
	Trend          float64                     `json:"trend"`
	Velocity       float64                     `json:"velocity"`
	Momentum       float64                     `json:"momentum"`
	Contributions  map[pressure.Source]float64 `json:"contributions"`
	RegionalScores map[string]float64          `json:"regional_scores"`
	Mitigations    []mitigation.Summary        `json:"mitigations,omitempty"`
	ActiveEvents   []Event                     `json:"active_events,omitempty"`
	EventHistory   []EventRecord               `json:"event_history,omitempty"`
	ScoreHistory   []ScoreSample               `json:"score_history,omitempty"`
	Risk           map[EventType]float64       `json:"risk"`
	DailyEvents    int                         `json:"daily_events"`
}

// Snapshot copies the aggregate under the read lock.
func (s *State) Snapshot(now time.Time) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Taken:          now,
		Score:          s.currentScore,
		Level:          s.currentLevel.String(),
		PreviousLevel:  s.previousLevel.String(),
		Trend:          s.trend,
		Velocity:       s.velocity,
		Momentum:       s.momentum,
		Contributions:  make(map[pressure.Source]float64, len(s.contributions)),
		RegionalScores: make(map[string]float64, len(s.regionalScores)),
		Risk:           make(map[EventType]float64, len(s.risk)),
		DailyEvents:    s.dailyEventCount,
	}
	for src, v := range s.contributions {
		snap.Contributions[src] = v
	}
	for r, v := range s.regionalScores {
		snap.RegionalScores[r] = v
	}
	for t, r := range s.risk {
		snap.Risk[t] = r
	}
	snap.Mitigations = append(snap.Mitigations, s.mitigations...)
	for _, e := range s.activeEvents {
		snap.ActiveEvents = append(snap.ActiveEvents, *e)
	}
	snap.EventHistory = append(snap.EventHistory, s.eventHistory...)
	snap.ScoreHistory = append(snap.ScoreHistory, s.scoreHistory...)
	return snap
}
