package pressure

import "time"

// GlobalRegion is the pseudo-region name for the aggregated snapshot.
const GlobalRegion = "global"

// Snapshot is an immutable aggregated view of one region (or the global
// aggregate) at a point in time.
type Snapshot struct {
	Region            string
	Sources           map[Source]float64
	WeightedAverage   float64
	Trend             float64
	Velocity          float64
	TimeAboveCritical time.Duration
	ReadingCount      int
	Taken             time.Time
}

// EmptySnapshot is the all-zero view returned for unknown or empty regions.
func EmptySnapshot(region string, now time.Time) *Snapshot {
	return &Snapshot{
		Region:  region,
		Sources: make(map[Source]float64),
		Taken:   now,
	}
}

// Empty reports whether the snapshot carries no source values.
func (s *Snapshot) Empty() bool {
	return len(s.Sources) == 0
}

// Value returns the snapshot value for one source, zero if absent.
func (s *Snapshot) Value(src Source) float64 {
	return s.Sources[src]
}
