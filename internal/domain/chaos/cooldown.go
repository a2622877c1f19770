package chaos

import "time"

// Cooldown gates retriggering of one event type, optionally per region.
// One entry per (type, region) pair, overwritten on each trigger.
type Cooldown struct {
	Type          EventType
	Region        string // empty means the global type-level gate
	LastTriggered time.Time
	Duration      time.Duration
}

// Active reports whether the gate is still closed. An entry is never
// treated as on cooldown once elapsed time >= duration.
func (c *Cooldown) Active(now time.Time) bool {
	return now.Sub(c.LastTriggered) < c.Duration
}

// Progress is the elapsed fraction in [0,1]; 1 means fully elapsed.
func (c *Cooldown) Progress(now time.Time) float64 {
	if c.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(c.LastTriggered)) / float64(c.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Remaining is the time left until the gate opens, never negative.
func (c *Cooldown) Remaining(now time.Time) time.Duration {
	rem := c.Duration - now.Sub(c.LastTriggered)
	if rem < 0 {
		return 0
	}
	return rem
}
