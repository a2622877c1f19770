package chaos

import "github.com/sharronesofer/worldchaos/internal/domain/pressure"

// Severity orders the impact of an instantiated event.
type Severity int

const (
	SeverityMinor Severity = iota
	SeverityModerate
	SeverityMajor
	SeverityCritical
	SeverityCatastrophic
)

func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityModerate:
		return "moderate"
	case SeverityMajor:
		return "major"
	case SeverityCritical:
		return "critical"
	case SeverityCatastrophic:
		return "catastrophic"
	default:
		return "unknown"
	}
}

// ParseSeverity maps a config string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	for sev := SeverityMinor; sev <= SeverityCatastrophic; sev++ {
		if sev.String() == s {
			return sev, true
		}
	}
	return SeverityMinor, false
}

// SeverityFromScore maps a (noise-injected) chaos score to a severity via
// fixed breakpoints. SeverityCritical is reachable only through template
// base severities, matching the observed breakpoint table.
func SeverityFromScore(score float64) Severity {
	score = pressure.Clamp01(score)
	switch {
	case score < 0.3:
		return SeverityMinor
	case score < 0.5:
		return SeverityModerate
	case score < 0.8:
		return SeverityMajor
	default:
		return SeverityCatastrophic
	}
}

// DurationScale returns the multiplier applied to a template's base
// duration and cooldown for a given severity.
func (s Severity) DurationScale() float64 {
	switch s {
	case SeverityMinor:
		return 0.5
	case SeverityModerate:
		return 1.0
	case SeverityMajor:
		return 1.5
	case SeverityCritical:
		return 2.0
	case SeverityCatastrophic:
		return 3.0
	default:
		return 1.0
	}
}
