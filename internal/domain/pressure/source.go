package pressure

// Source is a category of world tension measured independently per region.
type Source string

const (
	SourceEconomic      Source = "economic"
	SourcePolitical     Source = "political"
	SourceSocial        Source = "social"
	SourceEnvironmental Source = "environmental"
	SourceDiplomatic    Source = "diplomatic"
	SourceTemporal      Source = "temporal"
)

// AllSources returns the closed set of pressure sources in a stable order.
func AllSources() []Source {
	return []Source{
		SourceEconomic,
		SourcePolitical,
		SourceSocial,
		SourceEnvironmental,
		SourceDiplomatic,
		SourceTemporal,
	}
}

// ParseSource maps a string to a known Source.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceEconomic, SourcePolitical, SourceSocial,
		SourceEnvironmental, SourceDiplomatic, SourceTemporal:
		return Source(s), true
	default:
		return "", false
	}
}

func (s Source) String() string {
	return string(s)
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	_, ok := ParseSource(string(s))
	return ok
}
