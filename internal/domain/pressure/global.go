package pressure

import "time"

// GlobalHistorySize bounds the global pressure history buffer.
const GlobalHistorySize = 100

// Sample is one entry in the global pressure history.
type Sample struct {
	Score     float64
	Timestamp time.Time
}

// Global aggregates regional pressure across all regions into one weighted
// score plus a bounded history buffer used for trend calculation. One
// instance per simulation, owned by the pressure store.
type Global struct {
	score   float64
	sources map[Source]float64
	history []Sample
}

// NewGlobal creates an empty global pressure record.
func NewGlobal() *Global {
	return &Global{sources: make(map[Source]float64)}
}

// Update replaces the aggregated view and appends to the history buffer,
// evicting the oldest entry beyond GlobalHistorySize.
func (g *Global) Update(score float64, sources map[Source]float64, now time.Time) {
	g.score = Clamp01(score)
	g.sources = make(map[Source]float64, len(sources))
	for s, v := range sources {
		g.sources[s] = Clamp01(v)
	}
	g.history = append(g.history, Sample{Score: g.score, Timestamp: now})
	if len(g.history) > GlobalHistorySize {
		g.history = g.history[len(g.history)-GlobalHistorySize:]
	}
}

// Score returns the scalar view of global pressure.
func (g *Global) Score() float64 {
	return g.score
}

// Sources returns the structured per-source view of global pressure.
func (g *Global) Sources() map[Source]float64 {
	out := make(map[Source]float64, len(g.sources))
	for s, v := range g.sources {
		out[s] = v
	}
	return out
}

// History returns a copy of the bounded score history, oldest first.
func (g *Global) History() []Sample {
	out := make([]Sample, len(g.history))
	copy(out, g.history)
	return out
}

// Trend returns the linear-regression slope (score per hour) over the
// retained history. Fewer than 2 samples yields 0.
func (g *Global) Trend() float64 {
	if len(g.history) < 2 {
		return 0
	}
	t0 := g.history[0].Timestamp
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range g.history {
		x := s.Timestamp.Sub(t0).Hours()
		sumX += x
		sumY += s.Score
		sumXY += x * s.Score
		sumXX += x * x
	}
	fn := float64(len(g.history))
	den := fn*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / den
}

// Velocity is the change between the last two samples normalized to a
// per-hour rate.
func (g *Global) Velocity() float64 {
	if len(g.history) < 2 {
		return 0
	}
	last := g.history[len(g.history)-1]
	prev := g.history[len(g.history)-2]
	hours := last.Timestamp.Sub(prev.Timestamp).Hours()
	if hours <= 0 {
		return 0
	}
	return (last.Score - prev.Score) / hours
}
