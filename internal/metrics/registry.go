package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds all domain-specific metrics for the simulation engine
type Registry struct {
	meter metric.Meter

	// Scoring Metrics
	ChaosScore       metric.Float64ObservableGauge
	ChaosLevel       metric.Int64ObservableGauge
	ScoringDuration  metric.Float64Histogram
	ScoringFailures  metric.Int64Counter
	LevelTransitions metric.Int64Counter

	// Pressure Metrics
	PressureReadings metric.Int64Counter
	RegionCount      metric.Int64ObservableGauge
	SourcePressure   metric.Float64Histogram

	// Event Metrics
	EventsTriggered  metric.Int64Counter
	EventsSuppressed metric.Int64Counter
	ActiveEvents     metric.Int64ObservableGauge
	CascadesFired    metric.Int64Counter
	PendingCascades  metric.Int64ObservableGauge

	// Mitigation Metrics
	MitigationsActive  metric.Int64ObservableGauge
	MitigationsExpired metric.Int64Counter

	// Tick Metrics
	TickDuration metric.Float64Histogram
	TickCounter  metric.Int64Counter

	// State for observable metrics
	mu              sync.RWMutex
	chaosScore      float64
	chaosLevel      int64
	regionCount     int64
	activeEvents    int64
	pendingCascades int64
	activeFactors   int64
}

// NewRegistry creates a new metrics registry with all domain metrics
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{meter: meter}

	if err := r.initScoringMetrics(); err != nil {
		return nil, err
	}

	if err := r.initPressureMetrics(); err != nil {
		return nil, err
	}

	if err := r.initEventMetrics(); err != nil {
		return nil, err
	}

	if err := r.initMitigationMetrics(); err != nil {
		return nil, err
	}

	if err := r.initTickMetrics(); err != nil {
		return nil, err
	}

	return r, nil
}

// initScoringMetrics initializes scoring metrics
func (r *Registry) initScoringMetrics() error {
	var err error

	r.ChaosScore, err = r.meter.Float64ObservableGauge(
		"worldchaos.score.current",
		metric.WithDescription("Current global chaos score"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.chaosScore)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.ChaosLevel, err = r.meter.Int64ObservableGauge(
		"worldchaos.score.level",
		metric.WithDescription("Current chaos level as an ordinal"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.chaosLevel)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.ScoringDuration, err = r.meter.Float64Histogram(
		"worldchaos.score.calculation_duration",
		metric.WithDescription("Score calculation duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 50, 100, 500),
	)
	if err != nil {
		return err
	}

	r.ScoringFailures, err = r.meter.Int64Counter(
		"worldchaos.score.failure_total",
		metric.WithDescription("Total score calculation failures"),
	)
	if err != nil {
		return err
	}

	r.LevelTransitions, err = r.meter.Int64Counter(
		"worldchaos.score.level_transition_total",
		metric.WithDescription("Total chaos level transitions"),
	)

	return err
}

// initPressureMetrics initializes pressure store metrics
func (r *Registry) initPressureMetrics() error {
	var err error

	r.PressureReadings, err = r.meter.Int64Counter(
		"worldchaos.pressure.reading_total",
		metric.WithDescription("Total pressure readings ingested"),
	)
	if err != nil {
		return err
	}

	r.RegionCount, err = r.meter.Int64ObservableGauge(
		"worldchaos.pressure.region_count",
		metric.WithDescription("Number of regions carrying pressure state"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.regionCount)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.SourcePressure, err = r.meter.Float64Histogram(
		"worldchaos.pressure.source_value",
		metric.WithDescription("Distribution of ingested pressure values"),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9),
	)

	return err
}

// initEventMetrics initializes trigger engine metrics
func (r *Registry) initEventMetrics() error {
	var err error

	r.EventsTriggered, err = r.meter.Int64Counter(
		"worldchaos.event.triggered_total",
		metric.WithDescription("Total chaos events fired"),
	)
	if err != nil {
		return err
	}

	r.EventsSuppressed, err = r.meter.Int64Counter(
		"worldchaos.event.suppressed_total",
		metric.WithDescription("Total candidate events suppressed by cooldowns or limits"),
	)
	if err != nil {
		return err
	}

	r.ActiveEvents, err = r.meter.Int64ObservableGauge(
		"worldchaos.event.active_total",
		metric.WithDescription("Number of currently active events"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.activeEvents)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.CascadesFired, err = r.meter.Int64Counter(
		"worldchaos.event.cascade_total",
		metric.WithDescription("Total cascade events fired"),
	)
	if err != nil {
		return err
	}

	r.PendingCascades, err = r.meter.Int64ObservableGauge(
		"worldchaos.event.cascade_pending",
		metric.WithDescription("Cascades waiting on their delay"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.pendingCascades)
			return nil
		}),
	)

	return err
}

// initMitigationMetrics initializes mitigation ledger metrics
func (r *Registry) initMitigationMetrics() error {
	var err error

	r.MitigationsActive, err = r.meter.Int64ObservableGauge(
		"worldchaos.mitigation.active_total",
		metric.WithDescription("Number of active mitigation factors"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.activeFactors)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.MitigationsExpired, err = r.meter.Int64Counter(
		"worldchaos.mitigation.expired_total",
		metric.WithDescription("Total mitigation factors removed by expiry"),
	)

	return err
}

// initTickMetrics initializes simulation loop metrics
func (r *Registry) initTickMetrics() error {
	var err error

	r.TickDuration, err = r.meter.Float64Histogram(
		"worldchaos.tick.duration",
		metric.WithDescription("Full tick duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.TickCounter, err = r.meter.Int64Counter(
		"worldchaos.tick.total",
		metric.WithDescription("Total simulation ticks executed"),
	)

	return err
}

// Helper methods for updating observable metric values

// SetRegionCount sets the region count
func (r *Registry) SetRegionCount(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regionCount = n
}

// SetPendingCascades sets the pending cascade count
func (r *Registry) SetPendingCascades(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingCascades = n
}

// SetActiveFactors sets the active mitigation factor count
func (r *Registry) SetActiveFactors(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeFactors = n
}

// Helper methods for recording metrics with common attribute patterns

// RecordTick records a completed simulation tick. Fired events are
// counted per-event by RecordEvent, not here.
func (r *Registry) RecordTick(ctx context.Context, score float64, level, active int64, dur time.Duration) {
	r.mu.Lock()
	r.chaosScore = score
	r.chaosLevel = level
	r.activeEvents = active
	r.mu.Unlock()

	r.TickDuration.Record(ctx, float64(dur.Milliseconds()))
	r.TickCounter.Add(ctx, 1)
}

// RecordReading records an ingested pressure reading
func (r *Registry) RecordReading(ctx context.Context, source string, value float64) {
	attrs := []attribute.KeyValue{
		attribute.String("source", source),
	}
	r.PressureReadings.Add(ctx, 1, metric.WithAttributes(attrs...))
	r.SourcePressure.Record(ctx, value, metric.WithAttributes(attrs...))
}

// RecordEvent records a fired event by type and origin
func (r *Registry) RecordEvent(ctx context.Context, eventType string, cascade bool) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
		attribute.Bool("cascade", cascade),
	}
	r.EventsTriggered.Add(ctx, 1, metric.WithAttributes(attrs...))
	if cascade {
		r.CascadesFired.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordSuppressed records a candidate blocked by a screen
func (r *Registry) RecordSuppressed(ctx context.Context, eventType, reason string) {
	r.EventsSuppressed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("reason", reason),
	))
}

// RecordScoring records a score calculation outcome
func (r *Registry) RecordScoring(ctx context.Context, dur time.Duration, failed bool) {
	r.ScoringDuration.Record(ctx, float64(dur.Microseconds())/1000.0)
	if failed {
		r.ScoringFailures.Add(ctx, 1)
	}
}

// RecordLevelTransition records a chaos level change
func (r *Registry) RecordLevelTransition(ctx context.Context, from, to string) {
	r.LevelTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordExpiredMitigations records mitigation factors removed by expiry
func (r *Registry) RecordExpiredMitigations(ctx context.Context, n int64) {
	if n > 0 {
		r.MitigationsExpired.Add(ctx, n)
	}
}
