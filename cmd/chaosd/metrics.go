package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
)

// Prometheus surface for the chaos engine daemon. The OTLP pipeline carries
// the same signals; this endpoint exists for scrape-based setups.

var (
	chaosScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "worldchaos",
			Subsystem: "score",
			Name:      "current",
			Help:      "Current global chaos score",
		},
	)

	chaosLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "worldchaos",
			Subsystem: "score",
			Name:      "level",
			Help:      "Current chaos level as an ordinal",
		},
	)

	chaosMomentum = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "worldchaos",
			Subsystem: "score",
			Name:      "momentum",
			Help:      "Smoothed chaos score momentum",
		},
	)

	regionalScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "worldchaos",
			Subsystem: "pressure",
			Name:      "regional_score",
			Help:      "Weighted-average pressure per region",
		},
		[]string{"region"},
	)

	sourceContribution = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "worldchaos",
			Subsystem: "pressure",
			Name:      "source_contribution",
			Help:      "Per-source contribution to the chaos score",
		},
		[]string{"source"},
	)

	activeEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "worldchaos",
			Subsystem: "event",
			Name:      "active_total",
			Help:      "Number of currently active chaos events",
		},
	)

	dailyEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "worldchaos",
			Subsystem: "event",
			Name:      "daily_total",
			Help:      "Events triggered since the last daily rollover",
		},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "worldchaos",
			Subsystem: "event",
			Name:      "published_total",
			Help:      "Total events delivered to the narrative sink",
		},
		[]string{"type", "severity"},
	)

	eventRisk = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "worldchaos",
			Subsystem: "event",
			Name:      "risk",
			Help:      "Current per-type trigger risk",
		},
		[]string{"type"},
	)

	mitigationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "worldchaos",
			Subsystem: "mitigation",
			Name:      "active_total",
			Help:      "Number of active mitigation factors",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "worldchaos",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "handler", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "worldchaos",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "handler"},
	)
)

// MetricsHandler returns the Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// publishSnapshot pushes an engine snapshot into the Prometheus gauges.
func publishSnapshot(snap *chaos.Snapshot) {
	chaosScore.Set(snap.Score)
	if level, ok := chaos.ParseLevel(snap.Level); ok {
		chaosLevel.Set(float64(level))
	}
	chaosMomentum.Set(snap.Momentum)
	activeEvents.Set(float64(len(snap.ActiveEvents)))
	dailyEvents.Set(float64(snap.DailyEvents))
	mitigationsActive.Set(float64(len(snap.Mitigations)))

	for region, score := range snap.RegionalScores {
		regionalScore.WithLabelValues(region).Set(score)
	}
	for source, v := range snap.Contributions {
		sourceContribution.WithLabelValues(string(source)).Set(v)
	}
	for t, risk := range snap.Risk {
		eventRisk.WithLabelValues(string(t)).Set(risk)
	}
}

// recordPublished counts an event delivered to the sink.
func recordPublished(e *chaos.Event) {
	eventsPublished.WithLabelValues(string(e.Type), e.Severity.String()).Inc()
}

// InstrumentHTTPHandler wraps an HTTP handler with metrics collection
func InstrumentHTTPHandler(handlerName string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		handler(wrapped, r)

		duration := time.Since(start).Seconds()
		status := statusCodeClass(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, handlerName, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, handlerName).Observe(duration)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// statusCodeClass returns the status code class (2xx, 3xx, 4xx, 5xx)
func statusCodeClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
