// Package telemetry exposes Prometheus instrumentation for the analyzer.
// Collectors are registered once at package init; the HTTP handler is only
// served in watch mode.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	eventsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartenergy_analyzer_events_loaded_total",
			Help: "Number of events loaded by input format",
		},
		[]string{"format"},
	)

	recordsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartenergy_analyzer_records_skipped_total",
			Help: "Number of malformed input records skipped",
		},
		[]string{"reason"},
	)

	alertsRaised = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartenergy_analyzer_alerts_total",
			Help: "Number of alerts raised per policy",
		},
		[]string{"policy"},
	)

	incidentsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartenergy_analyzer_incidents_total",
			Help: "Number of incidents built per policy and severity",
		},
		[]string{"policy", "severity"},
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smartenergy_analyzer_cycle_duration_seconds",
			Help:    "Duration of one full detect-correlate-metrics cycle",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)

	watchIterations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "smartenergy_analyzer_watch_iterations_total",
			Help: "Number of completed watch-mode analysis iterations",
		},
	)
)

func init() {
	prometheus.MustRegister(
		eventsLoaded,
		recordsSkipped,
		alertsRaised,
		incidentsBuilt,
		cycleDuration,
		watchIterations,
	)
}

// CountEventsLoaded records n events loaded from the given input format.
func CountEventsLoaded(format string, n int) {
	eventsLoaded.WithLabelValues(format).Add(float64(n))
}

// CountRecordSkipped records one skipped malformed input record.
func CountRecordSkipped(reason string) {
	recordsSkipped.WithLabelValues(reason).Inc()
}

// CountAlerts records alerts raised for a policy.
func CountAlerts(policy string, n int) {
	alertsRaised.WithLabelValues(policy).Add(float64(n))
}

// CountIncident records one incident built for a policy.
func CountIncident(policy, severity string) {
	incidentsBuilt.WithLabelValues(policy, severity).Inc()
}

// ObserveCycle records the duration of one analysis cycle in seconds.
func ObserveCycle(seconds float64) {
	cycleDuration.Observe(seconds)
}

// CountWatchIteration records one completed watch iteration.
func CountWatchIteration() {
	watchIterations.Inc()
}

// Handler returns the Prometheus scrape handler for watch mode.
func Handler() http.Handler {
	return promhttp.Handler()
}
