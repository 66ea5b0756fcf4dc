package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the rain-stats ETL

var (
	// Weather API metrics
	WeatherCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rainball_weather_calls_total",
			Help: "Total number of Darksky API calls",
		},
		[]string{"status"},
	)

	WeatherCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rainball_weather_call_duration_seconds",
			Help:    "Duration of Darksky API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rainball_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rainball_cache_hits_total",
			Help: "Total number of weather cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rainball_cache_misses_total",
			Help: "Total number of weather cache misses",
		},
	)

	// Pipeline metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rainball_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rainball_pipeline_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	MatchesExtracted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rainball_matches_extracted",
			Help: "Number of matches extracted in the last run",
		},
	)

	TeamsAggregated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rainball_teams_aggregated",
			Help: "Number of team aggregates produced in the last run",
		},
	)

	DatesSkipped = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rainball_weather_dates_skipped",
			Help: "Number of dates skipped after weather failures in the last run",
		},
	)

	// Sink metrics
	SinkInsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rainball_sink_inserts_total",
			Help: "Total number of documents handled by the sink",
		},
		[]string{"status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rainball_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rainball_last_successful_run_timestamp",
			Help: "Timestamp of the last successful pipeline run",
		},
	)
)

// RecordWeatherCall records a Darksky call metric
func RecordWeatherCall(status string, duration float64) {
	WeatherCallsTotal.WithLabelValues(status).Inc()
	WeatherCallDuration.Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, status string) {
	DBQueriesTotal.WithLabelValues(operation, status).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordPipelineRun records a pipeline run
func RecordPipelineRun(status string, duration float64) {
	PipelineRunsTotal.WithLabelValues(status).Inc()
	PipelineDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordSinkInserts records sink insert outcomes
func RecordSinkInserts(inserted, failed int) {
	SinkInsertsTotal.WithLabelValues("success").Add(float64(inserted))
	SinkInsertsTotal.WithLabelValues("failure").Add(float64(failed))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateRunStats updates per-run gauges
func UpdateRunStats(matches, teams, skippedDates int) {
	MatchesExtracted.Set(float64(matches))
	TeamsAggregated.Set(float64(teams))
	DatesSkipped.Set(float64(skippedDates))
}
