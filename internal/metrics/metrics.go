package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_fetcher_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_fetcher_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_fetcher_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_fetcher_http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_fetcher_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_fetcher_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_fetcher_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Authentication metrics
var (
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_fetcher_auth_attempts_total",
			Help: "Total number of API key authentication attempts",
		},
		[]string{"status"}, // "success", "missing", "unknown", "error"
	)

	APIKeysTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_fetcher_api_keys",
			Help: "Number of API keys currently issued",
		},
	)
)

// Job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_fetcher_jobs_total",
			Help: "Total number of download jobs",
		},
		[]string{"outcome"}, // "completed", "failed", "canceled"
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_fetcher_job_duration_seconds",
			Help:    "Download job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_fetcher_jobs_in_progress",
			Help: "Number of download jobs currently in progress",
		},
	)

	JobStageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_fetcher_job_stage_errors_total",
			Help: "Total number of job failures by pipeline stage",
		},
		[]string{"stage"},
	)
)

// External tool metrics
var (
	ToolInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_fetcher_tool_invocations_total",
			Help: "Total number of external tool invocations",
		},
		[]string{"tool", "status"},
	)

	ToolInvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_fetcher_tool_invocation_duration_seconds",
			Help:    "External tool invocation duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"tool"},
	)
)

// Streaming metrics
var (
	StreamBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_fetcher_stream_bytes_total",
			Help: "Total number of bytes streamed to clients",
		},
	)

	StreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_fetcher_streams_total",
			Help: "Total number of response streams by terminal status",
		},
		[]string{"status"}, // "completed", "client_gone", "timeout", "error"
	)
)

// Workspace metrics
var (
	SweepRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_fetcher_workspace_sweep_runs_total",
			Help: "Total number of orphan scratch directory sweeps",
		},
	)

	SweepRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_fetcher_workspace_sweep_removed_total",
			Help: "Total number of orphan scratch directories removed",
		},
	)

	ScratchDirsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_fetcher_workspace_scratch_dirs",
			Help: "Number of scratch directories currently on disk",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_fetcher_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
