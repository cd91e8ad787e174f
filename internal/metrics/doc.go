// Package metrics provides Prometheus instrumentation for the media fetcher service.
//
// This package defines and exposes various metrics that can be scraped by Prometheus
// to monitor the health, performance, and behavior of the service. All metrics
// are prefixed with "media_fetcher_" to avoid naming collisions with other applications.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track HTTP request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//   - RateLimitedTotal: Counter of requests rejected by the rate limiter
//
// ## Database Metrics
//
// Monitor API key store performance:
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBConnectionsOpen: Gauge of open database connections
//
// ## Authentication Metrics
//
// Track API key authentication activity:
//   - AuthAttemptsTotal: Counter by outcome (success/missing/unknown/error)
//   - APIKeysTotal: Gauge of issued API keys
//
// ## Job Metrics
//
// Monitor download job execution:
//   - JobsTotal: Counter by outcome (completed/failed/canceled)
//   - JobDuration: Histogram of end-to-end job duration
//   - JobsInProgress: Gauge of active jobs
//   - JobStageErrors: Counter of failures by pipeline stage
//
// ## External Tool Metrics
//
// Monitor yt-dlp and ffmpeg invocations:
//   - ToolInvocationsTotal: Counter by tool and status
//   - ToolInvocationDuration: Histogram of invocation duration by tool
//
// ## Streaming Metrics
//
// Monitor response delivery:
//   - StreamBytesTotal: Counter of bytes streamed to clients
//   - StreamsTotal: Counter of streams by terminal status
//
// ## Workspace Metrics
//
// Monitor scratch directory hygiene:
//   - SweepRunsTotal: Counter of orphan sweeps
//   - SweepRemovedTotal: Counter of orphan directories removed
//   - ScratchDirsActive: Gauge of scratch directories on disk
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. To expose them, mount the promhttp.Handler() on your
// metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// To record metrics from other packages, import this package and use the
// exported metric variables:
//
//	metrics.JobsTotal.WithLabelValues("completed").Inc()
//	metrics.ToolInvocationDuration.WithLabelValues("yt-dlp").Observe(3.2)
//
// # Collector
//
// The package provides a [Collector] type that periodically gathers
// statistics from a [StatsProvider] and updates the corresponding gauges.
// This is useful for gauges whose source of truth lives elsewhere, like the
// key count in the database or the number of scratch directories on disk:
//
//	collector := metrics.NewCollector(statsProvider, 1*time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Example PromQL queries for common use cases:
//
// Request rate by endpoint:
//
//	sum(rate(media_fetcher_http_requests_total[5m])) by (path)
//
// Job failure rate by stage:
//
//	sum(rate(media_fetcher_job_stage_errors_total[5m])) by (stage)
//
// P95 yt-dlp invocation time:
//
//	histogram_quantile(0.95, sum(rate(media_fetcher_tool_invocation_duration_seconds_bucket{tool="yt-dlp"}[5m])) by (le))
//
// Egress bandwidth:
//
//	rate(media_fetcher_stream_bytes_total[5m])
package metrics
