package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "create_api_key", "lookup_api_key",
		"list_api_keys", "count_api_keys", "delete_api_key"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	// --- Authentication outcomes ---
	for _, status := range []string{"success", "missing", "unknown", "error"} {
		AuthAttemptsTotal.WithLabelValues(status)
	}

	// --- Job outcomes and stages ---
	for _, outcome := range []string{"completed", "failed", "canceled"} {
		JobsTotal.WithLabelValues(outcome)
	}
	for _, stage := range []string{"workspace", "metadata", "video", "audio", "merge", "stream"} {
		JobStageErrors.WithLabelValues(stage)
	}

	// --- External tools ---
	for _, tool := range []string{"yt-dlp", "ffmpeg"} {
		for _, status := range []string{"success", "error", "canceled"} {
			ToolInvocationsTotal.WithLabelValues(tool, status)
		}
		ToolInvocationDuration.WithLabelValues(tool)
	}

	// --- Stream terminal statuses ---
	for _, status := range []string{"completed", "client_gone", "timeout", "error"} {
		StreamsTotal.WithLabelValues(status)
	}
}
