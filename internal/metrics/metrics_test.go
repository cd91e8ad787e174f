package metrics

import (
	"testing"
)

func TestHTTPMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"RateLimitedTotal", RateLimitedTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestDatabaseMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"DBQueryTotal", DBQueryTotal},
		{"DBQueryDuration", DBQueryDuration},
		{"DBConnectionsOpen", DBConnectionsOpen},
		{"AuthAttemptsTotal", AuthAttemptsTotal},
		{"APIKeysTotal", APIKeysTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestJobMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"JobsTotal", JobsTotal},
		{"JobDuration", JobDuration},
		{"JobsInProgress", JobsInProgress},
		{"JobStageErrors", JobStageErrors},
		{"ToolInvocationsTotal", ToolInvocationsTotal},
		{"ToolInvocationDuration", ToolInvocationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestStreamingMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"StreamBytesTotal", StreamBytesTotal},
		{"StreamsTotal", StreamsTotal},
		{"SweepRunsTotal", SweepRunsTotal},
		{"SweepRemovedTotal", SweepRemovedTotal},
		{"ScratchDirsActive", ScratchDirsActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestHTTPMetricTypes(t *testing.T) {
	t.Run("HTTPRequestsTotal is CounterVec", func(_ *testing.T) {
		// Try to increment it with labels to verify it's a CounterVec
		HTTPRequestsTotal.WithLabelValues("GET", "/test", "200").Add(0)
	})

	t.Run("HTTPRequestDuration is HistogramVec", func(_ *testing.T) {
		// Try to observe with labels to verify it's a HistogramVec
		HTTPRequestDuration.WithLabelValues("GET", "/test").Observe(0.1)
	})

	t.Run("HTTPRequestsInFlight is Gauge", func(_ *testing.T) {
		// Try to set it to verify it's a Gauge
		HTTPRequestsInFlight.Set(0)
	})
}

func TestJobMetricOperations(t *testing.T) {
	t.Run("JobsTotal with labels", func(_ *testing.T) {
		// Should not panic
		JobsTotal.WithLabelValues("completed").Add(0)
		JobsTotal.WithLabelValues("failed").Add(0)
	})

	t.Run("JobStageErrors with labels", func(_ *testing.T) {
		// Should not panic
		JobStageErrors.WithLabelValues("merge").Add(0)
	})

	t.Run("JobDuration observe", func(_ *testing.T) {
		// Should not panic
		JobDuration.Observe(12.5)
	})

	t.Run("JobsInProgress toggle", func(_ *testing.T) {
		// Should not panic
		JobsInProgress.Inc()
		JobsInProgress.Dec()
	})
}

func TestToolMetricOperations(t *testing.T) {
	t.Run("ToolInvocationsTotal with labels", func(_ *testing.T) {
		// Should not panic
		ToolInvocationsTotal.WithLabelValues("yt-dlp", "success").Add(0)
		ToolInvocationsTotal.WithLabelValues("ffmpeg", "error").Add(0)
	})

	t.Run("ToolInvocationDuration observe", func(_ *testing.T) {
		// Should not panic
		ToolInvocationDuration.WithLabelValues("ffmpeg").Observe(1.5)
	})
}

func TestStreamObserver(t *testing.T) {
	obs := NewStreamObserver()
	if obs == nil {
		t.Fatal("NewStreamObserver returned nil")
	}

	// Should not panic
	obs.ObserveBytes(1024)
	obs.ObserveOutcome("completed")
	obs.ObserveOutcome("client_gone")
}

func TestSetAppInfo(t *testing.T) {
	// Should not panic
	SetAppInfo("1.0.0", "abc123", "go1.25")
}

func TestInitializeMetrics(t *testing.T) {
	// Should not panic, and should be idempotent
	InitializeMetrics()
	InitializeMetrics()
}
