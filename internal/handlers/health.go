package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-fetcher/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Job counts since startup
	ActiveJobs    int   `json:"activeJobs"`
	CompletedJobs int64 `json:"completedJobs"`
	FailedJobs    int64 `json:"failedJobs"`
	ScratchDirs   int   `json:"scratchDirs"`
	APIKeys       int   `json:"apiKeys"`

	// External tool versions, as detected at startup
	Tools map[string]string `json:"tools,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The key store is the
// only hard dependency, so an unreachable store degrades the status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:        statusHealthy,
		Version:       startup.Version,
		Uptime:        time.Since(h.started).Round(time.Second).String(),
		ActiveJobs:    h.pipeline.ActiveJobs(),
		CompletedJobs: h.pipeline.CompletedJobs(),
		FailedJobs:    h.pipeline.FailedJobs(),
		ScratchDirs:   h.ws.Count(),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutine:  runtime.NumGoroutine(),
	}

	if h.config != nil {
		response.Tools = map[string]string{
			"yt-dlp": h.config.Ytdlp.Version,
			"ffmpeg": h.config.FFmpeg.Version,
		}
	}

	code := http.StatusOK
	keys, err := h.db.CountAPIKeys(r.Context())
	if err != nil {
		response.Status = statusDegraded
		code = http.StatusServiceUnavailable
	} else {
		response.APIKeys = keys
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSONStatus(w, "alive")
	}
}

// ReadinessCheck returns 200 only when the service can serve requests,
// meaning the key store answers queries.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if _, err := h.db.CountAPIKeys(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSONStatus(w, "not_ready")
		return
	}

	w.WriteHeader(http.StatusOK)
	writeJSONStatus(w, "ready")
}
