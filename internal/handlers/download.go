package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"media-fetcher/internal/pipeline"
)

// DownloadRequest is the body of a download request
type DownloadRequest struct {
	URL          string `json:"url"`
	FormatID     string `json:"format_id"`
	AudioFormat  string `json:"audio_format"`
	AudioBitrate string `json:"audio_bitrate"`
}

// Download runs the full fetch/merge pipeline and streams the merged file
// back as an attachment. Errors before the first response byte produce a
// JSON body; once streaming has begun the HTTP framing is spent, so a
// failure can only terminate the connection.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		writeJSONError(w, "url is required", http.StatusBadRequest)
		return
	}

	stageErr := h.pipeline.Download(r.Context(), w, pipeline.Request{
		URL:          req.URL,
		FormatID:     req.FormatID,
		AudioCodec:   req.AudioFormat,
		AudioBitrate: req.AudioBitrate,
	})
	if stageErr == nil {
		return
	}

	// The pipeline already logged and recorded the failure; all that is
	// left here is the client-facing translation.
	if stageErr.ResponseStarted {
		return
	}

	writeJSONError(w, stageMessage(stageErr.Stage), http.StatusInternalServerError)
}

// stageMessage maps a failed pipeline stage to a client-safe message.
// Tool output and filesystem paths never appear here.
func stageMessage(stage string) string {
	switch stage {
	case pipeline.StageMetadata:
		return "failed to retrieve media metadata"
	case pipeline.StageVideo, pipeline.StageAudio:
		return "failed to fetch media streams"
	case pipeline.StageMerge:
		return "failed to merge streams"
	default:
		return "internal error"
	}
}
