package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"media-fetcher/internal/logging"
)

// FormatsRequest is the body of a format listing request
type FormatsRequest struct {
	URL string `json:"url"`
}

// ListFormats probes a media URL and returns the downloadable variants with
// estimated sizes. Failures to reach or parse the source are reported as a
// generic error; the tool's stderr stays in the server logs.
func (h *Handlers) ListFormats(w http.ResponseWriter, r *http.Request) {
	var req FormatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		writeJSONError(w, "url is required", http.StatusBadRequest)
		return
	}

	listing, err := h.catalog.List(r.Context(), req.URL)
	if err != nil {
		logging.Error("Format listing failed for %q: %v", req.URL, err)
		writeJSONError(w, "failed to retrieve media metadata", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, listing)
}
