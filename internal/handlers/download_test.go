package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func postDownload(t *testing.T, env *testEnv, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/download", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.h.Download(w, req)
	return w
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t)

	w := postDownload(t, env, `{"url":"https://example.com/watch?v=abc"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", ct)
	}

	if cl := w.Header().Get("Content-Length"); cl != strconv.Itoa(len(mergedContent)) {
		t.Errorf("Content-Length = %q, want %d", cl, len(mergedContent))
	}

	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `filename="Sample Video.mp4"`) {
		t.Errorf("Content-Disposition = %q, want ASCII filename", cd)
	}
	if !strings.Contains(cd, `filename*=UTF-8''Sample%20Video.mp4`) {
		t.Errorf("Content-Disposition = %q, want extended filename", cd)
	}

	if w.Body.String() != mergedContent {
		t.Errorf("Body = %q, want merged file content", w.Body.String())
	}

	requireEmptyScratch(t, env.ws)
}

func TestDownloadPassesSelection(t *testing.T) {
	env := newTestEnv(t)

	w := postDownload(t, env, `{"url":"u","format_id":"137","audio_format":"libopus"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	if env.media.lastFormatID != "137" {
		t.Errorf("Requested format = %q, want 137", env.media.lastFormatID)
	}

	if env.merger.opts.AudioCodec != "libopus" {
		t.Errorf("Audio codec = %q, want libopus", env.merger.opts.AudioCodec)
	}
}

func TestDownloadInvalidBody(t *testing.T) {
	env := newTestEnv(t)

	w := postDownload(t, env, `{broken`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", w.Code)
	}
}

func TestDownloadMissingURL(t *testing.T) {
	env := newTestEnv(t)

	w := postDownload(t, env, `{"format_id":"137"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", w.Code)
	}

	if !strings.Contains(w.Body.String(), "url is required") {
		t.Errorf("Body = %q, want missing url error", w.Body.String())
	}

	if env.media.probeCalls != 0 {
		t.Errorf("Probe ran %d times for a rejected request, want 0", env.media.probeCalls)
	}

	requireEmptyScratch(t, env.ws)
}

func TestDownloadMetadataFailure(t *testing.T) {
	env := newTestEnv(t)
	env.media.probeErr = errors.New("unsupported url")

	w := postDownload(t, env, `{"url":"https://example.com/nope"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", w.Code)
	}

	if !strings.Contains(w.Body.String(), "failed to retrieve media metadata") {
		t.Errorf("Body = %q, want metadata error", w.Body.String())
	}

	requireEmptyScratch(t, env.ws)
}

func TestDownloadFetchFailure(t *testing.T) {
	env := newTestEnv(t)
	env.media.videoErr = errors.New("403 forbidden")

	w := postDownload(t, env, `{"url":"u"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", w.Code)
	}

	if !strings.Contains(w.Body.String(), "failed to fetch media streams") {
		t.Errorf("Body = %q, want fetch error", w.Body.String())
	}
}

func TestDownloadMergeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.merger.err = errors.New("invalid data found")

	w := postDownload(t, env, `{"url":"u"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", w.Code)
	}

	if !strings.Contains(w.Body.String(), "failed to merge streams") {
		t.Errorf("Body = %q, want merge error", w.Body.String())
	}

	// The failed job must leave nothing behind
	requireEmptyScratch(t, env.ws)
}

// failingResponseWriter accepts headers but fails every body write, the way
// a closed client connection does.
type failingResponseWriter struct {
	header   http.Header
	statuses []int
}

func (f *failingResponseWriter) Header() http.Header {
	if f.header == nil {
		f.header = make(http.Header)
	}
	return f.header
}

func (f *failingResponseWriter) WriteHeader(code int) {
	f.statuses = append(f.statuses, code)
}

func (f *failingResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestDownloadFailureAfterHeaders(t *testing.T) {
	env := newTestEnv(t)

	w := &failingResponseWriter{}
	req := httptest.NewRequest("POST", "/v1/download", strings.NewReader(`{"url":"u"}`))

	env.h.Download(w, req)

	// The 200 was already committed when streaming began; no error status
	// may follow it.
	if len(w.statuses) != 1 || w.statuses[0] != http.StatusOK {
		t.Errorf("Status writes = %v, want exactly one 200", w.statuses)
	}

	requireEmptyScratch(t, env.ws)
}

func TestDownloadRejectedWithoutKey(t *testing.T) {
	env := newTestEnv(t)
	handler := env.h.RequireAPIKey(http.HandlerFunc(env.h.Download))

	req := httptest.NewRequest("POST", "/v1/download", strings.NewReader(`{"url":"u"}`))
	req.Header.Set("Authorization", "Bearer "+strings.Repeat("cd", 32))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", w.Code)
	}

	// A rejected request must not touch the pipeline or the scratch space
	if env.media.probeCalls != 0 {
		t.Errorf("Probe ran %d times, want 0", env.media.probeCalls)
	}
	requireEmptyScratch(t, env.ws)
}
