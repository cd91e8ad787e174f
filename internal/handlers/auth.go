package handlers

import (
	"errors"
	"net/http"
	"strings"

	"media-fetcher/internal/database"
	"media-fetcher/internal/logging"
	"media-fetcher/internal/metrics"
)

const bearerPrefix = "Bearer "

// extractAPIKey pulls the key out of the Authorization header. Anything that
// is not a Bearer credential is treated as absent.
func extractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(bearerPrefix):])
}

// keyPrefix returns the first few characters of a presented key for log
// lines. The full key never reaches the logs.
func keyPrefix(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

// RequireAPIKey protects routes that require an issued API key. Clients
// present the key as "Authorization: Bearer <key>". A missing credential is
// distinguished from an unknown one so that callers can tell a client bug
// from a revoked key.
func (h *Handlers) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			metrics.AuthAttemptsTotal.WithLabelValues("missing").Inc()
			w.Header().Set("WWW-Authenticate", `Bearer realm="media-fetcher"`)
			writeJSONError(w, "missing api key", http.StatusUnauthorized)
			return
		}

		apiKey, err := h.db.LookupAPIKey(r.Context(), key)
		if err != nil {
			if errors.Is(err, database.ErrKeyNotFound) {
				metrics.AuthAttemptsTotal.WithLabelValues("unknown").Inc()
				logging.Warn("Rejected request with unknown api key (prefix %q)", keyPrefix(key))
				writeJSONError(w, "invalid api key", http.StatusForbidden)
				return
			}

			metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
			logging.Error("api key lookup failed: %v", err)
			writeJSONError(w, "authorization check failed", http.StatusInternalServerError)
			return
		}

		metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
		logging.Debug("Authenticated request with key %s (%s)", apiKey.Prefix, apiKey.Label)

		next.ServeHTTP(w, r)
	})
}
