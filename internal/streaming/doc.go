/*
Package streaming delivers merged download files to HTTP clients with
timeout protection.

# Overview

A download response can take minutes on a slow connection, and a stalled
or vanished client must not hold a job slot, a scratch directory, and an
open file forever. This package wraps http.ResponseWriter with per-write
timeouts, idle detection, and client-disconnect detection so the pipeline
always learns when delivery stops making progress.

# Usage

The pipeline calls Send after setting the response headers:

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

	config := streaming.DefaultConfig()
	config.ChunkSize = 256 * 1024
	config.Observer = metrics.NewStreamObserver()

	written, err := streaming.Send(r.Context(), w, file, config)
	if errors.Is(err, streaming.ErrClientGone) {
		// Client left. Nothing more can be sent; clean up and return.
	}

The Content-Length is exact, so Send never switches the response to
chunked transfer encoding; it only moves body bytes.

# Error Handling

Sentinel errors distinguish the client's fault from the server's:

	ErrWriteTimeout   — a single write exceeded WriteTimeout (slow client)
	ErrClientGone     — the request context was canceled (disconnect)
	ErrStreamCanceled — the stream was closed programmatically

Outcome maps any Send error to one of the terminal statuses ("completed",
"client_gone", "timeout", "error") that the Observer records.

# Observer

Config.Observer receives the byte count of every successful write and the
stream's terminal status. The metrics package implements it on top of the
Prometheus counters; tests substitute their own.

# Mechanics

Large writes are split into ChunkSize pieces, each flushed to the client,
so cancellation is noticed between chunks rather than after megabytes of
buffered data. Each physical write runs in its own goroutine bounded by
WriteTimeout; a separate idle checker terminates streams with no data
flow for IdleTimeout. One goroutine per active stream is the only
overhead.
*/
package streaming
