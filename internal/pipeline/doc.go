// Package pipeline runs download jobs end to end.
//
// A job moves through fixed stages: scratch directory allocation, metadata
// probe, concurrent video and audio fetches, ffmpeg merge, and streamed
// delivery. The first stage failure ends the job; cleanup of the scratch
// directory runs exactly once on every path, including client disconnects
// mid-stream. Failures carry their stage so the HTTP layer can decide
// between a JSON error (before any response bytes) and silent connection
// termination (after).
//
// Concurrency is bounded by a job-slot semaphore; within a job only the
// two stream fetches overlap. Jobs share no state: each works in its own
// directory and talks to its own tool processes.
package pipeline
