// Package extractor wraps yt-dlp for site metadata probes and media stream
// downloads.
//
// Probe runs a single JSON metadata extraction (no media is transferred);
// FetchVideo and FetchAudio download one stream each into a job's scratch
// directory so the two can run concurrently and be merged afterwards.
package extractor
