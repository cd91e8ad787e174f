// Package muxer combines a fetched video stream and audio stream into the
// final mp4 with ffmpeg. The video stream is never re-encoded; only the
// audio track is, which keeps merges fast and quality lossless on the
// video side.
package muxer
