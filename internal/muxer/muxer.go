package muxer

import (
	"context"
	"fmt"

	"media-fetcher/internal/logging"
	"media-fetcher/internal/runner"
)

// DefaultAudioCodec is used when a request does not name one.
const DefaultAudioCodec = "aac"

// audioQuality is the fixed VBR quality passed to ffmpeg's -q:a,
// calibrated so the encoded track lands near the bitrate the size
// estimates assume.
const audioQuality = "2"

// Options control the merge encode.
type Options struct {
	AudioCodec string
}

// Muxer merges fetched elementary streams with ffmpeg.
type Muxer struct {
	run        runner.CommandRunner
	ffmpegPath string
}

// New creates a Muxer that invokes the ffmpeg binary at ffmpegPath.
func New(run runner.CommandRunner, ffmpegPath string) *Muxer {
	return &Muxer{
		run:        run,
		ffmpegPath: ffmpegPath,
	}
}

// Merge muxes videoPath and audioPath into outPath. The video stream is
// copied untouched; the audio stream is re-encoded with the requested
// codec at the fixed VBR quality and tagged as English. The +faststart
// flag moves the index to the front so playback can begin before the
// whole file arrives.
func (m *Muxer) Merge(ctx context.Context, videoPath, audioPath, outPath string, opts Options) error {
	codec := opts.AudioCodec
	if codec == "" {
		codec = DefaultAudioCodec
	}

	logging.Debug("Merging %s + %s -> %s (audio %s)", videoPath, audioPath, outPath, codec)

	_, err := m.run.Run(ctx, m.ffmpegPath,
		"-y",
		"-loglevel", "error",
		"-nostdin",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", codec,
		"-q:a", audioQuality,
		"-metadata:s:a:0", "language=eng",
		"-movflags", "+faststart",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("merging streams: %w", err)
	}
	return nil
}
