package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"media-fetcher/internal/logging"
	"media-fetcher/internal/runner"
)

// Stream selectors passed to yt-dlp's -f flag. Video prefers an mp4
// container so the merge step can copy the stream without re-encoding;
// audio prefers m4a for the same reason.
const (
	videoSelector = "bestvideo[ext=mp4]/bestvideo"
	audioSelector = "bestaudio[ext=m4a]/bestaudio"
)

// Downloaded stream names inside a job's scratch directory.
const (
	videoFileName = "video.mp4"
	audioFileName = "audio.m4a"
)

// MediaInfo is the metadata yt-dlp reports for a single video.
type MediaInfo struct {
	Title     string   `json:"title"`
	Duration  float64  `json:"duration"`
	Thumbnail string   `json:"thumbnail"`
	Formats   []Format `json:"formats"`
}

// Format is one variant from the site's format list. Numeric fields are
// zero when the site did not report them.
type Format struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Vcodec         string  `json:"vcodec"`
	Acodec         string  `json:"acodec"`
	Height         int     `json:"height"`
	FPS            float64 `json:"fps"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	TBR            float64 `json:"tbr"`
	VBR            float64 `json:"vbr"`
}

// Extractor drives yt-dlp for metadata probes and stream downloads.
type Extractor struct {
	run       runner.CommandRunner
	ytdlpPath string
}

// New creates an Extractor that invokes the yt-dlp binary at ytdlpPath.
func New(run runner.CommandRunner, ytdlpPath string) *Extractor {
	return &Extractor{
		run:       run,
		ytdlpPath: ytdlpPath,
	}
}

// Probe fetches metadata for url without downloading any media.
func (e *Extractor) Probe(ctx context.Context, url string) (*MediaInfo, error) {
	out, err := e.run.Run(ctx, e.ytdlpPath,
		"-J",
		"--no-playlist",
		"--no-warnings",
		"--skip-download",
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("probing metadata: %w", err)
	}

	var info MediaInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}

	logging.Debug("Probed %q: %d formats, duration %.1fs", info.Title, len(info.Formats), info.Duration)
	return &info, nil
}

// FetchVideo downloads the video stream for url into dir and returns the
// file path. formatID selects an exact variant; when empty the best mp4
// video stream is taken.
func (e *Extractor) FetchVideo(ctx context.Context, url, formatID, dir string) (string, error) {
	selector := videoSelector
	if formatID != "" {
		selector = formatID
	}

	path := filepath.Join(dir, videoFileName)
	if err := e.fetch(ctx, url, selector, path); err != nil {
		return "", fmt.Errorf("fetching video stream: %w", err)
	}
	return path, nil
}

// FetchAudio downloads the best audio-only stream for url into dir and
// returns the file path. The audio selection is independent of the chosen
// video format.
func (e *Extractor) FetchAudio(ctx context.Context, url, dir string) (string, error) {
	path := filepath.Join(dir, audioFileName)
	if err := e.fetch(ctx, url, audioSelector, path); err != nil {
		return "", fmt.Errorf("fetching audio stream: %w", err)
	}
	return path, nil
}

func (e *Extractor) fetch(ctx context.Context, url, selector, path string) error {
	_, err := e.run.Run(ctx, e.ytdlpPath,
		"--no-playlist",
		"--no-warnings",
		"-o", path,
		"-f", selector,
		url,
	)
	return err
}
