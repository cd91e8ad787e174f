package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"media-fetcher/internal/extractor"
	"media-fetcher/internal/logging"
	"media-fetcher/internal/metrics"
	"media-fetcher/internal/muxer"
	"media-fetcher/internal/streaming"
	"media-fetcher/internal/workspace"
)

// Stage names, in pipeline order.
const (
	StageWorkspace = "workspace"
	StageMetadata  = "metadata"
	StageVideo     = "video"
	StageAudio     = "audio"
	StageMerge     = "merge"
	StageStream    = "stream"
)

// StageError wraps a failure with the stage that produced it.
// ResponseStarted reports whether response bytes were already sent; once
// they have been, no error response can follow and the handler must let
// the connection terminate silently.
type StageError struct {
	Stage           string
	Err             error
	ResponseStarted bool
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// MediaFetcher probes metadata and downloads elementary streams.
type MediaFetcher interface {
	Probe(ctx context.Context, url string) (*extractor.MediaInfo, error)
	FetchVideo(ctx context.Context, url, formatID, dir string) (string, error)
	FetchAudio(ctx context.Context, url, dir string) (string, error)
}

// Merger combines fetched streams into the final file.
type Merger interface {
	Merge(ctx context.Context, videoPath, audioPath, outPath string, opts muxer.Options) error
}

// ProcessKiller terminates tracked tool subprocesses.
type ProcessKiller interface {
	Cleanup()
}

// Request describes one download job.
type Request struct {
	URL          string
	FormatID     string
	AudioCodec   string
	AudioBitrate string
}

// Config holds pipeline tuning.
type Config struct {
	// MaxConcurrentJobs bounds how many jobs run their stages at once.
	MaxConcurrentJobs int
	// AudioCodec is the merge codec used when a request names none.
	AudioCodec string
	// Stream configures delivery of the merged file.
	Stream streaming.Config
}

// Pipeline executes download jobs: scratch allocation, metadata, parallel
// stream fetches, merge, and delivery, with guaranteed cleanup.
type Pipeline struct {
	ws    *workspace.Workspace
	media MediaFetcher
	mux   Merger
	tools ProcessKiller
	cfg   Config
	slots chan struct{}

	completed atomic.Int64
	failed    atomic.Int64
}

// New creates a Pipeline.
func New(ws *workspace.Workspace, media MediaFetcher, mux Merger, tools ProcessKiller, cfg Config) *Pipeline {
	if cfg.MaxConcurrentJobs < 1 {
		cfg.MaxConcurrentJobs = 1
	}
	if cfg.AudioCodec == "" {
		cfg.AudioCodec = muxer.DefaultAudioCodec
	}

	return &Pipeline{
		ws:    ws,
		media: media,
		mux:   mux,
		tools: tools,
		cfg:   cfg,
		slots: make(chan struct{}, cfg.MaxConcurrentJobs),
	}
}

// Download runs one job to completion and streams the merged file to w.
// A nil return means the client received the whole file. Any failure is
// returned as a *StageError; the job's scratch directory is removed on
// every path.
func (p *Pipeline) Download(ctx context.Context, w http.ResponseWriter, req Request) *StageError {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: StageWorkspace, Err: err}
	}

	// Job admission: one slot per running job
	select {
	case p.slots <- struct{}{}:
		defer func() { <-p.slots }()
	case <-ctx.Done():
		return &StageError{Stage: StageWorkspace, Err: ctx.Err()}
	}

	jobID := uuid.NewString()
	start := time.Now()

	metrics.JobsInProgress.Inc()
	defer metrics.JobsInProgress.Dec()
	defer func() {
		metrics.JobDuration.Observe(time.Since(start).Seconds())
	}()

	logging.Info("Job %s: download %s (format %q)", jobID, req.URL, req.FormatID)
	if req.AudioBitrate != "" {
		// The merge encodes at a fixed VBR quality; the hint is recorded
		// for visibility, not applied.
		logging.Debug("Job %s: audio bitrate hint %q", jobID, req.AudioBitrate)
	}

	stageErr := p.run(ctx, w, req, jobID)

	switch {
	case stageErr == nil:
		p.completed.Add(1)
		metrics.JobsTotal.WithLabelValues("completed").Inc()
		logging.Info("Job %s: completed in %v", jobID, time.Since(start).Round(time.Millisecond))
	case clientCanceled(stageErr.Err):
		metrics.JobsTotal.WithLabelValues("canceled").Inc()
		logging.Info("Job %s: canceled during %s stage: %v", jobID, stageErr.Stage, stageErr.Err)
	default:
		p.failed.Add(1)
		metrics.JobsTotal.WithLabelValues("failed").Inc()
		metrics.JobStageErrors.WithLabelValues(stageErr.Stage).Inc()
		logging.Error("Job %s: %s stage failed: %v", jobID, stageErr.Stage, stageErr.Err)
	}

	return stageErr
}

// run executes the job stages. Scratch cleanup is deferred here so it
// happens exactly once whether the job succeeds, fails, or is canceled.
func (p *Pipeline) run(ctx context.Context, w http.ResponseWriter, req Request, jobID string) *StageError {
	dir, err := p.ws.Allocate(jobID)
	if err != nil {
		return &StageError{Stage: StageWorkspace, Err: err}
	}
	defer p.ws.Remove(dir)

	info, err := p.media.Probe(ctx, req.URL)
	if err != nil {
		return &StageError{Stage: StageMetadata, Err: err}
	}
	title := sanitizeTitle(info.Title, jobID)

	// Video and audio are independent fetches; run them together and let
	// the first failure cancel the other.
	var videoPath, audioPath string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		path, err := p.media.FetchVideo(gctx, req.URL, req.FormatID, dir)
		if err != nil {
			return &StageError{Stage: StageVideo, Err: err}
		}
		videoPath = path
		return nil
	})
	g.Go(func() error {
		path, err := p.media.FetchAudio(gctx, req.URL, dir)
		if err != nil {
			return &StageError{Stage: StageAudio, Err: err}
		}
		audioPath = path
		return nil
	})
	if err := g.Wait(); err != nil {
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			return stageErr
		}
		return &StageError{Stage: StageVideo, Err: err}
	}

	outPath := filepath.Join(dir, title+".mp4")
	opts := muxer.Options{AudioCodec: p.audioCodecFor(req)}
	if err := p.mux.Merge(ctx, videoPath, audioPath, outPath, opts); err != nil {
		return &StageError{Stage: StageMerge, Err: err}
	}

	return p.stream(ctx, w, outPath, title)
}

// stream sends the merged file with exact length and attachment headers.
func (p *Pipeline) stream(ctx context.Context, w http.ResponseWriter, path, title string) *StageError {
	file, err := os.Open(path)
	if err != nil {
		return &StageError{Stage: StageStream, Err: err}
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close merged file %s: %v", path, err)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return &StageError{Stage: StageStream, Err: err}
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", contentDisposition(title+".mp4"))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := streaming.Send(ctx, w, file, p.cfg.Stream); err != nil {
		return &StageError{Stage: StageStream, Err: err, ResponseStarted: true}
	}
	return nil
}

// Shutdown kills any external tool processes still serving jobs.
func (p *Pipeline) Shutdown() {
	if p.tools != nil {
		p.tools.Cleanup()
	}
}

// ActiveJobs reports how many download slots are currently held.
func (p *Pipeline) ActiveJobs() int {
	return len(p.slots)
}

// CompletedJobs reports how many jobs finished with full delivery.
func (p *Pipeline) CompletedJobs() int64 {
	return p.completed.Load()
}

// FailedJobs reports how many jobs ended in a stage failure.
// Client cancellations count as neither completed nor failed.
func (p *Pipeline) FailedJobs() int64 {
	return p.failed.Load()
}

func (p *Pipeline) audioCodecFor(req Request) string {
	if req.AudioCodec != "" {
		return req.AudioCodec
	}
	return p.cfg.AudioCodec
}

// clientCanceled reports whether err is the client's doing rather than a
// pipeline fault.
func clientCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, streaming.ErrClientGone)
}
