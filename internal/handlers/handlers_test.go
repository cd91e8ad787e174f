package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"media-fetcher/internal/database"
	"media-fetcher/internal/extractor"
	"media-fetcher/internal/formats"
	"media-fetcher/internal/muxer"
	"media-fetcher/internal/pipeline"
	"media-fetcher/internal/startup"
	"media-fetcher/internal/streaming"
	"media-fetcher/internal/workspace"
)

const mergedContent = "MERGED-MEDIA-BYTES"

// fakeProber feeds the format catalog without invoking yt-dlp.
type fakeProber struct {
	info  *extractor.MediaInfo
	err   error
	calls int
}

func (f *fakeProber) Probe(_ context.Context, _ string) (*extractor.MediaInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

// fakeMedia implements pipeline.MediaFetcher against the local filesystem.
type fakeMedia struct {
	title    string
	probeErr error
	videoErr error
	audioErr error

	lastFormatID string
	probeCalls   int
}

func (f *fakeMedia) Probe(_ context.Context, _ string) (*extractor.MediaInfo, error) {
	f.probeCalls++
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	title := f.title
	if title == "" {
		title = "Sample Video"
	}
	return &extractor.MediaInfo{Title: title, Duration: 60}, nil
}

func (f *fakeMedia) FetchVideo(_ context.Context, _, formatID, dir string) (string, error) {
	f.lastFormatID = formatID
	if f.videoErr != nil {
		return "", f.videoErr
	}
	path := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(path, []byte("VIDEO"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeMedia) FetchAudio(_ context.Context, _, dir string) (string, error) {
	if f.audioErr != nil {
		return "", f.audioErr
	}
	path := filepath.Join(dir, "audio.m4a")
	if err := os.WriteFile(path, []byte("AUDIO"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// fakeMerger writes a canned merged file.
type fakeMerger struct {
	err  error
	opts muxer.Options
}

func (f *fakeMerger) Merge(_ context.Context, _, _, outPath string, opts muxer.Options) error {
	f.opts = opts
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte(mergedContent), 0o644)
}

// testEnv wires real handlers over fake tool adapters.
type testEnv struct {
	h      *Handlers
	db     *database.Database
	ws     *workspace.Workspace
	key    string
	prober *fakeProber
	media  *fakeMedia
	merger *fakeMerger
}

func sampleListingInfo() *extractor.MediaInfo {
	return &extractor.MediaInfo{
		Title:    "Sample Video",
		Duration: 60,
		Formats: []extractor.Format{
			{FormatID: "18", Ext: "mp4", Vcodec: "avc1.42001E", Acodec: "mp4a.40.2", Height: 360, FPS: 30, Filesize: 1_000_000},
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "keys.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	created, err := db.CreateAPIKey(context.Background(), "test key")
	if err != nil {
		t.Fatalf("Failed to create test api key: %v", err)
	}

	prober := &fakeProber{info: sampleListingInfo()}
	media := &fakeMedia{}
	merger := &fakeMerger{}

	ws := workspace.New(t.TempDir())
	p := pipeline.New(ws, media, merger, nil, pipeline.Config{
		MaxConcurrentJobs: 2,
		Stream:            streaming.DefaultConfig(),
	})

	config := &startup.Config{
		Ytdlp:  startup.ToolInfo{Path: "/usr/bin/yt-dlp", Version: "2025.08.11"},
		FFmpeg: startup.ToolInfo{Path: "/usr/bin/ffmpeg", Version: "7.1"},
	}

	return &testEnv{
		h:      New(db, formats.NewCatalog(prober, 30, 0.60), p, ws, config),
		db:     db,
		ws:     ws,
		key:    created.Key,
		prober: prober,
		media:  media,
		merger: merger,
	}
}

func requireEmptyScratch(t *testing.T, ws *workspace.Workspace) {
	t.Helper()
	entries, err := os.ReadDir(ws.Root())
	if err != nil {
		t.Fatalf("Failed to read scratch root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Scratch root should be empty, found %d entries", len(entries))
	}
}
