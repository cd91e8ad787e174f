package muxer

import (
	"context"
	"errors"
	"testing"

	"media-fetcher/internal/runner"
)

type fakeRunner struct {
	err  error
	tool string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, tool string, args ...string) ([]byte, error) {
	f.tool = tool
	f.args = args
	return nil, f.err
}

func argPair(args []string, flag string) (string, bool) {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1], true
		}
	}
	return "", false
}

func TestMerge(t *testing.T) {
	fake := &fakeRunner{}
	m := New(fake, "/usr/bin/ffmpeg")

	err := m.Merge(context.Background(), "/scratch/j/video.mp4", "/scratch/j/audio.m4a", "/scratch/j/out.mp4", Options{})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if fake.tool != "/usr/bin/ffmpeg" {
		t.Errorf("Tool = %q, want configured ffmpeg path", fake.tool)
	}

	// Video first, audio second, output last
	if v, ok := argPair(fake.args, "-i"); !ok || v != "/scratch/j/video.mp4" {
		t.Errorf("First input = %q, want video path", v)
	}
	if fake.args[len(fake.args)-1] != "/scratch/j/out.mp4" {
		t.Errorf("Last arg = %q, want output path", fake.args[len(fake.args)-1])
	}

	audioSeen := false
	for i := 0; i < len(fake.args)-1; i++ {
		if fake.args[i] == "-i" && fake.args[i+1] == "/scratch/j/audio.m4a" {
			audioSeen = true
		}
	}
	if !audioSeen {
		t.Error("Audio path missing from inputs")
	}

	checks := map[string]string{
		"-map":            "0:v:0",
		"-c:v":            "copy",
		"-c:a":            "aac",
		"-q:a":            "2",
		"-metadata:s:a:0": "language=eng",
		"-movflags":       "+faststart",
		"-loglevel":       "error",
	}
	for flag, want := range checks {
		if got, ok := argPair(fake.args, flag); !ok || got != want {
			t.Errorf("%s = %q, want %q", flag, got, want)
		}
	}

	for _, flag := range []string{"-y", "-nostdin"} {
		found := false
		for _, a := range fake.args {
			if a == flag {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s flag in %v", flag, fake.args)
		}
	}
}

func TestMergeAudioStreamMapping(t *testing.T) {
	fake := &fakeRunner{}
	m := New(fake, "ffmpeg")

	if err := m.Merge(context.Background(), "v", "a", "o", Options{}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// Both stream maps must be present: video from input 0, audio from input 1
	foundAudioMap := false
	for i := 0; i < len(fake.args)-1; i++ {
		if fake.args[i] == "-map" && fake.args[i+1] == "1:a:0" {
			foundAudioMap = true
		}
	}
	if !foundAudioMap {
		t.Errorf("Expected -map 1:a:0 in %v", fake.args)
	}
}

func TestMergeCustomAudioCodec(t *testing.T) {
	fake := &fakeRunner{}
	m := New(fake, "ffmpeg")

	err := m.Merge(context.Background(), "v", "a", "o", Options{AudioCodec: "libmp3lame"})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if got, _ := argPair(fake.args, "-c:a"); got != "libmp3lame" {
		t.Errorf("-c:a = %q, want %q", got, "libmp3lame")
	}
}

func TestMergeFailure(t *testing.T) {
	toolErr := &runner.ToolError{Tool: "ffmpeg", ExitCode: 1, Stderr: "Invalid data found"}
	fake := &fakeRunner{err: toolErr}
	m := New(fake, "ffmpeg")

	err := m.Merge(context.Background(), "v", "a", "o", Options{})
	if err == nil {
		t.Fatal("Expected error when ffmpeg fails")
	}

	var unwrapped *runner.ToolError
	if !errors.As(err, &unwrapped) {
		t.Errorf("Expected ToolError in chain, got %v", err)
	}
}
