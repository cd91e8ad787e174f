package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"media-fetcher/internal/logging"
	"media-fetcher/internal/metrics"
)

// CommandRunner runs an external tool to completion and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, tool string, args ...string) ([]byte, error)
}

// stderr carried in error strings is capped so log lines stay bounded
const stderrLimit = 512

// ToolError reports a tool that started but exited non-zero.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)

	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		return msg
	}
	if len(detail) > stderrLimit {
		detail = detail[:stderrLimit] + "..."
	}
	return msg + ": " + detail
}

// Runner executes external tools with captured output and tracks running
// processes so they can be killed on shutdown.
type Runner struct {
	processes map[int64]*exec.Cmd
	processMu sync.Mutex
	nextID    int64
}

// New creates a new Runner instance.
func New() *Runner {
	return &Runner{
		processes: make(map[int64]*exec.Cmd),
	}
}

// Run executes tool with args and returns its stdout. The binary is invoked
// directly, never through a shell. Stderr is captured separately; on non-zero
// exit it is logged and returned inside a *ToolError, and stdout is discarded.
func (r *Runner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	name := filepath.Base(tool)

	// Track the process
	r.processMu.Lock()
	r.nextID++
	id := r.nextID
	r.processes[id] = cmd
	r.processMu.Unlock()

	defer func() {
		r.processMu.Lock()
		delete(r.processes, id)
		r.processMu.Unlock()
	}()

	logging.Debug("Running %s %s", name, strings.Join(args, " "))

	start := time.Now()
	err := cmd.Run()
	metrics.ToolInvocationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		// CommandContext kills the process when the context ends, which
		// surfaces as an exit error; report the cancellation instead.
		if ctx.Err() != nil {
			metrics.ToolInvocationsTotal.WithLabelValues(name, "canceled").Inc()
			logging.Debug("%s canceled: %v", name, ctx.Err())
			return nil, ctx.Err()
		}

		metrics.ToolInvocationsTotal.WithLabelValues(name, "error").Inc()

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logging.Error("%s stderr: %s", name, strings.TrimSpace(stderr.String()))
			return nil, &ToolError{
				Tool:     name,
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}

		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	metrics.ToolInvocationsTotal.WithLabelValues(name, "success").Inc()
	return stdout.Bytes(), nil
}

// ActiveProcesses returns the number of tool processes currently tracked.
func (r *Runner) ActiveProcesses() int {
	r.processMu.Lock()
	defer r.processMu.Unlock()
	return len(r.processes)
}

// Cleanup kills all tracked tool processes. Called during shutdown so
// in-flight jobs do not leave yt-dlp or ffmpeg behind.
func (r *Runner) Cleanup() {
	r.processMu.Lock()
	defer r.processMu.Unlock()

	for _, cmd := range r.processes {
		if cmd.Process != nil {
			logging.Info("Killing tool process: %s (pid %d)", filepath.Base(cmd.Path), cmd.Process.Pid)
			if err := cmd.Process.Kill(); err != nil {
				logging.Warn("failed to kill tool process %s: %v", filepath.Base(cmd.Path), err)
			}
		}
	}
}
