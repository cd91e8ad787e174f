package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"media-fetcher/internal/logging"
	"media-fetcher/internal/metrics"
)

// Workspace hands out per-job scratch directories under a single root and
// tracks which ones belong to live jobs so sweeps never touch them.
type Workspace struct {
	root   string
	active map[string]bool
	mu     sync.Mutex
}

// New creates a Workspace rooted at root. The root itself is created and
// write-checked during startup.
func New(root string) *Workspace {
	return &Workspace{
		root:   root,
		active: make(map[string]bool),
	}
}

// Root returns the scratch root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Allocate creates the scratch directory for job id and returns its path.
// The directory is marked live until Remove is called for it.
func (w *Workspace) Allocate(id string) (string, error) {
	dir := filepath.Join(w.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}

	w.mu.Lock()
	w.active[id] = true
	w.mu.Unlock()

	logging.Debug("Allocated scratch directory: %s", dir)
	return dir, nil
}

// Remove deletes a job's scratch directory and releases its live mark.
// Removal errors are logged, never surfaced; removing an already-gone
// directory is a no-op.
func (w *Workspace) Remove(dir string) {
	if dir == "" {
		return
	}

	w.mu.Lock()
	delete(w.active, filepath.Base(dir))
	w.mu.Unlock()

	if err := os.RemoveAll(dir); err != nil {
		logging.Warn("failed to remove scratch directory %s: %v", dir, err)
		return
	}
	logging.Debug("Removed scratch directory: %s", dir)
}

// Count returns the number of job directories currently on disk.
func (w *Workspace) Count() int {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return 0
	}

	n := 0
	for _, entry := range entries {
		if entry.IsDir() && isJobDir(entry.Name()) {
			n++
		}
	}
	return n
}

// Sweep removes job directories older than maxAge that no live job owns.
// These are leftovers from crashes or kills that skipped cleanup. Returns
// the number of directories removed; entry-level failures are logged and
// skipped so one bad entry cannot stall the sweep.
func (w *Workspace) Sweep(maxAge time.Duration) (int, error) {
	metrics.SweepRunsTotal.Inc()

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return 0, fmt.Errorf("reading scratch root: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		// Only uuid-named directories are ours to delete
		if !entry.IsDir() || !isJobDir(entry.Name()) {
			continue
		}

		w.mu.Lock()
		live := w.active[entry.Name()]
		w.mu.Unlock()
		if live {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logging.Warn("failed to stat scratch entry %s: %v", entry.Name(), err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(w.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logging.Warn("failed to remove orphaned scratch directory %s: %v", path, err)
			continue
		}

		logging.Info("Removed orphaned scratch directory: %s", entry.Name())
		removed++
		metrics.SweepRemovedTotal.Inc()
	}

	return removed, nil
}

func isJobDir(name string) bool {
	_, err := uuid.Parse(name)
	return err == nil
}
