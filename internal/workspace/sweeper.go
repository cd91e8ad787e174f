package workspace

import (
	"time"

	"media-fetcher/internal/logging"
)

// Sweeper periodically sweeps the workspace for orphaned job directories.
type Sweeper struct {
	ws       *Workspace
	interval time.Duration
	maxAge   time.Duration
	stopChan chan struct{}
}

// NewSweeper creates a sweeper that runs every interval and removes
// directories older than maxAge.
func NewSweeper(ws *Workspace, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		ws:       ws,
		interval: interval,
		maxAge:   maxAge,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop. The startup sequence performs its own
// initial sweep, so the loop only runs on ticks.
func (s *Sweeper) Start() {
	go s.sweepLoop()
}

// Stop stops the sweep loop.
func (s *Sweeper) Stop() {
	close(s.stopChan)
}

func (s *Sweeper) sweepLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := s.ws.Sweep(s.maxAge)
			if err != nil {
				logging.Warn("Scratch sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				logging.Info("Scratch sweep removed %d orphaned directories", removed)
			}
		case <-s.stopChan:
			return
		}
	}
}
