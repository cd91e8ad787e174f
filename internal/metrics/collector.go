package metrics

import (
	"time"

	"media-fetcher/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current statistics
type Stats struct {
	APIKeys     int
	ScratchDirs int
	OpenDBConns int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	APIKeysTotal.Set(float64(stats.APIKeys))
	ScratchDirsActive.Set(float64(stats.ScratchDirs))
	DBConnectionsOpen.Set(float64(stats.OpenDBConns))

	logging.Debug("Metrics collected: keys=%d, scratch_dirs=%d, db_conns=%d",
		stats.APIKeys, stats.ScratchDirs, stats.OpenDBConns)
}
