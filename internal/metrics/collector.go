package metrics

import (
	"time"

	"securestream/internal/logging"
)

// StatsProvider reports queue occupancy for the collector.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the per-status job counts at one point in time.
type Stats struct {
	Queued     int
	Processing int
	Uploading  int
	Completed  int
	Failed     int
}

// Collector periodically collects and updates queue gauges
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

	JobsByStatus.WithLabelValues("queued").Set(float64(stats.Queued))
	JobsByStatus.WithLabelValues("processing").Set(float64(stats.Processing))
	JobsByStatus.WithLabelValues("uploading").Set(float64(stats.Uploading))
	JobsByStatus.WithLabelValues("completed").Set(float64(stats.Completed))
	JobsByStatus.WithLabelValues("error").Set(float64(stats.Failed))

	logging.Debug("Metrics collected: queued=%d, processing=%d, uploading=%d, completed=%d, error=%d",
		stats.Queued, stats.Processing, stats.Uploading, stats.Completed, stats.Failed)
}
