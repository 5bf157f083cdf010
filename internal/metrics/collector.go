package metrics

import (
	"context"
	"time"

	"searchable-gallery/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	Stats(ctx context.Context) (Stats, error)
}

// Stats holds the current catalog statistics
type Stats struct {
	TotalItems        int
	TotalTags         int
	TotalAssociations int
	UntaggedItems     int
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

	ctx, cancel := context.WithTimeout(context.Background(), c.interval)
	defer cancel()

	stats, err := c.statsProvider.Stats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	CatalogItemsTotal.Set(float64(stats.TotalItems))
	CatalogTagsTotal.Set(float64(stats.TotalTags))
	CatalogAssociationsTotal.Set(float64(stats.TotalAssociations))
	CatalogUntaggedItems.Set(float64(stats.UntaggedItems))

	logging.Debug("Metrics collected: items=%d, tags=%d, associations=%d, untagged=%d",
		stats.TotalItems, stats.TotalTags, stats.TotalAssociations, stats.UntaggedItems)
}
