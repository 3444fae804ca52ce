package reporter

import (
	"context"
	"time"

	"pastebin/internal/logs"
	"pastebin/internal/metrics"
)

// Store defines the minimal contract required by the reporter.
// This keeps the reporter decoupled from the concrete store implementation.
type Store interface {
	Len() int
	Capacity() int
}

// Reporter periodically logs how full the paste store is.
type Reporter struct {
	store    Store
	interval time.Duration
	logger   *logs.Logger
	metrics  *metrics.Registry

	// full is only touched by the goroutine running Start.
	full bool
}

// NewReporter creates a new occupancy reporter.
func NewReporter(
	store Store,
	interval time.Duration,
	logger *logs.Logger,
	reg *metrics.Registry,
) *Reporter {
	return &Reporter{
		store:    store,
		interval: interval,
		logger:   logger,
		metrics:  reg,
	}
}

// Start runs the report loop until the context is cancelled.
// It blocks and should typically be run in a separate goroutine.
func (r *Reporter) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runOnce()
		case <-ctx.Done():
			r.logger.Debug("reporter stopped")
			return
		}
	}
}

// runOnce performs a single report cycle.
func (r *Reporter) runOnce() {
	r.metrics.Inc(metrics.ReportRunsTotal)

	live, capacity := r.store.Len(), r.store.Capacity()
	r.logger.Debug("store occupancy", "live", live, "capacity", capacity)

	full := capacity > 0 && live >= capacity
	if full && !r.full {
		r.logger.Info("store full, oldest pastes are now evicted on every insert", "capacity", capacity)
	}
	r.full = full
}
