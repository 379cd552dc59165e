package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/optorecord-api/pkg/logger"
	"github.com/jwalitptl/optorecord-api/pkg/metrics"
)

// PurgeFunc deletes rows older than cutoff and returns how many went.
type PurgeFunc func(ctx context.Context, cutoff time.Time) (int64, error)

// Target is one table under a retention policy.
type Target struct {
	Table     string
	Retention time.Duration
	Purge     PurgeFunc
}

type CleanupWorker struct {
	targets  []Target
	interval time.Duration
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewCleanupWorker skips targets without a positive retention.
func NewCleanupWorker(targets []Target, interval time.Duration, log *logger.Logger, m *metrics.Metrics) *CleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}

	active := make([]Target, 0, len(targets))
	for _, t := range targets {
		if t.Retention > 0 && t.Purge != nil {
			active = append(active, t)
		}
	}

	return &CleanupWorker{
		targets:  active,
		interval: interval,
		logger:   log.WithFields(map[string]interface{}{"component": "retention-cleanup"}),
		metrics:  m,
		now:      time.Now,
	}
}

// Start runs a pass immediately and then every interval until ctx is cancelled.
func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error(err, "Retention cleanup failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce purges every target. A failing target does not stop the others.
func (w *CleanupWorker) RunOnce(ctx context.Context) error {
	var errs []error
	for _, t := range w.targets {
		cutoff := w.now().Add(-t.Retention)

		rows, err := t.Purge(ctx, cutoff)
		if err != nil {
			w.metrics.DatabaseOperations.WithLabelValues("purge_"+t.Table, "error").Inc()
			errs = append(errs, fmt.Errorf("failed to clean up %s: %w", t.Table, err))
			continue
		}
		w.metrics.DatabaseOperations.WithLabelValues("purge_"+t.Table, "success").Inc()
		w.metrics.RowsCleaned.WithLabelValues(t.Table).Add(float64(rows))

		if rows > 0 {
			w.logger.Info("Cleaned up expired rows",
				"table", t.Table,
				"rows", rows,
				"cutoff", cutoff.Format(time.RFC3339))
		}
	}
	return errors.Join(errs...)
}

// Days converts a retention setting in days.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
