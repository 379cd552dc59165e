package worker

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optorecord-api/pkg/logger"
	"github.com/jwalitptl/optorecord-api/pkg/metrics"
)

func newTestWorker(t *testing.T, targets []Target, now time.Time) (*CleanupWorker, *metrics.Metrics, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	m := metrics.NewMetrics("test", "worker", prometheus.NewRegistry())
	w := NewCleanupWorker(targets, time.Minute, logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: &buf}), m)
	w.now = func() time.Time { return now }
	return w, m, &buf
}

func TestRunOncePurgesWithCutoff(t *testing.T) {
	now := time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC)
	var auditCutoff, outboxCutoff time.Time

	w, m, buf := newTestWorker(t, []Target{
		{Table: "audit_logs", Retention: Days(365), Purge: func(_ context.Context, cutoff time.Time) (int64, error) {
			auditCutoff = cutoff
			return 4, nil
		}},
		{Table: "outbox_events", Retention: Days(7), Purge: func(_ context.Context, cutoff time.Time) (int64, error) {
			outboxCutoff = cutoff
			return 0, nil
		}},
	}, now)

	require.NoError(t, w.RunOnce(context.Background()))

	assert.Equal(t, now.Add(-365*24*time.Hour), auditCutoff)
	assert.Equal(t, now.Add(-7*24*time.Hour), outboxCutoff)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RowsCleaned.WithLabelValues("audit_logs")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RowsCleaned.WithLabelValues("outbox_events")))
	assert.Contains(t, buf.String(), `"table":"audit_logs"`)
	assert.NotContains(t, buf.String(), `"table":"outbox_events"`)
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	called := false
	w, m, _ := newTestWorker(t, []Target{
		{Table: "audit_logs", Retention: time.Hour, Purge: func(context.Context, time.Time) (int64, error) {
			return 0, errors.New("lock timeout")
		}},
		{Table: "outbox_events", Retention: time.Hour, Purge: func(context.Context, time.Time) (int64, error) {
			called = true
			return 2, nil
		}},
	}, time.Now())

	err := w.RunOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clean up audit_logs")
	assert.True(t, called)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("purge_audit_logs", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsCleaned.WithLabelValues("outbox_events")))
}

func TestDisabledTargetsAreSkipped(t *testing.T) {
	w, _, _ := newTestWorker(t, []Target{
		{Table: "audit_logs", Retention: 0, Purge: func(context.Context, time.Time) (int64, error) {
			t.Fatal("purge called for disabled target")
			return 0, nil
		}},
		{Table: "outbox_events", Retention: time.Hour},
	}, time.Now())

	assert.Empty(t, w.targets)
	assert.NoError(t, w.RunOnce(context.Background()))
}

func TestStartStopsOnCancel(t *testing.T) {
	runs := make(chan struct{}, 10)
	w, _, _ := newTestWorker(t, []Target{
		{Table: "audit_logs", Retention: time.Hour, Purge: func(context.Context, time.Time) (int64, error) {
			runs <- struct{}{}
			return 0, nil
		}},
	}, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case <-runs:
	case <-time.After(time.Second):
		t.Fatal("first pass did not run")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
