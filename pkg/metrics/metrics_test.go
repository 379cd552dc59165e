package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("clinic", "worker", reg)

	m.OutboxEventsProcessed.Inc()
	m.NotificationsSent.WithLabelValues("appointment.created", "sent").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("appointment.created", "sent")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "clinic_worker_outbox_events_processed_total")
}

func TestNewMetricsTwiceOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("clinic", "worker", prometheus.NewRegistry())
		NewMetrics("clinic", "worker", prometheus.NewRegistry())
	})
}
