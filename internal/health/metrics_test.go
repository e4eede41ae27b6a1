package health

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/openvehicle/canagent/internal/adapters/log"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestMonitorUpdatesMetricsOnEmit(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	src := &fakeSource{}
	m := New(src, t.TempDir(), 10*time.Millisecond, log.NewNoopLogger()).WithMetrics(metrics)

	m.emit()

	require.Equal(t, float64(42), gaugeValue(t, metrics.frames))
	require.Equal(t, float64(3), gaugeValue(t, metrics.pendingCount))
	require.InDelta(t, 12.3, gaugeValue(t, metrics.framesPerSec), 0.001)
}
