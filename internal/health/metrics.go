package health

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mirrors the heartbeat fields as Prometheus gauges, for
// deployments that prefer scraping over parsing log lines. It is
// optional: a Monitor with a nil *Metrics still logs heartbeats.
type Metrics struct {
	frames       prometheus.Gauge
	framesPerSec prometheus.Gauge
	errors       prometheus.Gauge
	busOff       prometheus.Gauge
	pendingCount prometheus.Gauge
	diskUsedGB   prometheus.Gauge
	diskFreeGB   prometheus.Gauge
	boardTempC   prometheus.Gauge
	uptimeMin    prometheus.Gauge
}

// NewMetrics constructs and registers the heartbeat gauges against reg.
// Pass prometheus.DefaultRegisterer to expose them on the default
// /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		frames:       prometheus.NewGauge(prometheus.GaugeOpts{Name: "canagent_reader_frames_total", Help: "Cumulative frames captured."}),
		framesPerSec: prometheus.NewGauge(prometheus.GaugeOpts{Name: "canagent_reader_frames_per_second", Help: "Rolling 10s frame rate."}),
		errors:       prometheus.NewGauge(prometheus.GaugeOpts{Name: "canagent_reader_errors_total", Help: "Cumulative bus error frames."}),
		busOff:       prometheus.NewGauge(prometheus.GaugeOpts{Name: "canagent_reader_bus_off_total", Help: "Cumulative bus-off events."}),
		pendingCount: prometheus.NewGauge(prometheus.GaugeOpts{Name: "canagent_pending_files", Help: "Files awaiting upload."}),
		diskUsedGB:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "canagent_disk_used_gb", Help: "Disk used at the data root, in GiB."}),
		diskFreeGB:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "canagent_disk_free_gb", Help: "Disk free at the data root, in GiB."}),
		boardTempC:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "canagent_board_temp_celsius", Help: "Board temperature, if readable."}),
		uptimeMin:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "canagent_uptime_minutes", Help: "Process uptime in minutes."}),
	}
	reg.MustRegister(
		m.frames, m.framesPerSec, m.errors, m.busOff, m.pendingCount,
		m.diskUsedGB, m.diskFreeGB, m.boardTempC, m.uptimeMin,
	)
	return m
}

// ServeHTTP starts a blocking Prometheus scrape endpoint on addr (e.g.
// ":9090"). Intended to run in its own goroutine alongside Monitor.Run.
func ServeHTTP(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		return fmt.Errorf("health: metrics server: %w", err)
	}
	return nil
}
