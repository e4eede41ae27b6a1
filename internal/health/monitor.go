package health

import (
	"context"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/openvehicle/canagent/internal/ports"
)

const thermalZonePath = "/sys/class/thermal/thermal_zone0/temp"

// Monitor periodically logs a combined health snapshot. It is only
// started for the real hardware reader; the simulator carries no notion
// of board temperature or physical disk pressure worth polling this way.
type Monitor struct {
	source   ports.HealthSource
	dataDir  string
	interval time.Duration
	log      ports.Logger
	start    time.Time
	metrics  *Metrics
}

// New constructs a Monitor. dataDir is the filesystem root used to report
// disk free space.
func New(source ports.HealthSource, dataDir string, interval time.Duration, log ports.Logger) *Monitor {
	return &Monitor{source: source, dataDir: dataDir, interval: interval, log: log, start: time.Now()}
}

// WithMetrics attaches a Prometheus gauge set that mirrors every
// heartbeat. Returns m for chaining.
func (m *Monitor) WithMetrics(metrics *Metrics) *Monitor {
	m.metrics = metrics
	return m
}

// Run blocks, emitting one heartbeat every interval, until ctx is
// cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.emit()
		}
	}
}

func (m *Monitor) emit() {
	readerStats := m.source.ReaderStats()
	offlineStats, err := m.source.OfflineStats()
	if err != nil {
		m.log.Warn("health monitor failed to read offline buffer stats", ports.Err(err))
	}

	usedGB, freeGB, diskErr := diskUsage(m.dataDir)
	uptimeMin := time.Since(m.start).Minutes()

	fields := []ports.Field{
		ports.Float64("uptime_minutes", uptimeMin),
		ports.Uint64("frames", readerStats.Frames),
		ports.Float64("frames_per_sec", readerStats.FramesPerSec),
		ports.Uint64("errors", readerStats.Errors),
		ports.Uint64("bus_off", readerStats.BusOff),
		ports.Int("pending_count", offlineStats.PendingCount),
	}
	if diskErr == nil {
		fields = append(fields, ports.Float64("disk_used_gb", usedGB), ports.Float64("disk_free_gb", freeGB))
	}

	tempC, tempOK := readBoardTemp()
	if tempOK {
		fields = append(fields, ports.Float64("board_temp_c", tempC))
	}

	m.log.Info("health heartbeat", fields...)

	if m.metrics != nil {
		m.metrics.uptimeMin.Set(uptimeMin)
		m.metrics.frames.Set(float64(readerStats.Frames))
		m.metrics.framesPerSec.Set(readerStats.FramesPerSec)
		m.metrics.errors.Set(float64(readerStats.Errors))
		m.metrics.busOff.Set(float64(readerStats.BusOff))
		m.metrics.pendingCount.Set(float64(offlineStats.PendingCount))
		if diskErr == nil {
			m.metrics.diskUsedGB.Set(usedGB)
			m.metrics.diskFreeGB.Set(freeGB)
		}
		if tempOK {
			m.metrics.boardTempC.Set(tempC)
		}
	}
}

// readBoardTemp reads the Raspberry Pi thermal zone, which reports
// millidegrees Celsius. Absence (non-Pi hosts, permission issues) is
// elided rather than logged; this reading is always best-effort.
func readBoardTemp() (float64, bool) {
	raw, err := os.ReadFile(thermalZonePath)
	if err != nil {
		return 0, false
	}
	milliC, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, false
	}
	return float64(milliC) / 1000.0, true
}

func diskUsage(path string) (usedGB, freeGB float64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	const gib = 1024 * 1024 * 1024
	total := float64(stat.Blocks*uint64(stat.Bsize)) / gib
	free := float64(stat.Bavail*uint64(stat.Bsize)) / gib
	return total - free, free, nil
}
