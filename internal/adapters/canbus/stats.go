package canbus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/openvehicle/canagent/internal/domain"
)

// statTracker accumulates reader counters and a rolling 10-second frame
// timestamp window for frames-per-second reporting. Counters are plain
// atomics so the health monitor can read them without locking; the rolling
// window needs a short critical section because it trims as it reads.
type statTracker struct {
	frames uint64
	errors uint64
	busOff uint64

	mu     sync.Mutex
	recent []time.Time
}

const fpsWindow = 10 * time.Second

func (s *statTracker) recordFrame(at time.Time) {
	atomic.AddUint64(&s.frames, 1)
	s.mu.Lock()
	s.recent = append(s.recent, at)
	s.trimLocked(at)
	s.mu.Unlock()
}

func (s *statTracker) recordError() {
	atomic.AddUint64(&s.errors, 1)
}

func (s *statTracker) recordBusOff() {
	atomic.AddUint64(&s.busOff, 1)
}

func (s *statTracker) trimLocked(now time.Time) {
	cutoff := now.Add(-fpsWindow)
	i := 0
	for i < len(s.recent) && s.recent[i].Before(cutoff) {
		i++
	}
	s.recent = s.recent[i:]
}

func (s *statTracker) snapshot() domain.ReaderStats {
	s.mu.Lock()
	s.trimLocked(time.Now())
	n := len(s.recent)
	s.mu.Unlock()

	fps := float64(n) / (fpsWindow.Seconds())
	fps = float64(int(fps*10+0.5)) / 10

	return domain.ReaderStats{
		Frames:       atomic.LoadUint64(&s.frames),
		Errors:       atomic.LoadUint64(&s.errors),
		BusOff:       atomic.LoadUint64(&s.busOff),
		FramesPerSec: fps,
	}
}
