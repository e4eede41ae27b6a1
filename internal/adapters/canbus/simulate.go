package canbus

import (
	"context"
	"math/rand"
	"time"

	"github.com/openvehicle/canagent/internal/dbc"
	"github.com/openvehicle/canagent/internal/domain"
	"github.com/openvehicle/canagent/internal/ports"
)

// SimulatedReader emits every message in a dbc.Database at a fixed rate,
// generating deterministic-shape synthetic signal values for each one.
type SimulatedReader struct {
	db          *dbc.Database
	frequencyHz int
	duration    time.Duration // zero means unbounded
	log         ports.Logger

	rng       *rand.Rand
	start     time.Time
	queue     []domain.Frame
	stats     statTracker
	nextTick  time.Time
	tickEvery time.Duration
}

// NewSimulatedReader constructs a reader that plays db's messages at
// frequencyHz frames-per-message-per-second. duration of zero runs
// forever.
func NewSimulatedReader(db *dbc.Database, frequencyHz int, duration time.Duration, log ports.Logger) *SimulatedReader {
	if frequencyHz <= 0 {
		frequencyHz = 100
	}
	return &SimulatedReader{
		db:          db,
		frequencyHz: frequencyHz,
		duration:    duration,
		log:         log,
		rng:         rand.New(rand.NewSource(1)),
		tickEvery:   time.Second / time.Duration(frequencyHz),
	}
}

// Open seeds the simulation clock.
func (s *SimulatedReader) Open(ctx context.Context) error {
	s.start = time.Now()
	s.nextTick = s.start
	return nil
}

// Next blocks until the next simulated tick is due, then returns the next
// queued frame (generating a fresh batch — one per message in the
// database — when the queue drains).
func (s *SimulatedReader) Next(ctx context.Context) (domain.Frame, error) {
	for len(s.queue) == 0 {
		if err := ctx.Err(); err != nil {
			return domain.Frame{}, err
		}

		elapsed := time.Since(s.start)
		if s.duration > 0 && elapsed >= s.duration {
			<-ctx.Done()
			return domain.Frame{}, ctx.Err()
		}

		now := time.Now()
		if wait := s.nextTick.Sub(now); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return domain.Frame{}, ctx.Err()
			case <-timer.C:
			}
		}
		s.nextTick = s.nextTick.Add(s.tickEvery)
		s.generateTick(elapsed.Seconds())
	}

	frame := s.queue[0]
	s.queue = s.queue[1:]
	s.stats.recordFrame(frame.Timestamp)
	return frame, nil
}

func (s *SimulatedReader) generateTick(elapsedSec float64) {
	now := time.Now()
	for _, msg := range s.db.Messages {
		values := make(map[string]float64, len(msg.Signals))
		for _, sig := range msg.Signals {
			values[sig.Name] = dbc.GenerateSignalValue(sig, elapsedSec, s.rng)
		}
		data, err := msg.Encode(values)
		if err != nil {
			s.log.Warn("simulator failed to encode message", ports.String("message", msg.Name), ports.Err(err))
			continue
		}
		s.queue = append(s.queue, domain.Frame{
			Timestamp: now,
			ArbID:     msg.FrameID,
			DLC:       uint8(len(data)),
			Data:      data,
			Channel:   "sim0",
		})
	}
}

// Stats returns a point-in-time snapshot of reader counters.
func (s *SimulatedReader) Stats() domain.ReaderStats {
	return s.stats.snapshot()
}

// Close is a no-op; the simulator holds no OS resources.
func (s *SimulatedReader) Close() error {
	return nil
}
