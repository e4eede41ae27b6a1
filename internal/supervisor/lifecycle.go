package supervisor

import (
	"sync"
	"time"

	"github.com/openvehicle/canagent/internal/domain"
	"github.com/openvehicle/canagent/internal/ports"
)

// group tracks background goroutines (retry worker, health monitor) so
// the supervisor can join them with a bounded grace period on shutdown.
type group struct {
	wg  sync.WaitGroup
	log ports.Logger
}

func newGroup(log ports.Logger) *group {
	return &group{log: log}
}

func (g *group) spawn(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// join waits up to timeout for every tracked goroutine to finish, logging
// and returning domain.ErrShutdownTimeout if the grace period expires
// first.
func (g *group) join(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		g.log.Warn("background tasks did not exit within grace period", ports.Duration("timeout", timeout))
		return domain.ErrShutdownTimeout
	}
}
