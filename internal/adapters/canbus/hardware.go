package canbus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/openvehicle/canagent/internal/config"
	"github.com/openvehicle/canagent/internal/domain"
	"github.com/openvehicle/canagent/internal/ports"
)

// rawFrame matches the kernel's struct can_frame layout: a 32-bit
// arbitration ID (with EFF/RTR/ERR flag bits in the high byte), a 1-byte
// DLC, 3 bytes of padding, and up to 8 data bytes.
type rawFrame struct {
	id   uint32
	dlc  uint8
	pad  uint8
	res0 uint8
	res1 uint8
	data [8]uint8
}

const rawFrameSize = 16

const (
	errFlag = 0x20000000
	effFlag = 0x80000000
	rtrFlag = 0x40000000
	idMask  = 0x1FFFFFFF
)

const (
	reconnectInitial = time.Second
	reconnectMax     = 30 * time.Second
)

// readerState is the reconnect state machine's position.
type readerState int

const (
	stateDisconnected readerState = iota
	stateConnected
	stateReconnecting
)

// HardwareReader reads frames from a SocketCAN interface, reconnecting
// forever on bus-off or interface loss.
type HardwareReader struct {
	cfg config.CANConfig
	log ports.Logger

	fd    int
	state readerState

	backoff time.Duration
	stats   statTracker
}

// NewHardwareReader constructs a reader for cfg.Channel. Open() performs
// the actual socket bind.
func NewHardwareReader(cfg config.CANConfig, log ports.Logger) *HardwareReader {
	return &HardwareReader{cfg: cfg, log: log, fd: -1, state: stateDisconnected, backoff: reconnectInitial}
}

// Open binds the SocketCAN socket. On success the reconnect backoff is
// reset to its initial value.
func (r *HardwareReader) Open(ctx context.Context) error {
	fd, err := r.bind()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBusOpen, err)
	}
	r.fd = fd
	r.state = stateConnected
	r.backoff = reconnectInitial
	return nil
}

func (r *HardwareReader) bind() (int, error) {
	iface, err := net.InterfaceByName(r.cfg.Channel)
	if err != nil {
		return -1, fmt.Errorf("lookup interface %s: %w", r.cfg.Channel, err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return -1, fmt.Errorf("open CAN_RAW socket: %w", err)
	}

	timeout := unix.Timeval{Sec: 1, Usec: 0}
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &timeout); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("set receive timeout: %w", err)
	}

	if r.cfg.ReceiveOwnMessages {
		if err := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_RECV_OWN_MSGS, 1); err != nil {
			unix.Close(fd)
			return -1, fmt.Errorf("enable receive-own-messages: %w", err)
		}
	}

	if len(r.cfg.Filters) > 0 {
		r.log.Warn("configured CAN filters are not yet applied by this reader", ports.Int("count", len(r.cfg.Filters)))
	}

	addr := &unix.SockaddrCAN{Ifindex: iface.Index}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind %s: %w", r.cfg.Channel, err)
	}
	return fd, nil
}

// Next blocks until a frame arrives or ctx is done. Each socket read
// blocks at most 1 s, so cancellation is observed between reads. Bus-off
// and other transient read errors drive the reconnect state machine
// instead of propagating; Next only returns an error if ctx is done.
func (r *HardwareReader) Next(ctx context.Context) (domain.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Frame{}, err
		}

		if r.state == stateReconnecting {
			if err := r.waitAndReconnect(ctx); err != nil {
				return domain.Frame{}, err
			}
			continue
		}

		buf := make([]byte, rawFrameSize)
		n, err := unix.Read(r.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
				continue // receive timeout: give the caller a chance to observe shutdown
			}
			r.enterReconnecting("read error: " + err.Error())
			continue
		}
		if n != rawFrameSize {
			r.stats.recordError()
			continue
		}

		raw := (*rawFrame)(unsafe.Pointer(&buf[0]))
		if raw.id&errFlag != 0 {
			// a single error frame (bit/stuff/form/ACK error) is routine bus
			// noise, not a dropped interface: count it and keep reading.
			r.stats.recordError()
			continue
		}

		now := time.Now()
		frame := domain.Frame{
			Timestamp: now,
			ArbID:     raw.id & idMask,
			DLC:       raw.dlc,
			Data:      append([]byte(nil), raw.data[:raw.dlc]...),
			FD:        r.cfg.FD,
			Channel:   r.cfg.Channel,
		}
		r.stats.recordFrame(now)
		return frame, nil
	}
}

func (r *HardwareReader) enterReconnecting(reason string) {
	if r.state == stateReconnecting {
		return
	}
	r.log.Warn("CAN bus entering reconnect", ports.String("reason", reason), ports.String("channel", r.cfg.Channel))
	r.stats.recordBusOff()
	r.state = stateReconnecting
	if r.fd >= 0 {
		unix.Close(r.fd)
		r.fd = -1
	}
}

func (r *HardwareReader) waitAndReconnect(ctx context.Context) error {
	timer := time.NewTimer(r.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	fd, err := r.bind()
	if err != nil {
		r.log.Warn("CAN reconnect attempt failed", ports.Err(err), ports.Duration("backoff", r.backoff))
		r.backoff *= 2
		if r.backoff > reconnectMax {
			r.backoff = reconnectMax
		}
		return nil
	}

	r.fd = fd
	r.state = stateConnected
	r.backoff = reconnectInitial
	r.log.Info("CAN bus reconnected", ports.String("channel", r.cfg.Channel))
	return nil
}

// Stats returns a point-in-time snapshot of reader counters.
func (r *HardwareReader) Stats() domain.ReaderStats {
	return r.stats.snapshot()
}

// Close idempotently shuts the socket down.
func (r *HardwareReader) Close() error {
	if r.fd < 0 {
		return nil
	}
	err := unix.Close(r.fd)
	r.fd = -1
	r.state = stateDisconnected
	return err
}
