//go:build linux

// Package capture owns a single raw AF_PACKET socket bound to one network
// interface and runs the blocking receive loop that feeds frames to a
// handler. It is the lowest-level producer in the sniffer pipeline: the
// ring buffer and parser sit above it and never see a socket directly.
package capture

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/sofiworker/pktcore/gnet/frame"
)

// Handler receives one captured frame. It must not retain data beyond the
// call; the capture loop reuses its buffer on the next read.
type Handler func(data []byte)

// State is the capture lifecycle: New -> Initialized -> Capturing -> Stopped.
type State int32

const (
	StateNew State = iota
	StateInitialized
	StateCapturing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInitialized:
		return "initialized"
	case StateCapturing:
		return "capturing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// pollInterval is the sleep on EAGAIN/EWOULDBLOCK between non-blocking
// read attempts, matching the original capture loop's busy-wait cadence.
const pollInterval = 100 * time.Microsecond

// Capture owns one AF_PACKET/SOCK_RAW socket bound to interfaceName.
type Capture struct {
	interfaceName string
	logger        *zap.Logger

	fd    int
	state atomic.Int32
}

// New returns a Capture for interfaceName. It does not touch the network
// until Initialize is called.
func New(interfaceName string, logger *zap.Logger) *Capture {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capture{
		interfaceName: interfaceName,
		logger:        logger,
		fd:            -1,
	}
}

// State reports the current lifecycle state.
func (c *Capture) State() State {
	return State(c.state.Load())
}

// IsCapturing reports whether the receive loop is currently running.
func (c *Capture) IsCapturing() bool {
	return c.State() == StateCapturing
}

// Initialize creates the raw socket, sets it non-blocking, and binds it to
// the interface's link-layer address via its kernel-assigned ifindex.
// Requires CAP_NET_RAW (or root).
func (c *Capture) Initialize() error {
	if c.interfaceName == "" {
		return errors.New("capture: interface name is required")
	}

	fd, err := createRawSocket()
	if err != nil {
		c.logger.Warn("capture: create raw socket failed", zap.Error(err))
		return err
	}

	if err := bindToInterface(fd, c.interfaceName); err != nil {
		_ = unix.Close(fd)
		c.logger.Warn("capture: bind to interface failed", zap.String("interface", c.interfaceName), zap.Error(err))
		return err
	}

	c.fd = fd
	c.state.Store(int32(StateInitialized))
	return nil
}

// StartCapture blocks the calling goroutine in a receive loop until
// StopCapture closes the socket out from under it, or an unrecoverable
// read error occurs. For every frame of positive length, handler is
// invoked inline on the capturing goroutine.
func (c *Capture) StartCapture(handler Handler) error {
	if c.fd < 0 {
		return errors.New("capture: not initialized")
	}
	if !c.state.CompareAndSwap(int32(StateInitialized), int32(StateCapturing)) {
		return errors.New("capture: already capturing or not initialized")
	}

	buf := make([]byte, frame.MaxPacketSize)
	for c.IsCapturing() {
		n, _, err := unix.Recvfrom(c.fd, buf, 0)
		if err != nil {
			switch {
			case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK):
				time.Sleep(pollInterval)
				continue
			case errors.Is(err, unix.EBADF) || errors.Is(err, unix.ENOTSOCK):
				// socket closed concurrently by StopCapture: normal termination.
				c.state.Store(int32(StateStopped))
				return nil
			default:
				c.logger.Warn("capture: receive error", zap.String("interface", c.interfaceName), zap.Error(err))
				c.state.Store(int32(StateStopped))
				return fmt.Errorf("capture: receive: %w", err)
			}
		}

		if n > 0 && handler != nil {
			handler(buf[:n])
		}
	}

	c.state.Store(int32(StateStopped))
	return nil
}

// StopCapture clears the capturing flag and shuts down then closes the
// socket. This is the only safe way to unblock StartCapture's receive loop
// from another goroutine: the in-flight Recvfrom observes EBADF or
// ENOTSOCK and returns. Idempotent.
func (c *Capture) StopCapture() error {
	prev := State(c.state.Swap(int32(StateStopped)))
	if prev != StateCapturing && prev != StateInitialized {
		return nil
	}
	if c.fd < 0 {
		return nil
	}

	_ = unix.Shutdown(c.fd, unix.SHUT_RDWR)
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}

func createRawSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return -1, fmt.Errorf("socket: %w (raw sockets require CAP_NET_RAW)", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("set nonblocking: %w", err)
	}
	return fd, nil
}

func bindToInterface(fd int, interfaceName string) error {
	ifindex, err := interfaceIndex(fd, interfaceName)
	if err != nil {
		return err
	}
	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  ifindex,
	}
	if err := unix.Bind(fd, sa); err != nil {
		return fmt.Errorf("bind %s: %w", interfaceName, err)
	}
	return nil
}

func interfaceIndex(fd int, interfaceName string) (int, error) {
	req, err := unix.NewIfreq(interfaceName)
	if err != nil {
		return 0, fmt.Errorf("ifreq %s: %w", interfaceName, err)
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFINDEX, req); err != nil {
		return 0, fmt.Errorf("SIOCGIFINDEX %s: %w", interfaceName, err)
	}
	return int(req.Uint32()), nil
}

// htons converts a 16-bit value from host to network byte order.
func htons(v uint32) uint16 {
	return uint16(v<<8) | uint16(v>>8)
}
