//go:build linux

package inject

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/sofiworker/pktcore/gnet/netdev"
)

// BasicInjector sends arbitrary link-layer frames on an AF_PACKET/SOCK_RAW
// socket bound to one interface's ifindex.
type BasicInjector struct {
	logger *zap.Logger

	fd      int
	ifindex int

	initialized atomic.Bool
}

// NewBasicInjector returns an uninitialized BasicInjector.
func NewBasicInjector(logger *zap.Logger) *BasicInjector {
	return &BasicInjector{logger: nopLogger(logger), fd: -1}
}

// Initialize resolves interfaceName's ifindex, opens the raw socket, and
// binds it to that ifindex via sockaddr_ll.
func (b *BasicInjector) Initialize(interfaceName string) error {
	if !b.initialized.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}

	l, err := netdev.ByName(interfaceName)
	if err != nil {
		b.initialized.Store(false)
		return fmt.Errorf("inject: resolve interface %s: %w", interfaceName, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		b.initialized.Store(false)
		b.logger.Warn("basic injector: create raw socket failed", zap.Error(err))
		return fmt.Errorf("inject: socket: %w", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrLinklayer{Protocol: htons(unix.ETH_P_ALL), Ifindex: l.Index}); err != nil {
		_ = unix.Close(fd)
		b.initialized.Store(false)
		b.logger.Warn("basic injector: bind to interface failed", zap.String("interface", interfaceName), zap.Error(err))
		return fmt.Errorf("inject: bind %s: %w", interfaceName, err)
	}

	b.fd = fd
	b.ifindex = l.Index
	return nil
}

// Send transmits data on the bound interface via sockaddr_ll.
func (b *BasicInjector) Send(data []byte) error {
	if !b.initialized.Load() {
		return ErrNotInitialized
	}
	if len(data) == 0 {
		return ErrEmptyPayload
	}

	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  b.ifindex,
	}
	if err := unix.Sendto(b.fd, data, 0, sa); err != nil {
		b.logger.Warn("basic injector: send failed", zap.Error(err))
		return fmt.Errorf("inject: sendto: %w", err)
	}
	return nil
}

// Close tears down the socket. Idempotent.
func (b *BasicInjector) Close() error {
	if !b.initialized.CompareAndSwap(true, false) {
		return nil
	}
	err := closeSocket(b.fd)
	b.fd = -1
	b.ifindex = 0
	return err
}

// IsInitialized reports whether Initialize has succeeded without a
// matching Close.
func (b *BasicInjector) IsInitialized() bool {
	return b.initialized.Load()
}
