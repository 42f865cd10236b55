//go:build linux

package inject

import (
	"fmt"
	"net"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// ICMPInjector sends raw ICMPv4 payloads on an AF_INET/SOCK_RAW/IPPROTO_ICMP
// socket, optionally bound to a single interface via SO_BINDTODEVICE.
type ICMPInjector struct {
	logger *zap.Logger

	fd          int
	initialized atomic.Bool
}

// NewICMPInjector returns an uninitialized ICMPInjector.
func NewICMPInjector(logger *zap.Logger) *ICMPInjector {
	return &ICMPInjector{logger: nopLogger(logger), fd: -1}
}

// Initialize opens the raw ICMP socket. interfaceName may be empty, in
// which case the socket is left unbound to any particular device.
func (c *ICMPInjector) Initialize(interfaceName string) error {
	if !c.initialized.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_ICMP)
	if err != nil {
		c.initialized.Store(false)
		c.logger.Warn("icmp injector: create raw socket failed", zap.Error(err))
		return fmt.Errorf("inject: socket: %w", err)
	}

	if interfaceName != "" {
		if err := unix.SetsockoptString(fd, unix.SOL_SOCKET, unix.SO_BINDTODEVICE, interfaceName); err != nil {
			_ = unix.Close(fd)
			c.initialized.Store(false)
			c.logger.Warn("icmp injector: bind to device failed", zap.String("interface", interfaceName), zap.Error(err))
			return fmt.Errorf("inject: SO_BINDTODEVICE %s: %w", interfaceName, err)
		}
	}

	c.fd = fd
	return nil
}

// Send transmits data to targetIP (dotted-decimal IPv4).
func (c *ICMPInjector) Send(targetIP string, data []byte) error {
	if !c.initialized.Load() {
		return ErrNotInitialized
	}
	if len(data) == 0 {
		return ErrEmptyPayload
	}
	if targetIP == "" {
		return fmt.Errorf("inject: target IP cannot be empty")
	}

	ip := net.ParseIP(targetIP).To4()
	if ip == nil {
		return fmt.Errorf("inject: invalid target IPv4 address %q", targetIP)
	}

	sa := &unix.SockaddrInet4{}
	copy(sa.Addr[:], ip)

	if err := unix.Sendto(c.fd, data, 0, sa); err != nil {
		c.logger.Warn("icmp injector: send failed", zap.String("target", targetIP), zap.Error(err))
		return fmt.Errorf("inject: sendto %s: %w", targetIP, err)
	}
	return nil
}

// Close tears down the socket. Idempotent.
func (c *ICMPInjector) Close() error {
	if !c.initialized.CompareAndSwap(true, false) {
		return nil
	}
	err := closeSocket(c.fd)
	c.fd = -1
	return err
}

// IsInitialized reports whether Initialize has succeeded without a
// matching Close.
func (c *ICMPInjector) IsInitialized() bool {
	return c.initialized.Load()
}
