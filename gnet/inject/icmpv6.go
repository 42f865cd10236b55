//go:build linux

package inject

import (
	"fmt"
	"net"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/sofiworker/pktcore/gnet/netdev"
)

// icmpv6Sender is the shared implementation behind ICMPv6Injector and
// IPv6NSInjector: per spec.md §4.F the two are semantically distinct
// components with identical address handling (AF_INET6/SOCK_RAW/
// IPPROTO_ICMPV6, SO_BINDTODEVICE, link-local/multicast scope-id rule).
type icmpv6Sender struct {
	logger *zap.Logger

	fd          int
	ifindex     int
	initialized atomic.Bool
}

func newICMPv6Sender(logger *zap.Logger) *icmpv6Sender {
	return &icmpv6Sender{logger: nopLogger(logger), fd: -1}
}

func (s *icmpv6Sender) initialize(interfaceName, label string) error {
	if !s.initialized.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}
	if interfaceName == "" {
		s.initialized.Store(false)
		return fmt.Errorf("inject: %s: interface name is required", label)
	}

	l, err := netdev.ByName(interfaceName)
	if err != nil {
		s.initialized.Store(false)
		return fmt.Errorf("inject: %s: resolve interface %s: %w", label, interfaceName, err)
	}

	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_RAW, unix.IPPROTO_ICMPV6)
	if err != nil {
		s.initialized.Store(false)
		s.logger.Warn("icmpv6 sender: create raw socket failed", zap.String("label", label), zap.Error(err))
		return fmt.Errorf("inject: %s: socket: %w", label, err)
	}

	if err := unix.SetsockoptString(fd, unix.SOL_SOCKET, unix.SO_BINDTODEVICE, interfaceName); err != nil {
		_ = unix.Close(fd)
		s.initialized.Store(false)
		s.logger.Warn("icmpv6 sender: bind to device failed", zap.String("label", label), zap.String("interface", interfaceName), zap.Error(err))
		return fmt.Errorf("inject: %s: SO_BINDTODEVICE %s: %w", label, interfaceName, err)
	}

	s.fd = fd
	s.ifindex = l.Index
	return nil
}

func (s *icmpv6Sender) send(targetIPv6 string, data []byte, label string) error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}
	if len(data) == 0 {
		return ErrEmptyPayload
	}
	if targetIPv6 == "" {
		return fmt.Errorf("inject: %s: target IPv6 cannot be empty", label)
	}

	ip := net.ParseIP(targetIPv6).To16()
	if ip == nil {
		return fmt.Errorf("inject: %s: invalid target IPv6 address %q", label, targetIPv6)
	}

	sa := &unix.SockaddrInet6{}
	copy(sa.Addr[:], ip)
	if isLinkLocalTarget(targetIPv6) || isMulticastTarget(targetIPv6) {
		sa.ZoneId = uint32(s.ifindex)
	}

	if err := unix.Sendto(s.fd, data, 0, sa); err != nil {
		s.logger.Warn("icmpv6 sender: send failed", zap.String("label", label), zap.String("target", targetIPv6), zap.Error(err))
		return fmt.Errorf("inject: %s: sendto %s: %w", label, targetIPv6, err)
	}
	return nil
}

func (s *icmpv6Sender) close() error {
	if !s.initialized.CompareAndSwap(true, false) {
		return nil
	}
	err := closeSocket(s.fd)
	s.fd = -1
	s.ifindex = 0
	return err
}

func (s *icmpv6Sender) isInitialized() bool {
	return s.initialized.Load()
}

// ICMPv6Injector sends raw ICMPv6 payloads to an arbitrary IPv6 target.
type ICMPv6Injector struct {
	sender *icmpv6Sender
}

// NewICMPv6Injector returns an uninitialized ICMPv6Injector.
func NewICMPv6Injector(logger *zap.Logger) *ICMPv6Injector {
	return &ICMPv6Injector{sender: newICMPv6Sender(logger)}
}

func (i *ICMPv6Injector) Initialize(interfaceName string) error {
	return i.sender.initialize(interfaceName, "icmpv6")
}

func (i *ICMPv6Injector) Send(targetIPv6 string, data []byte) error {
	return i.sender.send(targetIPv6, data, "icmpv6")
}

func (i *ICMPv6Injector) Close() error        { return i.sender.close() }
func (i *ICMPv6Injector) IsInitialized() bool { return i.sender.isInitialized() }

// IPv6NSInjector sends IPv6 Neighbor Solicitation messages. It is
// semantically distinct from ICMPv6Injector but shares identical socket
// and address handling per spec.md §4.F.
type IPv6NSInjector struct {
	sender *icmpv6Sender
}

// NewIPv6NSInjector returns an uninitialized IPv6NSInjector.
func NewIPv6NSInjector(logger *zap.Logger) *IPv6NSInjector {
	return &IPv6NSInjector{sender: newICMPv6Sender(logger)}
}

func (i *IPv6NSInjector) Initialize(interfaceName string) error {
	return i.sender.initialize(interfaceName, "ipv6ns")
}

func (i *IPv6NSInjector) Send(targetIPv6 string, data []byte) error {
	return i.sender.send(targetIPv6, data, "ipv6ns")
}

func (i *IPv6NSInjector) Close() error        { return i.sender.close() }
func (i *IPv6NSInjector) IsInitialized() bool { return i.sender.isInitialized() }
