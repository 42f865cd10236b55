//go:build linux

package inject

import (
	"fmt"
	"net"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/sofiworker/pktcore/gnet/netdev"
)

// rsDestination is the fixed all-routers multicast address Router
// Solicitations are sent to.
const rsDestination = "ff02::2"

// IPv6RSInjector sends IPv6 Router Solicitation messages. Unlike the other
// ICMPv6-family injectors, Send takes no destination argument: the
// destination is always ff02::2, and the 16-byte payload is synthesized
// on each Send from the interface MAC address captured at Initialize time.
type IPv6RSInjector struct {
	logger *zap.Logger

	fd          int
	ifindex     int
	sourceMAC   net.HardwareAddr
	initialized atomic.Bool
}

// NewIPv6RSInjector returns an uninitialized IPv6RSInjector.
func NewIPv6RSInjector(logger *zap.Logger) *IPv6RSInjector {
	return &IPv6RSInjector{logger: nopLogger(logger), fd: -1}
}

// Initialize resolves interfaceName's ifindex and MAC address, opens the
// raw ICMPv6 socket, and binds it to the interface. Fails if the MAC is
// the all-zero address or the interface resolves to ifindex 0.
func (r *IPv6RSInjector) Initialize(interfaceName string) error {
	if !r.initialized.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}
	if interfaceName == "" {
		r.initialized.Store(false)
		return fmt.Errorf("inject: ipv6rs: interface name is required")
	}

	l, err := netdev.ByName(interfaceName)
	if err != nil {
		r.initialized.Store(false)
		return fmt.Errorf("inject: ipv6rs: resolve interface %s: %w", interfaceName, err)
	}
	if l.Index == 0 {
		r.initialized.Store(false)
		return fmt.Errorf("inject: ipv6rs: invalid interface name %s", interfaceName)
	}
	if len(l.HardwareAddr) != 6 || isZeroMAC(l.HardwareAddr) {
		r.initialized.Store(false)
		return fmt.Errorf("inject: ipv6rs: invalid MAC address for %s", interfaceName)
	}

	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_RAW, unix.IPPROTO_ICMPV6)
	if err != nil {
		r.initialized.Store(false)
		r.logger.Warn("ipv6rs injector: create raw socket failed", zap.Error(err))
		return fmt.Errorf("inject: ipv6rs: socket: %w", err)
	}

	if err := unix.SetsockoptString(fd, unix.SOL_SOCKET, unix.SO_BINDTODEVICE, interfaceName); err != nil {
		_ = unix.Close(fd)
		r.initialized.Store(false)
		r.logger.Warn("ipv6rs injector: bind to device failed", zap.String("interface", interfaceName), zap.Error(err))
		return fmt.Errorf("inject: ipv6rs: SO_BINDTODEVICE %s: %w", interfaceName, err)
	}

	r.fd = fd
	r.ifindex = l.Index
	r.sourceMAC = l.HardwareAddr
	return nil
}

// Send transmits a Router Solicitation to ff02::2 with its source
// link-layer-address option set from the interface's MAC.
func (r *IPv6RSInjector) Send() error {
	if !r.initialized.Load() {
		return ErrNotInitialized
	}

	payload := routerSolicitationPayload(r.sourceMAC)

	ip := net.ParseIP(rsDestination).To16()
	sa := &unix.SockaddrInet6{ZoneId: uint32(r.ifindex)}
	copy(sa.Addr[:], ip)

	if err := unix.Sendto(r.fd, payload, 0, sa); err != nil {
		r.logger.Warn("ipv6rs injector: send failed", zap.Error(err))
		return fmt.Errorf("inject: ipv6rs: sendto %s: %w", rsDestination, err)
	}
	return nil
}

// Close tears down the socket. Idempotent.
func (r *IPv6RSInjector) Close() error {
	if !r.initialized.CompareAndSwap(true, false) {
		return nil
	}
	err := closeSocket(r.fd)
	r.fd = -1
	r.ifindex = 0
	r.sourceMAC = nil
	return err
}

// IsInitialized reports whether Initialize has succeeded without a
// matching Close.
func (r *IPv6RSInjector) IsInitialized() bool {
	return r.initialized.Load()
}

func isZeroMAC(mac net.HardwareAddr) bool {
	for _, b := range mac {
		if b != 0 {
			return false
		}
	}
	return true
}

// routerSolicitationPayload builds the 16-byte Router Solicitation ICMPv6
// message: type 133, code 0, zero checksum (kernel fills it in), zero
// reserved, a source-link-layer-address option (type 1, length 1 in
// 8-byte units) carrying mac's six bytes.
func routerSolicitationPayload(mac net.HardwareAddr) []byte {
	packet := make([]byte, 16)
	packet[0] = 133
	packet[1] = 0
	// packet[2:4] checksum, packet[4:8] reserved: left zero.
	packet[8] = 1
	packet[9] = 1

	clean := cleanMAC(mac.String())
	for i := 0; i < 6 && i*2+1 < len(clean); i++ {
		b, err := strconv.ParseUint(clean[i*2:i*2+2], 16, 8)
		if err != nil {
			break
		}
		packet[10+i] = byte(b)
	}
	return packet
}
