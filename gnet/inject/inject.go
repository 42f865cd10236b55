//go:build linux

// Package inject implements the raw-socket packet injector family: a
// link-layer sender plus four IP-layer senders (ICMPv4, ICMPv6, IPv6
// Neighbor Solicitation, IPv6 Router Solicitation). Every injector shares
// the same contract — Initialize, Send, Close, IsInitialized — and the
// same double-initialization guard via an atomic flag.
package inject

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var (
	// ErrNotInitialized is returned by Send/Close-adjacent calls made
	// before a successful Initialize.
	ErrNotInitialized = errors.New("inject: not initialized")
	// ErrAlreadyInitialized guards against double-initialization.
	ErrAlreadyInitialized = errors.New("inject: already initialized")
	// ErrEmptyPayload is returned when Send is given no data.
	ErrEmptyPayload = errors.New("inject: payload is empty")
)

// htons converts a 16-bit value from host to network byte order.
func htons(v uint32) uint16 {
	return uint16(v<<8) | uint16(v>>8)
}

// isLinkLocalTarget reports whether the textual IPv6 target starts with
// "fe80", case-insensitively — a string prefix check on the caller-supplied
// text rather than on the parsed address, matching the
// original scope-id policy.
func isLinkLocalTarget(target string) bool {
	return len(target) >= 4 && strings.EqualFold(target[:4], "fe80")
}

// isMulticastTarget reports whether the textual IPv6 target starts with
// "ff", case-insensitively.
func isMulticastTarget(target string) bool {
	return len(target) >= 2 && strings.EqualFold(target[:2], "ff")
}

// cleanMAC strips ':' and '-' separators from a MAC address string.
func cleanMAC(mac string) string {
	mac = strings.ReplaceAll(mac, ":", "")
	mac = strings.ReplaceAll(mac, "-", "")
	return mac
}

func closeSocket(fd int) error {
	if fd < 0 {
		return nil
	}
	_ = unix.Shutdown(fd, unix.SHUT_RDWR)
	return unix.Close(fd)
}

func nopLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
