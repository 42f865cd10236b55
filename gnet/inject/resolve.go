//go:build linux

package inject

import (
	"context"
	"fmt"
	"net"

	"github.com/sofiworker/pktcore/gresolver"
	"github.com/sofiworker/pktcore/gretry"
)

// HostSender is the capability a hostname-aware send needs: an injector
// whose Send takes a resolved address string. ICMPInjector and
// ICMPv6Injector/IPv6NSInjector (via their Send(targetIP, data) shape)
// satisfy this directly.
type HostSender interface {
	Send(targetIP string, data []byte) error
}

// resolveHost looks host up through gresolver's pure-Go resolver and
// returns the first address matching wantV6.
func resolveHost(ctx context.Context, resolver *gresolver.DefaultResolver, host string, wantV6 bool) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}

	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", fmt.Errorf("inject: resolve %s: %w", host, err)
	}
	for _, addr := range addrs {
		is4 := addr.IP.To4() != nil
		if is4 != wantV6 {
			return addr.IP.String(), nil
		}
	}
	return "", fmt.Errorf("inject: no %s address found for %s", addrFamilyLabel(wantV6), host)
}

func addrFamilyLabel(wantV6 bool) string {
	if wantV6 {
		return "IPv6"
	}
	return "IPv4"
}

// SendToHost resolves host (a literal address or a DNS name, via
// gresolver.NewDefaultResolver) and retries sender.Send against it using
// gretry, matching the original CLI's "resolve then retry a flaky raw
// send" behavior for hostname targets.
func SendToHost(ctx context.Context, sender HostSender, resolver *gresolver.DefaultResolver, host string, wantV6 bool, data []byte, retryOpts ...gretry.Option) error {
	addr, err := resolveHost(ctx, resolver, host, wantV6)
	if err != nil {
		return err
	}

	options := gretry.NewErrorHandlingOptions(retryOpts...)
	result := gretry.Do(ctx, func() error {
		return sender.Send(addr, data)
	}, options)
	return result.Error
}
