//go:build linux

package inject

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofiworker/pktcore/gresolver"
	"github.com/sofiworker/pktcore/gretry"
)

type stubSender struct {
	calls   int
	failN   int
	lastIP  string
	lastLen int
}

func (s *stubSender) Send(targetIP string, data []byte) error {
	s.calls++
	s.lastIP = targetIP
	s.lastLen = len(data)
	if s.calls <= s.failN {
		return errors.New("transient send failure")
	}
	return nil
}

func TestSendToHostUsesLiteralAddressWithoutResolving(t *testing.T) {
	sender := &stubSender{}
	err := SendToHost(context.Background(), sender, gresolver.NewDefaultResolver(), "192.0.2.1", false, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", sender.lastIP)
	assert.Equal(t, 1, sender.calls)
}

func TestSendToHostRetriesTransientFailures(t *testing.T) {
	sender := &stubSender{failN: 2}
	err := SendToHost(context.Background(), sender, gresolver.NewDefaultResolver(), "192.0.2.1", false, []byte{1},
		gretry.WithMaxRetries(3), gretry.WithRetryDelay(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 3, sender.calls)
}

func TestSendToHostFailsOnUnresolvableHostname(t *testing.T) {
	sender := &stubSender{}
	overlong := strings.Repeat("a", 300) + ".example.com"
	err := SendToHost(context.Background(), sender, gresolver.NewDefaultResolver(), overlong, false, []byte{1})
	assert.Error(t, err)
	assert.Equal(t, 0, sender.calls)
}
