//go:build linux

package recorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofiworker/pktcore/gnet/frame"
	"github.com/sofiworker/pktcore/gnet/pcap"
)

func TestCallbackWritesFrameToPCAPFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.pcap")

	r, err := Open(path, nil, 65535)
	require.NoError(t, err)

	raw := frame.NewRawFrame([]byte{1, 2, 3, 4}, time.Now())
	r.Callback(raw, nil)
	r.Callback(raw, nil)

	written, dropped := r.Stats()
	assert.EqualValues(t, 2, written)
	assert.EqualValues(t, 0, dropped)
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reader, err := pcap.NewReader(f)
	require.NoError(t, err)

	count := 0
	for {
		pkt, err := reader.ReadPacket()
		if err != nil {
			break
		}
		assert.Equal(t, []byte{1, 2, 3, 4}, pkt.Data)
		count++
	}
	assert.Equal(t, 2, count)
}
