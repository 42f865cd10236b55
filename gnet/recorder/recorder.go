//go:build linux

// Package recorder bridges a sniffer session to an on-disk PCAP file: its
// Callback implements gnet/sniffer.Callback and appends every raw frame to
// a gnet/pcap.Writer, matching the original sniffer_service's "save every
// captured frame" delivery path.
package recorder

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/sofiworker/pktcore/gnet/frame"
	"github.com/sofiworker/pktcore/gnet/pcap"
)

// Recorder serializes concurrent callback invocations and writes each raw
// frame to an underlying PCAP writer.
type Recorder struct {
	logger *zap.Logger

	mu     sync.Mutex
	writer *pcap.Writer
	closer io.Closer

	written int64
	dropped int64
}

// Open creates (or truncates) path and starts a new PCAP capture file on
// it: a global header with the Ethernet link type (DLT_EN10MB) and snapLen
// as the recorded snap length.
func Open(path string, logger *zap.Logger, snapLen uint32) (*Recorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: create %s: %w", path, err)
	}

	w, err := pcap.NewWriter(f, pcap.WithSnapLen(snapLen))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("recorder: new writer: %w", err)
	}

	return &Recorder{logger: logger, writer: w, closer: f}, nil
}

// Callback is a gnet/sniffer.Callback that appends raw to the capture
// file. Parse failures never block recording: the raw bytes are always
// the thing worth keeping.
func (r *Recorder) Callback(raw frame.RawFrame, _ frame.ParsedPacket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writer.WritePacketData(raw.Data(), raw.Timestamp); err != nil {
		r.dropped++
		r.logger.Warn("recorder: write packet failed", zap.Error(err))
		return
	}
	r.written++
}

// Stats returns the number of frames written and dropped so far.
func (r *Recorder) Stats() (written, dropped int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written, r.dropped
}

// Close flushes and closes the underlying file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.writer.Close()
	if cerr := r.closer.Close(); err == nil {
		err = cerr
	}
	return err
}
