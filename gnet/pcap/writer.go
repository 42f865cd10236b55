package pcap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// WriterOption tunes the handful of fields spec.md §6 leaves to the
// caller. Everything else about the global header — magic, version,
// byte order, timezone, sigfigs, link type, timestamp resolution — is
// fixed and cannot be overridden; that is the point of this package.
type WriterOption func(*writerConfig) error

type writerConfig struct {
	snapLen    uint32
	bufferSize int
}

type Writer struct {
	w      io.Writer
	buf    *bufio.Writer
	header FileHeader
	closer io.Closer
}

func NewWriter(w io.Writer, opts ...WriterOption) (*Writer, error) {
	cfg := writerConfig{
		snapLen: DefaultSnapLen,
	}

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	header := FileHeader{
		MagicNumber:  MagicNumber,
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
		ThisZone:     0,
		SigFigs:      0,
		SnapLen:      cfg.snapLen,
		Network:      LinkTypeEthernet,
	}

	writer := &Writer{
		w:      w,
		header: header,
	}

	if closer, ok := w.(io.Closer); ok {
		writer.closer = closer
	}

	if cfg.bufferSize > 0 {
		writer.buf = bufio.NewWriterSize(w, cfg.bufferSize)
		writer.w = writer.buf
	}

	if err := writer.writeHeader(); err != nil {
		return nil, err
	}

	return writer, nil
}

func (w *Writer) Header() FileHeader {
	return w.header
}

func (w *Writer) WritePacket(pkt *Packet) error {
	if pkt == nil {
		return fmt.Errorf("pcap: packet is nil")
	}

	header := pkt.Header
	switch {
	case !pkt.Timestamp.IsZero():
		header.SetTimestamp(pkt.Timestamp)
	case header.TsSec == 0 && header.TsUsec == 0:
		header.SetTimestamp(time.Now().UTC())
	}

	if uint32(len(pkt.Data)) < header.InclLen {
		return fmt.Errorf("pcap: packet data shorter than captured length")
	}

	if header.InclLen == 0 {
		header.InclLen = uint32(len(pkt.Data))
	}

	// orig_len mirrors incl_len: this writer never truncates captures below snaplen.
	header.OrigLen = header.InclLen

	var hdrBytes [16]byte
	binary.LittleEndian.PutUint32(hdrBytes[0:4], header.TsSec)
	binary.LittleEndian.PutUint32(hdrBytes[4:8], header.TsUsec)
	binary.LittleEndian.PutUint32(hdrBytes[8:12], header.InclLen)
	binary.LittleEndian.PutUint32(hdrBytes[12:16], header.OrigLen)

	if _, err := w.w.Write(hdrBytes[:]); err != nil {
		return err
	}

	if _, err := w.w.Write(pkt.Data[:header.InclLen]); err != nil {
		return err
	}
	return nil
}

func (w *Writer) WritePacketData(data []byte, ts time.Time) error {
	packet := &Packet{
		Data:      data,
		Timestamp: ts,
	}
	return w.WritePacket(packet)
}

func (w *Writer) Close() error {
	if w.buf != nil {
		if err := w.buf.Flush(); err != nil {
			return err
		}
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

func (w *Writer) writeHeader() error {
	var hdr [24]byte
	binary.LittleEndian.PutUint32(hdr[0:4], w.header.MagicNumber)
	binary.LittleEndian.PutUint16(hdr[4:6], w.header.VersionMajor)
	binary.LittleEndian.PutUint16(hdr[6:8], w.header.VersionMinor)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(w.header.ThisZone))
	binary.LittleEndian.PutUint32(hdr[12:16], w.header.SigFigs)
	binary.LittleEndian.PutUint32(hdr[16:20], w.header.SnapLen)
	binary.LittleEndian.PutUint32(hdr[20:24], w.header.Network)
	_, err := w.w.Write(hdr[:])
	return err
}

// WithSnapLen overrides the global header's snaplen field (default
// DefaultSnapLen). It does not truncate captured packet data; callers
// that need truncation apply it before calling WritePacket.
func WithSnapLen(snapLen uint32) WriterOption {
	return func(cfg *writerConfig) error {
		if snapLen == 0 {
			return fmt.Errorf("pcap: snap length must be positive")
		}
		cfg.snapLen = snapLen
		return nil
	}
}

// WithBuffer enables buffered writes to cut down on syscalls.
func WithBuffer(size int) WriterOption {
	return func(cfg *writerConfig) error {
		if size <= 0 {
			return fmt.Errorf("pcap: buffer size must be positive")
		}
		cfg.bufferSize = size
		return nil
	}
}
