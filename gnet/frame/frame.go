// Package frame holds the capture/parse/inject data model: the fixed-size
// raw frame handed from the kernel into the ring, and the layered result a
// descriptor-driven parse produces from it.
package frame

import (
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	// MaxPacketSize bounds a single captured frame, including jumbo frames.
	MaxPacketSize = 9000
	// RingSize is the fixed capacity of the capture/processing ring buffer.
	RingSize = 128
)

// RawFrame is a fixed-size, by-value snapshot of a captured link-layer
// frame. It is cheap to copy (≈9 KB) by design: the ring buffer and its
// consumer each get their own copy, eliminating lifetime hazards between
// producer and consumer threads.
type RawFrame struct {
	Bytes     [MaxPacketSize]byte
	Length    int
	Timestamp time.Time
	Valid     bool
}

// NewRawFrame copies up to MaxPacketSize bytes of data into a new valid frame.
func NewRawFrame(data []byte, ts time.Time) RawFrame {
	var f RawFrame
	n := len(data)
	if n > MaxPacketSize {
		n = MaxPacketSize
	}
	copy(f.Bytes[:n], data[:n])
	f.Length = n
	f.Timestamp = ts
	f.Valid = true
	return f
}

// Data returns the meaningful prefix of Bytes.
func (f *RawFrame) Data() []byte {
	return f.Bytes[:f.Length]
}

// String renders an 11-bytes-per-line hex dump, useful for debug logging.
func (f *RawFrame) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "RawFrame{length=%d valid=%v ts=%s}\n", f.Length, f.Valid, f.Timestamp.Format(time.RFC3339Nano))
	data := f.Data()
	for i := 0; i < len(data); i += 11 {
		end := i + 11
		if end > len(data) {
			end = len(data)
		}
		for _, bt := range data[i:end] {
			fmt.Fprintf(&b, "%02X ", bt)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ParsedLayer is one protocol layer emitted by the descent in gnet/parser.
// Fields key is "{relOffset}_{bitLen}_{absBitOffset}" mapping to the
// extracted unsigned value, per the wire delivery contract.
type ParsedLayer struct {
	SourceFile string
	Fields     map[string]uint64
}

// ParsedPacket is the ordered sequence of layers, outermost first.
type ParsedPacket []ParsedLayer

// String renders each layer's source file and field count, for debug logging.
func (p ParsedPacket) String() string {
	var b strings.Builder
	for i, l := range p {
		fmt.Fprintf(&b, "layer[%d] file=%s fields=%d\n", i, l.SourceFile, len(l.Fields))
	}
	return b.String()
}

// DeviceModel is a thin record of an interface's link identity, produced by
// injector/sniffer startup diagnostics. It intentionally carries no
// behavior beyond string rendering; it is not a subsystem.
type DeviceModel struct {
	MAC net.HardwareAddr
	IP  net.IP
}

func (d DeviceModel) String() string {
	return fmt.Sprintf("DeviceModel{mac=%s ip=%s}", d.MAC, d.IP)
}
