package pcap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// Reader reads the single fixed pcap format this package writes. It
// rejects any file whose magic number isn't MagicNumber — there is no
// byte-swapped or nanosecond-resolution variant to fall back to.
type Reader struct {
	r      io.Reader
	header FileHeader
}

func NewReader(r io.Reader) (*Reader, error) {
	var hdrBytes [24]byte
	if _, err := io.ReadFull(r, hdrBytes[:]); err != nil {
		return nil, err
	}

	magic := binary.LittleEndian.Uint32(hdrBytes[0:4])
	if magic != MagicNumber {
		return nil, ErrInvalidMagicNumber
	}

	header := FileHeader{
		MagicNumber:  magic,
		VersionMajor: binary.LittleEndian.Uint16(hdrBytes[4:6]),
		VersionMinor: binary.LittleEndian.Uint16(hdrBytes[6:8]),
		ThisZone:     int32(binary.LittleEndian.Uint32(hdrBytes[8:12])),
		SigFigs:      binary.LittleEndian.Uint32(hdrBytes[12:16]),
		SnapLen:      binary.LittleEndian.Uint32(hdrBytes[16:20]),
		Network:      binary.LittleEndian.Uint32(hdrBytes[20:24]),
	}

	return &Reader{r: r, header: header}, nil
}

func (r *Reader) Header() FileHeader {
	return r.header
}

func (r *Reader) ReadPacket() (*Packet, error) {
	var hdrBytes [16]byte
	if _, err := io.ReadFull(r.r, hdrBytes[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrInvalidPacketHeader
		}
		return nil, err
	}

	header := PacketHeader{
		TsSec:   binary.LittleEndian.Uint32(hdrBytes[0:4]),
		TsUsec:  binary.LittleEndian.Uint32(hdrBytes[4:8]),
		InclLen: binary.LittleEndian.Uint32(hdrBytes[8:12]),
		OrigLen: binary.LittleEndian.Uint32(hdrBytes[12:16]),
	}

	if r.header.SnapLen > 0 && header.InclLen > r.header.SnapLen {
		return nil, fmt.Errorf("pcap: captured length %d exceeds snap length %d", header.InclLen, r.header.SnapLen)
	}

	data := make([]byte, header.InclLen)
	if _, err := io.ReadFull(r.r, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrInvalidPacketHeader
		}
		return nil, err
	}

	packet := &Packet{
		Header:    header,
		Data:      data,
		Timestamp: time.Unix(int64(header.TsSec), int64(header.TsUsec)*int64(time.Microsecond)).UTC(),
	}
	return packet, nil
}
