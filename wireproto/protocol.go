// Package wireproto implements the small binary protocol the sensor
// ingestion daemon decodes from UDP: a fixed header (magic, sample kind,
// millisecond timestamp, payload length) followed by a kind-specific
// payload and a trailing CRC16.
package wireproto

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	Magic     uint16 = 0x454B // "EK"
	HeaderLen        = 9      // magic(2) + kind(1) + tsMs(4) + payloadLen(2)
	CRCLen           = 2
)

// Kind identifies the payload shape following the header.
type Kind byte

const (
	KindIMU         Kind = 0x01
	KindGNSS        Kind = 0x02
	KindBaro        Kind = 0x03
	KindMag         Kind = 0x04
	KindAirspeed    Kind = 0x05
	KindRange       Kind = 0x06
	KindOpticalFlow Kind = 0x07
)

var (
	ErrTooShort  = errors.New("wireproto: packet shorter than header")
	ErrBadMagic  = errors.New("wireproto: bad magic")
	ErrTruncated = errors.New("wireproto: payload length exceeds packet")
	ErrBadCRC    = errors.New("wireproto: CRC mismatch")
)

// Header is the decoded fixed-length packet prefix.
type Header struct {
	Kind        Kind
	TimestampMs uint32
	PayloadLen  uint16
}

// Decode validates magic, length, and CRC, and returns the header plus the
// payload slice (a view into data, not a copy). It never panics on
// truncated or malformed input.
func Decode(data []byte) (Header, []byte, error) {
	if len(data) < HeaderLen+CRCLen {
		return Header{}, nil, ErrTooShort
	}
	if binary.LittleEndian.Uint16(data[0:2]) != Magic {
		return Header{}, nil, ErrBadMagic
	}
	h := Header{
		Kind:        Kind(data[2]),
		TimestampMs: binary.LittleEndian.Uint32(data[3:7]),
		PayloadLen:  binary.LittleEndian.Uint16(data[7:9]),
	}
	total := HeaderLen + int(h.PayloadLen) + CRCLen
	if total > len(data) {
		return Header{}, nil, ErrTruncated
	}
	payload := data[HeaderLen : HeaderLen+int(h.PayloadLen)]
	gotCRC := binary.LittleEndian.Uint16(data[HeaderLen+int(h.PayloadLen):total])
	wantCRC := crc16(data[:HeaderLen+int(h.PayloadLen)])
	if gotCRC != wantCRC {
		return Header{}, nil, ErrBadCRC
	}
	return h, payload, nil
}

// Encode assembles a complete framed packet for the given kind/timestamp/
// payload, appending the trailing CRC16.
func Encode(kind Kind, tsMs uint32, payload []byte) []byte {
	out := make([]byte, HeaderLen+len(payload)+CRCLen)
	binary.LittleEndian.PutUint16(out[0:2], Magic)
	out[2] = byte(kind)
	binary.LittleEndian.PutUint32(out[3:7], tsMs)
	binary.LittleEndian.PutUint16(out[7:9], uint16(len(payload)))
	copy(out[HeaderLen:], payload)
	crc := crc16(out[:HeaderLen+len(payload)])
	binary.LittleEndian.PutUint16(out[HeaderLen+len(payload):], crc)
	return out
}

// crc16 computes the CCITT/XMODEM CRC16 (polynomial 0x1021, MSB-first) over
// data.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func putF32(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

func getF32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}
