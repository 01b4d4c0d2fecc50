package flightlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"flightekf/nav"
)

// Reader replays a flight log written by Writer, one tick at a time.
type Reader struct {
	f       *os.File
	version uint32
}

// NewReader opens path and validates its global header.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flight log: %w", err)
	}
	hdr := make([]byte, globalHdrLen)
	if _, err := io.ReadFull(f, hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("read flight log header: %w", err)
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != globalMagic {
		f.Close()
		return nil, fmt.Errorf("flight log %s: bad magic", path)
	}
	version := binary.LittleEndian.Uint32(hdr[4:8])
	stateDim := binary.LittleEndian.Uint32(hdr[8:12])
	if stateDim != nav.StateDim {
		f.Close()
		return nil, fmt.Errorf("flight log %s: state dimension %d does not match %d", path, stateDim, nav.StateDim)
	}
	return &Reader{f: f, version: version}, nil
}

// Next returns the next tick, or io.EOF once the log is exhausted. A
// truncated trailing record is reported as an error rather than silently
// dropped, so a caller can distinguish a clean run from a crashed one.
func (r *Reader) Next() (*Tick, error) {
	buf := make([]byte, recordLen)
	n, err := io.ReadFull(r.f, buf)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		if n > 0 {
			return nil, fmt.Errorf("flight log: truncated trailing record (%d of %d bytes): %w", n, recordLen, err)
		}
		return nil, fmt.Errorf("flight log: read record: %w", err)
	}

	var t Tick
	t.TimestampMs = int64(binary.LittleEndian.Uint64(buf[0:8]))
	off := recordHdrLen
	for i := 0; i < nav.StateDim; i++ {
		t.States[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4])))
		off += 4
	}
	for i := 0; i < nav.StateDim; i++ {
		t.PDiag[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4])))
		off += 4
	}
	t.Flags = binary.LittleEndian.Uint16(buf[off : off+2])
	return &t, nil
}

func (r *Reader) Close() error { return r.f.Close() }
