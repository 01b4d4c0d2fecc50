// Package flightlog implements the binary per-tick recording format used
// for offline analysis and regression replay, in the same fixed-global-
// header-plus-fixed-record-header style as this module's other binary
// framing.
package flightlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"flightekf/nav"
)

const (
	globalMagic   uint32 = 0xEF50A1B2
	formatVersion uint32 = 1
	globalHdrLen         = 24
	recordHdrLen         = 8 // tsMs(8)
	statesLen            = nav.StateDim * 4
	pdiagLen             = nav.StateDim * 4
	flagsLen             = 2
	recordLen            = recordHdrLen + statesLen + pdiagLen + flagsLen
)

// Tick is one decoded flight-log record.
type Tick struct {
	TimestampMs int64
	States      [nav.StateDim]float64
	PDiag       [nav.StateDim]float64
	Flags       uint16
}

// Health bit flags packed into Tick.Flags, one per monitored channel.
const (
	FlagVelUnhealthy   uint16 = 1 << 0
	FlagPosUnhealthy   uint16 = 1 << 1
	FlagHgtUnhealthy   uint16 = 1 << 2
	FlagMagUnhealthy   uint16 = 1 << 3
	FlagRangeUnhealthy uint16 = 1 << 4
	FlagVelTimeout     uint16 = 1 << 5
	FlagPosTimeout     uint16 = 1 << 6
	FlagHgtTimeout     uint16 = 1 << 7
	FlagMagTimeout     uint16 = 1 << 8
	FlagRangeTimeout   uint16 = 1 << 9
)

// FlagsFromStatus packs a nav.FilterStatus into the bitfield stored in each
// flight-log record.
func FlagsFromStatus(s nav.FilterStatus) uint16 {
	var f uint16
	if !s.VelHealthy {
		f |= FlagVelUnhealthy
	}
	if !s.PosHealthy {
		f |= FlagPosUnhealthy
	}
	if !s.HgtHealthy {
		f |= FlagHgtUnhealthy
	}
	if !s.MagHealthy {
		f |= FlagMagUnhealthy
	}
	if !s.RangeHealthy {
		f |= FlagRangeUnhealthy
	}
	if s.VelTimeout {
		f |= FlagVelTimeout
	}
	if s.PosTimeout {
		f |= FlagPosTimeout
	}
	if s.HgtTimeout {
		f |= FlagHgtTimeout
	}
	if s.MagTimeout {
		f |= FlagMagTimeout
	}
	if s.RangeTimeout {
		f |= FlagRangeTimeout
	}
	return f
}

// Writer appends fixed-size tick records to a flight log.
type Writer struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// NewWriter creates path and writes the 24-byte global header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create flight log: %w", err)
	}
	hdr := make([]byte, globalHdrLen)
	binary.LittleEndian.PutUint32(hdr[0:4], globalMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], formatVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], nav.StateDim)
	if _, err := f.Write(hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("write flight log header: %w", err)
	}
	return &Writer{w: f}, nil
}

// WriteTick appends one record: millisecond timestamp, the 24 states, the
// 24 covariance-diagonal entries, and the per-channel health bitfield, all
// narrowed to float32 on the wire.
func (w *Writer) WriteTick(tsMs int64, states, pdiag [nav.StateDim]float64, flags uint16) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	buf := make([]byte, recordLen)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(tsMs))
	off := recordHdrLen
	for i := 0; i < nav.StateDim; i++ {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(float32(states[i])))
		off += 4
	}
	for i := 0; i < nav.StateDim; i++ {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(float32(pdiag[i])))
		off += 4
	}
	binary.LittleEndian.PutUint16(buf[off:off+2], flags)

	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("write flight log record: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Close()
}
