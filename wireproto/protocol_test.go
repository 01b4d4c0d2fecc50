package wireproto

import "testing"

func TestEncodeDecodeIMURoundTrip(t *testing.T) {
	s := IMUSample{DtSec: 0.01, DAngX: 0.001, DAngY: -0.002, DVelZ: -9.8}
	pkt := EncodeIMU(12345, s)

	h, payload, err := Decode(pkt)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if h.Kind != KindIMU || h.TimestampMs != 12345 {
		t.Fatalf("unexpected header: %+v", h)
	}
	got, err := DecodeIMU(payload)
	if err != nil {
		t.Fatalf("decode IMU payload: %v", err)
	}
	if got.DtSec != float64(float32(s.DtSec)) {
		t.Fatalf("dt mismatch: %v vs %v", got.DtSec, s.DtSec)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	pkt := EncodeIMU(0, IMUSample{})
	pkt[0] ^= 0xFF
	if _, _, err := Decode(pkt); err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	pkt := EncodeIMU(0, IMUSample{})
	if _, _, err := Decode(pkt[:HeaderLen+4]); err == nil {
		t.Fatal("expected an error decoding a truncated packet")
	}
}

func TestDecodeRejectsBadCRC(t *testing.T) {
	pkt := EncodeGNSS(99, GNSSSample{HavePos: true, PosN: 10, PosE: 5})
	pkt[len(pkt)-1] ^= 0xFF
	if _, _, err := Decode(pkt); err != ErrBadCRC {
		t.Fatalf("expected ErrBadCRC, got %v", err)
	}
}

func TestTooShortNeverPanics(t *testing.T) {
	for n := 0; n < HeaderLen+CRCLen; n++ {
		if _, _, err := Decode(make([]byte, n)); err == nil {
			t.Fatalf("expected error decoding %d-byte packet", n)
		}
	}
}
