package ingest

import (
	"testing"

	"flightekf/nav"
	"flightekf/wireproto"
)

func newTestDaemon() *Daemon {
	return NewDaemon(Config{
		Port:   0,
		Params: nav.DefaultParams(),
		LatRef: 0.6,
		LonRef: 0.1,
		HgtRef: 50.0,
	})
}

func imuPacket(tsMs uint32, dt float64, dVelZ float64) []byte {
	return wireproto.EncodeIMU(tsMs, wireproto.IMUSample{
		DtSec: dt,
		DVelX: 0, DVelY: 0, DVelZ: dVelZ,
	})
}

func TestDaemonInitializesOnFirstIMUPacket(t *testing.T) {
	d := newTestDaemon()
	if d.Filter().Initialized() {
		t.Fatal("filter should not be initialized before any packet")
	}
	d.handlePacket(imuPacket(0, 0.01, -9.80665))
	if !d.Filter().Initialized() {
		t.Fatal("filter should initialize on first IMU packet")
	}
}

func TestDaemonProcessesSustainedIMUAndGNSSWithoutNaN(t *testing.T) {
	d := newTestDaemon()
	tsMs := uint32(0)
	for i := 0; i < 500; i++ {
		d.handlePacket(imuPacket(tsMs, 0.01, -9.80665))
		if i%50 == 0 {
			pkt := wireproto.EncodeGNSS(tsMs, wireproto.GNSSSample{
				FixType: 3, VelN: 0, VelE: 0, VelD: 0,
				PosN: 0, PosE: 0, AccNavMag: 0.1, HavePos: true,
			})
			d.handlePacket(pkt)
		}
		tsMs += 10
	}

	status := d.Filter().GetFilterState()
	for i, v := range status.States {
		if v != v {
			t.Fatalf("state %d is NaN after sustained processing", i)
		}
	}
}

func TestDaemonRejectsMalformedPacketWithoutPanicking(t *testing.T) {
	d := newTestDaemon()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("handlePacket panicked on malformed input: %v", r)
		}
	}()
	d.handlePacket([]byte{0x00, 0x01, 0x02})
	d.handlePacket(nil)
}
