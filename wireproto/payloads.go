package wireproto

import "fmt"

// IMUSample carries one inertial measurement increment.
type IMUSample struct {
	DtSec                    float64
	DAngX, DAngY, DAngZ      float64
	DVelX, DVelY, DVelZ      float64
}

func EncodeIMU(tsMs uint32, s IMUSample) []byte {
	b := make([]byte, 28)
	putF32(b[0:4], s.DtSec)
	putF32(b[4:8], s.DAngX)
	putF32(b[8:12], s.DAngY)
	putF32(b[12:16], s.DAngZ)
	putF32(b[16:20], s.DVelX)
	putF32(b[20:24], s.DVelY)
	putF32(b[24:28], s.DVelZ)
	return Encode(KindIMU, tsMs, b)
}

func DecodeIMU(payload []byte) (IMUSample, error) {
	if len(payload) < 28 {
		return IMUSample{}, fmt.Errorf("wireproto: IMU payload too short (%d bytes)", len(payload))
	}
	return IMUSample{
		DtSec: getF32(payload[0:4]),
		DAngX: getF32(payload[4:8]),
		DAngY: getF32(payload[8:12]),
		DAngZ: getF32(payload[12:16]),
		DVelX: getF32(payload[16:20]),
		DVelY: getF32(payload[20:24]),
		DVelZ: getF32(payload[24:28]),
	}, nil
}

// GNSSSample carries a combined velocity/position fix.
type GNSSSample struct {
	FixType              byte
	VelN, VelE, VelD     float64
	PosN, PosE           float64
	AccNavMag            float64
	HavePos              bool
}

func EncodeGNSS(tsMs uint32, s GNSSSample) []byte {
	b := make([]byte, 26)
	b[0] = s.FixType
	havePos := byte(0)
	if s.HavePos {
		havePos = 1
	}
	b[1] = havePos
	putF32(b[2:6], s.VelN)
	putF32(b[6:10], s.VelE)
	putF32(b[10:14], s.VelD)
	putF32(b[14:18], s.PosN)
	putF32(b[18:22], s.PosE)
	putF32(b[22:26], s.AccNavMag)
	return Encode(KindGNSS, tsMs, b)
}

func DecodeGNSS(payload []byte) (GNSSSample, error) {
	if len(payload) < 26 {
		return GNSSSample{}, fmt.Errorf("wireproto: GNSS payload too short (%d bytes)", len(payload))
	}
	return GNSSSample{
		FixType:   payload[0],
		HavePos:   payload[1] != 0,
		VelN:      getF32(payload[2:6]),
		VelE:      getF32(payload[6:10]),
		VelD:      getF32(payload[10:14]),
		PosN:      getF32(payload[14:18]),
		PosE:      getF32(payload[18:22]),
		AccNavMag: getF32(payload[22:26]),
	}, nil
}

func EncodeBaro(tsMs uint32, hgt float64) []byte {
	b := make([]byte, 4)
	putF32(b, hgt)
	return Encode(KindBaro, tsMs, b)
}

func DecodeBaro(payload []byte) (float64, error) {
	if len(payload) < 4 {
		return 0, fmt.Errorf("wireproto: baro payload too short (%d bytes)", len(payload))
	}
	return getF32(payload[0:4]), nil
}

func EncodeMag(tsMs uint32, x, y, z float64) []byte {
	b := make([]byte, 12)
	putF32(b[0:4], x)
	putF32(b[4:8], y)
	putF32(b[8:12], z)
	return Encode(KindMag, tsMs, b)
}

func DecodeMag(payload []byte) (x, y, z float64, err error) {
	if len(payload) < 12 {
		return 0, 0, 0, fmt.Errorf("wireproto: mag payload too short (%d bytes)", len(payload))
	}
	return getF32(payload[0:4]), getF32(payload[4:8]), getF32(payload[8:12]), nil
}

func EncodeAirspeed(tsMs uint32, eas float64) []byte {
	b := make([]byte, 4)
	putF32(b, eas)
	return Encode(KindAirspeed, tsMs, b)
}

func DecodeAirspeed(payload []byte) (float64, error) {
	if len(payload) < 4 {
		return 0, fmt.Errorf("wireproto: airspeed payload too short (%d bytes)", len(payload))
	}
	return getF32(payload[0:4]), nil
}

func EncodeRange(tsMs uint32, rangeMea float64) []byte {
	b := make([]byte, 4)
	putF32(b, rangeMea)
	return Encode(KindRange, tsMs, b)
}

func DecodeRange(payload []byte) (float64, error) {
	if len(payload) < 4 {
		return 0, fmt.Errorf("wireproto: range payload too short (%d bytes)", len(payload))
	}
	return getF32(payload[0:4]), nil
}

func EncodeOpticalFlow(tsMs uint32, losX, losY float64) []byte {
	b := make([]byte, 8)
	putF32(b[0:4], losX)
	putF32(b[4:8], losY)
	return Encode(KindOpticalFlow, tsMs, b)
}

func DecodeOpticalFlow(payload []byte) (losX, losY float64, err error) {
	if len(payload) < 8 {
		return 0, 0, fmt.Errorf("wireproto: optical flow payload too short (%d bytes)", len(payload))
	}
	return getF32(payload[0:4]), getF32(payload[4:8]), nil
}
