package nav

import (
	"math"
	"math/rand"
	"testing"
)

func randAngle() float64 {
	return rand.Float64()*2.6 - 1.3 // stay clear of the pitch gimbal lock
}

func TestEulQuatRoundTrip(t *testing.T) {
	for i := 0; i < 200; i++ {
		roll := randAngle()
		pitch := randAngle()
		yaw := randAngle()

		q := EulToQuat(roll, pitch, yaw)
		r2, p2, y2 := QuatToEul(q)

		if math.Abs(wrapDiff(roll, r2)) > 1e-5 {
			t.Fatalf("roll round trip: in=%v out=%v", roll, r2)
		}
		if math.Abs(wrapDiff(pitch, p2)) > 1e-5 {
			t.Fatalf("pitch round trip: in=%v out=%v", pitch, p2)
		}
		if math.Abs(wrapDiff(yaw, y2)) > 1e-5 {
			t.Fatalf("yaw round trip: in=%v out=%v", yaw, y2)
		}
	}
}

func wrapDiff(a, b float64) float64 {
	d := a - b
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func TestQuatRotationMatrixOrthonormal(t *testing.T) {
	for i := 0; i < 200; i++ {
		q := EulToQuat(randAngle(), randAngle(), randAngle())
		m := q.RotationMatrix()
		mt := m.Transpose()

		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				var sum float64
				for k := 0; k < 3; k++ {
					sum += m.M[r][k] * mt.M[k][c]
				}
				want := 0.0
				if r == c {
					want = 1.0
				}
				if math.Abs(sum-want) > 1e-6 {
					t.Fatalf("Tbn*Tbn^T not identity at (%d,%d): %v", r, c, sum)
				}
			}
		}

		det := m.M[0][0]*(m.M[1][1]*m.M[2][2]-m.M[1][2]*m.M[2][1]) -
			m.M[0][1]*(m.M[1][0]*m.M[2][2]-m.M[1][2]*m.M[2][0]) +
			m.M[0][2]*(m.M[1][0]*m.M[2][1]-m.M[1][1]*m.M[2][0])
		if math.Abs(det-1.0) > 1e-6 {
			t.Fatalf("Tbn determinant not 1: %v", det)
		}
	}
}

func TestCalcPosNEDRoundTrip(t *testing.T) {
	latRef, lonRef, hgtRef := 0.7, -1.2, 120.0
	for i := 0; i < 100; i++ {
		pos := Vec3{
			X: rand.Float64()*20000 - 10000,
			Y: rand.Float64()*20000 - 10000,
			Z: rand.Float64()*200 - 100,
		}
		lat, lon, hgt := CalcLLH(pos, latRef, lonRef, hgtRef)
		got := CalcPosNED(lat, lon, hgt, latRef, lonRef, hgtRef)

		if math.Abs(got.X-pos.X) > 1e-2 || math.Abs(got.Y-pos.Y) > 1e-2 || math.Abs(got.Z-pos.Z) > 1e-2 {
			t.Fatalf("round trip mismatch: in=%+v out=%+v", pos, got)
		}
	}
}
