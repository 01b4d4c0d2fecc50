package nav

import "math"

// Vec3 is a body- or NED-frame 3-vector.
type Vec3 struct {
	X, Y, Z float64
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Length() float64 { return math.Sqrt(a.Dot(a)) }

// Mat3 is row-major: rows[0] is the first row.
type Mat3 struct {
	M [3][3]float64
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m.M[0][0]*v.X + m.M[0][1]*v.Y + m.M[0][2]*v.Z,
		m.M[1][0]*v.X + m.M[1][1]*v.Y + m.M[1][2]*v.Z,
		m.M[2][0]*v.X + m.M[2][1]*v.Y + m.M[2][2]*v.Z,
	}
}

func (m Mat3) Transpose() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.M[j][i] = m.M[i][j]
		}
	}
	return out
}

// Quat is a scalar-first attitude quaternion, body-to-NED rotation sense.
type Quat struct {
	W, X, Y, Z float64
}

func (q Quat) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalized returns q scaled to unit norm. If q is degenerate (norm ~0) it
// returns the identity quaternion rather than dividing by zero.
func (q Quat) Normalized() Quat {
	n := q.Norm()
	if n < 1e-12 {
		return Quat{W: 1}
	}
	inv := 1.0 / n
	return Quat{q.W * inv, q.X * inv, q.Y * inv, q.Z * inv}
}

// Mul composes rotations: (a.Mul(b)) applies b then a, Hamilton convention.
func (a Quat) Mul(b Quat) Quat {
	return Quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// RotationMatrix returns Tbn, the body-to-NED direction cosine matrix.
func (q Quat) RotationMatrix() Mat3 {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	var m Mat3
	m.M[0][0] = 1 - 2*(y*y+z*z)
	m.M[0][1] = 2 * (x*y - w*z)
	m.M[0][2] = 2 * (x*z + w*y)
	m.M[1][0] = 2 * (x*y + w*z)
	m.M[1][1] = 1 - 2*(x*x+z*z)
	m.M[1][2] = 2 * (y*z - w*x)
	m.M[2][0] = 2 * (x*z - w*y)
	m.M[2][1] = 2 * (y*z + w*x)
	m.M[2][2] = 1 - 2*(x*x+y*y)
	return m
}

// EulToQuat builds a quaternion from 3-2-1 Euler angles (radians).
func EulToQuat(roll, pitch, yaw float64) Quat {
	cr, sr := math.Cos(roll*0.5), math.Sin(roll*0.5)
	cp, sp := math.Cos(pitch*0.5), math.Sin(pitch*0.5)
	cy, sy := math.Cos(yaw*0.5), math.Sin(yaw*0.5)
	return Quat{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}.Normalized()
}

// QuatToEul recovers 3-2-1 Euler angles (radians) from a unit quaternion.
func QuatToEul(q Quat) (roll, pitch, yaw float64) {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	sinp := 2 * (w*y - z*x)
	switch {
	case sinp >= 1:
		pitch = math.Pi / 2
	case sinp <= -1:
		pitch = -math.Pi / 2
	default:
		pitch = math.Asin(sinp)
	}
	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return
}

// QuatFromDeltaAngle builds the incremental rotation quaternion for a small
// body-frame rotation vector, used once per IMU tick by the strapdown update.
func QuatFromDeltaAngle(dAng Vec3) Quat {
	angle := dAng.Length()
	if angle < 1e-12 {
		return Quat{W: 1, X: 0.5 * dAng.X, Y: 0.5 * dAng.Y, Z: 0.5 * dAng.Z}.Normalized()
	}
	half := angle * 0.5
	s := math.Sin(half) / angle
	return Quat{W: math.Cos(half), X: dAng.X * s, Y: dAng.Y * s, Z: dAng.Z * s}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
