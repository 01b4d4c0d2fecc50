package nav

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// TestStrapdownJacobianMatchesFiniteDifference cross-checks the analytic
// velocity/attitude/position coupling blocks used by PredictCovariance
// against a numerically-differentiated Jacobian of strapdownStep. This is
// test-only tooling: production covariance prediction never imports
// gonum/diff, since it runs on the filter's hot path with a fixed-size
// closed-form Jacobian.
func TestStrapdownJacobianMatchesFiniteDifference(t *testing.T) {
	x0 := [StateDim]float64{}
	q := EulToQuat(0.2, -0.1, 0.4)
	x0[IQ0], x0[IQ1], x0[IQ2], x0[IQ3] = q.W, q.X, q.Y, q.Z
	x0[IVN], x0[IVE], x0[IVD] = 3, -1, 0.5

	dt := 0.01
	dAng := Vec3{X: 0.01, Y: -0.02, Z: 0.015}
	dVel := Vec3{X: 0.1, Y: -0.05, Z: -Gravity*dt + 0.02}

	wrapped := func(out, in []float64) {
		var xs [StateDim]float64
		copy(xs[:], in)
		next := strapdownStep(xs, 0.6, dt, dAng, dVel)
		copy(out, next[:])
	}

	jac := mat.NewDense(StateDim, StateDim, nil)
	fd.Jacobian(jac, wrapped, x0[:], &fd.JacobianSettings{
		Formula:    fd.Central,
		Concurrent: true,
	})

	tbn := Quat{W: x0[IQ0], X: x0[IQ1], Y: x0[IQ2], Z: x0[IQ3]}.RotationMatrix()
	forceNED := tbn.MulVec(dVel.Scale(1 / dt))
	skew := skewMat(forceNED)

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			analytic := -dt * skew.M[r][c]
			numeric := jac.At(IVN+r, IQ1+c)
			if math.Abs(analytic-numeric) > 5e-3 {
				t.Fatalf("velocity/attitude Jacobian mismatch at (%d,%d): analytic=%v numeric=%v", r, c, analytic, numeric)
			}
		}
	}

	for i := 0; i < 3; i++ {
		numeric := jac.At(IPN+i, IVN+i)
		if math.Abs(numeric-dt) > 5e-3 {
			t.Fatalf("position/velocity Jacobian mismatch at %d: want~%v got %v", i, dt, numeric)
		}
	}
}
