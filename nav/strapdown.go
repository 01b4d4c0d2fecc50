package nav

import "math"

// UpdateStrapdown advances attitude, velocity, and position by one IMU
// sample interval. dAng and dVel are the body-frame delta-angle (rad) and
// delta-velocity (m/s) increments measured over dt (s), uncorrected for
// bias. The filter must be initialized before this is called; it is a
// silent no-op otherwise, matching the legacy uninitialized-call contract.
func (f *Filter) UpdateStrapdown(dt float64, dAng, dVel Vec3) {
	if !f.initialized || dt <= 0 {
		return
	}

	correctedDelAng := dAng.Sub(Vec3{f.x[IGX], f.x[IGY], f.x[IGZ]})
	correctedDelVel := dVel
	correctedDelVel.Z -= f.x[IAZ]

	next := strapdownStep(f.x, f.latRef, dt, correctedDelAng, correctedDelVel)
	f.x = next
	f.setQuat(f.quat().Normalized())

	f.summedDelAng = f.summedDelAng.Add(correctedDelAng)
	f.summedDelVel = f.summedDelVel.Add(correctedDelVel)
	f.dtCovSum += dt
	f.timeNow += dt
	f.lastDelAng = correctedDelAng
}

// strapdownStep is the pure state-transition function underlying
// UpdateStrapdown: given a full state vector and already bias-corrected
// delta-angle/delta-velocity increments, it returns the next state. Kept
// free of filter-instance side effects so the test suite can numerically
// differentiate it as a cross-check on the analytic Jacobian used by
// PredictCovariance.
func strapdownStep(x [StateDim]float64, latRef, dt float64, correctedDelAng, correctedDelVel Vec3) [StateDim]float64 {
	q := Quat{W: x[IQ0], X: x[IQ1], Y: x[IQ2], Z: x[IQ3]}.Normalized()
	tbn := q.RotationMatrix()

	dq := QuatFromDeltaAngle(correctedDelAng)
	newQ := q.Mul(dq).Normalized()

	velDeltaNED := tbn.MulVec(correctedDelVel)
	velDeltaNED.Z += Gravity * dt

	prevVel := Vec3{x[IVN], x[IVE], x[IVD]}
	earthRate := Vec3{EarthRateRad * math.Cos(latRef), 0, -EarthRateRad * math.Sin(latRef)}
	coriolis := earthRate.Cross(prevVel).Scale(2 * dt)
	velDeltaNED = velDeltaNED.Sub(coriolis)

	newVel := prevVel.Add(velDeltaNED)
	avgVel := prevVel.Add(newVel).Scale(0.5)
	newPos := Vec3{x[IPN], x[IPE], x[IPD]}.Add(avgVel.Scale(dt))

	out := x
	out[IQ0], out[IQ1], out[IQ2], out[IQ3] = newQ.W, newQ.X, newQ.Y, newQ.Z
	out[IVN], out[IVE], out[IVD] = newVel.X, newVel.Y, newVel.Z
	out[IPN], out[IPE], out[IPD] = newPos.X, newPos.Y, newPos.Z
	return out
}

// StoreState snapshots the current state and the single-tick corrected
// delta-angle captured at this instant into the 50-slot history ring, keyed
// by tsMs. Aiding-sensor fusion calls recall the closest entry to align
// their own measurement timestamp with the inertial timeline.
func (f *Filter) StoreState(tsMs int64) {
	f.history.store(tsMs, f.x, f.lastDelAng)
}

// CovarianceTriggered reports whether the accumulated interval since the
// last prediction has crossed either trigger threshold in Params.
func (f *Filter) CovarianceTriggered() bool {
	return f.dtCovSum >= f.params.CovTimeStepMax || f.summedDelAng.Length() >= f.params.CovDelAngMax
}
