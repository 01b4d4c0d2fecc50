package nav

// CheckAndBound runs the health monitor: NaN/Inf trapping, variance and
// state constraints, symmetry enforcement, and per-channel timeout
// advancement. It returns the count of invalid (NaN/Inf) entries found on
// this pass, matching the legacy check_and_bound return contract.
func (f *Filter) CheckAndBound() int {
	invalid := 0

	if !allFiniteVec(f.x) {
		invalid += f.countNaNVec(f.x)
		f.snapshotError(true, false)
		f.fullReset()
		return invalid
	}
	if !allFiniteMat(f.p) {
		invalid += f.countNaNMat(f.p)
		f.snapshotError(false, true)
		// Clear each offending row/column and re-seed its diagonal with the
		// initial variance; state and the healthy rows are kept.
		var seed Filter
		seed.covarianceInit(false)
		for i := 0; i < StateDim; i++ {
			for j := 0; j < StateDim; j++ {
				if isNaNOrInf(f.p[i][j]) {
					zeroRowCol(&f.p, i)
					f.p[i][i] = seed.p[i][i]
					break
				}
			}
		}
		return invalid
	}

	f.constrainVariances()
	f.constrainStates()
	symmetrize(&f.p)

	f.advanceTimeouts()
	return invalid
}

func (f *Filter) countNaNVec(v [StateDim]float64) int {
	n := 0
	for _, x := range v {
		if isNaNOrInf(x) {
			n++
		}
	}
	return n
}

func (f *Filter) countNaNMat(m [StateDim][StateDim]float64) int {
	n := 0
	for i := 0; i < StateDim; i++ {
		for j := 0; j < StateDim; j++ {
			if isNaNOrInf(m[i][j]) {
				n++
			}
		}
	}
	return n
}

func (f *Filter) snapshotError(statesNaN, covNaN bool) {
	s := f.GetFilterState()
	s.StatesNaN = statesNaN
	s.CovarianceNaN = covNaN
	f.lastErr = s
	f.hasLastErr = true
}

func (f *Filter) constrainVariances() {
	f.boundCovariance()
}

func (f *Filter) constrainStates() {
	q := f.quat().Normalized()
	f.setQuat(q)

	vel := f.velNED()
	const maxVel = 1e3
	vel.X = clampF(vel.X, -maxVel, maxVel)
	vel.Y = clampF(vel.Y, -maxVel, maxVel)
	vel.Z = clampF(vel.Z, -maxVel, maxVel)
	f.x[IVN], f.x[IVE], f.x[IVD] = vel.X, vel.Y, vel.Z

	const maxPos = 1e6
	f.x[IPN] = clampF(f.x[IPN], -maxPos, maxPos)
	f.x[IPE] = clampF(f.x[IPE], -maxPos, maxPos)
	f.x[IPD] = clampF(f.x[IPD], -maxPos, maxPos)

	const maxGyroBias = 0.5 * Deg2Rad
	f.x[IGX] = clampF(f.x[IGX], -maxGyroBias, maxGyroBias)
	f.x[IGY] = clampF(f.x[IGY], -maxGyroBias, maxGyroBias)
	f.x[IGZ] = clampF(f.x[IGZ], -maxGyroBias, maxGyroBias)
	f.x[IAZ] = clampF(f.x[IAZ], -1.0, 1.0)
	f.x[IOF] = clampF(f.x[IOF], 0.1, 4.0)
}

// advanceTimeouts advances each channel's fail-streak timer and converts a
// sustained streak into a hard timeout, independent of the softer §4.9
// trending-unhealthy vote.
func (f *Filter) advanceTimeouts() {
	f.advanceChannel(&f.vel, f.params.TimeoutVel)
	f.advanceChannel(&f.pos, f.params.TimeoutPos)
	f.advanceChannel(&f.hgt, f.params.TimeoutHgt)
	f.advanceChannel(&f.mag, f.params.TimeoutMag)
	f.advanceChannel(&f.rng, f.params.TimeoutRange)
}

func (f *Filter) advanceChannel(c *channelHealth, timeoutSec float64) {
	if c.healthy || c.failSince < 0 {
		return
	}
	if f.timeNow-c.failSince > timeoutSec {
		c.timeout = true
	}
}

// markChannelRejected records a single gate failure on the given channel,
// starting its fail-streak timer if one is not already running.
func (f *Filter) markChannelRejected(c *channelHealth) {
	c.healthy = false
	if c.failSince < 0 {
		c.failSince = f.timeNow
		c.failTime = f.timeNow
	}
}

// markChannelAccepted clears a channel's fail streak on a successful fusion.
func (f *Filter) markChannelAccepted(c *channelHealth) {
	c.healthy = true
	c.failSince = -1
}
