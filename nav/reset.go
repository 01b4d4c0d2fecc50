package nav

// ResetPosition snaps horizontal position to a fresh fix and re-seeds its
// variance, matching the legacy reset_position contract.
func (f *Filter) ResetPosition(posN, posE float64, sigma float64) {
	f.x[IPN], f.x[IPE] = posN, posE
	zeroRowCol(&f.p, IPN)
	zeroRowCol(&f.p, IPE)
	f.p[IPN][IPN] = sigma * sigma
	f.p[IPE][IPE] = sigma * sigma
	f.pos.healthy = true
	f.pos.timeout = false
	f.pos.failSince = -1
}

// ResetVelocity snaps NED velocity to a fresh fix and re-seeds its variance.
func (f *Filter) ResetVelocity(velN, velE, velD float64, sigma float64) {
	f.x[IVN], f.x[IVE], f.x[IVD] = velN, velE, velD
	zeroRowCol(&f.p, IVN)
	zeroRowCol(&f.p, IVE)
	zeroRowCol(&f.p, IVD)
	f.p[IVN][IVN] = sigma * sigma
	f.p[IVE][IVE] = sigma * sigma
	f.p[IVD][IVD] = sigma * sigma
	f.vel.healthy = true
	f.vel.timeout = false
	f.vel.failSince = -1
}

// ResetHeight snaps Down position from a fresh barometric sample and
// re-seeds vertical-velocity variance.
func (f *Filter) ResetHeight(baroHgt float64, sigma float64) {
	f.x[IPD] = -baroHgt
	zeroRowCol(&f.p, IPD)
	f.p[IPD][IPD] = sigma * sigma
	zeroRowCol(&f.p, IVD)
	f.p[IVD][IVD] = 1.0
	f.hgt.healthy = true
	f.hgt.timeout = false
	f.hgt.failSince = -1
}

// ResetTerrain re-seeds the terrain height state from a prior derived from
// the current Down position and, if available, a fresh range-finder sample.
func (f *Filter) ResetTerrain(rangeMea float64, haveRange bool) {
	if haveRange {
		f.x[ITH] = f.x[IPD] + rangeMea
	} else {
		f.x[ITH] = f.x[IPD] + 1.0
	}
	zeroRowCol(&f.p, ITH)
	f.p[ITH][ITH] = 1.0
	f.rng.healthy = true
	f.rng.timeout = false
	f.rng.failSince = -1
}

// ResetMagnetometer re-initializes the earth-field states from a fresh
// magnetometer sample rotated into NED by the current attitude, on
// persistent mag-fusion failure.
func (f *Filter) ResetMagnetometer(magSample Vec3) {
	earthMag := f.Tbn.MulVec(magSample)
	f.x[IME], f.x[IMF], f.x[IMD] = earthMag.X, earthMag.Y, earthMag.Z
	for i := IME; i <= IMD; i++ {
		zeroRowCol(&f.p, i)
		f.p[i][i] = 0.05 * 0.05
	}
	f.mag.healthy = true
	f.mag.timeout = false
	f.mag.failSince = -1
}

// fullReset re-seeds state and covariance entirely, used when the health
// monitor detects a non-recoverable numerical fault.
func (f *Filter) fullReset() {
	f.x = [StateDim]float64{}
	f.x[IQ0] = 1.0
	f.Tbn = Quat{W: 1}.RotationMatrix()
	f.Tnb = f.Tbn.Transpose()
	f.covarianceInit(true)
	f.summedDelAng = Vec3{}
	f.summedDelVel = Vec3{}
	f.dtCovSum = 0
	f.vel = newChannelHealth()
	f.pos = newChannelHealth()
	f.hgt = newChannelHealth()
	f.mag = newChannelHealth()
	f.rng = newChannelHealth()
	f.flow = newChannelHealth()
	f.speed = newChannelHealth()
}
