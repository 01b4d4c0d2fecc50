package nav

// PredictCovariance advances the 24x24 covariance over the interval
// accumulated since the last call (summedDelAng/summedDelVel/dtCovSum),
// using the closed-form state-transition Jacobian and a diagonal process
// noise matrix built from Params. Callers should check CovarianceTriggered
// first; calling this with a zero accumulated interval is a harmless no-op.
//
// The attitude error block is carried on the quaternion's vector indices
// (IQ1..IQ3) as a small-angle proxy, following the same quaternion-state,
// linearized-error-covariance convention as the strapdown mechanization
// itself rather than introducing a separate 3-element error state.
func (f *Filter) PredictCovariance() {
	dt := f.dtCovSum
	if dt <= 0 {
		return
	}

	var fMat [StateDim][StateDim]float64
	for i := 0; i < StateDim; i++ {
		fMat[i][i] = 1.0
	}

	specificForce := Vec3{}
	if dt > 0 {
		specificForce = f.summedDelVel.Scale(1.0 / dt)
	}
	forceNED := f.Tbn.MulVec(specificForce)
	skew := skewMat(forceNED)

	// Velocity error couples to attitude error through the rotated specific
	// force; and to the accelerometer Z-bias through the body Z column of Tbn.
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			fMat[IVN+r][IQ1+c] = -dt * skew.M[r][c]
		}
		fMat[IVN+r][IAZ] = -dt * f.Tbn.M[r][2]
	}

	// Attitude error decays toward the gyro bias estimate.
	for i := 0; i < 3; i++ {
		fMat[IQ1+i][IGX+i] = -dt
	}

	// Position error integrates velocity error.
	for i := 0; i < 3; i++ {
		fMat[IPN+i][IVN+i] = dt
	}

	p := &f.p
	fp := matMul24(&fMat, p)
	fpft := matMulT24(&fp, &fMat)

	q := f.processNoise(dt)
	for i := 0; i < StateDim; i++ {
		for j := 0; j < StateDim; j++ {
			fpft[i][j] += q[i][j]
		}
	}

	if f.onGround {
		zeroRowCol(&fpft, IWN)
		zeroRowCol(&fpft, IWE)
	}
	if !f.params.UseCompass {
		for i := IME; i <= IMZ; i++ {
			zeroRowCol(&fpft, i)
		}
	}

	f.p = fpft
	symmetrize(&f.p)
	f.boundCovariance()

	f.summedDelAng = Vec3{}
	f.summedDelVel = Vec3{}
	f.dtCovSum = 0
}

func (f *Filter) processNoise(dt float64) [StateDim][StateDim]float64 {
	var q [StateDim][StateDim]float64
	p := f.params
	gyroVar := (p.GyroProcessNoise * dt) * (p.GyroProcessNoise * dt)
	accelVar := (p.AccelProcessNoise * dt) * (p.AccelProcessNoise * dt)
	for i := 0; i < 3; i++ {
		q[IQ1+i][IQ1+i] = gyroVar
		q[IVN+i][IVN+i] = accelVar
	}
	q[IGX][IGX] = p.DAngBiasSigma * p.DAngBiasSigma * dt
	q[IGY][IGY] = q[IGX][IGX]
	q[IGZ][IGZ] = q[IGX][IGX]
	q[IAZ][IAZ] = p.DVelBiasSigma * p.DVelBiasSigma * dt
	q[IWN][IWN] = p.WindVelSigma * p.WindVelSigma * dt
	q[IWE][IWE] = q[IWN][IWN]
	q[IME][IME] = p.MagEarthSigma * p.MagEarthSigma * dt
	q[IMF][IMF] = q[IME][IME]
	q[IMD][IMD] = q[IME][IME]
	q[IMX][IMX] = p.MagBodySigma * p.MagBodySigma * dt
	q[IMY][IMY] = q[IMX][IMX]
	q[IMZ][IMZ] = q[IMX][IMX]
	q[ITH][ITH] = p.GndHgtSigma * p.GndHgtSigma * dt
	q[IOF][IOF] = p.OptScaleSigma * p.OptScaleSigma * dt
	return q
}

// boundCovariance enforces the per-state variance floor/ceiling contract of
// §4.3: negative diagonals are clamped to zero and the offending row/column
// zeroed; everything else is capped at a documented ceiling.
func (f *Filter) boundCovariance() {
	ceilings := covarianceCeilings()
	for i := 0; i < StateDim; i++ {
		if f.p[i][i] < 0 {
			zeroRowCol(&f.p, i)
			continue
		}
		if f.p[i][i] > ceilings[i] {
			f.p[i][i] = ceilings[i]
		}
	}
}

func covarianceCeilings() [StateDim]float64 {
	var c [StateDim]float64
	for i := IQ0; i <= IQ3; i++ {
		c[i] = 1.0
	}
	for i := IVN; i <= IVD; i++ {
		c[i] = 1e3
	}
	for i := IPN; i <= IPD; i++ {
		c[i] = 1e6
	}
	c[IGX], c[IGY], c[IGZ] = 1e-2, 1e-2, 1e-2
	c[IAZ] = 1.0
	c[IWN], c[IWE] = 1e2, 1e2
	c[IME], c[IMF], c[IMD] = 1.0, 1.0, 1.0
	c[IMX], c[IMY], c[IMZ] = 1.0, 1.0, 1.0
	c[ITH] = 1e4
	c[IOF] = 4.0
	return c
}

func skewMat(v Vec3) Mat3 {
	return Mat3{M: [3][3]float64{
		{0, -v.Z, v.Y},
		{v.Z, 0, -v.X},
		{-v.Y, v.X, 0},
	}}
}

func symmetrize(m *[StateDim][StateDim]float64) {
	for i := 0; i < StateDim; i++ {
		for j := i + 1; j < StateDim; j++ {
			avg := 0.5 * (m[i][j] + m[j][i])
			m[i][j] = avg
			m[j][i] = avg
		}
	}
}

func zeroRowCol(m *[StateDim][StateDim]float64, idx int) {
	for i := 0; i < StateDim; i++ {
		m[idx][i] = 0
		m[i][idx] = 0
	}
}

func matMul24(a, b *[StateDim][StateDim]float64) [StateDim][StateDim]float64 {
	var out [StateDim][StateDim]float64
	for i := 0; i < StateDim; i++ {
		for k := 0; k < StateDim; k++ {
			aik := a[i][k]
			if aik == 0 {
				continue
			}
			for j := 0; j < StateDim; j++ {
				out[i][j] += aik * b[k][j]
			}
		}
	}
	return out
}

// matMulT24 computes a * bT where bT is the transpose of b.
func matMulT24(a, b *[StateDim][StateDim]float64) [StateDim][StateDim]float64 {
	var out [StateDim][StateDim]float64
	for i := 0; i < StateDim; i++ {
		for j := 0; j < StateDim; j++ {
			var sum float64
			for k := 0; k < StateDim; k++ {
				sum += a[i][k] * b[j][k]
			}
			out[i][j] = sum
		}
	}
	return out
}
