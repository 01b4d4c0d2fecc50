package nav

import "math"

// InitialiseFilter performs a static alignment: tilt from gravity, yaw from
// the magnetometer projected onto the level plane, and seeds the covariance
// from documented initial sigmas. accelAvg and magSample are averaged (or
// single-shot) body-frame samples taken while the vehicle is assumed near
// stationary. initVelNED seeds the initial velocity (normally zero).
func (f *Filter) InitialiseFilter(accelAvg, magSample, initVelNED Vec3, latRef, lonRef, hgtRef float64) {
	f.latRef, f.lonRef, f.hgtRef = latRef, lonRef, hgtRef

	roll, pitch := tiltFromAccel(accelAvg)
	yaw := yawFromMag(magSample, roll, pitch)
	f.setQuat(EulToQuat(roll, pitch, yaw))

	f.x[IVN], f.x[IVE], f.x[IVD] = initVelNED.X, initVelNED.Y, initVelNED.Z
	f.x[IPN], f.x[IPE], f.x[IPD] = 0, 0, 0
	f.x[IGX], f.x[IGY], f.x[IGZ] = 0, 0, 0
	f.x[IAZ] = 0
	f.x[IWN], f.x[IWE] = 0, 0

	earthMag := f.Tbn.MulVec(magSample)
	f.x[IME], f.x[IMF], f.x[IMD] = earthMag.X, earthMag.Y, earthMag.Z
	f.x[IMX], f.x[IMY], f.x[IMZ] = 0, 0, 0
	f.x[ITH] = f.x[IPD]
	f.x[IOF] = 1.0

	f.covarianceInit(false)
	f.initialized = true
}

// InitializeDynamic is the motion-tolerant counterpart of InitialiseFilter:
// it accepts single-shot (not averaged) samples and seeds larger initial
// variances to reflect the lower confidence in the tilt/yaw solve.
func (f *Filter) InitializeDynamic(accelSample, magSample, initVelNED Vec3, latRef, lonRef, hgtRef float64) {
	f.InitialiseFilter(accelSample, magSample, initVelNED, latRef, lonRef, hgtRef)
	f.covarianceInit(true)
}

func tiltFromAccel(a Vec3) (roll, pitch float64) {
	roll = math.Atan2(-a.Y, -a.Z)
	pitch = math.Atan2(a.X, math.Sqrt(a.Y*a.Y+a.Z*a.Z))
	return
}

func yawFromMag(m Vec3, roll, pitch float64) float64 {
	cr, sr := math.Cos(roll), math.Sin(roll)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	mx := m.X*cp + m.Y*sr*sp + m.Z*cr*sp
	my := m.Y*cr - m.Z*sr
	return math.Atan2(-my, mx)
}

// covarianceInit seeds the diagonal with documented initial sigmas and
// zeros every off-diagonal entry. dynamic widens attitude/velocity/position
// uncertainty to reflect a motion-tolerant alignment.
func (f *Filter) covarianceInit(dynamic bool) {
	f.p = [StateDim][StateDim]float64{}

	attSigma, velSigma, posSigma := 0.1, 0.5, 5.0
	if dynamic {
		attSigma, velSigma, posSigma = 0.3, 2.0, 15.0
	}
	for i := IQ0; i <= IQ3; i++ {
		f.p[i][i] = attSigma * attSigma
	}
	for i := IVN; i <= IVD; i++ {
		f.p[i][i] = velSigma * velSigma
	}
	for i := IPN; i <= IPD; i++ {
		f.p[i][i] = posSigma * posSigma
	}
	f.p[IGX][IGX] = (0.1 * Deg2Rad) * (0.1 * Deg2Rad)
	f.p[IGY][IGY] = f.p[IGX][IGX]
	f.p[IGZ][IGZ] = f.p[IGX][IGX]
	f.p[IAZ][IAZ] = 0.1 * 0.1
	f.p[IWN][IWN] = 1.0
	f.p[IWE][IWE] = 1.0
	f.p[IME][IME] = 0.02 * 0.02
	f.p[IMF][IMF] = f.p[IME][IME]
	f.p[IMD][IMD] = f.p[IME][IME]
	f.p[IMX][IMX] = 0.005 * 0.005
	f.p[IMY][IMY] = f.p[IMX][IMX]
	f.p[IMZ][IMZ] = f.p[IMX][IMX]
	f.p[ITH][ITH] = 1.0
	f.p[IOF][IOF] = 0.05 * 0.05
}
