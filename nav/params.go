package nav

// Physical constants, single precision in the legacy layout but carried as
// float64 here since the Go core does its arithmetic in double precision
// and only narrows to float32 at the flight-log/wire boundary.
const (
	Gravity        = 9.80665
	EarthRateRad   = 7.2921e-5
	EarthRadiusM   = 6378145.0
	EarthRadiusInv = 1.5678540e-7
	Deg2Rad        = 0.017453292519943295
	Rad2Deg        = 57.29577951308232
)

// StateDim is the fixed length of the filter's state vector.
const StateDim = 24

// State vector indices, matching the field layout this filter was derived
// from: quaternion, NED velocity, NED position, gyro bias, accel Z bias,
// NE wind, NED earth mag field, body mag bias, terrain height, optical
// flow scale factor.
const (
	IQ0 = 0 // quaternion w
	IQ1 = 1
	IQ2 = 2
	IQ3 = 3
	IVN = 4
	IVE = 5
	IVD = 6
	IPN = 7
	IPE = 8
	IPD = 9
	IGX = 10 // gyro bias X
	IGY = 11
	IGZ = 12
	IAZ = 13 // accel Z bias
	IWN = 14 // wind north
	IWE = 15 // wind east
	IME = 16 // earth mag north
	IMF = 17 // earth mag east
	IMD = 18 // earth mag down
	IMX = 19 // body mag bias X
	IMY = 20
	IMZ = 21
	ITH = 22 // terrain height
	IOF = 23 // optical flow scale factor
)

// GPSFixType mirrors the legacy fix-quality enumeration carried in GNSS
// packets.
type GPSFixType int

const (
	GPSFixNone GPSFixType = 0
	GPSFix2D   GPSFixType = 2
	GPSFix3D   GPSFixType = 3
)

// Params is the filter's tunable parameter block. Every field has a
// documented default seeded by DefaultParams(); fields are overridable
// at process start via config.LoadParametersXML.
type Params struct {
	CovTimeStepMax float64 // s, covariance prediction trigger interval
	CovDelAngMax   float64 // rad, covariance prediction trigger delta-angle

	RngFinderPitch float64 // rad, range-finder mounting pitch offset
	EAS2TAS        float64 // equivalent-to-true airspeed ratio
	YawVarScale    float64

	WindVelSigma   float64
	DAngBiasSigma  float64
	DVelBiasSigma  float64
	MagEarthSigma  float64
	MagBodySigma   float64
	GndHgtSigma    float64
	OptScaleSigma  float64

	VneSigma   float64 // GNSS horizontal velocity sigma
	VdSigma    float64 // GNSS vertical velocity sigma
	PosNeSigma float64 // GNSS horizontal position sigma
	PosDSigma  float64 // baro/GNSS vertical position sigma

	MagMeasurementSigma      float64
	AirspeedMeasurementSigma float64

	GyroProcessNoise  float64
	AccelProcessNoise float64

	// Innovation gates, expressed as a multiple of sigma.
	GateVelPos   float64
	GateMag      float64
	GateAirspeed float64
	GateRange    float64
	GateOptFlow  float64

	// Channel timeouts, seconds: a rejection streak longer than this sets
	// the channel's timeout flag. The filter does not reset the channel
	// itself; the Reset* methods are called by the host.
	TimeoutVel    float64
	TimeoutPos    float64
	TimeoutHgt    float64
	TimeoutMag    float64
	TimeoutRange  float64

	// Fusion mode: 0 = full 3D GNSS velocity, 1 = drop vertical velocity,
	// 2 = position-only.
	FusionModeGPS int

	UseAirspeed    bool
	UseCompass     bool
	UseRangeFinder bool
	UseOpticalFlow bool

	// Channel-health-statistics window and vote thresholds (§4.9 of the
	// governing design note).
	StatsWindowLen   int
	StatsBiasThresh  float64
	StatsVarThresh   float64
	StatsChiConf     float64
}

// DefaultParams returns the filter's compiled-in tunable defaults.
func DefaultParams() Params {
	return Params{
		CovTimeStepMax: 0.07,
		CovDelAngMax:   0.02,

		RngFinderPitch: 0,
		EAS2TAS:        1.0,
		YawVarScale:    1.0,

		WindVelSigma:  0.1,
		DAngBiasSigma: 5e-7,
		DVelBiasSigma: 1e-4,
		MagEarthSigma: 3e-4,
		MagBodySigma:  3e-4,
		GndHgtSigma:   0.02,
		OptScaleSigma: 1e-4,

		VneSigma:   0.2,
		VdSigma:    0.3,
		PosNeSigma: 2.0,
		PosDSigma:  2.0,

		MagMeasurementSigma:      0.05,
		AirspeedMeasurementSigma: 1.4,

		GyroProcessNoise:  1.4544411e-2,
		AccelProcessNoise: 0.5,

		GateVelPos:   5.0,
		GateMag:      3.0,
		GateAirspeed: 5.0,
		GateRange:    5.0,
		GateOptFlow:  5.0,

		TimeoutVel:   10.0,
		TimeoutPos:   10.0,
		TimeoutHgt:   5.0,
		TimeoutMag:   10.0,
		TimeoutRange: 5.0,

		FusionModeGPS: 0,

		UseAirspeed:    true,
		UseCompass:     true,
		UseRangeFinder: true,
		UseOpticalFlow: true,

		StatsWindowLen:  5,
		StatsBiasThresh: 0.3,
		StatsVarThresh:  0.4,
		StatsChiConf:    0.99,
	}
}
