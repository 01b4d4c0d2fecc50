package nav

// Filter is the 24-state navigation EKF. It is a pure, single-threaded state
// machine: every exported method mutates only its own fields and returns in
// bounded time. State, covariance, and history are fixed-size arrays; each
// scalar fusion also records innovation statistics through gonum
// (channelstats.go), which allocates on the heap. Callers must
// not invoke it re-entrantly, and must follow the ordering contract:
// UpdateStrapdown -> StoreState -> (PredictCovariance when triggered) ->
// zero or more Fuse* calls -> CheckAndBound.
type Filter struct {
	params Params

	x    [StateDim]float64
	p    [StateDim][StateDim]float64
	Tbn  Mat3
	Tnb  Mat3

	initialized bool
	onGround    bool

	latRef, lonRef, hgtRef float64

	summedDelAng Vec3
	summedDelVel Vec3
	dtCovSum     float64

	lastDelAng Vec3 // per-tick corrected delta-angle, snapshotted into the history ring

	timeNow float64 // seconds, advanced by UpdateStrapdown

	history historyRing
	stats   channelStatsSet

	lastErr      FilterStatus
	hasLastErr   bool

	vel   channelHealth
	pos   channelHealth
	hgt   channelHealth
	mag   channelHealth
	rng   channelHealth
	flow  channelHealth
	speed channelHealth
}

// channelHealth tracks the hard-timeout bookkeeping of §4.8, independent of
// the softer trending-unhealthy vote of §4.9.
type channelHealth struct {
	healthy    bool
	timeout    bool
	failSince  float64 // timeNow at which the current rejection streak began, -1 if none
	failTime   float64 // timeNow of first rejection once a streak is active
}

func newChannelHealth() channelHealth {
	return channelHealth{healthy: true, failSince: -1}
}

// NewFilter constructs an uninitialized filter with the given tunables.
func NewFilter(p Params) *Filter {
	f := &Filter{
		params: p,
		vel:    newChannelHealth(),
		pos:    newChannelHealth(),
		hgt:    newChannelHealth(),
		mag:    newChannelHealth(),
		rng:    newChannelHealth(),
		flow:   newChannelHealth(),
		speed:  newChannelHealth(),
	}
	f.stats = newChannelStatsSet(p.StatsWindowLen)
	f.x[IQ0] = 1.0
	f.Tbn = Quat{W: 1}.RotationMatrix()
	f.Tnb = f.Tbn.Transpose()
	return f
}

// Params returns the filter's current tunables.
func (f *Filter) Params() Params { return f.params }

// SetParams replaces the filter's tunables. Safe to call at any time; it
// never mutates state or covariance.
func (f *Filter) SetParams(p Params) { f.params = p }

// Initialized reports whether InitialiseFilter or InitializeDynamic has run.
func (f *Filter) Initialized() bool { return f.initialized }

// SetOnGround toggles the on-ground flag consulted by covariance prediction
// (wind-state suppression) and airspeed fusion (skipped on the ground).
func (f *Filter) SetOnGround(onGround bool) { f.onGround = onGround }

// quat extracts the current attitude quaternion from the state vector.
func (f *Filter) quat() Quat {
	return Quat{W: f.x[IQ0], X: f.x[IQ1], Y: f.x[IQ2], Z: f.x[IQ3]}
}

func (f *Filter) setQuat(q Quat) {
	f.x[IQ0], f.x[IQ1], f.x[IQ2], f.x[IQ3] = q.W, q.X, q.Y, q.Z
	f.Tbn = q.RotationMatrix()
	f.Tnb = f.Tbn.Transpose()
}

func (f *Filter) velNED() Vec3 { return Vec3{f.x[IVN], f.x[IVE], f.x[IVD]} }
func (f *Filter) posNED() Vec3 { return Vec3{f.x[IPN], f.x[IPE], f.x[IPD]} }

// State returns a copy of the current 24-state vector.
func (f *Filter) State() [StateDim]float64 { return f.x }

// CovarianceDiag returns a copy of the covariance diagonal.
func (f *Filter) CovarianceDiag() [StateDim]float64 {
	var d [StateDim]float64
	for i := 0; i < StateDim; i++ {
		d[i] = f.p[i][i]
	}
	return d
}

// GetFilterState copies the current status snapshot, matching the legacy
// get_filter_state accessor.
func (f *Filter) GetFilterState() FilterStatus {
	var s FilterStatus
	s.States = f.x
	s.PDiag = f.CovarianceDiag()
	s.VelHealthy, s.VelTimeout, s.VelFailTime = f.vel.healthy, f.vel.timeout, f.vel.failTime
	s.PosHealthy, s.PosTimeout, s.PosFailTime = f.pos.healthy, f.pos.timeout, f.pos.failTime
	s.HgtHealthy, s.HgtTimeout, s.HgtFailTime = f.hgt.healthy, f.hgt.timeout, f.hgt.failTime
	s.MagHealthy, s.MagTimeout, s.MagFailTime = f.mag.healthy, f.mag.timeout, f.mag.failTime
	s.RangeHealthy, s.RangeTimeout, s.RangeFailTime = f.rng.healthy, f.rng.timeout, f.rng.failTime
	s.StatesNaN = !allFiniteVec(f.x)
	s.CovarianceNaN = !allFiniteMat(f.p)
	s.ChannelStats = f.stats.summarize(f.params)
	s.TimestampMs = int64(f.timeNow * 1000.0)
	return s
}

// GetLastErrorState copies the status snapshot captured at the most recent
// health-monitor fault, if any has occurred.
func (f *Filter) GetLastErrorState() (FilterStatus, bool) { return f.lastErr, f.hasLastErr }
