package nav

import "math"

// FuseAirspeed fuses a single true-airspeed scalar: the measurement is
// EAS2TAS*equivalentAirspeed, compared against the magnitude of the NED
// velocity relative to the estimated wind. It is skipped while the
// on-ground flag is set.
func (f *Filter) FuseAirspeed(tsMs int64, equivalentAirspeed float64) {
	if !f.initialized || !f.params.UseAirspeed || f.onGround {
		return
	}
	hist, ok := f.history.recall(tsMs)
	if !ok {
		hist.state = f.x
	}

	vn := hist.state[IVN] - hist.state[IWN]
	ve := hist.state[IVE] - hist.state[IWE]
	vd := hist.state[IVD]
	tas := math.Sqrt(vn*vn + ve*ve + vd*vd)
	if tas < 1e-3 {
		return
	}

	var h [StateDim]float64
	h[IVN] = vn / tas
	h[IVE] = ve / tas
	h[IVD] = vd / tas
	h[IWN] = -vn / tas
	h[IWE] = -ve / tas

	measTAS := equivalentAirspeed * f.params.EAS2TAS
	r := f.params.AirspeedMeasurementSigma * f.params.AirspeedMeasurementSigma

	f.fuseScalar(h, measTAS, tas, r, f.params.GateAirspeed, &f.speed, ChanAirspeed)
}
