package nav

import "math"

// FuseRangeFinder fuses a single laser range-finder scalar against the
// terrain-height state, projected through the current tilt so a slant
// range is converted to the equivalent vertical distance.
func (f *Filter) FuseRangeFinder(tsMs int64, rangeMea float64) {
	if !f.initialized || !f.params.UseRangeFinder {
		return
	}
	hist, ok := f.history.recall(tsMs)
	if !ok {
		hist.state = f.x
	}

	q := Quat{W: hist.state[IQ0], X: hist.state[IQ1], Y: hist.state[IQ2], Z: hist.state[IQ3]}.Normalized()
	roll, pitch := QuatToEul2(q)
	cosPitch := math.Cos(pitch + f.params.RngFinderPitch)
	cosRoll := math.Cos(roll)
	if absF(cosPitch) < 0.1 || absF(cosRoll) < 0.1 {
		return // tilt too extreme to trust the slant-range projection
	}

	vertDist := hist.state[ITH] - hist.state[IPD]
	predictedRange := vertDist / (cosPitch * cosRoll)

	var h [StateDim]float64
	h[ITH] = 1.0 / (cosPitch * cosRoll)
	h[IPD] = -1.0 / (cosPitch * cosRoll)

	r := f.params.GndHgtSigma * f.params.GndHgtSigma * rangeMea * rangeMea

	f.fuseScalar(h, rangeMea, predictedRange, r, f.params.GateRange, &f.rng, ChanRangeFinder)
}

// QuatToEul2 is a thin alias of QuatToEul returning (roll, pitch) only,
// for call sites that do not need yaw.
func QuatToEul2(q Quat) (roll, pitch float64) {
	roll, pitch, _ = QuatToEul(q)
	return
}
