package nav

// FuseOpticalFlow sequentially fuses the two body-frame LOS angular rates
// reported by a downward optical-flow sensor. The observation model
// projects NED velocity into body axes, divides by the estimated height
// above the terrain state, and scales by the optical-flow scale-factor
// state, following the legacy flow/range coupling.
func (f *Filter) FuseOpticalFlow(tsMs int64, losX, losY float64) {
	if !f.initialized || !f.params.UseOpticalFlow {
		return
	}
	hist, ok := f.history.recall(tsMs)
	if !ok {
		hist.state = f.x
	}

	relHgt := hist.state[ITH] - hist.state[IPD]
	if relHgt < 0.5 {
		return // too close to the ground for a trustworthy flow scale
	}

	q := Quat{W: hist.state[IQ0], X: hist.state[IQ1], Y: hist.state[IQ2], Z: hist.state[IQ3]}.Normalized()
	tnb := q.RotationMatrix().Transpose()
	velNED := Vec3{hist.state[IVN], hist.state[IVE], hist.state[IVD]}
	velBody := tnb.MulVec(velNED)

	scale := hist.state[IOF]
	predX := scale * velBody.Y / relHgt
	predY := -scale * velBody.X / relHgt

	r := f.params.OptScaleSigma + 0.01
	r = r * r
	gate := f.params.GateOptFlow

	var hX [StateDim]float64
	for c := 0; c < 3; c++ {
		hX[IVN+c] = scale * tnb.M[1][c] / relHgt
	}
	hX[ITH] = -scale * velBody.Y / (relHgt * relHgt)
	hX[IPD] = scale * velBody.Y / (relHgt * relHgt)
	hX[IOF] = velBody.Y / relHgt
	f.fuseScalar(hX, losX, predX, r, gate, &f.flow, ChanOpticalFlow)

	var hY [StateDim]float64
	for c := 0; c < 3; c++ {
		hY[IVN+c] = -scale * tnb.M[0][c] / relHgt
	}
	hY[ITH] = scale * velBody.X / (relHgt * relHgt)
	hY[IPD] = -scale * velBody.X / (relHgt * relHgt)
	hY[IOF] = -velBody.X / relHgt
	f.fuseScalar(hY, losY, predY, r, gate, &f.flow, ChanOpticalFlow)
}
