package nav

// FuseHeight fuses a single barometric height scalar against the history-
// aligned state. The observation model is h = -pD + hgtRef, so baroHgt is
// expected in the same datum as hgtRef was seeded at initialization.
func (f *Filter) FuseHeight(tsMs int64, baroHgt float64) {
	if !f.initialized {
		return
	}
	hist, ok := f.history.recall(tsMs)
	if !ok {
		hist.state = f.x
	}

	p := f.params
	predicted := -hist.state[IPD] + f.hgtRef

	var h [StateDim]float64
	h[IPD] = -1

	f.fuseScalar(h, baroHgt, predicted, p.PosDSigma*p.PosDSigma, p.GateVelPos, &f.hgt, ChanHeight)
}
