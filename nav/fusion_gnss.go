package nav

// FuseVelPosNED sequentially fuses GNSS velocity and horizontal position
// against the state recalled from the history ring at tsMs, following
// Params.FusionModeGPS (0: full 3D velocity, 1: drop vertical velocity,
// 2: position-only). accNavMag is the current horizontal accelerometer
// magnitude (m/s^2), used to inflate the velocity measurement noise during
// high dynamics the way the legacy adaptive noise model does.
func (f *Filter) FuseVelPosNED(tsMs int64, velMeas Vec3, havePos bool, posN, posE float64, accNavMag float64, fuseVel bool) {
	if !f.initialized {
		return
	}
	hist, ok := f.history.recall(tsMs)
	if !ok {
		hist.state = f.x
	}

	p := f.params
	noiseInflate := 1.0 + accNavMag/9.80665

	if fuseVel && p.FusionModeGPS < 2 {
		rVel := p.VneSigma * p.VneSigma * noiseInflate * noiseInflate
		rVd := p.VdSigma * p.VdSigma * noiseInflate * noiseInflate

		var h [StateDim]float64
		h[IVN] = 1
		f.fuseScalar(h, velMeas.X, hist.state[IVN], rVel, p.GateVelPos, &f.vel, ChanVelocity)

		h = [StateDim]float64{}
		h[IVE] = 1
		f.fuseScalar(h, velMeas.Y, hist.state[IVE], rVel, p.GateVelPos, &f.vel, ChanVelocity)

		if p.FusionModeGPS == 0 {
			h = [StateDim]float64{}
			h[IVD] = 1
			f.fuseScalar(h, velMeas.Z, hist.state[IVD], rVd, p.GateVelPos, &f.vel, ChanVelocity)
		}
	}

	if havePos && p.FusionModeGPS <= 2 {
		rPos := p.PosNeSigma * p.PosNeSigma

		var h [StateDim]float64
		h[IPN] = 1
		f.fuseScalar(h, posN, hist.state[IPN], rPos, p.GateVelPos, &f.pos, ChanPosition)

		h = [StateDim]float64{}
		h[IPE] = 1
		f.fuseScalar(h, posE, hist.state[IPE], rPos, p.GateVelPos, &f.pos, ChanPosition)
	}
}
