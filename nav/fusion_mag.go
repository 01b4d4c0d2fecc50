package nav

// FuseMagnetometer sequentially fuses the three body-frame magnetometer
// axes against the history-aligned attitude and magnetic-field states. The
// observation model is m_body = Tnb * earthField + bodyBias; each axis is
// fused independently using the covariance left by the previous axis,
// following the same sequential-scalar pattern as GNSS and optical flow.
func (f *Filter) FuseMagnetometer(tsMs int64, magBody Vec3) {
	if !f.initialized || !f.params.UseCompass {
		return
	}
	hist, ok := f.history.recall(tsMs)
	if !ok {
		hist.state = f.x
	}

	q := Quat{W: hist.state[IQ0], X: hist.state[IQ1], Y: hist.state[IQ2], Z: hist.state[IQ3]}.Normalized()
	tnb := q.RotationMatrix().Transpose()
	earthField := Vec3{hist.state[IME], hist.state[IMF], hist.state[IMD]}
	predicted := tnb.MulVec(earthField)
	predBody := [3]float64{
		predicted.X + hist.state[IMX],
		predicted.Y + hist.state[IMY],
		predicted.Z + hist.state[IMZ],
	}
	measBody := [3]float64{magBody.X, magBody.Y, magBody.Z}

	skew := skewMat(predicted)
	r := f.params.MagMeasurementSigma * f.params.MagMeasurementSigma
	gate := f.params.GateMag

	for axis := 0; axis < 3; axis++ {
		var h [StateDim]float64
		for c := 0; c < 3; c++ {
			h[IME+c] = tnb.M[axis][c]
			h[IQ1+c] = skew.M[axis][c]
		}
		h[IMX+axis] = 1
		f.fuseScalar(h, measBody[axis], predBody[axis], r, gate, &f.mag, ChanMagnetometer)
	}
}
