package nav

// fuseScalar performs one sequential scalar measurement update: innovation,
// innovation variance, gate test, Kalman gain, and the symmetric P - K S Kt
// covariance update. h is the 24-long observation Jacobian row, z the raw
// measurement, hx the predicted observation. It returns whether the sample
// was accepted (false on gate rejection, in which case state and covariance
// are left byte-identical to their pre-call values).
func (f *Filter) fuseScalar(h [StateDim]float64, z, hx, r, gateSigma float64, ch *channelHealth, kind Channel) bool {
	var ph [StateDim]float64
	for i := 0; i < StateDim; i++ {
		var sum float64
		for j := 0; j < StateDim; j++ {
			sum += f.p[i][j] * h[j]
		}
		ph[i] = sum
	}

	var innovVar float64
	for j := 0; j < StateDim; j++ {
		innovVar += h[j] * ph[j]
	}
	innovVar += r

	innov := z - hx

	f.stats.record(kind, []float64{innov}, [][]float64{{innovVar}})

	if innovVar <= 0 {
		f.markChannelRejected(ch)
		return false
	}
	if innov*innov > gateSigma*gateSigma*innovVar {
		f.markChannelRejected(ch)
		return false
	}

	var k [StateDim]float64
	for i := 0; i < StateDim; i++ {
		k[i] = ph[i] / innovVar
	}
	for i := 0; i < StateDim; i++ {
		f.x[i] += k[i] * innov
	}
	for i := 0; i < StateDim; i++ {
		for j := 0; j < StateDim; j++ {
			f.p[i][j] -= k[i] * innovVar * k[j]
		}
	}

	f.markChannelAccepted(ch)
	return true
}
