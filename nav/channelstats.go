package nav

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Channel identifies one of the seven independently-fused aiding modalities
// tracked by the rolling innovation-trend diagnostic of §4.9. This package
// never branches its own state/covariance mutation on a Channel's trending
// vote; the vote is diagnostic-only and surfaces through FilterStatus.
type Channel int

const (
	ChanVelocity Channel = iota
	ChanPosition
	ChanHeight
	ChanMagnetometer
	ChanAirspeed
	ChanRangeFinder
	ChanOpticalFlow
	numChannels
)

type statSample struct {
	mean, std, chi2 float64
}

type channelWindow struct {
	samples []statSample
	next    int
	filled  int
}

type channelStatsSet struct {
	windows [numChannels]channelWindow
}

func newChannelStatsSet(winLen int) channelStatsSet {
	if winLen <= 0 {
		winLen = 5
	}
	var s channelStatsSet
	for c := range s.windows {
		s.windows[c] = channelWindow{samples: make([]statSample, winLen)}
	}
	return s
}

// record computes the standardized-innovation mean, standard deviation, and
// normalized chi-square statistic for one fusion call's innovation vector
// rk against its innovation covariance pykk1, and pushes the result into
// that channel's rolling window. Mirrors the adaptive innovation-statistics
// computation used elsewhere in this module's diagnostic path: build a
// dense matrix, invert it via SVD-based pseudo-inverse rather than a direct
// solve, so a near-singular innovation covariance degrades gracefully
// instead of producing a numerical fault.
func (s *channelStatsSet) record(ch Channel, rk []float64, pykk1 [][]float64) {
	n := len(rk)
	if n == 0 {
		return
	}

	rkVec := mat.NewVecDense(n, rk)
	py := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			py.Set(i, j, pykk1[i][j])
		}
	}

	var svd mat.SVD
	ok := svd.Factorize(py, mat.SVDThin)
	var chi2 float64
	var stdSum, stdCount float64
	if ok {
		var u, v mat.Dense
		svd.UTo(&u)
		svd.VTo(&v)
		values := svd.Values(nil)
		maxSV := 0.0
		for _, sv := range values {
			if sv > maxSV {
				maxSV = sv
			}
		}
		tol := 1e-15 * float64(n) * maxSV
		sigmaInv := mat.NewDense(n, n, nil)
		for i, sv := range values {
			if sv > tol {
				sigmaInv.Set(i, i, 1.0/sv)
			}
		}
		var tmp mat.Dense
		tmp.Mul(&v, sigmaInv)
		var pinv mat.Dense
		pinv.Mul(&tmp, u.T())

		var invRk mat.VecDense
		invRk.MulVec(&pinv, rkVec)
		chi2 = mat.Dot(rkVec, &invRk)

		for i := 0; i < n; i++ {
			if py.At(i, i) > 0 {
				stdSum += rk[i] / math.Sqrt(py.At(i, i))
				stdCount++
			}
		}
	}

	mean := 0.0
	for _, r := range rk {
		mean += r
	}
	mean /= float64(n)

	std := 0.0
	if stdCount > 0 {
		std = stdSum / stdCount
	}

	w := &s.windows[ch]
	w.samples[w.next] = statSample{mean: mean, std: std, chi2: chi2}
	w.next = (w.next + 1) % len(w.samples)
	if w.filled < len(w.samples) {
		w.filled++
	}
}

// summarize produces the public rolling-average view consumed by
// FilterStatus, including the §4.9 trending-unhealthy majority vote.
func (s *channelStatsSet) summarize(p Params) [numChannels]ChannelStatSummary {
	var out [numChannels]ChannelStatSummary
	for c := 0; c < int(numChannels); c++ {
		w := &s.windows[c]
		if w.filled == 0 {
			continue
		}
		var meanSum, stdSum, chiSum float64
		for i := 0; i < w.filled; i++ {
			meanSum += w.samples[i].mean
			stdSum += w.samples[i].std
			chiSum += w.samples[i].chi2
		}
		n := float64(w.filled)
		avgMean := meanSum / n
		avgStd := stdSum / n
		avgChi := chiSum / n

		dof := 1
		switch Channel(c) {
		case ChanVelocity:
			dof = 3
		case ChanPosition:
			dof = 3
		case ChanMagnetometer:
			dof = 3
		case ChanOpticalFlow:
			dof = 2
		}
		thresh := chi2Inv(p.StatsChiConf, dof)
		chiRatio := 0.0
		if thresh > 0 {
			chiRatio = avgChi / thresh
		}

		condBias := absF(avgMean) > p.StatsBiasThresh
		condVar := avgStd > p.StatsVarThresh
		condChi := chiRatio > 1.0
		votes := 0
		if condBias {
			votes++
		}
		if condVar {
			votes++
		}
		if condChi {
			votes++
		}

		out[c] = ChannelStatSummary{
			Samples:        w.filled,
			MeanResid:      avgMean,
			StdResid:       avgStd,
			Chi2Ratio:      chiRatio,
			TrendUnhealthy: votes >= 2,
		}
	}
	return out
}

