package nav

// chi2_95 and chi2_99 hold the chi-square critical value for degrees of
// freedom 1..10 at the 95% and 99% confidence levels, indexed 0..9.
var chi2_95 = [10]float64{
	3.841, 5.991, 7.815, 9.488, 11.070,
	12.592, 14.067, 15.507, 16.919, 18.307,
}

var chi2_99 = [10]float64{
	6.635, 9.210, 11.345, 13.277, 15.086,
	16.812, 18.475, 20.090, 21.666, 23.209,
}

// chi2Inv looks up the chi-square critical value for the given confidence
// (0.95 or 0.99, nearest match) and degrees of freedom, clamped to the
// tabulated range 1..10.
func chi2Inv(confidence float64, dof int) float64 {
	if dof < 1 {
		dof = 1
	}
	if dof > 10 {
		dof = 10
	}
	if confidence >= 0.97 {
		return chi2_99[dof-1]
	}
	return chi2_95[dof-1]
}
