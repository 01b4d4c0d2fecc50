package nav

import "math"

// CalcPosNED converts a latitude/longitude/height to a NED offset from the
// filter's reference point, using a spherical-earth tangent-plane
// approximation.
func CalcPosNED(lat, lon, hgt, latRef, lonRef, hgtRef float64) Vec3 {
	dLat := lat - latRef
	dLon := lon - lonRef
	n := dLat * EarthRadiusM
	e := dLon * EarthRadiusM * math.Cos(latRef)
	d := hgtRef - hgt
	return Vec3{n, e, d}
}

// CalcLLH is the inverse of CalcPosNED: it recovers latitude/longitude/
// height from a NED offset about the same reference point.
func CalcLLH(posNED Vec3, latRef, lonRef, hgtRef float64) (lat, lon, hgt float64) {
	lat = latRef + posNED.X*EarthRadiusInv
	lon = lonRef + posNED.Y*EarthRadiusInv/math.Cos(latRef)
	hgt = hgtRef - posNED.Z
	return
}

// CalcVelNED decomposes a GNSS course-over-ground/speed/climb-rate report
// into NED velocity components.
func CalcVelNED(groundSpeed, courseRad, climbRate float64) Vec3 {
	return Vec3{
		X: groundSpeed * math.Cos(courseRad),
		Y: groundSpeed * math.Sin(courseRad),
		Z: -climbRate,
	}
}
