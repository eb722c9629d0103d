// Package geo implements great-circle distance, radius snapping and the
// reverse-geocode cache + provider client.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// AllowedRadiiKm enumerates the radii nearby search accepts. Caller values
// outside the set are snapped to the nearest entry, never rejected.
var AllowedRadiiKm = []float64{10, 25, 50, 100}

// DistanceKm returns the great-circle distance between two points in
// kilometres. This is the single Haversine definition used everywhere —
// query layer and application code share it so orderings cannot diverge.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// SnapRadius maps any requested radius onto the nearest allowed value.
// Ties go to the smaller radius.
func SnapRadius(radiusKm float64) float64 {
	best := AllowedRadiiKm[0]
	bestDiff := math.Abs(radiusKm - best)
	for _, r := range AllowedRadiiKm[1:] {
		if diff := math.Abs(radiusKm - r); diff < bestDiff {
			best, bestDiff = r, diff
		}
	}
	return best
}

// Box is a rectangular lat/lon range used to prefilter nearby candidates
// before exact distance computation.
type Box struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// kmPerDegreeLat is the approximate north-south span of one degree.
const kmPerDegreeLat = 111.045

// Bounds returns a bounding box guaranteed to contain the radiusKm circle
// around (lat, lon). The longitude span widens with latitude; near the poles
// the box degenerates to the full longitude range.
func Bounds(lat, lon, radiusKm float64) Box {
	latDelta := radiusKm / kmPerDegreeLat

	cosLat := math.Cos(lat * math.Pi / 180)
	lonDelta := 180.0
	if cosLat > 0.01 {
		lonDelta = radiusKm / (kmPerDegreeLat * cosLat)
	}

	return Box{
		LatMin: math.Max(lat-latDelta, -90),
		LatMax: math.Min(lat+latDelta, 90),
		LonMin: math.Max(lon-lonDelta, -180),
		LonMax: math.Min(lon+lonDelta, 180),
	}
}

// ValidCoords reports whether lat/lon are inside the WGS84 ranges.
func ValidCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
