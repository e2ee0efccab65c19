// Package geo provides great-circle distance math for store selection.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Point is a candidate location. Either coordinate may be nil when the
// underlying record has no geocoded position.
type Point struct {
	Lat *float64
	Lng *float64
}

// Distance returns the haversine distance in kilometers between two
// coordinate pairs.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// NearestIndex returns the index of the candidate closest to the target,
// or -1 when no candidate has usable coordinates. Candidates missing either
// coordinate are skipped. Ties keep the first candidate encountered, so the
// input order is the secondary sort key.
func NearestIndex(candidates []Point, targetLat, targetLng float64) int {
	best := -1
	bestDist := math.Inf(1)

	for i, c := range candidates {
		if c.Lat == nil || c.Lng == nil {
			continue
		}
		d := Distance(targetLat, targetLng, *c.Lat, *c.Lng)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}

	return best
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
