// Package geo computes great-circle distances between degree coordinates.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// ErrLengthMismatch is returned when a batch has a different number of
// longitudes and latitudes.
var ErrLengthMismatch = errors.New("geo: lons and lats differ in length")

// Haversine returns the great-circle distance in kilometres between two
// points given in decimal degrees.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a just outside [0,1] for identical or antipodal points
	a = math.Min(math.Max(a, 0), 1)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Distances returns the distance in kilometres from (refLon, refLat) to each
// (lons[i], lats[i]). The inputs are not modified.
func Distances(refLon, refLat float64, lons, lats []float64) ([]float64, error) {
	if len(lons) != len(lats) {
		return nil, ErrLengthMismatch
	}
	out := make([]float64, len(lons))
	for i := range lons {
		out[i] = Haversine(refLon, refLat, lons[i], lats[i])
	}
	return out, nil
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
