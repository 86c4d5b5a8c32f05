// Package geo provides the great-circle distance and coordinate rounding
// used by point sampling and nearest-candidate selection.
package geo

import (
	"math"

	"panoscraper/types"
)

// EarthRadiusKm is the sphere radius used for all distance calculations.
const EarthRadiusKm = 6373.0

// DistanceKm returns the haversine great-circle distance between two points
// in kilometers. NaN inputs propagate NaN.
func DistanceKm(a, b types.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lon1 := a.Lon * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lon2 := b.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// RoundKey rounds both coordinates to 6 decimal places (about 0.11 m).
// Points whose rounded keys collide are considered duplicates.
func RoundKey(p types.GeoPoint) types.GeoPoint {
	return types.GeoPoint{
		Lat: round6(p.Lat),
		Lon: round6(p.Lon),
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
