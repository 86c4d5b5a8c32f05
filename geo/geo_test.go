package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"panoscraper/types"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	pts := []types.GeoPoint{
		{Lat: 0, Lon: 0},
		{Lat: 51.5074, Lon: -0.1278},
		{Lat: -33.8688, Lon: 151.2093},
	}
	for _, p := range pts {
		assert.Equal(t, 0.0, DistanceKm(p, p))
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	a := types.GeoPoint{Lat: 40.7128, Lon: -74.0060}
	b := types.GeoPoint{Lat: 34.0522, Lon: -118.2437}
	assert.Equal(t, DistanceKm(a, b), DistanceKm(b, a))
}

func TestDistanceKmOneDegreeAtEquator(t *testing.T) {
	// One degree of longitude at the equator on a 6373 km sphere.
	d := DistanceKm(types.GeoPoint{Lat: 0, Lon: 0}, types.GeoPoint{Lat: 0, Lon: 1})
	assert.InDelta(t, 111.19, d, 0.5)
}

func TestDistanceKmPropagatesNaN(t *testing.T) {
	d := DistanceKm(types.GeoPoint{Lat: math.NaN(), Lon: 0}, types.GeoPoint{Lat: 0, Lon: 0})
	assert.True(t, math.IsNaN(d))
}

func TestRoundKeyCollapsesSubMicroDegreeNoise(t *testing.T) {
	a := types.GeoPoint{Lat: 1.2345678, Lon: 2.3456789}
	b := types.GeoPoint{Lat: 1.2345681, Lon: 2.3456785}
	assert.Equal(t, RoundKey(a), RoundKey(b))

	// Differences at the sixth decimal stay distinct.
	c := types.GeoPoint{Lat: 1.234568, Lon: 2.345679}
	d := types.GeoPoint{Lat: 1.234569, Lon: 2.345679}
	assert.NotEqual(t, RoundKey(c), RoundKey(d))
}
