package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineSymmetric(t *testing.T) {
	pairs := [][4]float64{
		{4.1, 51.9, 4.2, 52.0},
		{-70.5, -33.1, 151.2, -33.8},
		{0, 0, 179.9, 0.1},
	}
	for _, p := range pairs {
		ab := Haversine(p[0], p[1], p[2], p[3])
		ba := Haversine(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-9)
	}
}

func TestHaversineZero(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(12.34, -56.78, 12.34, -56.78))
	d, err := Distances(-3.5, 40.1, []float64{-3.5}, []float64{40.1})
	require.NoError(t, err)
	assert.InDelta(t, 0, d[0], 1e-9)
}

func TestHaversineOneDegreeLatitude(t *testing.T) {
	d := Haversine(0, 0, 0, 1)
	assert.InDelta(t, 111.0, d, 1.0)
}

func TestHaversineAntipodalIsFinite(t *testing.T) {
	d := Haversine(0, 0, 180, 0)
	require.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)

	d = Haversine(-45, 90, 135, -90)
	require.False(t, math.IsNaN(d))
}

func TestDistancesBatch(t *testing.T) {
	lons := []float64{0, 0, 1}
	lats := []float64{0, 1, 0}
	d, err := Distances(0, 0, lons, lats)
	require.NoError(t, err)
	require.Len(t, d, 3)
	assert.Equal(t, 0.0, d[0])
	assert.InDelta(t, 111.19, d[1], 0.01)
	assert.InDelta(t, 111.19, d[2], 0.01)

	// inputs untouched
	assert.Equal(t, []float64{0, 0, 1}, lons)
	assert.Equal(t, []float64{0, 1, 0}, lats)
}

func TestDistancesEmpty(t *testing.T) {
	d, err := Distances(1, 2, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, d)
	assert.NotNil(t, d)
}

func TestDistancesLengthMismatch(t *testing.T) {
	_, err := Distances(0, 0, []float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
