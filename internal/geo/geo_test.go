package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freight-sim/backend/internal/models"
)

var (
	losAngeles = models.Station{Code: "LA", Latitude: 34.0522, Longitude: -118.2437}
	chicago    = models.Station{Code: "CHI", Latitude: 41.8781, Longitude: -87.6298}
	newYork    = models.Station{Code: "NYC", Latitude: 40.7128, Longitude: -74.0060}
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Station
		want float64
		tol  float64
	}{
		{"chicago to new york", chicago, newYork, 1145, 10},
		{"los angeles to chicago", losAngeles, chicago, 2805, 15},
		{"symmetric", newYork, chicago, 1145, 10},
		{"identical coordinates use floor", chicago, chicago, MinDistanceKm, 0},
		{"sub-kilometre rounds to floor", chicago, models.Station{Latitude: 41.8782, Longitude: -87.6298}, MinDistanceKm, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, tt.tol)
			assert.Greater(t, got, 0.0)
		})
	}
}

func TestInterpolateEndpointsAreExact(t *testing.T) {
	start := Interpolate(losAngeles, chicago, 0)
	end := Interpolate(losAngeles, chicago, 1)

	assert.Equal(t, losAngeles.Latitude, start.Lat)
	assert.Equal(t, losAngeles.Longitude, start.Lon)
	assert.Equal(t, chicago.Latitude, end.Lat)
	assert.Equal(t, chicago.Longitude, end.Lon)
}

func TestInterpolateClampsFraction(t *testing.T) {
	assert.Equal(t, Interpolate(chicago, newYork, 1), Interpolate(chicago, newYork, 3.2))
	assert.Equal(t, Interpolate(chicago, newYork, 0), Interpolate(chicago, newYork, -0.5))

	mid := Interpolate(chicago, newYork, 0.5)
	assert.InDelta(t, (chicago.Latitude+newYork.Latitude)/2, mid.Lat, 1e-9)
	assert.InDelta(t, (chicago.Longitude+newYork.Longitude)/2, mid.Lon, 1e-9)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.087, Round(0.08695652, 3))
	assert.Equal(t, 34.05220, Round(34.0522049, 5))
	assert.Equal(t, -118.24371, Round(-118.243714, 5))
}
