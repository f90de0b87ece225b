// Package geo holds the distance and interpolation math used to move trains
// between stations.
package geo

import (
	"math"

	"github.com/freight-sim/backend/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// MinDistanceKm is returned for legs whose length rounds to zero so that
// speed-to-progress conversion never divides by zero.
const MinDistanceKm = 1.0

// DistanceKm returns the great-circle distance between two stations.
func DistanceKm(a, b models.Station) float64 {
	d := Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	if math.Round(d) <= 0 || math.IsNaN(d) {
		return MinDistanceKm
	}
	return d
}

// Haversine returns the raw great-circle distance in kilometres.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return EarthRadiusKm * c
}

// Interpolate returns the point at fraction t of the straight lat/lon line
// from a to b. t is clamped to [0,1]; t=0 and t=1 return the endpoints exactly.
func Interpolate(a, b models.Station, t float64) models.Location {
	t = Clamp01(t)
	return models.Location{
		Lat: a.Latitude*(1-t) + b.Latitude*t,
		Lon: a.Longitude*(1-t) + b.Longitude*t,
	}
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
