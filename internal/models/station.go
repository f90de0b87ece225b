// Package models contains domain types for the freight fleet simulator.
package models

// Station is a fixed stop in the rail network. Identity is Code.
type Station struct {
	Code      string  `json:"code" yaml:"code" validate:"required"`
	Name      string  `json:"name" yaml:"name" validate:"required"`
	City      string  `json:"city" yaml:"city"`
	State     string  `json:"state" yaml:"state"`
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
}

// Location is a projected train position.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Route is an ordered sequence of station codes.
type Route []string

// Legs returns the number of legs in the route.
func (r Route) Legs() int {
	if len(r) < 2 {
		return 0
	}
	return len(r) - 1
}

// Clone returns a copy that does not share the backing array.
func (r Route) Clone() Route {
	out := make(Route, len(r))
	copy(out, r)
	return out
}
