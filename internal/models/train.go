package models

import "time"

// CarType tags the kind of rolling stock.
type CarType string

const (
	CarTypeBoxcar     CarType = "BOXCAR"
	CarTypeHopper     CarType = "HOPPER"
	CarTypeTanker     CarType = "TANKER"
	CarTypeFlatcar    CarType = "FLATCAR"
	CarTypeReefer     CarType = "REEFER"
	CarTypeIntermodal CarType = "INTERMODAL"
)

// CarTypes lists every car type in a stable order.
var CarTypes = []CarType{
	CarTypeBoxcar,
	CarTypeHopper,
	CarTypeTanker,
	CarTypeFlatcar,
	CarTypeReefer,
	CarTypeIntermodal,
}

// Car owns its cargo exclusively. Cargo is append-only.
type Car struct {
	ID    string       `json:"id"`
	Type  CarType      `json:"type"`
	Cargo []*CargoItem `json:"cargo"`
}

// Train is the mutable simulation state of one train.
type Train struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Route           Route     `json:"route"`
	CurrentLegIndex int       `json:"currentLegIndex"`
	LegProgress     float64   `json:"legProgress"`
	Speed           float64   `json:"speed"`        // nominal, km/h
	DisplaySpeed    float64   `json:"displaySpeed"` // 0 while dwelling
	DwellRemaining  float64   `json:"dwellRemainingHours"`
	Cars            []*Car    `json:"cars"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Dwelling reports whether the train is held at its arrival station.
func (t *Train) Dwelling() bool {
	return t.DwellRemaining > 0 && t.LegProgress >= 1
}

// LegEndpoints returns the station codes of the active leg.
func (t *Train) LegEndpoints() (from, to string, ok bool) {
	if t.CurrentLegIndex < 0 || t.CurrentLegIndex+1 >= len(t.Route) {
		return "", "", false
	}
	return t.Route[t.CurrentLegIndex], t.Route[t.CurrentLegIndex+1], true
}

// CargoCount returns the number of items carried, grouped by status.
func (t *Train) CargoCount() map[CargoStatus]int {
	counts := make(map[CargoStatus]int, 3)
	for _, car := range t.Cars {
		for _, item := range car.Cargo {
			counts[item.Status]++
		}
	}
	return counts
}
