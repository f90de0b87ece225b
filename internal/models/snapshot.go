package models

import "time"

// CarSnapshot is the realized view of a car at one tick.
type CarSnapshot struct {
	ID    string      `json:"id"`
	Type  CarType     `json:"type"`
	Cargo []CargoItem `json:"cargo"`
}

// TrainSnapshot is an immutable projection of a train at one tick.
type TrainSnapshot struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	Speed                 float64       `json:"speed"`
	Route                 Route         `json:"route"`
	FromStationCode       string        `json:"fromStationCode"`
	ToStationCode         string        `json:"toStationCode"`
	LegProgress           float64       `json:"legProgress"`
	CurrentLocation       *Location     `json:"currentLocation"`
	Dwelling              bool          `json:"dwelling"`
	DwellRemainingMinutes float64       `json:"dwellRemainingMinutes"`
	Cars                  []CarSnapshot `json:"cars"`
	LastUpdated           time.Time     `json:"lastUpdated"`
}

// AppliedFilters echoes the criteria a payload was filtered with.
type AppliedFilters struct {
	CargoID   *string `json:"cargoId"`
	TrainName *string `json:"trainName"`
	CarID     *string `json:"carId"`
	Station   *string `json:"station"`
	Status    *string `json:"status"`
}

// Frame is the unfiltered projection of the whole fleet for one tick. It is
// shared by every subscriber and must not be mutated after publication.
type Frame struct {
	Tick      uint64          `json:"tick"`
	Timestamp time.Time       `json:"timestamp"`
	Trains    []TrainSnapshot `json:"trains"`
}

// Payload is what a subscriber receives.
type Payload struct {
	Timestamp      time.Time       `json:"timestamp"`
	Tick           uint64          `json:"tick"`
	FiltersApplied AppliedFilters  `json:"filtersApplied"`
	Trains         []TrainSnapshot `json:"trains"`
	StationCatalog []Station       `json:"stationCatalog"`
}
