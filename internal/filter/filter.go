// Package filter prunes train snapshots down to what a subscriber asked for.
//
// Matching runs top-down at three levels: train name, then car id, then the
// cargo items of every remaining car. String matchers are case-insensitive
// substrings; status is an exact match after case normalisation.
package filter

import (
	"net/url"
	"strings"

	"github.com/freight-sim/backend/internal/models"
)

// Query parameter names accepted by FromValues.
const (
	ParamCargoID   = "cargoId"
	ParamTrainName = "trainName"
	ParamCarID     = "carId"
	ParamStation   = "station"
	ParamStatus    = "status"
)

// Criteria is one subscriber's filter. Empty fields match everything.
type Criteria struct {
	CargoID   string
	TrainName string
	CarID     string
	Station   string
	Status    string
}

// FromValues reads criteria from URL query values. Blank values are
// treated as absent.
func FromValues(v url.Values) Criteria {
	return Criteria{
		CargoID:   strings.TrimSpace(v.Get(ParamCargoID)),
		TrainName: strings.TrimSpace(v.Get(ParamTrainName)),
		CarID:     strings.TrimSpace(v.Get(ParamCarID)),
		Station:   strings.TrimSpace(v.Get(ParamStation)),
		Status:    strings.TrimSpace(v.Get(ParamStatus)),
	}
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return c == Criteria{}
}

// Applied returns the criteria as the nullable echo sent with a payload.
func (c Criteria) Applied() models.AppliedFilters {
	return models.AppliedFilters{
		CargoID:   optional(c.CargoID),
		TrainName: optional(c.TrainName),
		CarID:     optional(c.CarID),
		Station:   optional(c.Station),
		Status:    optional(c.Status),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Apply returns the trains, cars and cargo that satisfy c. The input is
// never modified; surviving trains are shallow copies with rebuilt car
// lists.
func Apply(trains []models.TrainSnapshot, c Criteria) []models.TrainSnapshot {
	if c.IsEmpty() {
		return trains
	}
	m := compile(c)

	out := make([]models.TrainSnapshot, 0, len(trains))
	for _, t := range trains {
		if m.trainName != "" && !contains(t.Name, m.trainName) {
			continue
		}
		if !m.carLevel() && !m.cargoLevel() {
			out = append(out, t)
			continue
		}
		cars := m.filterCars(t.Cars)
		if len(cars) == 0 {
			continue
		}
		t.Cars = cars
		out = append(out, t)
	}
	return out
}

type matcher struct {
	cargoID   string
	trainName string
	carID     string
	station   string

	hasStatus bool
	status    models.CargoStatus
	// badStatus is set for an unrecognised status, which matches nothing.
	badStatus bool
}

func compile(c Criteria) matcher {
	m := matcher{
		cargoID:   strings.ToLower(c.CargoID),
		trainName: strings.ToLower(c.TrainName),
		carID:     strings.ToLower(c.CarID),
		station:   strings.ToLower(c.Station),
	}
	if c.Status != "" {
		m.hasStatus = true
		status, ok := models.ParseCargoStatus(c.Status)
		m.status = status
		m.badStatus = !ok
	}
	return m
}

func (m matcher) carLevel() bool {
	return m.carID != ""
}

func (m matcher) cargoLevel() bool {
	return m.cargoID != "" || m.station != "" || m.hasStatus
}

func (m matcher) filterCars(cars []models.CarSnapshot) []models.CarSnapshot {
	out := make([]models.CarSnapshot, 0, len(cars))
	for _, car := range cars {
		if m.carID != "" && !contains(car.ID, m.carID) {
			continue
		}
		if m.cargoLevel() {
			cargo := m.filterCargo(car.Cargo)
			if len(cargo) == 0 {
				continue
			}
			car.Cargo = cargo
		}
		out = append(out, car)
	}
	return out
}

func (m matcher) filterCargo(items []models.CargoItem) []models.CargoItem {
	if m.badStatus {
		return nil
	}
	var out []models.CargoItem
	for _, item := range items {
		if m.matchItem(item) {
			out = append(out, item)
		}
	}
	return out
}

func (m matcher) matchItem(item models.CargoItem) bool {
	if m.cargoID != "" && !contains(item.ID, m.cargoID) {
		return false
	}
	if m.station != "" &&
		!contains(item.Origin, m.station) &&
		!contains(item.Destination, m.station) &&
		!contains(item.OffloadCode(), m.station) {
		return false
	}
	if m.hasStatus && item.Status != m.status {
		return false
	}
	return true
}

// contains reports whether s contains the already lower-cased needle.
func contains(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}
