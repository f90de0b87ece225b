// Package testutil provides deterministic random sources and fixture
// catalogs and fleets shared by package tests.
package testutil

import (
	"fmt"
	"time"

	"github.com/freight-sim/backend/internal/catalog"
	"github.com/freight-sim/backend/internal/models"
)

// T0 is the reference start time used by fixtures.
var T0 = time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)

// ScenarioRoute is the four-station route used by scenario tests.
var ScenarioRoute = models.Route{"LA", "KC", "CHI", "NYC"}

// ScenarioCatalog places the ScenarioRoute stations on one meridian so leg
// lengths are exact: LA-KC 690 km, KC-CHI 500 km, CHI-NYC 400 km.
func ScenarioCatalog() *catalog.Catalog {
	const lon = -118.2437
	const kmPerDegree = 6371.0 * 3.141592653589793 / 180
	lat := 34.0522
	stations := []models.Station{{Code: "LA", Name: "Los Angeles", Latitude: lat, Longitude: lon}}
	for _, leg := range []struct {
		code string
		km   float64
	}{{"KC", 690}, {"CHI", 500}, {"NYC", 400}} {
		lat += leg.km / kmPerDegree
		stations = append(stations, models.Station{Code: leg.code, Name: leg.code + " Yard", Latitude: lat, Longitude: lon})
	}

	c, err := catalog.New(stations, []models.Route{ScenarioRoute})
	if err != nil {
		panic(err)
	}
	return c
}

// NewTrain builds a train at the start of route with one car per cargo
// group. Each group becomes the cargo of one car.
func NewTrain(id, name string, route models.Route, speed float64, groups ...[]*models.CargoItem) *models.Train {
	t := &models.Train{
		ID:           id,
		Name:         name,
		Route:        route.Clone(),
		Speed:        speed,
		DisplaySpeed: speed,
		LastUpdated:  T0,
	}
	for i, group := range groups {
		t.Cars = append(t.Cars, &models.Car{
			ID:    fmt.Sprintf("%s-C%02d", id, i+1),
			Type:  models.CarTypes[i%len(models.CarTypes)],
			Cargo: group,
		})
	}
	return t
}

// NewCargo builds a LOADED item.
func NewCargo(id, origin, destination string) *models.CargoItem {
	return &models.CargoItem{
		ID:          id,
		Origin:      origin,
		Destination: destination,
		Pieces:      3,
		WeightKg:    1200,
		Status:      models.CargoStatusLoaded,
		CreatedAt:   T0,
		LastUpdated: T0,
	}
}

// DeliveredCargo builds an item already offloaded at its destination.
func DeliveredCargo(id, origin, destination string) *models.CargoItem {
	item := NewCargo(id, origin, destination)
	at := T0.Add(2 * time.Hour)
	offload := destination
	item.Status = models.CargoStatusDelivered
	item.DeliveredAt = &at
	item.OffloadStation = &offload
	item.LastUpdated = at
	return item
}
