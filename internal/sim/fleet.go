package sim

import (
	"fmt"
	"time"

	"github.com/freight-sim/backend/internal/cargo"
	"github.com/freight-sim/backend/internal/catalog"
	"github.com/freight-sim/backend/internal/models"
)

// Rand is the injectable random source for every probabilistic decision.
type Rand = cargo.Rand

var trainNames = []string{
	"Prairie Runner",
	"Coastal Hauler",
	"Great Plains Freight",
	"Mississippi Express",
	"Rocky Mountain Mover",
	"Lone Star Limited",
	"Desert Wind Cargo",
	"Northern Iron",
	"Gulf Stream Carrier",
	"Heartland Shuttle",
}

// NewFleet creates p.TrainCount trains spread across the catalog routes,
// each with a random position on its route, cars and initial cargo.
func NewFleet(cat *catalog.Catalog, p Params, rng Rand, ids *cargo.Generator, now time.Time) ([]*models.Train, error) {
	trains := make([]*models.Train, 0, p.TrainCount)
	for i := 0; i < p.TrainCount; i++ {
		route := cat.Route(i)
		train := &models.Train{
			ID:              fmt.Sprintf("TRN-%03d", i+1),
			Name:            fmt.Sprintf("%s %d", trainNames[i%len(trainNames)], 101+i),
			Route:           route,
			CurrentLegIndex: rng.Intn(route.Legs()),
			LegProgress:     rng.Float64() * 0.8,
			Speed:           p.MinSpeedKmh + rng.Float64()*(p.MaxSpeedKmh-p.MinSpeedKmh),
			LastUpdated:     now,
		}
		train.DisplaySpeed = train.Speed

		carCount := 1 + rng.Intn(p.MaxCarsPerTrain)
		for j := 0; j < carCount; j++ {
			car := &models.Car{
				ID:   fmt.Sprintf("CAR-%03d-%02d", i+1, j+1),
				Type: models.CarTypes[rng.Intn(len(models.CarTypes))],
			}
			itemCount := 1 + rng.Intn(p.MaxCargoPerCar)
			for k := 0; k < itemCount; k++ {
				item, err := ids.Random(route, rng, now)
				if err != nil {
					return nil, fmt.Errorf("train %s car %s: %w", train.ID, car.ID, err)
				}
				car.Cargo = append(car.Cargo, item)
			}
			train.Cars = append(train.Cars, car)
		}
		trains = append(trains, train)
	}
	return trains, nil
}
