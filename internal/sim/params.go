package sim

import (
	"time"

	"github.com/freight-sim/backend/internal/models"
)

// Params are the simulation knobs consumed by the engine.
type Params struct {
	TickInterval    time.Duration
	TimeScale       float64
	TrainCount      int
	MaxCarsPerTrain int
	MaxCargoPerCar  int
	MinDwellMinutes float64
	MaxDwellMinutes float64
	MinSpeedKmh     float64
	MaxSpeedKmh     float64

	// TransitThreshold is the leg progress after which LOADED cargo
	// boarded at the leg origin counts as IN_TRANSIT.
	TransitThreshold float64
	// PickupProbability is the per-car chance of new cargo at each arrival.
	PickupProbability      float64
	SpeedChangeProbability float64
	SpeedDeltaKmh          float64
}

// DefaultParams returns the stock simulation settings.
func DefaultParams() Params {
	return Params{
		TickInterval:           time.Second,
		TimeScale:              60,
		TrainCount:             8,
		MaxCarsPerTrain:        6,
		MaxCargoPerCar:         4,
		MinDwellMinutes:        20,
		MaxDwellMinutes:        90,
		MinSpeedKmh:            40,
		MaxSpeedKmh:            110,
		TransitThreshold:       0.05,
		PickupProbability:      0.35,
		SpeedChangeProbability: 0.1,
		SpeedDeltaKmh:          5,
	}
}

// HoursPerTick is the simulated time that elapses in one tick.
func (p Params) HoursPerTick() float64 {
	return float64(p.TickInterval) / float64(time.Hour) * p.TimeScale
}

// Validate rejects settings the engine cannot run with.
func (p Params) Validate() error {
	switch {
	case p.TickInterval <= 0:
		return models.NewConfigError("tickInterval", "must be positive, got %s", p.TickInterval)
	case p.TimeScale <= 0:
		return models.NewConfigError("timeScale", "must be positive, got %g", p.TimeScale)
	case p.TrainCount <= 0:
		return models.NewConfigError("trainCount", "must be positive, got %d", p.TrainCount)
	case p.MaxCarsPerTrain <= 0:
		return models.NewConfigError("maxCarsPerTrain", "must be positive, got %d", p.MaxCarsPerTrain)
	case p.MaxCargoPerCar <= 0:
		return models.NewConfigError("maxCargoPerCar", "must be positive, got %d", p.MaxCargoPerCar)
	case p.MinDwellMinutes < 0 || p.MaxDwellMinutes < p.MinDwellMinutes:
		return models.NewConfigError("dwellMinutes", "need 0 <= min <= max, got [%g, %g]", p.MinDwellMinutes, p.MaxDwellMinutes)
	case p.MinSpeedKmh <= 0 || p.MaxSpeedKmh < p.MinSpeedKmh:
		return models.NewConfigError("speedKmh", "need 0 < min <= max, got [%g, %g]", p.MinSpeedKmh, p.MaxSpeedKmh)
	case p.TransitThreshold < 0 || p.TransitThreshold >= 1:
		return models.NewConfigError("transitThreshold", "must be in [0,1), got %g", p.TransitThreshold)
	case p.PickupProbability < 0 || p.PickupProbability > 1:
		return models.NewConfigError("pickupProbability", "must be in [0,1], got %g", p.PickupProbability)
	case p.SpeedChangeProbability < 0 || p.SpeedChangeProbability > 1:
		return models.NewConfigError("speedChangeProbability", "must be in [0,1], got %g", p.SpeedChangeProbability)
	case p.SpeedDeltaKmh < 0:
		return models.NewConfigError("speedDeltaKmh", "must not be negative, got %g", p.SpeedDeltaKmh)
	}
	return nil
}
