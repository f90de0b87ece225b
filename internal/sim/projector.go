package sim

import (
	"github.com/freight-sim/backend/internal/catalog"
	"github.com/freight-sim/backend/internal/geo"
	"github.com/freight-sim/backend/internal/models"
)

const (
	coordPrecision    = 5
	progressPrecision = 3
	speedPrecision    = 1
)

// ProjectTrain builds the immutable snapshot of t. Cars and cargo are deep
// copied, so later ticks never alter a published snapshot.
func ProjectTrain(t *models.Train, cat *catalog.Catalog) models.TrainSnapshot {
	snap := models.TrainSnapshot{
		ID:          t.ID,
		Name:        t.Name,
		Route:       t.Route.Clone(),
		Cars:        cloneCars(t.Cars),
		LastUpdated: t.LastUpdated,
	}

	if t.Dwelling() {
		snap.Dwelling = true
		snap.DwellRemainingMinutes = geo.Round(t.DwellRemaining*60, 1)
		if _, code, ok := t.LegEndpoints(); ok {
			snap.FromStationCode = code
			snap.ToStationCode = code
			if st, ok := cat.Station(code); ok {
				snap.CurrentLocation = roundLocation(models.Location{Lat: st.Latitude, Lon: st.Longitude})
			}
		}
		return snap
	}

	from, to, ok := t.LegEndpoints()
	if !ok {
		return snap
	}
	progress := geo.Clamp01(t.LegProgress)
	snap.FromStationCode = from
	snap.ToStationCode = to
	snap.LegProgress = geo.Round(progress, progressPrecision)
	snap.Speed = geo.Round(t.DisplaySpeed, speedPrecision)

	if a, b, ok := cat.Resolve(from, to); ok {
		snap.CurrentLocation = roundLocation(geo.Interpolate(a, b, progress))
	}
	return snap
}

func roundLocation(loc models.Location) *models.Location {
	return &models.Location{
		Lat: geo.Round(loc.Lat, coordPrecision),
		Lon: geo.Round(loc.Lon, coordPrecision),
	}
}

func cloneCars(cars []*models.Car) []models.CarSnapshot {
	out := make([]models.CarSnapshot, 0, len(cars))
	for _, car := range cars {
		snap := models.CarSnapshot{
			ID:    car.ID,
			Type:  car.Type,
			Cargo: make([]models.CargoItem, 0, len(car.Cargo)),
		}
		for _, item := range car.Cargo {
			snap.Cargo = append(snap.Cargo, item.Clone())
		}
		out = append(out, snap)
	}
	return out
}
