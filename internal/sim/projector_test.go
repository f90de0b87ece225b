package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-sim/backend/internal/geo"
	"github.com/freight-sim/backend/internal/models"
	"github.com/freight-sim/backend/internal/testutil"
)

func TestProjectTrainInMotion(t *testing.T) {
	cat := testutil.ScenarioCatalog()
	train := testutil.NewTrain("TRN-1", "Mover", testutil.ScenarioRoute, 61.04,
		[]*models.CargoItem{testutil.NewCargo("AWB-1", "LA", "CHI")})
	train.LegProgress = 0.123456
	train.DisplaySpeed = 61.04

	snap := ProjectTrain(train, cat)

	assert.Equal(t, "TRN-1", snap.ID)
	assert.Equal(t, "LA", snap.FromStationCode)
	assert.Equal(t, "KC", snap.ToStationCode)
	assert.Equal(t, 0.123, snap.LegProgress)
	assert.Equal(t, 61.0, snap.Speed)
	assert.False(t, snap.Dwelling)
	assert.Zero(t, snap.DwellRemainingMinutes)

	la, kc, ok := cat.Resolve("LA", "KC")
	require.True(t, ok)
	want := geo.Interpolate(la, kc, 0.123456)
	require.NotNil(t, snap.CurrentLocation)
	assert.Equal(t, geo.Round(want.Lat, 5), snap.CurrentLocation.Lat)
	assert.Equal(t, geo.Round(want.Lon, 5), snap.CurrentLocation.Lon)
}

func TestProjectTrainEndpoints(t *testing.T) {
	cat := testutil.ScenarioCatalog()
	la, _ := cat.Station("LA")
	kc, _ := cat.Station("KC")

	train := testutil.NewTrain("TRN-1", "Mover", testutil.ScenarioRoute, 60)
	snap := ProjectTrain(train, cat)
	require.NotNil(t, snap.CurrentLocation)
	assert.Equal(t, geo.Round(la.Latitude, 5), snap.CurrentLocation.Lat)
	assert.Equal(t, geo.Round(la.Longitude, 5), snap.CurrentLocation.Lon)

	// arrived without dwell: sits on the destination
	train.LegProgress = 1
	snap = ProjectTrain(train, cat)
	assert.Equal(t, 1.0, snap.LegProgress)
	assert.Equal(t, geo.Round(kc.Latitude, 5), snap.CurrentLocation.Lat)
}

func TestProjectTrainDwelling(t *testing.T) {
	cat := testutil.ScenarioCatalog()
	train := testutil.NewTrain("TRN-1", "Holder", testutil.ScenarioRoute, 75)
	train.CurrentLegIndex = 1
	train.LegProgress = 1
	train.DwellRemaining = 0.7543
	train.DisplaySpeed = 0

	snap := ProjectTrain(train, cat)

	chi, _ := cat.Station("CHI")
	assert.True(t, snap.Dwelling)
	assert.Equal(t, "CHI", snap.FromStationCode)
	assert.Equal(t, "CHI", snap.ToStationCode)
	assert.Equal(t, 0.0, snap.LegProgress)
	assert.Equal(t, 0.0, snap.Speed)
	assert.Equal(t, 45.3, snap.DwellRemainingMinutes)
	require.NotNil(t, snap.CurrentLocation)
	assert.Equal(t, geo.Round(chi.Latitude, 5), snap.CurrentLocation.Lat)
	assert.Equal(t, geo.Round(chi.Longitude, 5), snap.CurrentLocation.Lon)
}

func TestProjectTrainUnknownStation(t *testing.T) {
	train := testutil.NewTrain("TRN-1", "Lost", models.Route{"LA", "ATLANTIS"}, 60)
	train.LegProgress = 0.5

	snap := ProjectTrain(train, testutil.ScenarioCatalog())
	assert.Nil(t, snap.CurrentLocation)
	assert.Equal(t, "ATLANTIS", snap.ToStationCode)
}

func TestProjectTrainIsDetached(t *testing.T) {
	item := testutil.NewCargo("AWB-1", "LA", "KC")
	train := testutil.NewTrain("TRN-1", "Mover", testutil.ScenarioRoute, 60, []*models.CargoItem{item})

	snap := ProjectTrain(train, testutil.ScenarioCatalog())

	item.Status = models.CargoStatusDelivered
	train.Route[0] = "NYC"
	train.Cars[0].Cargo = append(train.Cars[0].Cargo, testutil.NewCargo("AWB-2", "KC", "CHI"))
	train.Cars[0].ID = "changed"

	assert.Equal(t, models.CargoStatusLoaded, snap.Cars[0].Cargo[0].Status)
	assert.Equal(t, "LA", snap.Route[0])
	assert.Len(t, snap.Cars[0].Cargo, 1)
	assert.Equal(t, "TRN-1-C01", snap.Cars[0].ID)
}

func TestFrameSurvivesLaterTicks(t *testing.T) {
	item := testutil.NewCargo("AWB-1", "LA", "KC")
	train := testutil.NewTrain("TRN-1", "Mover", testutil.ScenarioRoute, 60, []*models.CargoItem{item})
	e := newScenarioEngine(t, hourlyParams(), testutil.NewScriptedRand(0.99), train)

	before := e.Frame()
	for h := 1; h <= 12; h++ {
		e.Step(at(h))
	}
	after := e.Frame()

	assert.Equal(t, uint64(0), before.Tick)
	assert.Equal(t, 0.0, before.Trains[0].LegProgress)
	assert.Equal(t, models.CargoStatusLoaded, before.Trains[0].Cars[0].Cargo[0].Status)
	assert.Equal(t, uint64(12), after.Tick)
	assert.Equal(t, models.CargoStatusDelivered, after.Trains[0].Cars[0].Cargo[0].Status)
	assert.True(t, after.Trains[0].Dwelling)
}
