package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-sim/backend/internal/cargo"
	"github.com/freight-sim/backend/internal/catalog"
	"github.com/freight-sim/backend/internal/testutil"
)

func TestNewFleetCyclesRoutes(t *testing.T) {
	cat := catalog.Default()
	p := DefaultParams()
	p.TrainCount = len(cat.Routes()) + 2

	trains, err := NewFleet(cat, p, rand.New(rand.NewSource(7)), cargo.NewGenerator(), testutil.T0)
	require.NoError(t, err)
	require.Len(t, trains, p.TrainCount)

	assert.Equal(t, "TRN-001", trains[0].ID)
	assert.Equal(t, "Prairie Runner 101", trains[0].Name)
	assert.Equal(t, cat.Route(0), trains[0].Route)
	assert.Equal(t, trains[0].Route, trains[len(cat.Routes())].Route)
	assert.Equal(t, "CAR-001-01", trains[0].Cars[0].ID)

	for _, train := range trains {
		assert.GreaterOrEqual(t, train.LegProgress, 0.0)
		assert.Less(t, train.LegProgress, 0.8)
		assert.Equal(t, train.Speed, train.DisplaySpeed)
		assert.Equal(t, testutil.T0, train.LastUpdated)
		for _, car := range train.Cars {
			for _, item := range car.Cargo {
				origin := indexOf(train.Route, item.Origin)
				dest := indexOf(train.Route, item.Destination)
				assert.GreaterOrEqual(t, origin, 0)
				assert.Greater(t, dest, origin, "cargo %s must travel forward", item.ID)
			}
		}
	}
}

func TestNewFleetIsDeterministic(t *testing.T) {
	cat := catalog.Default()
	p := DefaultParams()

	a, err := NewFleet(cat, p, rand.New(rand.NewSource(99)), cargo.NewGenerator(), testutil.T0)
	require.NoError(t, err)
	b, err := NewFleet(cat, p, rand.New(rand.NewSource(99)), cargo.NewGenerator(), testutil.T0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func indexOf(route []string, code string) int {
	for i, c := range route {
		if c == code {
			return i
		}
	}
	return -1
}
