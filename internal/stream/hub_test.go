package stream

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-sim/backend/internal/filter"
	"github.com/freight-sim/backend/internal/models"
	"github.com/freight-sim/backend/internal/sim"
	"github.com/freight-sim/backend/internal/testutil"
)

type fakeMetrics struct {
	mu        sync.Mutex
	connected map[string]int
	sent      map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{connected: map[string]int{}, sent: map[string]int{}}
}

func (m *fakeMetrics) SubscriberConnected(transport string) func() {
	m.mu.Lock()
	m.connected[transport]++
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.connected[transport]--
		m.mu.Unlock()
	}
}

func (m *fakeMetrics) FrameSent(transport string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[transport]++
}

type staticSource struct{ frame models.Frame }

func (s staticSource) Frame() models.Frame { return s.frame }

func testFrame(tick uint64) models.Frame {
	cat := testutil.ScenarioCatalog()
	a := testutil.NewTrain("TRN-1", "Prairie Runner", testutil.ScenarioRoute, 60,
		[]*models.CargoItem{testutil.DeliveredCargo("AWB-1", "LA", "KC"), testutil.NewCargo("AWB-2", "LA", "NYC")})
	b := testutil.NewTrain("TRN-2", "Coastal Hauler", testutil.ScenarioRoute, 60,
		[]*models.CargoItem{testutil.NewCargo("AWB-3", "KC", "CHI")})
	return models.Frame{
		Tick:      tick,
		Timestamp: testutil.T0,
		Trains:    []models.TrainSnapshot{sim.ProjectTrain(a, cat), sim.ProjectTrain(b, cat)},
	}
}

func TestHubLatestFallsBackToSource(t *testing.T) {
	hub := NewHub(staticSource{frame: testFrame(0)}, nil, nil)
	assert.Equal(t, uint64(0), hub.Latest().Tick)
	assert.Len(t, hub.Latest().Trains, 2)

	hub.Publish(testFrame(7))
	assert.Equal(t, uint64(7), hub.Latest().Tick)
}

func TestHubPayloadFiltersPerSubscriber(t *testing.T) {
	stations := testutil.ScenarioCatalog().Stations()
	hub := NewHub(nil, stations, nil)
	hub.Publish(testFrame(3))

	all := hub.Payload(filter.Criteria{})
	assert.Len(t, all.Trains, 2)
	assert.Equal(t, uint64(3), all.Tick)
	assert.Equal(t, testutil.T0, all.Timestamp)
	assert.Len(t, all.StationCatalog, 4)
	assert.Nil(t, all.FiltersApplied.Status)

	delivered := hub.Payload(filter.Criteria{Status: "delivered"})
	require.Len(t, delivered.Trains, 1)
	assert.Equal(t, "TRN-1", delivered.Trains[0].ID)
	require.NotNil(t, delivered.FiltersApplied.Status)
	assert.Equal(t, "delivered", *delivered.FiltersApplied.Status)

	none := hub.Payload(filter.Criteria{Station: "ATL"})
	require.NotNil(t, none.Trains)
	assert.Empty(t, none.Trains)

	// the shared frame is untouched by filtering
	assert.Len(t, hub.Latest().Trains[0].Cars[0].Cargo, 2)
}

func TestSubscriptionLifecycle(t *testing.T) {
	metrics := newFakeMetrics()
	hub := NewHub(nil, nil, metrics)
	hub.Publish(testFrame(1))

	sse := hub.Subscribe(TransportSSE, filter.Criteria{TrainName: "coastal"})
	ws := hub.Subscribe(TransportWebSocket, filter.Criteria{})
	assert.NotEqual(t, sse.ID, ws.ID)
	assert.Equal(t, 2, hub.Count())
	assert.Equal(t, 1, metrics.connected["sse"])

	p := sse.Next()
	require.Len(t, p.Trains, 1)
	assert.Equal(t, "TRN-2", p.Trains[0].ID)
	assert.Len(t, ws.Next().Trains, 2)
	assert.Equal(t, 1, metrics.sent["sse"])
	assert.Equal(t, 1, metrics.sent["websocket"])

	infos := hub.Subscribers()
	require.Len(t, infos, 2)
	for _, info := range infos {
		if info.ID == sse.ID {
			assert.Equal(t, TransportSSE, info.Transport)
			assert.Equal(t, "coastal", *info.Filters.TrainName)
		}
	}

	sse.Close()
	sse.Close()
	assert.Equal(t, 1, hub.Count())
	assert.Equal(t, 0, metrics.connected["sse"])
	assert.Len(t, ws.Next().Trains, 2, "remaining subscriber is unaffected")

	ws.Close()
	assert.Equal(t, 0, hub.Count())
}

func TestHubConcurrentReaders(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	hub.Publish(testFrame(0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe(TransportSSE, filter.Criteria{Station: "KC"})
			defer sub.Close()
			for j := 0; j < 50; j++ {
				p := sub.Next()
				assert.Len(t, p.Trains, 2)
			}
		}()
	}
	for tick := uint64(1); tick <= 50; tick++ {
		hub.Publish(testFrame(tick))
	}
	wg.Wait()
	assert.Equal(t, 0, hub.Count())
}
