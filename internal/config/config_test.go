package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-sim/backend/internal/models"
	"github.com/freight-sim/backend/internal/sim"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Simulation.TickIntervalMs)
	assert.Equal(t, 8, cfg.Simulation.TrainCount)
	assert.Equal(t, 0.05, cfg.Simulation.TransitThreshold)
	assert.Equal(t, 0.35, cfg.Simulation.PickupProbability)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9100
simulation:
  trainCount: 3
  timeScale: 120
  catalogFile: stations.yaml
advanced:
  logFormat: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Simulation.TrainCount)
	assert.Equal(t, 120.0, cfg.Simulation.TimeScale)
	assert.Equal(t, 6, cfg.Simulation.MaxCarsPerTrain, "unset fields keep defaults")
	assert.Equal(t, "json", cfg.Advanced.LogFormat)
	assert.Equal(t, filepath.Join(dir, "stations.yaml"), cfg.Simulation.CatalogFile)
	assert.Equal(t, "0.0.0.0:9100", cfg.GetServerAddr())
}

func TestEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("PORT", "7000")
	t.Setenv("TICK_INTERVAL_MS", "250")
	t.Setenv("TIME_SCALE", "30.5")
	t.Setenv("SIM_SEED", "42")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 30.5, cfg.Simulation.TimeScale)
	assert.Equal(t, int64(42), cfg.Seed(time.Now()))
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRAIN_COUNT=11\n"), 0644))
	t.Setenv("TRAIN_COUNT", "")
	os.Unsetenv("TRAIN_COUNT")

	cfg, err := LoadConfig(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.Simulation.TrainCount)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		yaml string
	}{
		{name: "bad port", env: map[string]string{"PORT": "0"}},
		{name: "unparsable env", env: map[string]string{"TRAIN_COUNT": "many"}},
		{name: "inverted dwell", env: map[string]string{"MIN_DWELL_MINUTES": "90", "MAX_DWELL_MINUTES": "10"}},
		{name: "inverted speed", env: map[string]string{"MIN_SPEED_KMH": "100", "MAX_SPEED_KMH": "50"}},
		{name: "unknown log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "negative count", yaml: "simulation:\n  trainCount: -2\n"},
		{name: "broken yaml", yaml: "simulation: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if tt.yaml != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrConfiguration)
		})
	}
}

func TestSimParamsMatchEngineDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, sim.DefaultParams(), cfg.SimParams())
	require.NoError(t, cfg.SimParams().Validate())

	opts := cfg.JournalOptions()
	assert.Equal(t, 4096, opts.BufferSize)
	assert.Equal(t, 2*time.Second, opts.FlushInterval)
}

func TestSeedFallsBackToClock(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.UnixNano(), cfg.Seed(now))
}
