// Package config provides YAML-based configuration for the simulator.
//
// Values are resolved in order: built-in defaults, the YAML file, a .env
// file next to it, then process environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/freight-sim/backend/internal/journal"
	"github.com/freight-sim/backend/internal/models"
	"github.com/freight-sim/backend/internal/sim"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Journal    JournalConfig    `yaml:"journal"`
	Advanced   AdvancedConfig   `yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                   int    `yaml:"port" validate:"gt=0,lte=65535"`
	BindAddress            string `yaml:"bindAddress"`
	EnableCORS             bool   `yaml:"enableCors"`
	AllowOrigins           string `yaml:"allowOrigins"`
	ReadTimeoutSeconds     int    `yaml:"readTimeoutSeconds" validate:"gte=0"`
	WriteTimeoutSeconds    int    `yaml:"writeTimeoutSeconds" validate:"gte=0"`
	IdleTimeoutSeconds     int    `yaml:"idleTimeoutSeconds" validate:"gte=0"`
	ShutdownTimeoutSeconds int    `yaml:"shutdownTimeoutSeconds" validate:"gt=0"`
}

// SimulationConfig contains the fleet and clock settings
type SimulationConfig struct {
	TickIntervalMs         int     `yaml:"tickIntervalMs" validate:"gt=0"`
	TimeScale              float64 `yaml:"timeScale" validate:"gt=0"`
	TrainCount             int     `yaml:"trainCount" validate:"gt=0"`
	MaxCarsPerTrain        int     `yaml:"maxCarsPerTrain" validate:"gt=0"`
	MaxCargoPerCar         int     `yaml:"maxCargoPerCar" validate:"gt=0"`
	MinDwellMinutes        float64 `yaml:"minDwellMinutes" validate:"gte=0"`
	MaxDwellMinutes        float64 `yaml:"maxDwellMinutes" validate:"gtefield=MinDwellMinutes"`
	MinSpeedKmh            float64 `yaml:"minSpeedKmh" validate:"gt=0"`
	MaxSpeedKmh            float64 `yaml:"maxSpeedKmh" validate:"gtefield=MinSpeedKmh"`
	TransitThreshold       float64 `yaml:"transitThreshold" validate:"gte=0,lt=1"`
	PickupProbability      float64 `yaml:"pickupProbability" validate:"gte=0,lte=1"`
	SpeedChangeProbability float64 `yaml:"speedChangeProbability" validate:"gte=0,lte=1"`
	SpeedDeltaKmh          float64 `yaml:"speedDeltaKmh" validate:"gte=0"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
	// CatalogFile replaces the built-in stations and routes when set.
	CatalogFile string `yaml:"catalogFile"`
}

// JournalConfig contains cargo event journal settings
type JournalConfig struct {
	Enabled         bool `yaml:"enabled"`
	BufferSize      int  `yaml:"bufferSize" validate:"gt=0"`
	BatchSize       int  `yaml:"batchSize" validate:"gt=0"`
	FlushIntervalMs int  `yaml:"flushIntervalMs" validate:"gt=0"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel                  string `yaml:"logLevel" validate:"oneof=debug info warn error"`
	LogFormat                 string `yaml:"logFormat" validate:"oneof=text json"`
	EnableRequestLogging      bool   `yaml:"enableRequestLogging"`
	WebSocketMaxMessageSizeKB int    `yaml:"webSocketMaxMessageSizeKb" validate:"gt=0"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	p := sim.DefaultParams()
	j := journal.DefaultOptions()
	return &AppConfig{
		Server: ServerConfig{
			Port:                   8090,
			BindAddress:            "0.0.0.0",
			EnableCORS:             true,
			AllowOrigins:           "*",
			ReadTimeoutSeconds:     30,
			WriteTimeoutSeconds:    0, // streams are long-lived
			IdleTimeoutSeconds:     120,
			ShutdownTimeoutSeconds: 10,
		},
		Simulation: SimulationConfig{
			TickIntervalMs:         int(p.TickInterval / time.Millisecond),
			TimeScale:              p.TimeScale,
			TrainCount:             p.TrainCount,
			MaxCarsPerTrain:        p.MaxCarsPerTrain,
			MaxCargoPerCar:         p.MaxCargoPerCar,
			MinDwellMinutes:        p.MinDwellMinutes,
			MaxDwellMinutes:        p.MaxDwellMinutes,
			MinSpeedKmh:            p.MinSpeedKmh,
			MaxSpeedKmh:            p.MaxSpeedKmh,
			TransitThreshold:       p.TransitThreshold,
			PickupProbability:      p.PickupProbability,
			SpeedChangeProbability: p.SpeedChangeProbability,
			SpeedDeltaKmh:          p.SpeedDeltaKmh,
		},
		Journal: JournalConfig{
			Enabled:         true,
			BufferSize:      j.BufferSize,
			BatchSize:       j.BatchSize,
			FlushIntervalMs: int(j.FlushInterval / time.Millisecond),
		},
		Advanced: AdvancedConfig{
			LogLevel:                  "info",
			LogFormat:                 "text",
			EnableRequestLogging:      true,
			WebSocketMaxMessageSizeKB: 64,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is
// created with the defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, &models.ConfigError{Field: configPath, Reason: "invalid YAML", Err: err}
		}
	}

	dir := filepath.Dir(configPath)
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := config.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	config.resolvePaths(dir)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Freight Fleet Simulator configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks every section against its `validate` tags.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &models.ConfigError{
				Field:  fe.Namespace(),
				Reason: fmt.Sprintf("value %v fails %q", fe.Value(), fe.ActualTag()),
				Err:    err,
			}
		}
		return &models.ConfigError{Field: "config", Reason: "validation failed", Err: err}
	}
	return nil
}

type envVar struct {
	name  string
	apply func(string) error
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() error {
	vars := []envVar{
		{"PORT", intVar(&c.Server.Port)},
		{"BIND_ADDRESS", stringVar(&c.Server.BindAddress)},
		{"TICK_INTERVAL_MS", intVar(&c.Simulation.TickIntervalMs)},
		{"TRAIN_COUNT", intVar(&c.Simulation.TrainCount)},
		{"MAX_CARS_PER_TRAIN", intVar(&c.Simulation.MaxCarsPerTrain)},
		{"MAX_CARGO_PER_CAR", intVar(&c.Simulation.MaxCargoPerCar)},
		{"TIME_SCALE", floatVar(&c.Simulation.TimeScale)},
		{"MIN_DWELL_MINUTES", floatVar(&c.Simulation.MinDwellMinutes)},
		{"MAX_DWELL_MINUTES", floatVar(&c.Simulation.MaxDwellMinutes)},
		{"MIN_SPEED_KMH", floatVar(&c.Simulation.MinSpeedKmh)},
		{"MAX_SPEED_KMH", floatVar(&c.Simulation.MaxSpeedKmh)},
		{"SIM_SEED", int64Var(&c.Simulation.Seed)},
		{"CATALOG_FILE", stringVar(&c.Simulation.CatalogFile)},
		{"LOG_LEVEL", stringVar(&c.Advanced.LogLevel)},
		{"LOG_FORMAT", stringVar(&c.Advanced.LogFormat)},
	}
	for _, v := range vars {
		raw, ok := os.LookupEnv(v.name)
		if !ok || raw == "" {
			continue
		}
		if err := v.apply(raw); err != nil {
			return &models.ConfigError{Field: v.name, Reason: fmt.Sprintf("cannot parse %q", raw), Err: err}
		}
	}
	return nil
}

func stringVar(dst *string) func(string) error {
	return func(raw string) error {
		*dst = raw
		return nil
	}
}

func intVar(dst *int) func(string) error {
	return func(raw string) error {
		v, err := strconv.Atoi(raw)
		if err == nil {
			*dst = v
		}
		return err
	}
}

func int64Var(dst *int64) func(string) error {
	return func(raw string) error {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			*dst = v
		}
		return err
	}
}

func floatVar(dst *float64) func(string) error {
	return func(raw string) error {
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			*dst = v
		}
		return err
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Simulation.CatalogFile != "" && !filepath.IsAbs(c.Simulation.CatalogFile) {
		c.Simulation.CatalogFile = filepath.Join(configDir, c.Simulation.CatalogFile)
	}
}

// SimParams converts the simulation section into engine settings.
func (c *AppConfig) SimParams() sim.Params {
	s := c.Simulation
	return sim.Params{
		TickInterval:           time.Duration(s.TickIntervalMs) * time.Millisecond,
		TimeScale:              s.TimeScale,
		TrainCount:             s.TrainCount,
		MaxCarsPerTrain:        s.MaxCarsPerTrain,
		MaxCargoPerCar:         s.MaxCargoPerCar,
		MinDwellMinutes:        s.MinDwellMinutes,
		MaxDwellMinutes:        s.MaxDwellMinutes,
		MinSpeedKmh:            s.MinSpeedKmh,
		MaxSpeedKmh:            s.MaxSpeedKmh,
		TransitThreshold:       s.TransitThreshold,
		PickupProbability:      s.PickupProbability,
		SpeedChangeProbability: s.SpeedChangeProbability,
		SpeedDeltaKmh:          s.SpeedDeltaKmh,
	}
}

// JournalOptions converts the journal section into journal settings.
func (c *AppConfig) JournalOptions() journal.Options {
	return journal.Options{
		BufferSize:    c.Journal.BufferSize,
		BatchSize:     c.Journal.BatchSize,
		FlushInterval: time.Duration(c.Journal.FlushIntervalMs) * time.Millisecond,
	}
}

// TickInterval returns the shared simulation and delivery cadence.
func (c *AppConfig) TickInterval() time.Duration {
	return time.Duration(c.Simulation.TickIntervalMs) * time.Millisecond
}

// Seed returns the configured seed, or one derived from now when unset.
func (c *AppConfig) Seed(now time.Time) int64 {
	if c.Simulation.Seed != 0 {
		return c.Simulation.Seed
	}
	return now.UnixNano()
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}
