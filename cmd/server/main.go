package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/freight-sim/backend/internal/api"
	"github.com/freight-sim/backend/internal/catalog"
	"github.com/freight-sim/backend/internal/config"
	"github.com/freight-sim/backend/internal/journal"
	"github.com/freight-sim/backend/internal/logging"
	"github.com/freight-sim/backend/internal/observability"
	"github.com/freight-sim/backend/internal/sim"
	"github.com/freight-sim/backend/internal/stream"
	"github.com/freight-sim/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Advanced.LogLevel, Format: cfg.Advanced.LogFormat})
	api.ShowErrorDetails = cfg.Advanced.LogLevel == "debug"

	if err := run(cfg, *configPath, log); err != nil {
		log.Error(context.Background(), "server stopped", logging.Err(err))
		os.Exit(1)
	}
}

// defaultConfigPath prefers CONFIG_PATH, then config.yaml in the working
// directory, then config.yaml next to the executable.
func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	exePath, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(filepath.Dir(exePath), "config.yaml")
}

func run(cfg *config.AppConfig, configPath string, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	if cfg.Simulation.CatalogFile != "" {
		loaded, err := catalog.LoadFile(cfg.Simulation.CatalogFile)
		if err != nil {
			return err
		}
		cat = loaded
	}

	reg := prometheus.NewRegistry()
	collector, err := observability.NewSimCollector(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	opts := []sim.Option{sim.WithMetrics(collector), sim.WithLogger(log)}

	var jrnl *journal.Journal
	if cfg.Journal.Enabled {
		jopts := cfg.JournalOptions()
		jopts.OnDrop = collector.EventsDropped
		jopts.Logger = log.With(logging.String("component", "journal"))
		jrnl, err = journal.Open(jopts)
		if err != nil {
			return err
		}
		defer jrnl.Close()
		opts = append(opts, sim.WithEventSink(jrnl))
	}

	seed := cfg.Seed(time.Now())
	rng := rand.New(rand.NewSource(seed))
	engine, err := sim.NewEngine(cat, cfg.SimParams(), rng, time.Now(), opts...)
	if err != nil {
		return err
	}

	hub := stream.NewHub(engine, cat.Stations(), collector)
	clock := sim.NewClock(engine, cfg.TickInterval())
	clock.AddListener(hub.Publish)

	deps := &api.Dependencies{
		Hub:              hub,
		Catalog:          cat,
		Metrics:          collector.Handler(),
		TickInterval:     cfg.TickInterval(),
		WSMaxMessageSize: int64(cfg.Advanced.WebSocketMaxMessageSizeKB) * 1024,
		Version:          Version,
		Logger:           log.With(logging.String("component", "api")),
	}
	// a nil *Journal must not become a non-nil interface
	if jrnl != nil {
		deps.Journal = jrnl
	}

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, api.MiddlewareConfig{
		EnableRequestLogging: cfg.Advanced.EnableRequestLogging,
		EnableCORS:           cfg.Server.EnableCORS,
		AllowOrigins:         cfg.Server.AllowOrigins,
	})
	api.RegisterRoutes(e, api.NewHandlers(deps))

	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			log.Warn(ctx, "failed to register static routes", logging.Err(err))
			embeddedMode = false
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	// streams end with gctx, so Shutdown only waits on short requests
	s := api.NewServer(gctx, api.ServerConfig{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}, e)

	printBanner(cfg, configPath, seed, embeddedMode)

	g.Go(func() error {
		return clock.Run(gctx)
	})
	if jrnl != nil {
		g.Go(func() error {
			return jrnl.Run(gctx)
		})
	}
	g.Go(func() error {
		log.Info(gctx, "http server listening", logging.String("addr", s.Addr))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		log.Info(shutdownCtx, "shutting down")
		return s.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printBanner(cfg *config.AppConfig, configPath string, seed int64, embeddedMode bool) {
	dashboard := "Disabled"
	if embeddedMode {
		dashboard = "Embedded"
	}
	journalMode := "Disabled"
	if cfg.Journal.Enabled {
		journalMode = "In-memory (DuckDB)"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Freight Fleet Simulator                         ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Dashboard:  %-45s║\n", dashboard)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Trains:    %-46d║\n", cfg.Simulation.TrainCount)
	fmt.Printf("║  Tick:      %-46s║\n", cfg.TickInterval())
	fmt.Printf("║  Seed:      %-46d║\n", seed)
	fmt.Printf("║  Journal:   %-46s║\n", journalMode)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}
}
