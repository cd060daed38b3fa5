// Warden - Prison recordkeeping with scoring built in.
// Copyright (c) 2025 opencorrections
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opencorrections/warden/internal/activity"
	"github.com/opencorrections/warden/internal/alert"
	"github.com/opencorrections/warden/internal/api"
	"github.com/opencorrections/warden/internal/auth"
	"github.com/opencorrections/warden/internal/bus"
	"github.com/opencorrections/warden/internal/cache"
	"github.com/opencorrections/warden/internal/config"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/govcheck"
	"github.com/opencorrections/warden/internal/metrics"
	"github.com/opencorrections/warden/internal/repository"
	"github.com/opencorrections/warden/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logLevel := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	slog.SetDefault(slog.New(handler))

	// Log startup
	slog.Info("starting warden",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Activity Service
	activitySvc := activity.NewService(repo, cacheImpl)
	slog.Info("activity service initialized")

	// Initialize Alert Engine with incident activity getter
	engine, err := alert.NewEngine(activitySvc.GetActivityGetter(), 100)
	if err != nil {
		slog.Error("failed to initialize alert engine", "error", err)
		os.Exit(1)
	}

	// Load alert rules from database (no hardcoded defaults - configure via API)
	if err := loadAlertRulesFromDatabase(ctx, repo, engine); err != nil {
		slog.Error("failed to load alert rules", "error", err)
		os.Exit(1)
	}
	slog.Info("alert engine initialized", "rules_count", engine.RulesCount())

	// Initialize Government Registry and verification service
	registry := govcheck.NewMockRegistry(50 * time.Millisecond)
	if seedPath := os.Getenv("WARDEN_REGISTRY_FILE"); seedPath != "" {
		if err := seedRegistry(registry, seedPath); err != nil {
			slog.Error("failed to seed registry", "path", seedPath, "error", err)
			os.Exit(1)
		}
	}
	validator := govcheck.NewService(registry, cacheImpl, time.Duration(cfg.Windows.ReferenceTTL)*time.Second)
	slog.Info("verification service initialized")

	// Initialize JWT auth
	jwtService := auth.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, time.Duration(cfg.Auth.TokenTTL)*time.Minute)

	// Initialize Prometheus metrics
	promMetrics := metrics.New()

	// Initialize async Worker (Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Tier == domain.TierPro || os.Getenv("WARDEN_ASYNC_WORKER") == "true" {
		asyncWorker = worker.NewWorker(busImpl, repo, cacheImpl, engine, cfg.Windows)

		// Get facility IDs to process (from environment or default)
		var facilityIDs []string
		if envFacilities := os.Getenv("WARDEN_FACILITIES"); envFacilities != "" {
			for _, id := range strings.Split(envFacilities, ",") {
				if id = strings.TrimSpace(id); id != "" {
					facilityIDs = append(facilityIDs, id)
				}
			}
		}

		workerCfg := worker.Config{
			FacilityIDs: facilityIDs,
			WorkerCount: 5,
		}

		if err := asyncWorker.Start(workerCfg); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started", "facility_count", len(facilityIDs))
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, repo, cacheImpl, busImpl, engine, validator, activitySvc, jwtService, promMetrics, cfg.Windows, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("warden is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("warden shutdown complete")
}

// GlobalFacilityID is used for alert rules that apply to all facilities.
const GlobalFacilityID = "*"

// loadAlertRulesFromDatabase loads alert rules from the database into the engine.
// Rules are configured via POST /alert-rules - no hardcoded defaults.
func loadAlertRulesFromDatabase(ctx context.Context, repo domain.Repository, engine *alert.Engine) error {
	dbRules, err := repo.ListAlertRules(ctx, GlobalFacilityID)
	if err != nil {
		slog.Warn("failed to list alert rules from database", "error", err)
		return nil // Start with empty rules - they can be added via API
	}

	if len(dbRules) > 0 {
		slog.Info("loading alert rules from database", "count", len(dbRules))
		return engine.LoadRules(dbRules)
	}

	slog.Info("no alert rules in database - configure via POST /alert-rules API")
	return nil
}

// seedRegistry loads reference identity records from a JSON file keyed by
// government ID.
func seedRegistry(registry *govcheck.MockRegistry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var records map[string]domain.IdentityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	for governmentID, record := range records {
		registry.Seed(governmentID, record)
	}

	slog.Info("registry seeded", "records", len(records))
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               🔒 WARDEN                    ║")
	fmt.Println("  ║      Prison Recordkeeping Backend          ║")
	fmt.Println("  ║       Every record accounted for.          ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /auth/login                        - Obtain an access token")
	fmt.Println("    POST /prisoners                         - Admit a prisoner")
	fmt.Println("    POST /prisoners/{id}/incidents          - Record a behavior incident")
	fmt.Println("    GET  /prisoners/{id}/behavior-summary   - Behavior score and label")
	fmt.Println("    POST /prisoners/{id}/ratings            - Record a periodic rating")
	fmt.Println("    GET  /prisoners/{id}/rating-summary     - Rating averages and trend")
	fmt.Println("    POST /prisoners/{id}/validate           - Verify identity against registry")
	fmt.Println("    GET  /prisoners/{id}/alerts             - Evaluate alert rules")
	fmt.Println("    POST /alert-rules                       - Create an alert rule")
	fmt.Println("    POST /alert-rules/reload                - Hot-reload rules from database")
	fmt.Println("    GET  /health                            - Health check")
	fmt.Println("    GET  /metrics                           - Prometheus metrics")
	fmt.Println()
}
