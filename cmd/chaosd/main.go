package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/telemetry"
	"github.com/sharronesofer/worldchaos/internal/metrics"
	"github.com/sharronesofer/worldchaos/internal/service/ledger"
	"github.com/sharronesofer/worldchaos/internal/service/monitor"
	"github.com/sharronesofer/worldchaos/internal/service/scoring"
	"github.com/sharronesofer/worldchaos/internal/service/simulation"
	"github.com/sharronesofer/worldchaos/internal/service/trigger"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		seed       = flag.Int64("seed", 0, "Trigger RNG seed (0 = time-based)")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Failed to shutdown telemetry: %v", err)
		}
	}()

	logger, err := telemetry.SetupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	registry, err := metrics.NewRegistry("worldchaos")
	if err != nil {
		logger.Fatal("failed to build metrics registry", zap.Error(err))
	}

	var rng trigger.RNG
	if *seed != 0 {
		rng = trigger.NewRNG(*seed)
	}

	state := chaos.NewState()
	templates := trigger.BuildTemplates(cfg.Trigger, logger.Named("templates"))

	monitorSvc := monitor.NewService(cfg.Pressure, nil, logger.Named("monitor"))
	ledgerSvc := ledger.NewService(cfg.Mitigation, logger.Named("ledger"))
	scorerSvc := scoring.NewService(cfg.Scoring, cfg.Pressure, templates, ledgerSvc, nil, logger.Named("scoring"))
	engineSvc := trigger.NewService(cfg.Trigger, templates, state, newLogSink(logger.Named("events")), rng, nil, registry, logger.Named("trigger"))

	sim := simulation.New(cfg, simulation.Deps{
		Monitor:   monitorSvc,
		Ledger:    ledgerSvc,
		Scorer:    scorerSvc,
		Engine:    engineSvc,
		State:     state,
		Templates: templates,
		Registry:  registry,
	}, logger.Named("simulation"))

	if cfg.Metrics.Enabled {
		go serveMetrics(ctx, cfg, sim, logger.Named("metrics"))
	}

	logger.Info("chaos engine starting",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Environment))

	if err := sim.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("simulation exited", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// serveMetrics runs the scrape endpoint plus a read-only snapshot endpoint,
// refreshing the Prometheus gauges once per tick interval.
func serveMetrics(ctx context.Context, cfg *config.Config, sim *simulation.Simulation, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/healthz", InstrumentHTTPHandler("healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	mux.HandleFunc("/snapshot", InstrumentHTTPHandler("snapshot", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(sim.Snapshot()); err != nil {
			http.Error(w, "snapshot encoding failed", http.StatusInternalServerError)
		}
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(cfg.Simulation.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				publishSnapshot(sim.Snapshot())
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", zap.Int("port", cfg.Metrics.Port))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server failed", zap.Error(err))
	}
}
