package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sreeharimv/auction-platform/internal/auction"
	"github.com/sreeharimv/auction-platform/internal/broadcast"
	"github.com/sreeharimv/auction-platform/internal/clock"
	"github.com/sreeharimv/auction-platform/internal/config"
	"github.com/sreeharimv/auction-platform/internal/health"
	"github.com/sreeharimv/auction-platform/internal/httpapi"
	"github.com/sreeharimv/auction-platform/internal/store"
	"github.com/sreeharimv/auction-platform/internal/telemetry"

	// Register store drivers so they are available via store.Open.
	_ "github.com/sreeharimv/auction-platform/internal/store/csvstore"
	_ "github.com/sreeharimv/auction-platform/internal/store/postgres"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tp, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.NewNopProvider()
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	logger := tp.Logger
	clk := clock.Real{}

	metrics, err := telemetry.NewMetrics(tp.MeterProvider)
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	// Open store using the configured driver (csv or postgres).
	repos, err := store.Open(ctx, cfg.Database, clk)
	if err != nil {
		return fmt.Errorf("opening store (driver=%s): %w", cfg.Database.Driver, err)
	}
	defer repos.Closer.Close()

	logger.InfoContext(ctx, "store ready", slog.String("driver", cfg.Database.Driver))

	hub := broadcast.NewHub(logger)
	engine := auction.New(repos.Players, repos.Events, cfg.Rules, clk, logger, tp.TracerProvider, hub)
	auth := httpapi.NewAuth(cfg.Admin, clk)

	healthHandler := health.NewHandler(clk,
		health.Checker{
			Name:  "store",
			Check: repos.Ping,
		},
	)

	api := httpapi.NewServer(engine, hub, repos.Players, auth, healthHandler, cfg, metrics, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "starting http server", slog.Int("port", cfg.Server.Port))
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && listenErr != http.ErrServerClosed {
			logger.ErrorContext(ctx, "http server error", slog.Any("error", listenErr))
			cancel()
		}
	}()

	healthHandler.SetReady(true)
	logger.InfoContext(ctx, "auctiond is running",
		slog.String("version", version),
		slog.String("tournament", cfg.Tournament.Name),
	)

	<-ctx.Done()
	logger.Info("shutting down...")
	healthHandler.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}
