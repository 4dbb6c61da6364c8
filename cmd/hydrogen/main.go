package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/hydrogenbot/hydrogen/internal/bot"
	"github.com/hydrogenbot/hydrogen/internal/config"
	"github.com/hydrogenbot/hydrogen/internal/i18n"
	"github.com/hydrogenbot/hydrogen/internal/observe"

	_ "github.com/hydrogenbot/hydrogen/internal/modules/music_player"
	_ "github.com/hydrogenbot/hydrogen/internal/modules/status"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/hydrogen
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	// Configure JSON logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	slog.Info("starting hydrogen", "version", version)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	localizer, err := i18n.Load(cfg.LanguagePath, cfg.DefaultLanguage)
	if err != nil {
		slog.Error("failed to load language catalogs", "error", err)
		os.Exit(1)
	}

	shutdownMetrics, err := observe.InitProvider(context.Background(), observe.ProviderConfig{
		ServiceName:    "hydrogen",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to init metrics provider", "error", err)
		os.Exit(1)
	}

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "error", err)
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddress, Handler: mux}
		go func() {
			slog.Info("serving metrics", "address", cfg.MetricsAddress)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	// Fatal receives unrecoverable module errors, e.g. the last audio node
	// dropping away.
	fatal := make(chan error, 1)

	b := bot.New(bot.Options{
		Config:    cfg,
		Localizer: localizer,
		Metrics:   metrics,
		Fatal:     fatal,
		Version:   version,
	})

	if err := b.LoadModules(); err != nil {
		slog.Error("failed to load modules", "error", err)
		os.Exit(1)
	}

	if err := b.Start(); err != nil {
		slog.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-stop:
		slog.Info("received termination signal, shutting down", "signal", sig.String())
	case err := <-fatal:
		slog.Error("unrecoverable error, shutting down", "error", err)
		exitCode = 1
	}

	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown bot", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown metrics server", "error", err)
		}
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		slog.Warn("failed to shutdown metrics provider", "error", err)
	}

	slog.Info("completed shutdown")
	os.Exit(exitCode)
}
