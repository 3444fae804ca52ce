package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"pastebin/internal/api"
	"pastebin/internal/config"
	"pastebin/internal/idgen"
	"pastebin/internal/logs"
	"pastebin/internal/metrics"
	"pastebin/internal/paste"
	"pastebin/internal/reporter"
	"pastebin/internal/store"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	// The in-memory logger filters by level; the sink takes everything it forwards.
	sink := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(sink)

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := flags.Apply(cfg, flag.CommandLine); err != nil {
		slog.Error("invalid command line", "err", err)
		os.Exit(2)
	}

	// Logger
	logger := logs.NewLogger(cfg.Log.BufferSize, cfg.Log.LogLevel()).WithSink(sink)

	logger.Info("config loaded",
		"bind_addr", cfg.Server.BindAddr,
		"base_path", cfg.Server.NormalizedBasePath(),
		"buffer_size", cfg.Store.BufferSize,
		"max_paste_size", cfg.Server.MaxPasteSize,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Metrics
	metricsRegistry := metrics.NewRegistry()
	promRegistry := metrics.NewPrometheusRegistry(metricsRegistry, cfg.Store.BufferSize)

	// Store
	pasteStore := store.New(cfg.Store.BufferSize, metricsRegistry)
	pastes := paste.NewService(pasteStore, idgen.Generate, logger)

	// Occupancy reporter
	occupancy := reporter.NewReporter(
		pasteStore,
		cfg.Store.ReportInterval,
		logger,
		metricsRegistry,
	)
	go occupancy.Start(ctx)

	// Config hot reload
	if flags.ConfigPath != "" {
		reloader := config.NewReloader(cfg, logger)
		go func() {
			if err := config.Watch(ctx, flags.ConfigPath, logger, flags.Reload(flag.CommandLine), reloader.Apply); err != nil {
				logger.Error("config: watcher stopped", "err", err)
			}
		}()
	}

	// API
	handler := api.NewHandler(
		pastes,
		metricsRegistry,
		logger,
		api.Options{
			BasePath:     cfg.Server.NormalizedBasePath(),
			MaxPasteSize: cfg.Server.MaxPasteSize,
			HTTPMetrics:  metrics.NewHTTPMetrics(promRegistry),
			Exposition:   metrics.Handler(promRegistry),
			ListPastes:   cfg.Server.ListPastes,
		},
	)
	httpHandler := api.RegisterRoutes(mux.NewRouter(), handler)

	server := &http.Server{
		Addr:              cfg.Server.BindAddr,
		Handler:           httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "url", "http://"+cfg.Server.BindAddr+cfg.Server.NormalizedBasePath())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
