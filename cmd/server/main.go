/*
main.go - HTTP server entry point

PURPOSE:
  Starts the benefit engine API. Loads the configuration, builds the
  pipeline over the configured input backend and serves it over HTTP.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load config.yaml, .env and VR_* overrides
  3. Build the input source and the pipeline
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config file (default: config.yaml)
  -addr    Listen address, overrides server.addr

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active runs to complete (30s timeout)
  3. Exit

ENVIRONMENT:
  VR_POS15_REGRA, VR_SOURCE_KIND, VR_SOURCE_PATH, VR_SERVER_ADDR, VR_WORKERS

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration
  - pipeline/orchestrator.go: Run steps
*/
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

	"github.com/warp/benefit-engine/api"
	"github.com/warp/benefit-engine/config"
	"github.com/warp/benefit-engine/pipeline"
)

func main() {
	// Flags
	configPath := flag.String("config", config.DefaultPath, "Config file")
	addr := flag.String("addr", "", "Listen address (overrides server.addr)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	src, err := cfg.NewSource(logger)
	if err != nil {
		logger.Error("failed to build input source", "error", err)
		os.Exit(1)
	}
	orch := pipeline.New(src, cfg.Rules(), cfg.Rule())
	orch.Logger = logger
	orch.Calculator.Logger = logger
	orch.Calculator.Workers = cfg.Calculator.Workers
	orch.WriteCSV = cfg.Report.CSV

	handler := api.NewHandler(orch, cfg.Rules(), cfg.Server.InputRoot, cfg.Server.OutputRoot)
	handler.Logger = logger
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr, "source", cfg.Source.Kind, "pos15_regra", cfg.Pos15Rule)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
