package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chromacast/internal/core/domain"
	"chromacast/internal/core/ports"
	"chromacast/internal/core/services"
	httphandlers "chromacast/internal/handlers/http"
	wshandlers "chromacast/internal/handlers/ws"
	"chromacast/internal/infrastructure/capture"
	"chromacast/internal/infrastructure/middleware"
	"chromacast/internal/infrastructure/monitoring"
	"chromacast/internal/infrastructure/registry"
	"chromacast/internal/infrastructure/tcpserver"
	"chromacast/pkg/config"
	apperrors "chromacast/pkg/errors"
	"chromacast/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	var metrics ports.Collector
	if cfg.Monitoring.PrometheusEnabled {
		metrics = monitoring.NewPrometheusCollector()
	} else {
		metrics = ports.NopCollector{}
	}

	conns := registry.NewConnectionRegistry(metrics, log)

	kind, err := domain.ParseFilterKind(cfg.Filter.Kind)
	if err != nil {
		log.Fatalw("invalid filter configuration", "error", err)
	}
	filter := services.NewChromaKeyFilter(kind, services.ChromaKeyConfig{
		KeyMin:            cfg.Filter.KeyMin,
		KeyMax:            cfg.Filter.KeyMax,
		ReferenceLevel:    cfg.Filter.ReferenceLevel,
		VarianceThreshold: cfg.Filter.VarianceThreshold,
	})

	source := buildSource(cfg, kind, log)
	pipeline := services.NewCapturePipeline(source, filter, conns, metrics, log)

	// TCP surface: the accept loop producing into the registry.
	streamServer := tcpserver.NewServer(tcpserver.Config{
		Address:              cfg.Stream.Address,
		WriteTimeout:         cfg.Stream.WriteTimeout,
		ConnectionsPerMinute: cfg.Stream.ConnectionsPerMinute,
		Burst:                cfg.Stream.Burst,
	}, conns, log)
	if err := streamServer.Start(); err != nil {
		log.Fatalw("failed to start stream listener",
			"error", apperrors.NewBindFailedError(cfg.Stream.Address, err))
	}

	// HTTP surface: status API, metrics, websocket consumers.
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.ErrorHandler(log))
	if cfg.RateLimiting.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimiting.HTTP.RequestsPerSecond, cfg.RateLimiting.HTTP.Burst))
	}

	statusHandler := httphandlers.NewStatusHandler(pipeline, conns)
	statusHandler.SetupRoutes(router)

	wsHandler := wshandlers.NewHandler(conns, log)
	wsHandler.SetupRoutes(router)

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("starting status server", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Capture pipeline. Its return ends the process: nil on end-of-stream,
	// an error on fatal faults (no background frame, invariant violation).
	pipelineCtx, pipelineCancel := context.WithCancel(context.Background())
	defer pipelineCancel()

	pipelineDone := make(chan error, 1)
	go func() {
		pipelineDone <- pipeline.Run(pipelineCtx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErr:
		log.Errorw("status server failed", "error", err)
		exitCode = 1
	case sig := <-sigChan:
		log.Infow("received shutdown signal", "signal", sig)
	case err := <-pipelineDone:
		switch {
		case err == nil:
			log.Info("capture stream ended")
		case errors.Is(err, domain.ErrNoBackgroundFrame):
			log.Errorw("no background frame", "error", apperrors.NewCaptureUnavailableError(err))
			exitCode = 1
		case errors.Is(err, domain.ErrGeometryMismatch):
			log.Errorw("frame geometry invariant violated", "error", apperrors.NewInvariantViolationError(err))
			exitCode = 1
		default:
			log.Errorw("capture pipeline failed", "error", err)
			exitCode = 1
		}
	}

	log.Info("shutting down")
	pipelineCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during status server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing status server", "error", closeErr)
		}
	}

	if err := streamServer.Shutdown(); err != nil {
		log.Errorw("error closing stream listener", "error", err)
	}
	conns.Close()

	log.Info("stopped")
	os.Exit(exitCode)
}

func buildSource(cfg *config.Config, kind domain.FilterKind, log *zap.SugaredLogger) ports.FrameSource {
	if cfg.Capture.Source == "file" {
		return capture.NewFileSource(capture.FileSourceConfig{
			Dir:     cfg.Capture.InputDir,
			Pattern: cfg.Capture.Pattern,
			Width:   cfg.Capture.Width,
			Height:  cfg.Capture.Height,
			FPS:     cfg.Capture.FPS,
			Loop:    cfg.Capture.Loop,
		}, log)
	}
	return capture.NewSyntheticSource(
		cfg.Capture.Width,
		cfg.Capture.Height,
		cfg.Capture.FPS,
		kind,
		cfg.Capture.MaxFrames,
	)
}
