package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/api"
	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/face"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/service"
	"github.com/saturnino-fabrica-de-software/presenca/internal/storage"
	"github.com/saturnino-fabrica-de-software/presenca/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Presenca API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("store", cfg.StoreType),
		slog.String("camera", cfg.CameraType),
		slog.String("face_library", cfg.FaceLibrary),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = stores.Close() }()

	pipeline, err := face.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("failed to load face pipeline: %w", err)
	}
	defer func() { _ = pipeline.Close() }()

	hub := ws.NewHub()
	display := capture.MultiDisplay{
		capture.NewLogDisplay(logger),
		ws.NewDisplay(hub, cfg.FeedFPS),
	}

	orchestrator := capture.NewOrchestrator(
		pipeline.Camera,
		pipeline.Detector,
		provider.NewExtractor(pipeline.Library),
		display,
		logger,
		face.CaptureOptions(cfg),
	)

	svc := service.NewAttendanceService(stores.Users, stores.Attendance, orchestrator, logger).
		WithTolerance(cfg.MatchTolerance).
		WithAttempts(stores.Attempts).
		WithPublisher(hub)

	router := api.NewRouter(logger, &api.Dependencies{
		Service:          svc,
		Store:            stores,
		Hub:              hub,
		CaptureRateLimit: cfg.CaptureRateLimit,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped")
	return nil
}
