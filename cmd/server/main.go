package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"nfseconv/internal/config"
	"nfseconv/internal/handler"
	"nfseconv/internal/logger"
	"nfseconv/internal/nfse"
	"nfseconv/internal/router"
	"nfseconv/internal/service"
	s3storage "nfseconv/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	baseLog := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize extraction
	extractor := nfse.New(nfse.SchemaFor(cfg.Convert.Namespace))
	convertSvc := service.NewConvertService(extractor, &cfg.Convert)

	// Object storage source is optional
	var objectSvc service.ObjectService
	if cfg.S3.Enabled {
		s3Client, err := s3storage.NewS3Client(&cfg.S3, cfg.Convert.MaxUploadBytes())
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		objectSvc = service.NewObjectService(s3Client, convertSvc, &cfg.S3)
		baseLog.Info().Str("bucket", cfg.S3.Bucket).Str("region", cfg.S3.Region).Msg("object storage source enabled")
	}

	// Initialize handlers
	convertH := handler.NewConvertHandler(convertSvc, objectSvc, &cfg.Convert)
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(baseLog, router.Options{
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		ObjectSource:       cfg.S3.Enabled,
		MaxMultipartMemory: cfg.Convert.MaxUploadBytes(),
	}, convertH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		baseLog.Info().
			Str("addr", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Str("namespace", extractor.Schema().Namespace).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	baseLog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
