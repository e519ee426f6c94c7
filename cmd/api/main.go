package main

import (
	"context"
	"csv-drop/internal/adapters/eventbroker"
	"csv-drop/internal/adapters/eventbroker/nats"
	"csv-drop/internal/adapters/handlers/http/chi"
	"csv-drop/internal/adapters/handlers/http/chi/v1/file"
	"csv-drop/internal/adapters/metrics"
	"csv-drop/internal/adapters/repository/postgres"
	"csv-drop/internal/adapters/storage/minio"
	"csv-drop/internal/adapters/storage/s3"
	"csv-drop/internal/config"
	"csv-drop/internal/core/port"
	"csv-drop/internal/core/service/cleanup"
	"csv-drop/internal/core/service/upload"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	objectStorage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init object storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	//compensation queue
	queue, closeQueue, err := initQueue(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init compensation queue", "error", err)
		os.Exit(1)
	}
	defer closeQueue()

	//metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	unitOfWork := postgres.NewUnitOfWork(db)

	uploadService := upload.NewUploadService(unitOfWork, objectStorage, queue, recorder, cfg.Upload, logger)
	cleanupService := cleanup.NewCleanupService(unitOfWork, uploadService, logger)

	//http
	fileHandler := file.NewFileHandlerV1(uploadService, logger)

	router := chi.NewRouter(logger, fileHandler, httpMetrics, reg, db, cfg.Server, cfg.Env.Env)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init stale upload sweeper
	wg.Add(1)
	go func() {
		defer wg.Done()
		initSweepTask(ctx, cleanupService, cfg.Upload.SweepEvery, cfg.Upload.StaleAfter, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.ObjectStorage, error) {
	switch cfg.Storage.Driver {
	case "minio":
		return minio.NewAdapter(ctx, cfg.Minio, logger)
	case "s3":
		return s3.NewAdapter(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// initQueue returns the NATS publisher, or a log only queue when NATS_URL is unset
func initQueue(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (port.CompensationQueue, func(), error) {
	if cfg.URL == "" {
		logger.Warn("NATS_URL not set, failed cleanups will only be logged")
		return eventbroker.NewLogQueue(logger), func() {}, nil
	}

	publisher, err := nats.NewNATSPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("NATS publisher initialized", "subject", cfg.Subject)

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close NATS publisher", "error", err)
		}
	}, nil
}

func initSweepTask(ctx context.Context, service port.CleanupService, every time.Duration, staleAfter time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("stale upload sweeper initialized", "interval", every, "stale_after", staleAfter)

	for {
		select {
		case <-ticker.C:
			logger.Info("stale upload sweep starting")
			err := service.SweepStaleUploads(ctx, time.Now().Add(-staleAfter))
			if err != nil {
				logger.Error("failed to sweep stale uploads", "error", err)
			} else {
				logger.Info("stale upload sweep completed successfully")
			}
		case <-ctx.Done():
			logger.Info("stale upload sweeper stopped")
			return
		}
	}

}
