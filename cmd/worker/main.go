package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anshulkhatri/studyscribe/internal/config"
	"github.com/anshulkhatri/studyscribe/internal/database"
	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/internal/metrics"
	"github.com/anshulkhatri/studyscribe/internal/pipeline"
	"github.com/anshulkhatri/studyscribe/internal/preprocess"
	"github.com/anshulkhatri/studyscribe/internal/queue"
	"github.com/anshulkhatri/studyscribe/internal/scheduler"
	"github.com/anshulkhatri/studyscribe/internal/storage"
	"github.com/anshulkhatri/studyscribe/internal/tracing"
	"github.com/anshulkhatri/studyscribe/internal/transcriber"
	"github.com/anshulkhatri/studyscribe/internal/webhook"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewDefaultLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName+"-worker", cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer closer.Close()
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	stor, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	if err := q.SetupDeadLetterQueue(); err != nil {
		logger.Fatalf("Failed to set up dead letter queue: %v", err)
	}

	// Leftover temp directories from crashed runs are reclaimed before any
	// new job writes to the same tree.
	if removed, err := preprocess.CleanupStale(cfg.Transcription.TempDir, cfg.Transcription.StaleTempAge); err != nil {
		logger.WithError(err).Warn("stale temp cleanup failed")
	} else if removed > 0 {
		logger.Infof("Removed %d stale temp directories", removed)
	}

	prep := preprocess.NewFFmpeg(cfg.Transcription.FFmpegPath, cfg.Transcription.FFprobePath)
	provider := transcriber.Resolve(cfg.Transcription)
	captions := transcriber.NewCaptionProvider("", cfg.Transcription.RequestTimeout)

	assets := database.NewAssetRepository(db)

	bus := pipeline.NewBus()
	processor := pipeline.NewProcessor(
		assets,
		database.NewTranscriptRepository(db),
		stor,
		prep,
		provider,
		captions,
		bus,
		cfg.Transcription,
		logger,
	)

	logger.WithWorkerID(processor.WorkerID()).Infof("Worker starting with provider %s", provider.Name())

	metricsServer := metrics.NewServer(9091)
	go func() {
		if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler := scheduler.NewReconciler(assets, q, time.Minute, 5*time.Minute, logger)
	go reconciler.Run(ctx)

	if cfg.Notify.WebhookURL != "" {
		notifier := webhook.NewNotifier(cfg.Notify.WebhookURL, cfg.Notify.WebhookSecret, cfg.Notify.Timeout, logger)
		events, unsubscribe := bus.Subscribe(64)
		defer unsubscribe()
		go notifier.Watch(ctx, events)
	}

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if depth, err := q.GetQueueDepth(); err == nil {
					metrics.UpdateQueueDepth(depth)
				}
				if depth, err := q.GetDLQDepth(); err == nil {
					metrics.UpdateDLQDepth(depth)
				}
			}
		}
	}()

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- q.ConsumeJobs(ctx, func(job *queue.JobMessage) error {
			return processor.ProcessAsset(ctx, job.AssetID)
		})
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down worker")
	case err := <-consumeErr:
		if err != nil {
			logger.ErrorWithErr("consumer stopped", err)
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Metrics server shutdown error: %v", err)
	}

	logger.Info("Worker stopped")
}
