package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anshulkhatri/studyscribe/internal/cache"
	"github.com/anshulkhatri/studyscribe/internal/config"
	"github.com/anshulkhatri/studyscribe/internal/database"
	"github.com/anshulkhatri/studyscribe/internal/generator"
	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/internal/metrics"
	"github.com/anshulkhatri/studyscribe/internal/middleware"
	"github.com/anshulkhatri/studyscribe/internal/queue"
	"github.com/anshulkhatri/studyscribe/internal/storage"
	"github.com/anshulkhatri/studyscribe/internal/tracing"
	"github.com/anshulkhatri/studyscribe/internal/upload"
	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// assetStore is the asset persistence surface the handlers need.
type assetStore interface {
	CreateAsset(ctx context.Context, asset *models.MediaAsset) error
	GetAsset(ctx context.Context, id string) (*models.MediaAsset, error)
	TransitionStatus(ctx context.Context, id, from, to string, fields database.TransitionFields) error
	ListAssetsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.MediaAsset, error)
	DeleteAsset(ctx context.Context, id string) error
}

// transcriptStore is the transcript persistence surface the handlers need.
type transcriptStore interface {
	GetTranscript(ctx context.Context, id string) (*models.Transcript, error)
	GetTranscriptByAssetID(ctx context.Context, assetID string) (*models.Transcript, error)
	EditSegment(ctx context.Context, transcriptID string, segmentIndex int, newText string) (*models.Transcript, error)
	SetHighlight(ctx context.Context, transcriptID string, segmentIndex int, highlighted bool, color, note string) (*models.Transcript, error)
	SearchSegments(ctx context.Context, transcriptID, query string) ([]models.Segment, error)
	TouchRenderedAt(ctx context.Context, transcriptID, format string) error
}

// studyStore persists generated study materials and insights.
type studyStore interface {
	CreateStudyMaterial(ctx context.Context, material *models.StudyMaterial) error
	GetStudyMaterial(ctx context.Context, id string) (*models.StudyMaterial, error)
	ListStudyMaterialsByTranscript(ctx context.Context, transcriptID string) ([]*models.StudyMaterial, error)
	CreateInsight(ctx context.Context, insight *models.AnalysisInsight) error
	GetLatestInsight(ctx context.Context, transcriptID string) (*models.AnalysisInsight, error)
}

// objectStorage is the blob storage surface the handlers need.
type objectStorage interface {
	UploadFile(ctx context.Context, objectName, filePath string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// jobQueue enqueues transcription jobs for the worker pool.
type jobQueue interface {
	PublishJob(ctx context.Context, assetID string) error
}

// contentGenerator produces study artifacts from a transcript.
type contentGenerator interface {
	Generate(ctx context.Context, transcript *models.Transcript) (*models.StudyMaterial, *models.AnalysisInsight, error)
}

type API struct {
	assets      assetStore
	transcripts transcriptStore
	study       studyStore
	storage     objectStorage
	queue       jobQueue
	cache       *cache.Cache
	generator   contentGenerator
	uploads     *upload.Manager
	cfg         *config.Config
	logger      *logging.Logger
}

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
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
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

	redisCache, err := cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisCache.Close()

	var remote generator.Backend
	if cfg.Generation.ServerURL != "" {
		remote = generator.NewRemoteBackend(cfg.Generation.ServerURL, cfg.Generation.RequestTimeout)
	}
	local := generator.NewLocalBackend(cfg.Generation.OllamaModel)
	gen := generator.NewService(remote, local, cfg.Generation, logger)

	uploads := upload.NewManager(cfg.Transcription.TempDir, 0, logger)
	go func() {
		for range time.Tick(time.Hour) {
			uploads.SweepExpired()
		}
	}()

	api := &API{
		assets:      database.NewAssetRepository(db),
		transcripts: database.NewTranscriptRepository(db),
		study:       database.NewStudyRepository(db),
		storage:     stor,
		queue:       q,
		cache:       redisCache,
		generator:   gen,
		uploads:     uploads,
		cfg:         cfg,
		logger:      logger,
	}

	metricsServer := metrics.NewServer(9090)
	go func() {
		if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics server error: %v", err)
		}
	}()

	router := api.setupRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("API server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Errorf("Metrics server shutdown error: %v", err)
	}

	logger.Info("API server stopped")
}

func (api *API) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(api.logger))

	router.GET("/health", api.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(10, 20)
	go func() {
		for range time.Tick(10 * time.Minute) {
			limiter.Cleanup(30 * time.Minute)
		}
	}()

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Identity())
	v1.Use(middleware.RateLimit(limiter))
	{
		v1.POST("/media", api.submitMedia)
		v1.POST("/media/import", api.importMedia)
		v1.POST("/media/uploads", api.initiateUpload)
		v1.GET("/media/uploads/:id", api.getUploadSession)
		v1.PUT("/media/uploads/:id/parts/:part", api.uploadPart)
		v1.POST("/media/uploads/:id/complete", api.completeUpload)
		v1.DELETE("/media/uploads/:id", api.abortUpload)
		v1.GET("/media", api.listMedia)
		v1.GET("/media/:id", api.getMedia)
		v1.GET("/media/:id/status", api.getMediaStatus)
		v1.DELETE("/media/:id", api.deleteMedia)
		v1.POST("/media/:id/resubmit", api.resubmitMedia)
		v1.GET("/media/:id/transcript", api.getTranscriptByAsset)

		v1.GET("/transcripts/:id", api.getTranscript)
		v1.PUT("/transcripts/:id/segments/:index", api.editSegment)
		v1.PUT("/transcripts/:id/segments/:index/highlight", api.setHighlight)
		v1.GET("/transcripts/:id/search", api.searchTranscript)
		v1.GET("/transcripts/:id/export", api.exportTranscript)

		v1.POST("/transcripts/:id/study-content", api.generateStudyContent)
		v1.GET("/transcripts/:id/study-materials", api.listStudyMaterials)
		v1.GET("/transcripts/:id/insight", api.getInsight)
		v1.GET("/study-materials/:id", api.getStudyMaterial)
	}

	return router
}

func (api *API) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "studyscribe-api",
		"time":    time.Now().UTC(),
	})
}
