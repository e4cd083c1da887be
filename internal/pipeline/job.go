package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/anshulkhatri/studyscribe/internal/config"
	"github.com/anshulkhatri/studyscribe/internal/database"
	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/internal/metrics"
	"github.com/anshulkhatri/studyscribe/internal/preprocess"
	"github.com/anshulkhatri/studyscribe/internal/tracing"
	"github.com/anshulkhatri/studyscribe/internal/transcriber"
	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// AssetStore is the asset persistence surface the processor needs.
type AssetStore interface {
	GetAsset(ctx context.Context, id string) (*models.MediaAsset, error)
	TransitionStatus(ctx context.Context, id, from, to string, fields database.TransitionFields) error
}

// TranscriptStore persists finished transcripts.
type TranscriptStore interface {
	CreateTranscript(ctx context.Context, transcript *models.Transcript) error
}

// ObjectStore fetches uploaded media from blob storage.
type ObjectStore interface {
	DownloadFile(ctx context.Context, objectName, filePath string) error
}

// Preprocessor extracts and chunks media ahead of transcription.
type Preprocessor interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath, sourceKind string) (string, error)
	SplitChunks(ctx context.Context, inputPath, outputDir string, maxChunkSeconds float64) ([]preprocess.Chunk, error)
}

// Processor runs one transcription job end to end: claim the asset, prepare
// the audio, transcribe chunk by chunk and persist the transcript. All
// failure paths converge on failJob so the asset never sticks in processing.
type Processor struct {
	assets      AssetStore
	transcripts TranscriptStore
	storage     ObjectStore
	prep        Preprocessor
	provider    transcriber.Provider
	captions    transcriber.Provider
	bus         *Bus
	cfg         config.TranscriptionConfig
	logger      *logging.Logger
	workerID    string
}

// NewProcessor creates a job processor. provider handles file-sourced media;
// captions handles URL-sourced media.
func NewProcessor(
	assets AssetStore,
	transcripts TranscriptStore,
	storage ObjectStore,
	prep Preprocessor,
	provider transcriber.Provider,
	captions transcriber.Provider,
	bus *Bus,
	cfg config.TranscriptionConfig,
	logger *logging.Logger,
) *Processor {
	return &Processor{
		assets:      assets,
		transcripts: transcripts,
		storage:     storage,
		prep:        prep,
		provider:    provider,
		captions:    captions,
		bus:         bus,
		cfg:         cfg,
		logger:      logger,
		workerID:    uuid.New().String(),
	}
}

// WorkerID returns this processor's identity for logging.
func (p *Processor) WorkerID() string {
	return p.workerID
}

// ProcessAsset runs the transcription job for one asset. A claim conflict
// (another worker already took the job, or the asset was deleted) is not an
// error: the job is silently dropped.
func (p *Processor) ProcessAsset(ctx context.Context, assetID string) error {
	logger := p.logger.WithAssetID(assetID).WithWorkerID(p.workerID)
	start := time.Now()

	asset, err := p.assets.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			logger.Warn("asset no longer exists, dropping job")
			return nil
		}
		return fmt.Errorf("failed to load asset: %w", err)
	}

	// Claim the job. Exactly one worker wins this transition.
	err = p.assets.TransitionStatus(ctx, assetID, models.AssetStatusPending, models.AssetStatusProcessing, database.TransitionFields{})
	if err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			logger.Info("asset already claimed or finished, dropping job")
			return nil
		}
		return fmt.Errorf("failed to claim asset: %w", err)
	}

	metrics.RecordJobStarted()
	p.bus.Publish(Event{Type: EventJobStarted, AssetID: assetID})
	logger.LogJobEvent(assetID, "started", models.AssetStatusProcessing, nil)

	span, spanCtx := tracing.StartSpan(ctx, "pipeline.transcribe", assetID)
	transcript, err := p.transcribe(spanCtx, asset, logger)
	tracing.FinishSpan(span, err)
	if err != nil {
		return p.failJob(ctx, assetID, start, err, logger)
	}

	if err := p.transcripts.CreateTranscript(ctx, transcript); err != nil {
		return p.failJob(ctx, assetID, start, fmt.Errorf("failed to persist transcript: %w", err), logger)
	}

	err = p.assets.TransitionStatus(ctx, assetID, models.AssetStatusProcessing, models.AssetStatusCompleted, database.TransitionFields{
		TranscriptID: &transcript.ID,
	})
	if err != nil {
		return p.failJob(ctx, assetID, start, fmt.Errorf("failed to complete asset: %w", err), logger)
	}

	metrics.RecordJobCompleted(models.AssetStatusCompleted, time.Since(start).Seconds())
	p.bus.Publish(Event{Type: EventJobCompleted, AssetID: assetID})
	logger.LogJobEvent(assetID, "completed", models.AssetStatusCompleted, map[string]interface{}{
		"transcript_id": transcript.ID,
		"segments":      len(transcript.Segments),
	})

	return nil
}

// transcribe produces the transcript for the asset, choosing the caption
// path for URL-sourced media and the audio path otherwise.
func (p *Processor) transcribe(ctx context.Context, asset *models.MediaAsset, logger *logging.Logger) (*models.Transcript, error) {
	if asset.IsURLSourced() {
		return p.transcribeCaptions(ctx, asset, logger)
	}
	return p.transcribeAudio(ctx, asset, logger)
}

// transcribeCaptions fetches the existing caption track for the external
// video. No media is downloaded or decoded on this path.
func (p *Processor) transcribeCaptions(ctx context.Context, asset *models.MediaAsset, logger *logging.Logger) (*models.Transcript, error) {
	videoID, err := transcriber.ExtractVideoID(asset.SourceURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := p.captions.Transcribe(ctx, videoID, asset.LanguageHint)
	logger.LogProviderCall(p.captions.Name(), asset.ID, 0, time.Since(start), err)
	metrics.RecordProviderCall(p.captions.Name(), statusLabel(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return p.buildTranscript(asset, result.Segments, result.Language, result.Confidence), nil
}

// transcribeAudio downloads the stored media, prepares the audio track,
// transcribes each chunk sequentially and stitches the results into one
// timeline. The per-job temp directory is removed on every exit path.
func (p *Processor) transcribeAudio(ctx context.Context, asset *models.MediaAsset, logger *logging.Logger) (*models.Transcript, error) {
	tempDir := filepath.Join(p.cfg.TempDir, asset.ID)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	inputPath := filepath.Join(tempDir, "input"+filepath.Ext(asset.Filename))
	if err := p.storage.DownloadFile(ctx, asset.StorageKey, inputPath); err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}

	audioPath, err := p.prep.ExtractAudio(ctx, inputPath, filepath.Join(tempDir, "audio.wav"), asset.Kind)
	if err != nil {
		return nil, err
	}

	chunks, err := p.prep.SplitChunks(ctx, audioPath, tempDir, p.cfg.MaxChunkSeconds)
	if err != nil {
		return nil, err
	}

	var (
		segments   []models.Segment
		language   string
		confidence *float64
	)

	for _, chunk := range chunks {
		start := time.Now()
		result, err := p.provider.Transcribe(ctx, chunk.Path, asset.LanguageHint)
		logger.LogProviderCall(p.provider.Name(), asset.ID, chunk.Index, time.Since(start), err)
		metrics.RecordProviderCall(p.provider.Name(), statusLabel(err), time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.Index, err)
		}

		segments = append(segments, transcriber.OffsetSegments(result.Segments, chunk.Start)...)
		if language == "" {
			language = result.Language
		}
		if confidence == nil {
			confidence = result.Confidence
		}

		metrics.RecordChunkProcessed(p.provider.Name())
		p.bus.Publish(Event{Type: EventChunkProcessed, AssetID: asset.ID, ChunkIndex: chunk.Index})
	}

	return p.buildTranscript(asset, segments, language, confidence), nil
}

// buildTranscript normalizes the raw segments and assembles the transcript
// record. Normalization runs once here rather than per provider.
func (p *Processor) buildTranscript(asset *models.MediaAsset, segments []models.Segment, language string, confidence *float64) *models.Transcript {
	opts := transcriber.DefaultNormalizeOptions()
	if p.cfg.MinSegmentSeconds > 0 {
		opts.MinSegmentSeconds = p.cfg.MinSegmentSeconds
	}
	if p.cfg.MaxSegmentSeconds > 0 {
		opts.MaxSegmentSeconds = p.cfg.MaxSegmentSeconds
	}

	normalized := transcriber.Normalize(segments, opts)

	if language == "" {
		language = asset.LanguageHint
	}

	return &models.Transcript{
		ID:         uuid.New().String(),
		AssetID:    asset.ID,
		OwnerID:    asset.OwnerID,
		FullText:   models.JoinFullText(normalized),
		Language:   language,
		Confidence: confidence,
		Segments:   normalized,
		Version:    1,
	}
}

// failJob moves the asset to failed with the error recorded. This is the
// single failure path: whatever went wrong, the asset leaves processing.
func (p *Processor) failJob(ctx context.Context, assetID string, start time.Time, jobErr error, logger *logging.Logger) error {
	fields := database.TransitionFields{ProcessingError: jobErr.Error()}
	if err := p.assets.TransitionStatus(ctx, assetID, models.AssetStatusProcessing, models.AssetStatusFailed, fields); err != nil {
		logger.ErrorWithErr("failed to mark asset failed", err)
	}

	metrics.RecordJobCompleted(models.AssetStatusFailed, time.Since(start).Seconds())
	p.bus.Publish(Event{Type: EventJobFailed, AssetID: assetID, Error: jobErr.Error()})
	logger.LogJobEvent(assetID, "failed", models.AssetStatusFailed, map[string]interface{}{
		"error": jobErr.Error(),
	})

	return jobErr
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
