package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anshulkhatri/studyscribe/internal/config"
	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/internal/metrics"
	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// Backend produces the four study artifacts from transcript text.
type Backend interface {
	GenerateSummary(ctx context.Context, text, language string) (string, error)
	GenerateFlashcards(ctx context.Context, text, language string) ([]models.Flashcard, error)
	GenerateQuiz(ctx context.Context, text, language string) ([]models.QuizItem, error)
	GenerateAnalysis(ctx context.Context, text, language string) (*models.AnalysisInsight, error)
}

// Service generates study content from a transcript. Each artifact is
// produced independently and concurrently. The hosted backend is tried first;
// any artifact it cannot produce falls back to the local backend. A failed
// artifact ends up empty rather than failing the whole request.
type Service struct {
	remote   Backend
	local    Backend
	minChars int
	logger   *logging.Logger
}

// NewService creates a generation service. remote may be nil when no hosted
// service is configured; local may be nil to disable the fallback.
func NewService(remote, local Backend, cfg config.GenerationConfig, logger *logging.Logger) *Service {
	return &Service{
		remote:   remote,
		local:    local,
		minChars: cfg.MinTranscriptChars,
		logger:   logger,
	}
}

// Generate produces study material and an analysis insight for the
// transcript. Transcripts below the minimum length are rejected before any
// backend call is made.
func (s *Service) Generate(ctx context.Context, transcript *models.Transcript) (*models.StudyMaterial, *models.AnalysisInsight, error) {
	text := strings.TrimSpace(transcript.FullText)
	if len(text) < s.minChars {
		return nil, nil, models.ErrContentTooShort
	}

	start := time.Now()
	language := transcript.Language

	var (
		wg         sync.WaitGroup
		summary    string
		flashcards []models.Flashcard
		quiz       []models.QuizItem
		insight    *models.AnalysisInsight
		mu         sync.Mutex
		fallback   bool
	)

	markFallback := func() {
		mu.Lock()
		fallback = true
		mu.Unlock()
	}

	wg.Add(4)

	go func() {
		defer wg.Done()
		result, usedFallback := generateArtifact(s, ArtifactSummary, func(summary string) bool {
			return strings.TrimSpace(summary) == ""
		}, func(b Backend) (string, error) {
			return b.GenerateSummary(ctx, text, language)
		})
		summary = result
		if usedFallback {
			markFallback()
		}
	}()

	go func() {
		defer wg.Done()
		result, usedFallback := generateArtifact(s, ArtifactFlashcards, func(cards []models.Flashcard) bool {
			return len(cards) == 0
		}, func(b Backend) ([]models.Flashcard, error) {
			return b.GenerateFlashcards(ctx, text, language)
		})
		flashcards = result
		if usedFallback {
			markFallback()
		}
	}()

	go func() {
		defer wg.Done()
		result, usedFallback := generateArtifact(s, ArtifactQuiz, func(items []models.QuizItem) bool {
			return len(items) == 0
		}, func(b Backend) ([]models.QuizItem, error) {
			return b.GenerateQuiz(ctx, text, language)
		})
		quiz = ValidateQuiz(result)
		if usedFallback {
			markFallback()
		}
	}()

	go func() {
		defer wg.Done()
		result, usedFallback := generateArtifact(s, ArtifactAnalysis, func(in *models.AnalysisInsight) bool {
			return in == nil
		}, func(b Backend) (*models.AnalysisInsight, error) {
			return b.GenerateAnalysis(ctx, text, language)
		})
		insight = result
		if usedFallback {
			markFallback()
		}
	}()

	wg.Wait()

	// A quiz can stand in for missing flashcards.
	if len(flashcards) == 0 && len(quiz) > 0 {
		flashcards = SynthesizeFlashcards(quiz)
	}

	material := &models.StudyMaterial{
		ID:           uuid.New().String(),
		TranscriptID: transcript.ID,
		AssetID:      transcript.AssetID,
		Language:     language,
		Summary:      summary,
		Flashcards:   flashcards,
		QuizItems:    quiz,
		FallbackUsed: fallback,
	}

	if insight != nil {
		insight.ID = uuid.New().String()
		insight.TranscriptID = transcript.ID
		insight.AssetID = transcript.AssetID
	}

	metrics.RecordGenerationRequest("success", time.Since(start).Seconds())
	return material, insight, nil
}

// errEmptyResult marks a hosted call that succeeded but produced nothing
// usable. It is treated the same as a transport error.
var errEmptyResult = errors.New("hosted service returned an empty result")

// generateArtifact runs the server-first, local-fallback sequence for one
// artifact. A hosted call that errors or comes back empty hands off to the
// local backend. Both backends failing yields the zero value, never an
// error. The second return is true when the hosted service did not produce
// the artifact.
func generateArtifact[T any](s *Service, artifact string, empty func(T) bool, generate func(Backend) (T, error)) (T, bool) {
	var zero T

	if s.remote == nil {
		// No hosted service configured; the local model is the primary path.
		if s.local == nil {
			return zero, false
		}
		result, err := generate(s.local)
		if err != nil {
			s.logger.WithError(err).Warnf("local %s generation failed", artifact)
			return zero, false
		}
		return result, false
	}

	result, err := generate(s.remote)
	if err == nil && !empty(result) {
		return result, false
	}
	if err == nil {
		err = errEmptyResult
	}

	s.logger.LogGenerationFallback(artifact, err)
	if s.local == nil {
		return zero, true
	}
	metrics.RecordGenerationFallback(artifact)

	result, err = generate(s.local)
	if err != nil {
		s.logger.WithError(err).Warnf("local %s generation failed", artifact)
		return zero, true
	}

	return result, true
}

// ValidateQuiz drops malformed quiz items and repairs out-of-range answer
// indices so every surviving item has a resolvable correct answer.
func ValidateQuiz(items []models.QuizItem) []models.QuizItem {
	out := make([]models.QuizItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Question) == "" || len(item.Options) < 2 {
			continue
		}
		if item.CorrectOptionIndex < 0 || item.CorrectOptionIndex >= len(item.Options) {
			item.CorrectOptionIndex = 0
		}
		out = append(out, item)
	}
	return out
}

// SynthesizeFlashcards derives flashcards from quiz items when flashcard
// generation produced nothing usable.
func SynthesizeFlashcards(items []models.QuizItem) []models.Flashcard {
	cards := make([]models.Flashcard, 0, len(items))
	for _, item := range items {
		answer := item.CorrectAnswer()
		if answer == "" {
			continue
		}
		cards = append(cards, models.Flashcard{Front: item.Question, Back: answer})
	}
	return cards
}
