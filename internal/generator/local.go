package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// LocalBackend generates study content with a local ollama model. It is the
// fallback when the hosted service is unreachable or misbehaves.
type LocalBackend struct {
	model string
}

// NewLocalBackend creates an ollama-backed generation backend.
func NewLocalBackend(model string) *LocalBackend {
	return &LocalBackend{model: model}
}

// complete runs one JSON-mode completion against the local model.
func (b *LocalBackend) complete(ctx context.Context, prompt string) (string, error) {
	llm, err := ollama.New(ollama.WithModel(b.model))
	if err != nil {
		return "", fmt.Errorf("failed to initialize local model: %w", err)
	}

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, "Respond in JSON format."),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	response, err := llm.GenerateContent(ctx, content, llms.WithJSONMode())
	if err != nil {
		return "", fmt.Errorf("local generation failed: %w", err)
	}
	if len(response.Choices) < 1 {
		return "", errors.New("empty response from local model")
	}

	return response.Choices[0].Content, nil
}

// GenerateSummary produces the transcript summary.
func (b *LocalBackend) GenerateSummary(ctx context.Context, text, language string) (string, error) {
	completion, err := b.complete(ctx, summaryPrompt(text, language))
	if err != nil {
		return "", err
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := decodeCompletion(completion, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// GenerateFlashcards produces study flashcards.
func (b *LocalBackend) GenerateFlashcards(ctx context.Context, text, language string) ([]models.Flashcard, error) {
	completion, err := b.complete(ctx, flashcardsPrompt(text, language))
	if err != nil {
		return nil, err
	}

	var out struct {
		Flashcards []models.Flashcard `json:"flashcards"`
	}
	if err := decodeCompletion(completion, &out); err != nil {
		return nil, err
	}
	return out.Flashcards, nil
}

// GenerateQuiz produces multiple-choice quiz items.
func (b *LocalBackend) GenerateQuiz(ctx context.Context, text, language string) ([]models.QuizItem, error) {
	completion, err := b.complete(ctx, quizPrompt(text, language))
	if err != nil {
		return nil, err
	}

	var out struct {
		QuizItems []models.QuizItem `json:"quiz_items"`
	}
	if err := decodeCompletion(completion, &out); err != nil {
		return nil, err
	}
	return out.QuizItems, nil
}

// GenerateAnalysis produces scoring and topic analysis.
func (b *LocalBackend) GenerateAnalysis(ctx context.Context, text, language string) (*models.AnalysisInsight, error) {
	completion, err := b.complete(ctx, analysisPrompt(text, language))
	if err != nil {
		return nil, err
	}

	var out models.AnalysisInsight
	if err := decodeCompletion(completion, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeCompletion parses a model completion as JSON, tolerating markdown
// code fences around the payload.
func decodeCompletion(completion string, out interface{}) error {
	trimmed := strings.TrimSpace(completion)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return fmt.Errorf("unparsable model output: %w", err)
	}
	return nil
}
