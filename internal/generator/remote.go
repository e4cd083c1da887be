package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// RemoteBackend calls a hosted generation service. It is always tried first;
// any error falls through to the local backend.
type RemoteBackend struct {
	baseURL string
	client  *http.Client
}

// NewRemoteBackend creates a remote generation backend.
func NewRemoteBackend(baseURL string, timeout time.Duration) *RemoteBackend {
	return &RemoteBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// generateRequest is the request body for every artifact endpoint.
type generateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// call posts the transcript to one artifact endpoint and decodes into out.
func (b *RemoteBackend) call(ctx context.Context, artifact, text, language string, out interface{}) error {
	payload, err := json.Marshal(generateRequest{Text: text, Language: language})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/generate/%s", b.baseURL, artifact)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("generation service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unparsable generation response: %w", err)
	}

	return nil
}

// GenerateSummary produces the transcript summary.
func (b *RemoteBackend) GenerateSummary(ctx context.Context, text, language string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := b.call(ctx, ArtifactSummary, text, language, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// GenerateFlashcards produces study flashcards.
func (b *RemoteBackend) GenerateFlashcards(ctx context.Context, text, language string) ([]models.Flashcard, error) {
	var out struct {
		Flashcards []models.Flashcard `json:"flashcards"`
	}
	if err := b.call(ctx, ArtifactFlashcards, text, language, &out); err != nil {
		return nil, err
	}
	return out.Flashcards, nil
}

// GenerateQuiz produces multiple-choice quiz items.
func (b *RemoteBackend) GenerateQuiz(ctx context.Context, text, language string) ([]models.QuizItem, error) {
	var out struct {
		QuizItems []models.QuizItem `json:"quiz_items"`
	}
	if err := b.call(ctx, ArtifactQuiz, text, language, &out); err != nil {
		return nil, err
	}
	return out.QuizItems, nil
}

// GenerateAnalysis produces scoring and topic analysis.
func (b *RemoteBackend) GenerateAnalysis(ctx context.Context, text, language string) (*models.AnalysisInsight, error) {
	var out models.AnalysisInsight
	if err := b.call(ctx, ArtifactAnalysis, text, language, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
