package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// RemoteProvider calls a hosted transcription endpoint over HTTP. A cheap
// liveness check runs before the expensive transcription call so an
// unreachable service fails fast with ErrProviderUnavailable.
type RemoteProvider struct {
	baseURL       string
	healthClient  *http.Client
	requestClient *http.Client
}

// NewRemoteProvider creates a remote transcription provider. The health
// timeout is short; the request timeout is long because media can be large.
func NewRemoteProvider(baseURL string, healthTimeout, requestTimeout time.Duration) *RemoteProvider {
	return &RemoteProvider{
		baseURL:       strings.TrimRight(baseURL, "/"),
		healthClient:  &http.Client{Timeout: healthTimeout},
		requestClient: &http.Client{Timeout: requestTimeout},
	}
}

// Name returns the provider name
func (p *RemoteProvider) Name() string {
	return "remote"
}

// remoteResponse is the transcription service response body.
type remoteResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start      float64  `json:"start"`
		End        float64  `json:"end"`
		Text       string   `json:"text"`
		Confidence *float64 `json:"confidence,omitempty"`
	} `json:"segments"`
	Confidence *float64 `json:"confidence,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Transcribe uploads the audio file and parses the returned segments.
func (p *RemoteProvider) Transcribe(ctx context.Context, audioPath, languageHint string) (*Result, error) {
	if err := p.checkHealth(ctx); err != nil {
		return nil, err
	}

	body, contentType, err := p.buildMultipart(audioPath, languageHint)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transcribe", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.requestClient.Do(req)
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Message: err.Error()}
	}

	var parsed remoteResponse
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error != "" {
			message = parsed.Error
		}
		return nil, &models.ProviderError{
			Provider: p.Name(),
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, message),
		}
	}

	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Message: "unparsable response: " + err.Error()}
	}

	segments := make([]models.Segment, 0, len(parsed.Segments))
	for i, seg := range parsed.Segments {
		segments = append(segments, models.Segment{
			Index:      i,
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			Confidence: seg.Confidence,
		})
	}

	return &Result{
		Text:       parsed.Text,
		Language:   parsed.Language,
		Segments:   segments,
		Confidence: parsed.Confidence,
		Source:     p.Name(),
	}, nil
}

// checkHealth probes the service before committing to the expensive call.
func (p *RemoteProvider) checkHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := p.healthClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned status %d", models.ErrProviderUnavailable, resp.StatusCode)
	}

	return nil
}

// buildMultipart reads the audio file into a multipart form body.
func (p *RemoteProvider) buildMultipart(audioPath, languageHint string) (io.Reader, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}

	if languageHint != "" && languageHint != models.LanguageAuto {
		if err := writer.WriteField("language", languageHint); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}
