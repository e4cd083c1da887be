package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// DefaultCaptionBaseURL is the public timed-text endpoint for YouTube videos.
const DefaultCaptionBaseURL = "https://www.youtube.com/api/timedtext"

// CaptionProvider fetches pre-existing timed captions for URL-sourced media.
// No audio is downloaded or decoded on this path. The preferred language is
// tried first; one retry without a language constraint runs before giving up
// with ErrNoCaptionsAvailable.
type CaptionProvider struct {
	baseURL string
	client  *http.Client
}

// NewCaptionProvider creates a caption-fetch provider.
func NewCaptionProvider(baseURL string, timeout time.Duration) *CaptionProvider {
	if baseURL == "" {
		baseURL = DefaultCaptionBaseURL
	}
	return &CaptionProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name
func (p *CaptionProvider) Name() string {
	return "captions"
}

// captionTrack is the json3 timed-text response shape. Timings are in
// milliseconds and must be normalized to seconds.
type captionTrack struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// Transcribe fetches the caption track for an external video identifier.
// The videoID takes the place of an audio path: this provider never touches
// the preprocessor.
func (p *CaptionProvider) Transcribe(ctx context.Context, videoID, languageHint string) (*Result, error) {
	language := ""
	if languageHint != "" && languageHint != models.LanguageAuto {
		language = languageHint
	}

	result, err := p.fetch(ctx, videoID, language)
	if err == nil {
		result.Source = p.Name()
		if language != "" {
			result.Language = language
		}
		return result, nil
	}

	if language == "" {
		return nil, err
	}

	// Retry once without the language constraint; mark the result so callers
	// can tell the requested language was not honored.
	result, retryErr := p.fetch(ctx, videoID, "")
	if retryErr != nil {
		return nil, fmt.Errorf("%w (requested language %q)", models.ErrNoCaptionsAvailable, language)
	}

	result.Source = "auto-captions"
	return result, nil
}

// fetch retrieves and parses one caption track.
func (p *CaptionProvider) fetch(ctx context.Context, videoID, language string) (*Result, error) {
	query := url.Values{}
	query.Set("v", videoID)
	query.Set("fmt", "json3")
	if language != "" {
		query.Set("lang", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create caption request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caption fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", models.ErrNoCaptionsAvailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read caption body: %w", err)
	}

	var track captionTrack
	if err := json.Unmarshal(body, &track); err != nil {
		return nil, fmt.Errorf("unparsable caption track: %w", err)
	}
	if len(track.Events) == 0 {
		return nil, fmt.Errorf("%w: empty track", models.ErrNoCaptionsAvailable)
	}

	segments := make([]models.Segment, 0, len(track.Events))
	for _, event := range track.Events {
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}

		start := float64(event.StartMs) / 1000
		end := start + float64(event.DurationMs)/1000
		segments = append(segments, models.Segment{
			Index: len(segments),
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(text.String()),
		})
	}

	return &Result{
		Text:     models.JoinFullText(segments),
		Segments: segments,
	}, nil
}

// youtubeIDPattern matches the video id in watch, short and embed URLs.
var youtubeIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/|embed/|shorts/)([A-Za-z0-9_-]{11})`)

// ExtractVideoID pulls the external video identifier out of a YouTube URL.
func ExtractVideoID(rawURL string) (string, error) {
	matches := youtubeIDPattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return "", &models.ValidationError{Field: "source_url", Reason: "unrecognized video URL: " + rawURL}
	}
	return matches[1], nil
}
