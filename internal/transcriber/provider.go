package transcriber

import (
	"context"

	"github.com/anshulkhatri/studyscribe/internal/config"
	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// Provider turns an audio file (or an external caption track) into
// timestamped segments. Implementations must return segments sorted by start
// time; cross-provider cleanup happens once in Normalize, not per provider.
type Provider interface {
	// Transcribe converts the audio at audioPath to text. languageHint is an
	// ISO code or models.LanguageAuto.
	Transcribe(ctx context.Context, audioPath, languageHint string) (*Result, error)

	// Name returns the provider name for logging and metrics.
	Name() string
}

// Result is the raw output of one provider call.
type Result struct {
	Text       string
	Language   string
	Segments   []models.Segment
	Confidence *float64

	// Source describes where the text came from, e.g. "remote", "whisper",
	// "captions" or "auto-captions" when a caption language fallback occurred.
	Source string
}

// Resolve picks the provider for file-sourced media from configuration:
// a configured remote service URL wins, otherwise the local whisper CLI.
func Resolve(cfg config.TranscriptionConfig) Provider {
	if cfg.RemoteURL != "" {
		return NewRemoteProvider(cfg.RemoteURL, cfg.HealthTimeout, cfg.RequestTimeout)
	}
	return NewWhisperProvider(cfg.WhisperPath, cfg.WhisperModel)
}
