package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// WhisperProvider invokes a local whisper-style transcription CLI as a
// subprocess and parses its JSON output. Binary presence is probed once at
// construction and cached for the process lifetime.
type WhisperProvider struct {
	binaryPath string
	model      string
	probeErr   error
}

// NewWhisperProvider creates a local CLI transcription provider. The binary
// is version-probed immediately so a missing install surfaces at startup,
// not on the first job.
func NewWhisperProvider(binaryPath, model string) *WhisperProvider {
	p := &WhisperProvider{
		binaryPath: binaryPath,
		model:      model,
	}
	if err := exec.Command(binaryPath, "--version").Run(); err != nil {
		p.probeErr = fmt.Errorf("%w: %s: %v", models.ErrToolNotInstalled, binaryPath, err)
	}
	return p
}

// Name returns the provider name
func (p *WhisperProvider) Name() string {
	return "whisper"
}

// whisperOutput is the CLI's JSON output shape.
type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe runs the CLI over the audio file and parses its segments.
func (p *WhisperProvider) Transcribe(ctx context.Context, audioPath, languageHint string) (*Result, error) {
	if p.probeErr != nil {
		return nil, p.probeErr
	}

	args := []string{
		audioPath,
		"--model", p.model,
		"--output_format", "json",
		"--output_dir", "-",
	}
	if languageHint != "" && languageHint != models.LanguageAuto {
		args = append(args, "--language", languageHint)
	}

	cmd := exec.CommandContext(ctx, p.binaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &models.ProviderError{
			Provider: p.Name(),
			Message:  fmt.Sprintf("exit error: %v, stderr: %s", err, stderr.String()),
		}
	}

	result, err := parseWhisperOutput(stdout.Bytes())
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Message: err.Error()}
	}

	result.Source = p.Name()
	return result, nil
}

// parseWhisperOutput decodes the CLI JSON into a Result.
func parseWhisperOutput(data []byte) (*Result, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unparsable whisper output: %w", err)
	}

	segments := make([]models.Segment, 0, len(out.Segments))
	for i, seg := range out.Segments {
		segments = append(segments, models.Segment{
			Index: i,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	return &Result{
		Text:     out.Text,
		Language: out.Language,
		Segments: segments,
	}, nil
}
