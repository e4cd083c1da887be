package transcriber

import (
	"context"
	"testing"

	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhisperOutput(t *testing.T) {
	data := []byte(`{
		"text": "welcome to the lecture",
		"language": "en",
		"segments": [
			{"id": 0, "start": 0.0, "end": 3.2, "text": "welcome"},
			{"id": 1, "start": 3.2, "end": 6.0, "text": "to the lecture"}
		]
	}`)

	result, err := parseWhisperOutput(data)
	require.NoError(t, err)
	assert.Equal(t, "welcome to the lecture", result.Text)
	assert.Equal(t, "en", result.Language)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, 0, result.Segments[0].Index)
	assert.Equal(t, 3.2, result.Segments[1].Start)
	assert.Equal(t, "to the lecture", result.Segments[1].Text)
}

func TestParseWhisperOutputInvalid(t *testing.T) {
	_, err := parseWhisperOutput([]byte("not json"))
	assert.Error(t, err)
}

func TestWhisperMissingBinary(t *testing.T) {
	provider := NewWhisperProvider("/nonexistent/whisper-bin", "base")

	// The version probe ran at construction, so the missing binary is known
	// before any transcription is attempted.
	assert.ErrorIs(t, provider.probeErr, models.ErrToolNotInstalled)

	_, err := provider.Transcribe(context.Background(), "audio.wav", "en")
	assert.ErrorIs(t, err, models.ErrToolNotInstalled)

	// The probe result is cached; a second call fails the same way without
	// re-running the binary.
	_, err = provider.Transcribe(context.Background(), "audio.wav", "en")
	assert.ErrorIs(t, err, models.ErrToolNotInstalled)
}
