package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTrack = `{
	"events": [
		{"tStartMs": 0, "dDurationMs": 2500, "segs": [{"utf8": "hello "}, {"utf8": "there"}]},
		{"tStartMs": 2500, "dDurationMs": 3000, "segs": [{"utf8": "general remarks"}]}
	]
}`

func TestCaptionFetchPreferredLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		assert.Equal(t, "json3", r.URL.Query().Get("fmt"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		w.Write([]byte(sampleTrack))
	}))
	defer server.Close()

	provider := NewCaptionProvider(server.URL, time.Second)

	result, err := provider.Transcribe(context.Background(), "dQw4w9WgXcQ", "en")
	require.NoError(t, err)
	assert.Equal(t, "captions", result.Source)
	assert.Equal(t, "en", result.Language)
	require.Len(t, result.Segments, 2)

	// Millisecond timings come back as seconds.
	assert.Equal(t, 0.0, result.Segments[0].Start)
	assert.Equal(t, 2.5, result.Segments[0].End)
	assert.Equal(t, 2.5, result.Segments[1].Start)
	assert.Equal(t, 5.5, result.Segments[1].End)
	assert.Equal(t, "hello there", result.Segments[0].Text)
	assert.Equal(t, "hello there general remarks", result.Text)
}

func TestCaptionFetchLanguageFallback(t *testing.T) {
	// Only the default track exists; a French request must retry without the
	// language constraint and mark the result accordingly.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lang") == "fr" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(sampleTrack))
	}))
	defer server.Close()

	provider := NewCaptionProvider(server.URL, time.Second)

	result, err := provider.Transcribe(context.Background(), "dQw4w9WgXcQ", "fr")
	require.NoError(t, err)
	assert.Equal(t, "auto-captions", result.Source)
	require.Len(t, result.Segments, 2)
}

func TestCaptionFetchNoCaptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewCaptionProvider(server.URL, time.Second)

	_, err := provider.Transcribe(context.Background(), "dQw4w9WgXcQ", "fr")
	assert.ErrorIs(t, err, models.ErrNoCaptionsAvailable)
}

func TestCaptionFetchEmptyTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events": []}`))
	}))
	defer server.Close()

	provider := NewCaptionProvider(server.URL, time.Second)

	_, err := provider.Transcribe(context.Background(), "dQw4w9WgXcQ", "")
	assert.ErrorIs(t, err, models.ErrNoCaptionsAvailable)
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts URL", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"not a video URL", "https://example.com/media.mp4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
