package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create temporary config file
	content := `
server:
  port: 9090
  host: "127.0.0.1"

database:
  host: "testdb"
  port: 5432
  user: "testuser"
  password: "testpass"
  dbname: "testdb"

transcription:
  remoteURL: "http://transcribe.local:9000"
  maxChunkSeconds: 300

generation:
  minTranscriptChars: 50
`

	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "testdb", cfg.Database.Host)
	assert.Equal(t, "http://transcribe.local:9000", cfg.Transcription.RemoteURL)
	assert.Equal(t, float64(300), cfg.Transcription.MaxChunkSeconds)
	assert.Equal(t, 50, cfg.Generation.MinTranscriptChars)
}

func TestLoadDefaults(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte("server:\n  port: 8081\n"))
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Transcription.RemoteURL)
	assert.Equal(t, "whisper", cfg.Transcription.WhisperPath)
	assert.Equal(t, float64(600), cfg.Transcription.MaxChunkSeconds)
	assert.Equal(t, float64(2), cfg.Transcription.MinSegmentSeconds)
	assert.Equal(t, float64(30), cfg.Transcription.MaxSegmentSeconds)
	assert.Equal(t, 100, cfg.Generation.MinTranscriptChars)
	assert.Equal(t, 3*time.Second, cfg.Polling.Interval)
	assert.Equal(t, 100, cfg.Polling.MaxAttempts)
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	assert.Error(t, err)
}
