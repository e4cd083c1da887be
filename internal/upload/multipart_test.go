package upload

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/pkg/models"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	logger, err := logging.NewLogger(logging.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return NewManager(t.TempDir(), 4, logger)
}

func TestChunkedUploadRoundTrip(t *testing.T) {
	m := testManager(t)

	content := []byte("abcdefghij")
	session, err := m.Initiate("lecture.mp3", int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, 3, session.TotalParts)
	assert.Equal(t, SessionStatusActive, session.Status)

	for i := 0; i < session.TotalParts; i++ {
		end := (i + 1) * 4
		if end > len(content) {
			end = len(content)
		}
		part, err := m.PutPart(session.ID, i+1, bytes.NewReader(content[i*4:end]))
		require.NoError(t, err)
		assert.NotEmpty(t, part.Checksum)
	}

	finalPath, err := m.Complete(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "lecture.mp3", filepath.Base(finalPath))

	assembled, err := os.ReadFile(finalPath)
	require.NoError(t, err)
	assert.Equal(t, content, assembled)

	got, err := m.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, SessionStatusCompleted, got.Status)
}

func TestCompleteRejectsMissingPart(t *testing.T) {
	m := testManager(t)

	session, err := m.Initiate("talk.wav", 8)
	require.NoError(t, err)

	_, err = m.PutPart(session.ID, 1, bytes.NewReader([]byte("1234")))
	require.NoError(t, err)

	_, err = m.Complete(session.ID)
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
	assert.Contains(t, err.Error(), "missing part 2")
}

func TestCompleteRejectsSizeMismatch(t *testing.T) {
	m := testManager(t)

	session, err := m.Initiate("talk.wav", 8)
	require.NoError(t, err)

	_, err = m.PutPart(session.ID, 1, bytes.NewReader([]byte("1234")))
	require.NoError(t, err)
	_, err = m.PutPart(session.ID, 2, bytes.NewReader([]byte("56")))
	require.NoError(t, err)

	_, err = m.Complete(session.ID)
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
}

func TestPutPartRejectsBadPartNumber(t *testing.T) {
	m := testManager(t)

	session, err := m.Initiate("talk.wav", 8)
	require.NoError(t, err)

	_, err = m.PutPart(session.ID, 0, bytes.NewReader([]byte("x")))
	assert.True(t, models.IsValidationError(err))
	_, err = m.PutPart(session.ID, 3, bytes.NewReader([]byte("x")))
	assert.True(t, models.IsValidationError(err))
}

func TestAbortRemovesSession(t *testing.T) {
	m := testManager(t)

	session, err := m.Initiate("talk.wav", 8)
	require.NoError(t, err)
	dir := m.sessionDir(session.ID)
	require.DirExists(t, dir)

	require.NoError(t, m.Abort(session.ID))

	_, err = m.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoDirExists(t, dir)
}

func TestSweepExpired(t *testing.T) {
	m := testManager(t)

	session, err := m.Initiate("talk.wav", 8)
	require.NoError(t, err)

	session.mu.Lock()
	session.ExpiresAt = time.Now().Add(-time.Minute)
	session.mu.Unlock()

	removed := m.SweepExpired()
	assert.Equal(t, 1, removed)

	_, err = m.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUnknownSession(t *testing.T) {
	m := testManager(t)

	_, err := m.PutPart("nope", 1, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Complete("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Abort("nope"), ErrSessionNotFound)
}
