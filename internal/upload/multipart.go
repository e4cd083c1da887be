package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// Session is one chunked upload in progress. Long recordings arrive in
// parts so a dropped connection only loses the part in flight, not the
// whole file.
type Session struct {
	ID          string              `json:"id"`
	Filename    string              `json:"filename"`
	TotalSize   int64               `json:"total_size"`
	PartSize    int64               `json:"part_size"`
	TotalParts  int                 `json:"total_parts"`
	Parts       map[int]*PartRecord `json:"parts"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	ExpiresAt   time.Time           `json:"expires_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`

	mu sync.RWMutex
}

// PartRecord describes one received part.
type PartRecord struct {
	PartNumber int       `json:"part_number"`
	Size       int64     `json:"size"`
	Checksum   string    `json:"checksum"`
	ReceivedAt time.Time `json:"received_at"`
}

// Session status values.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusAborted   = "aborted"
)

const (
	DefaultPartSize   = 5 * 1024 * 1024
	MaxPartSize       = 64 * 1024 * 1024
	SessionExpiration = 24 * time.Hour
)

// ErrSessionNotFound is returned for unknown or already removed sessions.
var ErrSessionNotFound = models.ErrNotFound

// Manager tracks chunked upload sessions and assembles their parts on disk.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	tempDir  string
	partSize int64
	logger   *logging.Logger
}

// NewManager creates an upload session manager writing parts under tempDir.
func NewManager(tempDir string, partSize int64, logger *logging.Logger) *Manager {
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	if partSize > MaxPartSize {
		partSize = MaxPartSize
	}
	return &Manager{
		sessions: make(map[string]*Session),
		tempDir:  tempDir,
		partSize: partSize,
		logger:   logger,
	}
}

// Initiate starts a new chunked upload session.
func (m *Manager) Initiate(filename string, totalSize int64) (*Session, error) {
	if totalSize <= 0 {
		return nil, &models.ValidationError{Field: "total_size", Reason: "total size must be greater than zero"}
	}

	session := &Session{
		ID:         uuid.New().String(),
		Filename:   filepath.Base(filename),
		TotalSize:  totalSize,
		PartSize:   m.partSize,
		TotalParts: int((totalSize + m.partSize - 1) / m.partSize),
		Parts:      make(map[int]*PartRecord),
		Status:     SessionStatusActive,
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  time.Now().UTC().Add(SessionExpiration),
	}

	if err := os.MkdirAll(m.sessionDir(session.ID), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.WithField("upload_id", session.ID).
		Infof("Initiated chunked upload for %s (%d bytes, %d parts)", session.Filename, totalSize, session.TotalParts)

	return session, nil
}

// PutPart stores one part of a session. Re-uploading a part number replaces
// the previous bytes.
func (m *Manager) PutPart(sessionID string, partNumber int, data io.Reader) (*PartRecord, error) {
	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Status != SessionStatusActive {
		return nil, fmt.Errorf("upload session %s is %s", sessionID, session.Status)
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("upload session %s has expired", sessionID)
	}
	if partNumber < 1 || partNumber > session.TotalParts {
		return nil, &models.ValidationError{
			Field:  "part_number",
			Reason: fmt.Sprintf("part number must be between 1 and %d", session.TotalParts),
		}
	}

	file, err := os.Create(m.partPath(sessionID, partNumber))
	if err != nil {
		return nil, fmt.Errorf("failed to create part file: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(file, hash), data)
	if err != nil {
		return nil, fmt.Errorf("failed to write part: %w", err)
	}

	record := &PartRecord{
		PartNumber: partNumber,
		Size:       size,
		Checksum:   hex.EncodeToString(hash.Sum(nil)),
		ReceivedAt: time.Now().UTC(),
	}
	session.Parts[partNumber] = record

	return record, nil
}

// Complete verifies all parts arrived and concatenates them into one file.
// The returned path stays valid until the session is removed.
func (m *Manager) Complete(sessionID string) (string, error) {
	session, err := m.get(sessionID)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Status != SessionStatusActive {
		return "", fmt.Errorf("upload session %s is %s", sessionID, session.Status)
	}

	var received int64
	for i := 1; i <= session.TotalParts; i++ {
		part, ok := session.Parts[i]
		if !ok {
			return "", &models.ValidationError{Field: "parts", Reason: fmt.Sprintf("missing part %d", i)}
		}
		received += part.Size
	}
	if received != session.TotalSize {
		return "", &models.ValidationError{
			Field:  "total_size",
			Reason: fmt.Sprintf("received %d bytes, expected %d", received, session.TotalSize),
		}
	}

	finalPath := filepath.Join(m.sessionDir(sessionID), session.Filename)
	finalFile, err := os.Create(finalPath)
	if err != nil {
		return "", fmt.Errorf("failed to create assembled file: %w", err)
	}
	defer finalFile.Close()

	for i := 1; i <= session.TotalParts; i++ {
		if err := appendPart(finalFile, m.partPath(sessionID, i)); err != nil {
			return "", err
		}
		os.Remove(m.partPath(sessionID, i))
	}

	session.Status = SessionStatusCompleted
	now := time.Now().UTC()
	session.CompletedAt = &now

	m.logger.WithField("upload_id", sessionID).Infof("Assembled chunked upload %s", session.Filename)

	return finalPath, nil
}

// Abort cancels a session and removes everything written for it.
func (m *Manager) Abort(sessionID string) error {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.mu.Lock()
	session.Status = SessionStatusAborted
	session.mu.Unlock()

	if err := os.RemoveAll(m.sessionDir(sessionID)); err != nil {
		m.logger.WithError(err).Warnf("failed to remove upload directory for %s", sessionID)
	}
	return nil
}

// Remove drops a session and its on-disk directory after its assembled file
// has been consumed.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	os.RemoveAll(m.sessionDir(sessionID))
}

// Get returns the current state of a session.
func (m *Manager) Get(sessionID string) (*Session, error) {
	return m.get(sessionID)
}

// SweepExpired aborts every active session past its expiry and returns how
// many were removed.
func (m *Manager) SweepExpired() int {
	m.mu.Lock()
	var expired []string
	now := time.Now()
	for id, session := range m.sessions {
		if session.Status == SessionStatusActive && now.After(session.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if err := m.Abort(id); err == nil {
			m.logger.WithField("upload_id", id).Info("Removed expired upload session")
		}
	}
	return len(expired)
}

func (m *Manager) get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *Manager) sessionDir(sessionID string) string {
	return filepath.Join(m.tempDir, "uploads", sessionID)
}

func (m *Manager) partPath(sessionID string, partNumber int) string {
	return filepath.Join(m.sessionDir(sessionID), fmt.Sprintf("part_%d", partNumber))
}

func appendPart(dst io.Writer, partPath string) error {
	partFile, err := os.Open(partPath)
	if err != nil {
		return fmt.Errorf("failed to open part file: %w", err)
	}
	defer partFile.Close()

	if _, err := io.Copy(dst, partFile); err != nil {
		return fmt.Errorf("failed to append part: %w", err)
	}
	return nil
}
