package models

import (
	"time"
)

// MediaAsset represents one submitted media item tracked through its
// processing lifecycle.
type MediaAsset struct {
	ID              string    `json:"id" db:"id"`
	OwnerID         *string   `json:"owner_id,omitempty" db:"owner_id"`
	Filename        string    `json:"filename" db:"filename"`
	Kind            string    `json:"kind" db:"kind"`
	SourceURL       string    `json:"source_url,omitempty" db:"source_url"`
	StorageKey      string    `json:"storage_key,omitempty" db:"storage_key"`
	Size            int64     `json:"size" db:"size"`
	MimeType        string    `json:"mime_type" db:"mime_type"`
	LanguageHint    string    `json:"language_hint" db:"language_hint"`
	Status          string    `json:"status" db:"status"`
	ProcessingError string    `json:"processing_error,omitempty" db:"processing_error"`
	TranscriptID    *string   `json:"transcript_id,omitempty" db:"transcript_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// AssetStatus constants. Completed and failed are terminal: no transition
// out of either is ever performed.
const (
	AssetStatusPending    = "pending"
	AssetStatusProcessing = "processing"
	AssetStatusCompleted  = "completed"
	AssetStatusFailed     = "failed"
)

// AssetKind constants
const (
	AssetKindAudio     = "audio"
	AssetKindVideo     = "video"
	AssetKindRecording = "recording"
)

// LanguageAuto is the language hint meaning "detect automatically".
const LanguageAuto = "auto"

// IsTerminal reports whether the asset reached a final state.
func (a *MediaAsset) IsTerminal() bool {
	return a.Status == AssetStatusCompleted || a.Status == AssetStatusFailed
}

// IsURLSourced reports whether the asset was imported from an external URL
// rather than uploaded as a file.
func (a *MediaAsset) IsURLSourced() bool {
	return a.SourceURL != ""
}

// allowedMimeTypes is the set of audio/video MIME types accepted at submission.
var allowedMimeTypes = map[string]bool{
	"audio/mpeg":       true,
	"audio/mp4":        true,
	"audio/wav":        true,
	"audio/x-wav":      true,
	"audio/aac":        true,
	"audio/ogg":        true,
	"audio/flac":       true,
	"audio/webm":       true,
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/x-msvideo":  true,
	"video/x-matroska": true,
	"video/webm":       true,
}

// IsAllowedMimeType reports whether the MIME type is in the accepted audio/video set.
func IsAllowedMimeType(mimeType string) bool {
	return allowedMimeTypes[mimeType]
}

// ValidateSubmission checks a submission before an asset record is created.
func (a *MediaAsset) ValidateSubmission() error {
	if a.SourceURL == "" && a.Size <= 0 {
		return &ValidationError{Field: "size", Reason: "file size must be greater than zero"}
	}
	if a.SourceURL == "" && !IsAllowedMimeType(a.MimeType) {
		return &ValidationError{Field: "mime_type", Reason: "unsupported media type: " + a.MimeType}
	}
	switch a.Kind {
	case AssetKindAudio, AssetKindVideo, AssetKindRecording:
	default:
		return &ValidationError{Field: "kind", Reason: "unknown media kind: " + a.Kind}
	}
	return nil
}
