package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the processing pipeline and query interfaces.
var (
	// ErrNotFound is returned when an asset, transcript or study record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a compare-and-set status transition
	// finds the asset in a different state than expected. Callers should treat
	// this as "already handled elsewhere", not as a user-visible failure.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrProviderUnavailable is returned when a transcription provider fails its
	// liveness check before the real call is attempted.
	ErrProviderUnavailable = errors.New("transcription provider unavailable")

	// ErrToolNotInstalled is returned when the local transcription executable
	// cannot be found on the host.
	ErrToolNotInstalled = errors.New("transcription tool not installed")

	// ErrNoCaptionsAvailable is returned when no caption track exists for a
	// URL-sourced asset, even after retrying without a language constraint.
	ErrNoCaptionsAvailable = errors.New("no captions available")

	// ErrUnsupportedMedia is returned when no decoder is available for the input.
	ErrUnsupportedMedia = errors.New("unsupported media format")

	// ErrContentTooShort is returned when a transcript is below the minimum
	// length for study-content generation. No network calls are made.
	ErrContentTooShort = errors.New("transcript too short for study content generation")
)

// ValidationError reports a malformed submission, rejected before any job starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// PreprocessingError wraps a non-retryable failure from the media preprocessor.
type PreprocessingError struct {
	Stage string
	Cause error
}

func (e *PreprocessingError) Error() string {
	return fmt.Sprintf("preprocessing failed at %s: %v", e.Stage, e.Cause)
}

func (e *PreprocessingError) Unwrap() error {
	return e.Cause
}

// ProviderError reports a failure from a transcription provider call, carrying
// the provider name and the remote or subprocess diagnostic.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed: %s", e.Provider, e.Message)
}

// IsValidationError reports whether err is a submission validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
