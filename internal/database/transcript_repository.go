package database

import (
	"context"
	"fmt"
	"time"

	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TranscriptRepository provides transcript persistence. Edit and highlight
// operations load the row, apply the pure model mutation and write back with
// an optimistic version check.
type TranscriptRepository struct {
	db *DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// CreateTranscript inserts a new transcript at version 1.
func (r *TranscriptRepository) CreateTranscript(ctx context.Context, transcript *models.Transcript) error {
	if transcript.ID == "" {
		transcript.ID = uuid.New().String()
	}
	if transcript.Version == 0 {
		transcript.Version = 1
	}
	if transcript.RenderedAt == nil {
		transcript.RenderedAt = make(models.RenderedAt)
	}

	query := `
		INSERT INTO transcripts (id, asset_id, owner_id, full_text, language, confidence,
		                         segments, version, edit_history, rendered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		transcript.ID, transcript.AssetID, transcript.OwnerID, transcript.FullText,
		transcript.Language, transcript.Confidence, transcript.Segments,
		transcript.Version, transcript.EditHistory, transcript.RenderedAt,
	).Scan(&transcript.CreatedAt, &transcript.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}

	return nil
}

// GetTranscript retrieves a transcript by ID
func (r *TranscriptRepository) GetTranscript(ctx context.Context, id string) (*models.Transcript, error) {
	var transcript models.Transcript

	query := `
		SELECT id, asset_id, owner_id, full_text, language, confidence, segments,
		       version, edit_history, rendered_at, created_at, updated_at
		FROM transcripts
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&transcript.ID, &transcript.AssetID, &transcript.OwnerID, &transcript.FullText,
		&transcript.Language, &transcript.Confidence, &transcript.Segments,
		&transcript.Version, &transcript.EditHistory, &transcript.RenderedAt,
		&transcript.CreatedAt, &transcript.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("transcript %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	return &transcript, nil
}

// updateTranscript writes back a mutated transcript guarded by the version
// the row had when it was loaded.
func (r *TranscriptRepository) updateTranscript(ctx context.Context, transcript *models.Transcript, loadedVersion int) error {
	query := `
		UPDATE transcripts
		SET full_text = $2, segments = $3, version = $4, edit_history = $5,
		    rendered_at = $6, updated_at = NOW()
		WHERE id = $1 AND version = $7
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		transcript.ID, transcript.FullText, transcript.Segments, transcript.Version,
		transcript.EditHistory, transcript.RenderedAt, loadedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update transcript: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transcript %s was modified concurrently: %w", transcript.ID, models.ErrInvalidTransition)
	}

	return nil
}

// EditSegment replaces one segment's text, preserving the first-edit original
// and incrementing the transcript version.
func (r *TranscriptRepository) EditSegment(ctx context.Context, transcriptID string, segmentIndex int, newText string) (*models.Transcript, error) {
	transcript, err := r.GetTranscript(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	loadedVersion := transcript.Version
	if err := transcript.EditSegment(segmentIndex, newText); err != nil {
		return nil, err
	}

	if err := r.updateTranscript(ctx, transcript, loadedVersion); err != nil {
		return nil, err
	}

	return transcript, nil
}

// SetHighlight sets or clears the highlight state of one segment.
func (r *TranscriptRepository) SetHighlight(ctx context.Context, transcriptID string, segmentIndex int, highlighted bool, color, note string) (*models.Transcript, error) {
	transcript, err := r.GetTranscript(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	loadedVersion := transcript.Version
	if err := transcript.SetHighlight(segmentIndex, highlighted, color, note); err != nil {
		return nil, err
	}

	if err := r.updateTranscript(ctx, transcript, loadedVersion); err != nil {
		return nil, err
	}

	return transcript, nil
}

// SearchSegments returns segments matching the query, case-insensitively.
func (r *TranscriptRepository) SearchSegments(ctx context.Context, transcriptID, query string) ([]models.Segment, error) {
	transcript, err := r.GetTranscript(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	return transcript.Search(query), nil
}

// TouchRenderedAt records the last export time for one render format.
func (r *TranscriptRepository) TouchRenderedAt(ctx context.Context, transcriptID, format string) error {
	transcript, err := r.GetTranscript(ctx, transcriptID)
	if err != nil {
		return err
	}

	loadedVersion := transcript.Version
	if transcript.RenderedAt == nil {
		transcript.RenderedAt = make(models.RenderedAt)
	}
	transcript.RenderedAt[format] = time.Now().UTC()

	return r.updateTranscript(ctx, transcript, loadedVersion)
}

// GetTranscriptByAssetID retrieves the transcript linked to an asset.
func (r *TranscriptRepository) GetTranscriptByAssetID(ctx context.Context, assetID string) (*models.Transcript, error) {
	var transcript models.Transcript

	query := `
		SELECT id, asset_id, owner_id, full_text, language, confidence, segments,
		       version, edit_history, rendered_at, created_at, updated_at
		FROM transcripts
		WHERE asset_id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, assetID).Scan(
		&transcript.ID, &transcript.AssetID, &transcript.OwnerID, &transcript.FullText,
		&transcript.Language, &transcript.Confidence, &transcript.Segments,
		&transcript.Version, &transcript.EditHistory, &transcript.RenderedAt,
		&transcript.CreatedAt, &transcript.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("transcript for asset %s: %w", assetID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	return &transcript, nil
}
