package database

import (
	"context"
	"fmt"
	"time"

	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AssetRepository provides media asset persistence. Status transitions go
// through a compare-and-set so two workers can never both claim the same
// pending asset and a stale worker can never overwrite a terminal state.
type AssetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// CreateAsset validates and inserts a new media asset in pending status.
func (r *AssetRepository) CreateAsset(ctx context.Context, asset *models.MediaAsset) error {
	if err := asset.ValidateSubmission(); err != nil {
		return err
	}

	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	asset.Status = models.AssetStatusPending
	if asset.LanguageHint == "" {
		asset.LanguageHint = models.LanguageAuto
	}

	query := `
		INSERT INTO media_assets (id, owner_id, filename, kind, source_url, storage_key,
		                          size, mime_type, language_hint, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		asset.ID, asset.OwnerID, asset.Filename, asset.Kind, asset.SourceURL,
		asset.StorageKey, asset.Size, asset.MimeType, asset.LanguageHint, asset.Status,
	).Scan(&asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetAsset retrieves a media asset by ID
func (r *AssetRepository) GetAsset(ctx context.Context, id string) (*models.MediaAsset, error) {
	var asset models.MediaAsset

	query := `
		SELECT id, owner_id, filename, kind, source_url, storage_key, size, mime_type,
		       language_hint, status, processing_error, transcript_id, created_at, updated_at
		FROM media_assets
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&asset.ID, &asset.OwnerID, &asset.Filename, &asset.Kind, &asset.SourceURL,
		&asset.StorageKey, &asset.Size, &asset.MimeType, &asset.LanguageHint,
		&asset.Status, &asset.ProcessingError, &asset.TranscriptID,
		&asset.CreatedAt, &asset.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("asset %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return &asset, nil
}

// TransitionFields carries the terminal fields written alongside a status change.
type TransitionFields struct {
	TranscriptID    *string
	ProcessingError string
}

// TransitionStatus atomically moves an asset from one status to another.
// The update only applies when the current status still equals from; when it
// does not, ErrInvalidTransition is returned and nothing is written.
func (r *AssetRepository) TransitionStatus(ctx context.Context, id, from, to string, fields TransitionFields) error {
	query := `
		UPDATE media_assets
		SET status = $3,
		    transcript_id = COALESCE($4, transcript_id),
		    processing_error = $5,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, from, to, fields.TranscriptID, fields.ProcessingError)
	if err != nil {
		return fmt.Errorf("failed to transition asset %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("asset %s is not %s: %w", id, from, models.ErrInvalidTransition)
	}

	return nil
}

// ListAssetsByOwner retrieves all assets for an owner, newest first.
func (r *AssetRepository) ListAssetsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.MediaAsset, error) {
	query := `
		SELECT id, owner_id, filename, kind, source_url, storage_key, size, mime_type,
		       language_hint, status, processing_error, transcript_id, created_at, updated_at
		FROM media_assets
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.MediaAsset
	for rows.Next() {
		var asset models.MediaAsset
		err := rows.Scan(
			&asset.ID, &asset.OwnerID, &asset.Filename, &asset.Kind, &asset.SourceURL,
			&asset.StorageKey, &asset.Size, &asset.MimeType, &asset.LanguageHint,
			&asset.Status, &asset.ProcessingError, &asset.TranscriptID,
			&asset.CreatedAt, &asset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, &asset)
	}

	return assets, nil
}

// ListStalePending retrieves pending assets that have not been touched for
// at least minAge, oldest first. These are submissions whose enqueue was
// lost, typically to a crash between the insert and the publish.
func (r *AssetRepository) ListStalePending(ctx context.Context, minAge time.Duration, limit int) ([]*models.MediaAsset, error) {
	query := `
		SELECT id, owner_id, filename, kind, source_url, storage_key, size, mime_type,
		       language_hint, status, processing_error, transcript_id, created_at, updated_at
		FROM media_assets
		WHERE status = $1 AND updated_at < NOW() - $2::interval
		ORDER BY updated_at ASC
		LIMIT $3
	`

	interval := fmt.Sprintf("%d seconds", int(minAge.Seconds()))
	rows, err := r.db.Pool.Query(ctx, query, models.AssetStatusPending, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.MediaAsset
	for rows.Next() {
		var asset models.MediaAsset
		err := rows.Scan(
			&asset.ID, &asset.OwnerID, &asset.Filename, &asset.Kind, &asset.SourceURL,
			&asset.StorageKey, &asset.Size, &asset.MimeType, &asset.LanguageHint,
			&asset.Status, &asset.ProcessingError, &asset.TranscriptID,
			&asset.CreatedAt, &asset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, &asset)
	}

	return assets, nil
}

// DeleteAsset removes an asset and, in the same transaction, its transcript
// and any derived study records. Deleting the backing object in storage is
// the caller's responsibility and is best-effort.
func (r *AssetRepository) DeleteAsset(ctx context.Context, id string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM study_materials WHERE asset_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete study materials: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM analysis_insights WHERE asset_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete insights: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transcripts WHERE asset_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM media_assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", id, models.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}

	return nil
}
