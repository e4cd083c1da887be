package database

import (
	"context"
	"fmt"

	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StudyRepository persists derived study materials and analysis insights.
// Every generation inserts a new row; older generations stay queryable.
type StudyRepository struct {
	db *DB
}

// NewStudyRepository creates a new study repository
func NewStudyRepository(db *DB) *StudyRepository {
	return &StudyRepository{db: db}
}

// CreateStudyMaterial inserts a new study material record
func (r *StudyRepository) CreateStudyMaterial(ctx context.Context, material *models.StudyMaterial) error {
	if material.ID == "" {
		material.ID = uuid.New().String()
	}

	query := `
		INSERT INTO study_materials (id, transcript_id, asset_id, language, flashcards,
		                             quiz_items, summary, fallback_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		material.ID, material.TranscriptID, material.AssetID, material.Language,
		material.Flashcards, material.QuizItems, material.Summary, material.FallbackUsed,
	).Scan(&material.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create study material: %w", err)
	}

	return nil
}

// GetStudyMaterial retrieves a study material record by ID
func (r *StudyRepository) GetStudyMaterial(ctx context.Context, id string) (*models.StudyMaterial, error) {
	var material models.StudyMaterial

	query := `
		SELECT id, transcript_id, asset_id, language, flashcards, quiz_items,
		       summary, fallback_used, created_at
		FROM study_materials
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&material.ID, &material.TranscriptID, &material.AssetID, &material.Language,
		&material.Flashcards, &material.QuizItems, &material.Summary,
		&material.FallbackUsed, &material.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("study material %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get study material: %w", err)
	}

	return &material, nil
}

// ListStudyMaterialsByTranscript retrieves all generations for a transcript, newest first.
func (r *StudyRepository) ListStudyMaterialsByTranscript(ctx context.Context, transcriptID string) ([]*models.StudyMaterial, error) {
	query := `
		SELECT id, transcript_id, asset_id, language, flashcards, quiz_items,
		       summary, fallback_used, created_at
		FROM study_materials
		WHERE transcript_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list study materials: %w", err)
	}
	defer rows.Close()

	var materials []*models.StudyMaterial
	for rows.Next() {
		var material models.StudyMaterial
		err := rows.Scan(
			&material.ID, &material.TranscriptID, &material.AssetID, &material.Language,
			&material.Flashcards, &material.QuizItems, &material.Summary,
			&material.FallbackUsed, &material.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study material: %w", err)
		}
		materials = append(materials, &material)
	}

	return materials, nil
}

// CreateInsight inserts a new analysis insight record
func (r *StudyRepository) CreateInsight(ctx context.Context, insight *models.AnalysisInsight) error {
	if insight.ID == "" {
		insight.ID = uuid.New().String()
	}

	query := `
		INSERT INTO analysis_insights (id, transcript_id, asset_id, overall_score,
		                               agenda_coverage, explanation, action_items, topics)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		insight.ID, insight.TranscriptID, insight.AssetID, insight.OverallScore,
		insight.AgendaCoverage, insight.Explanation, insight.ActionItems, insight.Topics,
	).Scan(&insight.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create insight: %w", err)
	}

	return nil
}

// GetLatestInsight retrieves the newest insight for a transcript.
func (r *StudyRepository) GetLatestInsight(ctx context.Context, transcriptID string) (*models.AnalysisInsight, error) {
	var insight models.AnalysisInsight

	query := `
		SELECT id, transcript_id, asset_id, overall_score, agenda_coverage,
		       explanation, action_items, topics, created_at
		FROM analysis_insights
		WHERE transcript_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.Pool.QueryRow(ctx, query, transcriptID).Scan(
		&insight.ID, &insight.TranscriptID, &insight.AssetID, &insight.OverallScore,
		&insight.AgendaCoverage, &insight.Explanation, &insight.ActionItems,
		&insight.Topics, &insight.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("insight for transcript %s: %w", transcriptID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}

	return &insight, nil
}
