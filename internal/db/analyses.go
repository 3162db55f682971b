package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mhartung/resume-optimizer/internal/types"
)

// CreateAnalysis inserts a new analysis record and returns the stored row.
func (db *DB) CreateAnalysis(ctx context.Context, a *types.AnalysisResult) (*types.AnalysisResult, error) {
	payload, err := json.Marshal(a.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	stored := *a
	err = db.pool.QueryRow(ctx,
		`INSERT INTO analyses (owner_id, resume_id, coverletter_id, jobdescription_id, result, status, language)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		a.OwnerID, a.ResumeID, a.CoverLetterID, a.JobDescriptionID, payload, a.Status, a.Language,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}
	return &stored, nil
}

// GetAnalysis retrieves an analysis by ID. Returns (nil, nil) if not found.
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*types.AnalysisResult, error) {
	var a types.AnalysisResult
	var result []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, resume_id, coverletter_id, jobdescription_id,
		        result, status, language, created_at, updated_at
		 FROM analyses WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.OwnerID, &a.ResumeID, &a.CoverLetterID, &a.JobDescriptionID,
		&result, &a.Status, &a.Language, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if err := unmarshalPayload(result, &a.Result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	return &a, nil
}

// UpdateAnalysisResult replaces the result payload and status of an
// existing analysis.
func (db *DB) UpdateAnalysisResult(ctx context.Context, id uuid.UUID, result map[string]any, status string) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE analyses SET result = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		payload, status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("analysis not found: %s", id)
	}
	return nil
}
