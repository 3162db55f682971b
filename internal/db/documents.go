package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mhartung/resume-optimizer/internal/types"
)

// CreateDocument inserts a new document in the unstructured state and
// returns the stored record.
func (db *DB) CreateDocument(ctx context.Context, ownerID uuid.UUID, docType, rawText, language string) (*types.Document, error) {
	var doc types.Document
	err := db.pool.QueryRow(ctx,
		`INSERT INTO documents (owner_id, doc_type, raw_text, status, language)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, owner_id, doc_type, raw_text, status, language, created_at, updated_at`,
		ownerID, docType, rawText, types.StatusUnstructured, language,
	).Scan(&doc.ID, &doc.OwnerID, &doc.DocType, &doc.RawText, &doc.Status, &doc.Language,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return &doc, nil
}

// GetDocument retrieves a document by ID. Returns (nil, nil) if not found.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	var doc types.Document
	var structured, optimized []byte
	var optimizedStatus *string

	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, doc_type, raw_text, status, language,
		        structured, optimized, optimized_status, created_at, updated_at, optimized_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.OwnerID, &doc.DocType, &doc.RawText, &doc.Status, &doc.Language,
		&structured, &optimized, &optimizedStatus, &doc.CreatedAt, &doc.UpdatedAt, &doc.OptimizedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if optimizedStatus != nil {
		doc.OptimizedStatus = *optimizedStatus
	}
	if err := unmarshalPayload(structured, &doc.Structured); err != nil {
		return nil, fmt.Errorf("failed to decode structured payload: %w", err)
	}
	if err := unmarshalPayload(optimized, &doc.Optimized); err != nil {
		return nil, fmt.Errorf("failed to decode optimized payload: %w", err)
	}
	return &doc, nil
}

// UpdateStructured stores an extraction result, guarded against
// concurrent writers: the update only applies if the document still has
// the status and language observed when extraction began. Returns false
// when another writer got there first.
func (db *DB) UpdateStructured(ctx context.Context, id uuid.UUID, structured map[string]any, status, language, prevStatus, prevLanguage string) (bool, error) {
	payload, err := json.Marshal(structured)
	if err != nil {
		return false, fmt.Errorf("failed to marshal structured payload: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE documents
		 SET structured = $1, status = $2, language = $3, updated_at = NOW()
		 WHERE id = $4 AND status = $5 AND language = $6`,
		payload, status, language, id, prevStatus, prevLanguage,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update structured payload: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateOptimized stores an optimization result on a document.
func (db *DB) UpdateOptimized(ctx context.Context, id uuid.UUID, optimized map[string]any, status string) error {
	payload, err := json.Marshal(optimized)
	if err != nil {
		return fmt.Errorf("failed to marshal optimized payload: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE documents
		 SET optimized = $1, optimized_status = $2, optimized_at = NOW(), updated_at = NOW()
		 WHERE id = $3`,
		payload, status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update optimized payload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// DocumentCounts holds per-type document totals for one owner.
type DocumentCounts struct {
	Resumes         int `json:"resumes"`
	CoverLetters    int `json:"cover_letters"`
	JobDescriptions int `json:"job_descriptions"`
	Optimized       int `json:"optimized"`
	Analyses        int `json:"analyses"`
}

// CountByOwner returns document and analysis totals for an owner.
func (db *DB) CountByOwner(ctx context.Context, ownerID uuid.UUID) (*DocumentCounts, error) {
	var counts DocumentCounts

	rows, err := db.pool.Query(ctx,
		`SELECT doc_type, COUNT(*) FROM documents WHERE owner_id = $1 GROUP BY doc_type`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var docType string
		var count int
		if err := rows.Scan(&docType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan document count: %w", err)
		}
		switch docType {
		case types.DocTypeResume:
			counts.Resumes = count
		case types.DocTypeCoverLetter:
			counts.CoverLetters = count
		case types.DocTypeJobDescription:
			counts.JobDescriptions = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE owner_id = $1 AND optimized IS NOT NULL`,
		ownerID,
	).Scan(&counts.Optimized)
	if err != nil {
		return nil, fmt.Errorf("failed to count optimized documents: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analyses WHERE owner_id = $1`,
		ownerID,
	).Scan(&counts.Analyses)
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	return &counts, nil
}

// unmarshalPayload decodes a nullable JSONB column into a map. A NULL
// column leaves the destination nil.
func unmarshalPayload(raw []byte, dst *map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
