// Package pipeline implements the document processing stages: structured
// extraction, ATS analysis, and suggestion-driven optimization.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/mhartung/resume-optimizer/internal/llm"
	"github.com/mhartung/resume-optimizer/internal/schemas"
	"github.com/mhartung/resume-optimizer/internal/types"
)

// Per-stage sampling temperatures. Scoring wants determinism, tone
// evaluation wants latitude, optimization sits in between.
const (
	tempExtraction   float32 = 0.3
	tempATS          float32 = 0.0
	tempTone         float32 = 0.7
	tempOptimization float32 = 0.2
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*types.Document, error)
	UpdateStructured(ctx context.Context, id uuid.UUID, structured map[string]any, status, language, prevStatus, prevLanguage string) (bool, error)
	UpdateOptimized(ctx context.Context, id uuid.UUID, optimized map[string]any, status string) error

	GetAnalysis(ctx context.Context, id uuid.UUID) (*types.AnalysisResult, error)
	CreateAnalysis(ctx context.Context, a *types.AnalysisResult) (*types.AnalysisResult, error)
	UpdateAnalysisResult(ctx context.Context, id uuid.UUID, result map[string]any, status string) error
}

// TokenEstimator estimates the token cost of a text.
type TokenEstimator interface {
	Estimate(text string) int
}

// Pipeline runs the extraction, analysis and optimization stages.
type Pipeline struct {
	store     Store
	llm       llm.Client
	tokens    TokenEstimator
	maxTokens int
}

// New creates a Pipeline with the given collaborators.
func New(store Store, client llm.Client, estimator TokenEstimator, maxTokens int) *Pipeline {
	return &Pipeline{
		store:     store,
		llm:       client,
		tokens:    estimator,
		maxTokens: maxTokens,
	}
}

// schemaKind maps a document type to the schema its structured payload
// must satisfy.
func schemaKind(docType string) string {
	switch docType {
	case types.DocTypeCoverLetter:
		return schemas.KindCoverLetter
	case types.DocTypeJobDescription:
		return schemas.KindJobDescription
	default:
		return schemas.KindResume
	}
}

// validated demotes a parsed outcome whose payload does not satisfy the
// schema for kind. Demoted outcomes take the raw-fallback path.
func validated(outcome llm.Outcome, kind string) llm.Outcome {
	if !outcome.OK() {
		return outcome
	}
	if err := schemas.Validate(kind, outcome.Payload); err != nil {
		return outcome.Demote()
	}
	return outcome
}

// loadOwned fetches a document and verifies ownership.
func (p *Pipeline) loadOwned(ctx context.Context, id, ownerID uuid.UUID) (*types.Document, error) {
	doc, err := p.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &NotFoundError{Kind: "document", ID: id}
	}
	if doc.OwnerID != ownerID {
		return nil, &ForbiddenError{Kind: "document", ID: id}
	}
	return doc, nil
}
