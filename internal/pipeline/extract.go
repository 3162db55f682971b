package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/mhartung/resume-optimizer/internal/llm"
	"github.com/mhartung/resume-optimizer/internal/prompts"
	"github.com/mhartung/resume-optimizer/internal/types"
)

// ExtractionResult is the outcome of one extraction request.
type ExtractionResult struct {
	Status       string         `json:"status"`
	DocumentType string         `json:"document_type"`
	Result       map[string]any `json:"result"`
}

// ExtractStructured turns a document's raw text into structured JSON.
// A document already structured for the requested language is returned
// from the cache without an LLM call. LLM failures degrade to the
// incomplete or failed status instead of surfacing as errors.
func (p *Pipeline) ExtractStructured(ctx context.Context, docID, ownerID uuid.UUID, language string) (*ExtractionResult, error) {
	doc, err := p.loadOwned(ctx, docID, ownerID)
	if err != nil {
		return nil, err
	}

	if doc.HasStructured(language) {
		return &ExtractionResult{
			Status:       doc.Status,
			DocumentType: doc.DocType,
			Result:       doc.Structured,
		}, nil
	}

	if count := p.tokens.Estimate(doc.RawText); count > p.maxTokens {
		return nil, &PayloadTooLargeError{Tokens: count, Limit: p.maxTokens}
	}

	msgs, err := prompts.Extraction(doc.DocType, language, doc.RawText)
	if err != nil {
		return nil, err
	}

	outcome := llm.Invoke(ctx, p.llm, llm.Request{
		Messages:    msgs,
		Temperature: tempExtraction,
		JSONMode:    true,
	})
	outcome = validated(outcome, schemaKind(doc.DocType))

	status := types.StructuringStatus(outcome.OK(), outcome.Failed())
	payload := outcome.Payload
	if !outcome.OK() {
		payload = outcome.Fallback()
	}

	applied, err := p.store.UpdateStructured(ctx, doc.ID, payload, status, language, doc.Status, doc.Language)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent extraction won the write. Return what it stored.
		winner, err := p.store.GetDocument(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, &NotFoundError{Kind: "document", ID: doc.ID}
		}
		return &ExtractionResult{
			Status:       winner.Status,
			DocumentType: winner.DocType,
			Result:       winner.Structured,
		}, nil
	}

	return &ExtractionResult{
		Status:       status,
		DocumentType: doc.DocType,
		Result:       payload,
	}, nil
}
