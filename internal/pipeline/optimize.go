package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/mhartung/resume-optimizer/internal/llm"
	"github.com/mhartung/resume-optimizer/internal/prompts"
	"github.com/mhartung/resume-optimizer/internal/schemas"
	"github.com/mhartung/resume-optimizer/internal/types"
)

// ResumeOptimizeResult is the outcome of one resume optimization request.
type ResumeOptimizeResult struct {
	AnalysisID uuid.UUID      `json:"analysis_id"`
	ResumeID   uuid.UUID      `json:"resume_id"`
	Status     string         `json:"optimize_status"`
	Optimized  map[string]any `json:"optimized_resume"`
}

// CoverLetterOptimizeResult is the outcome of one cover letter
// optimization request.
type CoverLetterOptimizeResult struct {
	AnalysisID    uuid.UUID      `json:"analysis_id"`
	CoverLetterID uuid.UUID      `json:"coverletter_id"`
	Status        string         `json:"optimize_status"`
	Optimized     map[string]any `json:"optimized_coverletter"`
}

// OptimizeResume applies the improvement suggestions from an analysis to
// its resume. Additional keywords found in the match score are folded
// into the suggestion set before prompting.
func (p *Pipeline) OptimizeResume(ctx context.Context, analysisID, ownerID uuid.UUID, language string) (*ResumeOptimizeResult, error) {
	analysis, err := p.loadOwnedAnalysis(ctx, analysisID, ownerID)
	if err != nil {
		return nil, err
	}
	if analysis.ResumeID == uuid.Nil {
		return nil, &PreconditionError{Message: "analysis does not reference a resume"}
	}

	suggestions := types.ResumeSuggestions(analysis.Result)
	types.MergeAdditionalKeywords(suggestions, types.ResumeAdditionalKeywords(analysis.Result))

	doc, err := p.loadOwned(ctx, analysis.ResumeID, ownerID)
	if err != nil {
		return nil, err
	}
	if len(doc.Structured) == 0 {
		return nil, &PreconditionError{Message: "resume must be structured before optimization; run extraction first"}
	}

	msgs, err := prompts.ResumeOptimize(doc.Structured, suggestions, language)
	if err != nil {
		return nil, err
	}

	status, payload, err := p.runOptimization(ctx, doc.ID, msgs, schemas.KindResume)
	if err != nil {
		return nil, err
	}

	return &ResumeOptimizeResult{
		AnalysisID: analysis.ID,
		ResumeID:   doc.ID,
		Status:     status,
		Optimized:  payload,
	}, nil
}

// OptimizeCoverLetter applies the tone analysis from an analysis to its
// cover letter. The job description is handed to the prompt so subject
// and salutation can be aligned with the posting.
func (p *Pipeline) OptimizeCoverLetter(ctx context.Context, analysisID, ownerID uuid.UUID, language string) (*CoverLetterOptimizeResult, error) {
	analysis, err := p.loadOwnedAnalysis(ctx, analysisID, ownerID)
	if err != nil {
		return nil, err
	}
	if analysis.CoverLetterID == uuid.Nil {
		return nil, &PreconditionError{Message: "analysis does not reference a cover letter"}
	}

	suggestions := types.CoverLetterSuggestions(analysis.Result)

	doc, err := p.loadOwned(ctx, analysis.CoverLetterID, ownerID)
	if err != nil {
		return nil, err
	}
	if len(doc.Structured) == 0 {
		return nil, &PreconditionError{Message: "cover letter must be structured before optimization; run extraction first"}
	}

	if analysis.JobDescriptionID == uuid.Nil {
		return nil, &PreconditionError{Message: "analysis does not reference a job description"}
	}
	job, err := p.loadOwned(ctx, analysis.JobDescriptionID, ownerID)
	if err != nil {
		return nil, err
	}
	if len(job.Structured) == 0 {
		return nil, &PreconditionError{Message: "job description must be structured before optimization; run extraction first"}
	}

	msgs, err := prompts.CoverLetterOptimize(doc.Structured, job.Structured, suggestions, language)
	if err != nil {
		return nil, err
	}

	status, payload, err := p.runOptimization(ctx, doc.ID, msgs, schemas.KindCoverLetter)
	if err != nil {
		return nil, err
	}

	return &CoverLetterOptimizeResult{
		AnalysisID:    analysis.ID,
		CoverLetterID: doc.ID,
		Status:        status,
		Optimized:     payload,
	}, nil
}

// runOptimization invokes the model and persists the optimized payload
// with the status derived from the three-way outcome.
func (p *Pipeline) runOptimization(ctx context.Context, docID uuid.UUID, msgs []llm.Message, kind string) (string, map[string]any, error) {
	outcome := llm.Invoke(ctx, p.llm, llm.Request{
		Messages:    msgs,
		Temperature: tempOptimization,
		JSONMode:    true,
	})
	outcome = validated(outcome, kind)

	status := types.OptimizationStatus(outcome.OK(), outcome.Failed())
	payload := outcome.Payload
	if !outcome.OK() {
		payload = outcome.Fallback()
	}

	if err := p.store.UpdateOptimized(ctx, docID, payload, status); err != nil {
		return "", nil, err
	}

	return status, payload, nil
}
