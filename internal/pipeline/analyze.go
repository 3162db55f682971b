package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/mhartung/resume-optimizer/internal/llm"
	"github.com/mhartung/resume-optimizer/internal/prompts"
	"github.com/mhartung/resume-optimizer/internal/schemas"
	"github.com/mhartung/resume-optimizer/internal/scoring"
	"github.com/mhartung/resume-optimizer/internal/types"
)

// AnalyzeInput identifies the document triple to analyze and how to
// source the resume and cover letter payloads.
type AnalyzeInput struct {
	ResumeID         uuid.UUID
	CoverLetterID    uuid.UUID
	JobDescriptionID uuid.UUID
	Language         string

	// UseOptimizedResume and UseOptimizedCoverLetter select the optimized
	// payloads (with suggestion markers) instead of the structured ones.
	UseOptimizedResume      bool
	UseOptimizedCoverLetter bool

	// UpdateAnalysisID, when set, updates that analysis in place instead
	// of inserting a new one.
	UpdateAnalysisID *uuid.UUID
}

// AnalyzeResult is the outcome of one analysis request.
type AnalyzeResult struct {
	AnalysisID uuid.UUID      `json:"analysis_id"`
	Status     string         `json:"status"`
	Result     map[string]any `json:"result"`
}

// AnalyzeATS runs the two-call analysis over a resume, cover letter and
// job description: an ATS/match-score evaluation and a cover letter tone
// evaluation. Each call degrades independently to a raw or error wrapper;
// the request itself only fails on missing records, ownership mismatch,
// or missing structured payloads.
func (p *Pipeline) AnalyzeATS(ctx context.Context, ownerID uuid.UUID, in AnalyzeInput) (*AnalyzeResult, error) {
	resume, err := p.loadOwned(ctx, in.ResumeID, ownerID)
	if err != nil {
		return nil, err
	}
	letter, err := p.loadOwned(ctx, in.CoverLetterID, ownerID)
	if err != nil {
		return nil, err
	}
	job, err := p.loadOwned(ctx, in.JobDescriptionID, ownerID)
	if err != nil {
		return nil, err
	}

	resumePayload := selectPayload(resume, in.UseOptimizedResume)
	letterPayload := selectPayload(letter, in.UseOptimizedCoverLetter)
	jobPayload := job.Structured

	if len(resumePayload) == 0 || len(letterPayload) == 0 || len(jobPayload) == 0 {
		return nil, &PreconditionError{
			Message: "all three documents must be structured before analysis; run extraction first",
		}
	}

	optimized := in.UseOptimizedResume || in.UseOptimizedCoverLetter

	var atsMsgs, toneMsgs []llm.Message
	if optimized {
		resumeText := prompts.SimplifyOptimized(resumePayload)
		letterText := prompts.SimplifyOptimized(letterPayload)
		atsMsgs, err = prompts.ATSAnalysisOptimized(jobPayload, letterText, resumeText, in.Language)
		if err != nil {
			return nil, err
		}
		toneMsgs, err = prompts.CoverLetterAnalysisOptimized(jobPayload, letterText, in.Language)
		if err != nil {
			return nil, err
		}
	} else {
		atsMsgs, err = prompts.ATSAnalysis(jobPayload, letterPayload, resumePayload, in.Language)
		if err != nil {
			return nil, err
		}
		toneMsgs, err = prompts.CoverLetterAnalysis(letterPayload, jobPayload, in.Language)
		if err != nil {
			return nil, err
		}
	}

	atsOutcome := llm.Invoke(ctx, p.llm, llm.Request{
		Messages:    atsMsgs,
		Temperature: tempATS,
		JSONMode:    true,
	})
	atsOutcome = validated(atsOutcome, schemas.KindAnalysis)
	if atsOutcome.OK() {
		rescoreMatch(atsOutcome.Payload)
	}

	toneOutcome := llm.Invoke(ctx, p.llm, llm.Request{
		Messages:    toneMsgs,
		Temperature: tempTone,
		JSONMode:    true,
	})
	toneOutcome = validated(toneOutcome, schemas.KindCoverLetterAnalysis)

	atsPart := atsOutcome.Payload
	if !atsOutcome.OK() {
		atsPart = atsOutcome.Fallback()
	}
	tonePart := toneOutcome.Payload
	if !toneOutcome.OK() {
		tonePart = toneOutcome.Fallback()
	}

	parsed := atsOutcome.OK() && toneOutcome.OK()
	failed := atsOutcome.Failed() || toneOutcome.Failed()
	status := types.AnalysisStatus(parsed, failed)

	resumeKey := "resume"
	if optimized {
		// A secondary run against optimized documents keeps the original
		// analysis intact and lands under its own key.
		resumeKey = "optimized"
	}

	if in.UpdateAnalysisID != nil {
		existing, err := p.loadOwnedAnalysis(ctx, *in.UpdateAnalysisID, ownerID)
		if err != nil {
			return nil, err
		}
		result := existing.Result
		if result == nil {
			result = map[string]any{}
		}
		result[resumeKey] = atsPart
		result["coverletter"] = tonePart
		if err := p.store.UpdateAnalysisResult(ctx, existing.ID, result, status); err != nil {
			return nil, err
		}
		return &AnalyzeResult{AnalysisID: existing.ID, Status: status, Result: result}, nil
	}

	result := map[string]any{
		resumeKey:     atsPart,
		"coverletter": tonePart,
	}
	stored, err := p.store.CreateAnalysis(ctx, &types.AnalysisResult{
		OwnerID:          ownerID,
		ResumeID:         in.ResumeID,
		CoverLetterID:    in.CoverLetterID,
		JobDescriptionID: in.JobDescriptionID,
		Result:           result,
		Status:           status,
		Language:         in.Language,
	})
	if err != nil {
		return nil, err
	}
	return &AnalyzeResult{AnalysisID: stored.ID, Status: status, Result: result}, nil
}

// loadOwnedAnalysis fetches an analysis and verifies ownership.
func (p *Pipeline) loadOwnedAnalysis(ctx context.Context, id, ownerID uuid.UUID) (*types.AnalysisResult, error) {
	a, err := p.store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Kind: "analysis", ID: id}
	}
	if a.OwnerID != ownerID {
		return nil, &ForbiddenError{Kind: "analysis", ID: id}
	}
	return a, nil
}

// selectPayload picks the optimized or structured payload of a document.
func selectPayload(doc *types.Document, useOptimized bool) map[string]any {
	if useOptimized {
		return doc.Optimized
	}
	return doc.Structured
}

// rescoreMatch replaces the model-reported match score total with the
// deterministic formula over the skill lists the model produced.
func rescoreMatch(payload map[string]any) {
	analysis, ok := payload["analysis"].(map[string]any)
	if !ok {
		return
	}
	matchScore, ok := analysis["match_score"].(map[string]any)
	if !ok {
		return
	}
	matchScore["total_score"] = scoring.MatchScore(
		stringList(matchScore["matching_skills"]),
		stringList(matchScore["missing_skills"]),
		stringList(matchScore["additional_keywords"]),
	)
}

// stringList coerces a JSON array value into a string slice, dropping
// non-string elements.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, isString := item.(string); isString {
			out = append(out, s)
		}
	}
	return out
}
