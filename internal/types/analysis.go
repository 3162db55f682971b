package types

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisResult is a stored ATS analysis over a resume, cover letter, and
// job description triple. Result holds the composite payload with "resume"
// and "coverletter" keys, plus optionally "optimized" for a secondary run
// against an optimized resume.
type AnalysisResult struct {
	ID               uuid.UUID      `json:"id"`
	OwnerID          uuid.UUID      `json:"owner_id"`
	ResumeID         uuid.UUID      `json:"resume_id"`
	CoverLetterID    uuid.UUID      `json:"coverletter_id"`
	JobDescriptionID uuid.UUID      `json:"jobdescription_id"`
	Result           map[string]any `json:"result,omitempty"`
	Status           string         `json:"status"`
	Language         string         `json:"language"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// nestedMap walks a chain of keys through nested JSON objects. Missing keys
// and non-object values yield an empty map, never an error.
func nestedMap(m map[string]any, keys ...string) map[string]any {
	current := m
	for _, key := range keys {
		if current == nil {
			return map[string]any{}
		}
		next, ok := current[key].(map[string]any)
		if !ok {
			return map[string]any{}
		}
		current = next
	}
	if current == nil {
		return map[string]any{}
	}
	return current
}

// ResumeSuggestions extracts the improvement suggestions nested inside the
// resume half of an analysis payload. Missing or malformed nesting yields
// an empty map.
func ResumeSuggestions(result map[string]any) map[string]any {
	src := nestedMap(result, "resume", "analysis", "improvement_suggestions")
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// ResumeAdditionalKeywords extracts the additional-keyword list from the
// match score nested inside the resume half of an analysis payload.
func ResumeAdditionalKeywords(result map[string]any) []any {
	matchScore := nestedMap(result, "resume", "analysis", "match_score")
	keywords, _ := matchScore["additional_keywords"].([]any)
	return keywords
}

// CoverLetterSuggestions extracts the tone analysis nested inside the
// cover letter half of an analysis payload. The whole analysis object acts
// as the suggestion set for cover letter optimization.
func CoverLetterSuggestions(result map[string]any) map[string]any {
	src := nestedMap(result, "coverletter", "cover_letter_analysis")
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// MergeAdditionalKeywords folds keywords into the suggestions map under
// "additional_keywords". An empty keyword set is a no-op. An existing list
// is extended; an existing non-list value (e.g. a scalar "n/a" placeholder)
// is overwritten; an absent key is set.
func MergeAdditionalKeywords(suggestions map[string]any, keywords []any) {
	if len(keywords) == 0 {
		return
	}
	existing, ok := suggestions["additional_keywords"]
	if !ok {
		suggestions["additional_keywords"] = keywords
		return
	}
	if list, isList := existing.([]any); isList {
		suggestions["additional_keywords"] = append(list, keywords...)
		return
	}
	suggestions["additional_keywords"] = keywords
}
