package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhartung/resume-optimizer/internal/llm"
)

func TestExtraction_BuildsSystemAndUser(t *testing.T) {
	msgs, err := Extraction("resume", "en", "John Doe\nSoftware Engineer")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, `"summary"`)
	assert.NotContains(t, msgs[0].Content, "{{.Structure}}")

	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "John Doe")
}

func TestExtraction_UnknownDocType(t *testing.T) {
	_, err := Extraction("invoice", "en", "text")
	assert.Error(t, err)
}

func TestExtraction_LanguageFallback(t *testing.T) {
	english, err := Extraction("cover_letter", "en", "Dear hiring team")
	require.NoError(t, err)

	unknown, err := Extraction("cover_letter", "sv", "Dear hiring team")
	require.NoError(t, err)
	assert.Equal(t, english[0].Content, unknown[0].Content)
}

func TestATSAnalysis_EmbedsAllInputs(t *testing.T) {
	msgs, err := ATSAnalysis(
		map[string]any{"job_title": "Platform Engineer"},
		map[string]any{"cover_letter": map[string]any{"subject": "Application"}},
		map[string]any{"summary": map[string]any{"experience": "8 years"}},
		"de",
	)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Contains(t, msgs[1].Content, "Platform Engineer")
	assert.Contains(t, msgs[1].Content, "Application")
	assert.Contains(t, msgs[1].Content, "8 years")
	// ATS replies must match the analysis structure, not the resume one.
	assert.Contains(t, msgs[0].Content, `"ats_score"`)
}

func TestATSAnalysisOptimized_UsesAnalysisStructure(t *testing.T) {
	msgs, err := ATSAnalysisOptimized(
		map[string]any{"job_title": "Data Engineer"},
		"== COVER LETTER ==\n(*SUGGESTION*) stronger opening",
		"== SUMMARY ==\n(*SUGGESTION*) 10 years of data platforms",
		"en",
	)
	require.NoError(t, err)

	assert.Contains(t, msgs[0].Content, `"match_score"`)
	assert.NotContains(t, msgs[0].Content, `"career"`)
	assert.Contains(t, msgs[1].Content, "(*SUGGESTION*) 10 years of data platforms")
}

func TestCoverLetterAnalysis_UsesCoverLetterAnalysisStructure(t *testing.T) {
	msgs, err := CoverLetterAnalysis(
		map[string]any{"cover_letter": map[string]any{"subject": "Bewerbung"}},
		map[string]any{"job_title": "Backend Entwickler"},
		"de",
	)
	require.NoError(t, err)

	assert.Contains(t, msgs[0].Content, `"cover_letter_analysis"`)
	assert.Contains(t, msgs[1].Content, "Bewerbung")
}

func TestResumeOptimize_EmbedsSuggestions(t *testing.T) {
	msgs, err := ResumeOptimize(
		map[string]any{"summary": map[string]any{"experience": "5 years"}},
		map[string]any{"resume_suggestions": []any{"quantify achievements"}},
		"pl",
	)
	require.NoError(t, err)

	assert.Contains(t, msgs[1].Content, "quantify achievements")
	// The reply must come back in the resume structure.
	assert.Contains(t, msgs[0].Content, `"career"`)
}

func TestCoverLetterOptimize_EmbedsJobDescription(t *testing.T) {
	msgs, err := CoverLetterOptimize(
		map[string]any{"cover_letter": map[string]any{"subject": "Application"}},
		map[string]any{"job_title": "SRE", "company": "Acme"},
		map[string]any{"coverletter_suggestions": []any{"name the contact person"}},
		"en",
	)
	require.NoError(t, err)

	assert.Contains(t, msgs[1].Content, "Acme")
	assert.Contains(t, msgs[1].Content, "name the contact person")
}

func TestJSONFields_NoHTMLEscaping(t *testing.T) {
	data, err := jsonFields(map[string]any{
		"Resume": map[string]any{"summary": "R&D lead <10 years>"},
	})
	require.NoError(t, err)
	assert.Contains(t, data["Resume"], "R&D lead <10 years>")
}
