package prompts

import (
	"fmt"

	"github.com/mhartung/resume-optimizer/internal/llm"
	"github.com/mhartung/resume-optimizer/internal/schemas"
)

// Prompt file names within the embedded filesystem.
const (
	fileExtraction = "extraction.json"
	fileAnalysis   = "analysis.json"
	fileOptimize   = "optimize.json"
)

// docTypeBase maps a document type to its prompt key prefix and the
// structure the model must return.
var docTypeBase = map[string]struct {
	base string
	kind string
}{
	"resume":          {base: "resume", kind: schemas.KindResume},
	"cover_letter":    {base: "coverletter", kind: schemas.KindCoverLetter},
	"job_description": {base: "jobdescription", kind: schemas.KindJobDescription},
}

// Extraction builds the system and user messages that turn raw document
// text into structured JSON matching the document type's schema.
func Extraction(docType, language, rawText string) ([]llm.Message, error) {
	entry, ok := docTypeBase[docType]
	if !ok {
		return nil, fmt.Errorf("no extraction prompt for document type %q", docType)
	}
	return build(fileExtraction, entry.base, language, map[string]string{
		"Structure": schemas.MustStructure(entry.kind),
		"Input":     rawText,
	})
}

// ATSAnalysis builds the messages for the combined ATS/match-score
// analysis of a structured resume, cover letter and job description.
func ATSAnalysis(jobDesc, coverLetter, resume map[string]any, language string) ([]llm.Message, error) {
	data, err := jsonFields(map[string]any{
		"JobDescription": jobDesc,
		"CoverLetter":    coverLetter,
		"Resume":         resume,
	})
	if err != nil {
		return nil, err
	}
	data["Structure"] = schemas.MustStructure(schemas.KindAnalysis)
	return build(fileAnalysis, "ats", language, data)
}

// CoverLetterAnalysis builds the messages for the tone and clarity
// evaluation of a structured cover letter against a job description.
func CoverLetterAnalysis(coverLetter, jobDesc map[string]any, language string) ([]llm.Message, error) {
	data, err := jsonFields(map[string]any{
		"CoverLetter":    coverLetter,
		"JobDescription": jobDesc,
	})
	if err != nil {
		return nil, err
	}
	data["Structure"] = schemas.MustStructure(schemas.KindCoverLetterAnalysis)
	return build(fileAnalysis, "coverletter-analysis", language, data)
}

// ATSAnalysisOptimized builds the messages for re-scoring an already
// optimized resume and cover letter. The optimized documents arrive as
// simplified plain text carrying suggestion markers, not as JSON.
func ATSAnalysisOptimized(jobDesc map[string]any, coverLetterText, resumeText, language string) ([]llm.Message, error) {
	data, err := jsonFields(map[string]any{"JobDescription": jobDesc})
	if err != nil {
		return nil, err
	}
	data["CoverLetter"] = coverLetterText
	data["Resume"] = resumeText
	data["Structure"] = schemas.MustStructure(schemas.KindAnalysis)
	return build(fileAnalysis, "ats-optimized", language, data)
}

// CoverLetterAnalysisOptimized builds the messages for re-evaluating an
// already optimized cover letter given as plain text.
func CoverLetterAnalysisOptimized(jobDesc map[string]any, coverLetterText, language string) ([]llm.Message, error) {
	data, err := jsonFields(map[string]any{"JobDescription": jobDesc})
	if err != nil {
		return nil, err
	}
	data["CoverLetter"] = coverLetterText
	data["Structure"] = schemas.MustStructure(schemas.KindCoverLetterAnalysis)
	return build(fileAnalysis, "coverletter-analysis-optimized", language, data)
}

// ResumeOptimize builds the messages asking the model to apply the
// given improvement suggestions to a structured resume.
func ResumeOptimize(resume, suggestions map[string]any, language string) ([]llm.Message, error) {
	data, err := jsonFields(map[string]any{
		"Resume":      resume,
		"Suggestions": suggestions,
	})
	if err != nil {
		return nil, err
	}
	data["Structure"] = schemas.MustStructure(schemas.KindResume)
	return build(fileOptimize, "resume-optimize", language, data)
}

// CoverLetterOptimize builds the messages asking the model to apply the
// given improvement suggestions to a structured cover letter.
func CoverLetterOptimize(coverLetter, jobDesc, suggestions map[string]any, language string) ([]llm.Message, error) {
	data, err := jsonFields(map[string]any{
		"CoverLetter":    coverLetter,
		"JobDescription": jobDesc,
		"Suggestions":    suggestions,
	})
	if err != nil {
		return nil, err
	}
	data["Structure"] = schemas.MustStructure(schemas.KindCoverLetter)
	return build(fileOptimize, "coverletter-optimize", language, data)
}

func build(filename, base, language string, data map[string]string) ([]llm.Message, error) {
	system, err := GetLang(filename, base+"-system", language)
	if err != nil {
		return nil, err
	}
	user, err := GetLang(filename, base+"-user", language)
	if err != nil {
		return nil, err
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: Format(system, data)},
		{Role: llm.RoleUser, Content: Format(user, data)},
	}, nil
}

// jsonFields serializes each payload to indented JSON for prompt
// interpolation. HTML characters are left unescaped so names like
// "R&D" survive intact.
func jsonFields(payloads map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(payloads))
	for key, payload := range payloads {
		b, err := llm.MarshalIndent(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s: %w", key, err)
		}
		out[key] = string(b)
	}
	return out, nil
}
