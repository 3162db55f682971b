package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidDocType(t *testing.T) {
	assert.True(t, ValidDocType(DocTypeResume))
	assert.True(t, ValidDocType(DocTypeCoverLetter))
	assert.True(t, ValidDocType(DocTypeJobDescription))
	assert.False(t, ValidDocType("invoice"))
	assert.False(t, ValidDocType(""))
}

func TestHasStructured(t *testing.T) {
	doc := &Document{
		Status:     StatusStructuredComplete,
		Language:   "en",
		Structured: map[string]any{"personal_info": map[string]any{}},
	}

	assert.True(t, doc.HasStructured("en"))
	assert.False(t, doc.HasStructured("de"), "language mismatch must miss the cache")

	doc.Status = StatusStructuredIncomplete
	assert.False(t, doc.HasStructured("en"), "incomplete structuring must miss the cache")

	doc.Status = StatusStructuredComplete
	doc.Structured = nil
	assert.False(t, doc.HasStructured("en"))
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, StatusStructuredComplete, StructuringStatus(true, false))
	assert.Equal(t, StatusStructuredIncomplete, StructuringStatus(false, false))
	assert.Equal(t, StatusStructuredFailed, StructuringStatus(false, true))

	assert.Equal(t, StatusOptimizedComplete, OptimizationStatus(true, false))
	assert.Equal(t, StatusOptimizedIncomplete, OptimizationStatus(false, false))
	assert.Equal(t, StatusOptimizedFailed, OptimizationStatus(false, true))

	assert.Equal(t, StatusAnalysisComplete, AnalysisStatus(true, false))
	assert.Equal(t, StatusAnalysisIncomplete, AnalysisStatus(false, false))
	assert.Equal(t, StatusAnalysisFailed, AnalysisStatus(false, true))
}
