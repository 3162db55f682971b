// Package types provides type definitions for documents, analyses, and
// authentication used throughout the resume-optimizer system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Document types accepted by the pipeline.
const (
	DocTypeResume         = "resume"
	DocTypeCoverLetter    = "cover_letter"
	DocTypeJobDescription = "job_description"
)

// Structuring statuses. A document starts unstructured and moves to exactly
// one of the structured_* states after an extraction attempt.
const (
	StatusUnstructured         = "unstructured"
	StatusStructuredComplete   = "structured_complete"
	StatusStructuredIncomplete = "structured_incomplete"
	StatusStructuredFailed     = "structured_failed"
)

// Optimization statuses.
const (
	StatusOptimizedComplete   = "optimized_complete"
	StatusOptimizedIncomplete = "optimized_incomplete"
	StatusOptimizedFailed     = "optimized_failed"
)

// Analysis statuses.
const (
	StatusAnalysisComplete   = "analysis_complete"
	StatusAnalysisIncomplete = "analysis_incomplete"
	StatusAnalysisFailed     = "analysis_failed"
)

// Document is a stored resume, cover letter, or job description together
// with the pipeline state derived from it.
type Document struct {
	ID              uuid.UUID      `json:"id"`
	OwnerID         uuid.UUID      `json:"owner_id"`
	DocType         string         `json:"doc_type"`
	RawText         string         `json:"raw_text,omitempty"`
	Status          string         `json:"status"`
	Language        string         `json:"language"`
	Structured      map[string]any `json:"structured,omitempty"`
	Optimized       map[string]any `json:"optimized,omitempty"`
	OptimizedStatus string         `json:"optimized_status,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	OptimizedAt     *time.Time     `json:"optimized_at,omitempty"`
}

// ValidDocType reports whether t names a supported document type.
func ValidDocType(t string) bool {
	switch t {
	case DocTypeResume, DocTypeCoverLetter, DocTypeJobDescription:
		return true
	}
	return false
}

// HasStructured reports whether the document carries a usable structured
// payload for the given language: structuring completed and the stored
// language matches.
func (d *Document) HasStructured(language string) bool {
	return d.Status == StatusStructuredComplete && d.Language == language && d.Structured != nil
}

// StructuringStatus maps an extraction result class to a document status.
func StructuringStatus(parsed, failed bool) string {
	switch {
	case failed:
		return StatusStructuredFailed
	case !parsed:
		return StatusStructuredIncomplete
	default:
		return StatusStructuredComplete
	}
}

// OptimizationStatus maps an optimization result class to a document status.
func OptimizationStatus(parsed, failed bool) string {
	switch {
	case failed:
		return StatusOptimizedFailed
	case !parsed:
		return StatusOptimizedIncomplete
	default:
		return StatusOptimizedComplete
	}
}

// AnalysisStatus maps an analysis result class to an analysis status.
func AnalysisStatus(parsed, failed bool) string {
	switch {
	case failed:
		return StatusAnalysisFailed
	case !parsed:
		return StatusAnalysisIncomplete
	default:
		return StatusAnalysisComplete
	}
}
