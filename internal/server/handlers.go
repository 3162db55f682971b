package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mhartung/resume-optimizer/internal/extract"
	"github.com/mhartung/resume-optimizer/internal/pipeline"
	"github.com/mhartung/resume-optimizer/internal/server/middleware"
	"github.com/mhartung/resume-optimizer/internal/types"
)

// maxUploadBytes caps document uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// defaultLanguage is assumed when a request omits the language field.
const defaultLanguage = "en"

var requestValidator = validator.New()

// CreateDocumentRequest is the body of POST /documents.
type CreateDocumentRequest struct {
	DocType  string `json:"doc_type" validate:"required,oneof=resume cover_letter job_description"`
	Text     string `json:"text" validate:"required,min=1"`
	Language string `json:"language" validate:"omitempty,bcp47_language_tag"`
}

// ExtractStructuredRequest is the body of POST /extract-structured.
type ExtractStructuredRequest struct {
	DocumentID string `json:"document_id" validate:"required,uuid"`
	Language   string `json:"language" validate:"omitempty,bcp47_language_tag"`
}

// AnalyzeRequest is the body of POST /analysis/ats and
// POST /analysis/ats-optimized.
type AnalyzeRequest struct {
	ResumeID         string `json:"resume_id" validate:"required,uuid"`
	CoverLetterID    string `json:"coverletter_id" validate:"required,uuid"`
	JobDescriptionID string `json:"jobdescription_id" validate:"required,uuid"`
	Language         string `json:"language" validate:"omitempty,bcp47_language_tag"`

	// Optimized-variant selectors; ignored by /analysis/ats.
	UseOptimizedResume      bool `json:"use_optimized_resume"`
	UseOptimizedCoverLetter bool `json:"use_optimized_coverletter"`

	// When set, the analysis is updated in place instead of inserted.
	UpdateExistingAnalysisID string `json:"update_existing_analysis_id" validate:"omitempty,uuid"`
}

// OptimizeRequest is the body of POST /optimize/resume and
// POST /optimize/coverletter.
type OptimizeRequest struct {
	AnalysisID string `json:"analysis_id" validate:"required,uuid"`
	Language   string `json:"language" validate:"omitempty,bcp47_language_tag"`
}

// decodeAndValidate decodes a JSON body into dst and runs struct
// validation, writing the error response itself on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := requestValidator.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

// requireUserID resolves the authenticated user, writing a 401 itself
// when the context carries none.
func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pipelineError maps a pipeline failure to its HTTP status. LLM-side
// degradation never reaches this path; only record-level failures do.
func (s *Server) pipelineError(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), err.Error())
}

// handleCreateDocument stores a raw document supplied directly as text.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateDocumentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	doc, err := s.documents.CreateDocument(r.Context(), userID, req.DocType, req.Text, req.Language)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create document")
		return
	}

	s.jsonResponse(w, http.StatusCreated, doc)
}

// handleExtractText accepts a PDF, DOC or DOCX upload, extracts its raw
// text and stores it as a new document.
func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	docType := r.FormValue("doc_type")
	if !types.ValidDocType(docType) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid doc_type")
		return
	}
	language := r.FormValue("language")
	if language == "" {
		language = defaultLanguage
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Missing file upload")
		return
	}
	defer file.Close()

	// Read one byte past the cap so an oversized upload is rejected
	// instead of silently truncated.
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	if len(data) > maxUploadBytes {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "Upload exceeds the 10 MiB limit")
		return
	}

	kind := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	text, err := extract.Text(data, kind)
	if err != nil {
		var unsupported *extract.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			s.errorResponse(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		s.errorResponse(w, http.StatusUnprocessableEntity, "Failed to extract text from upload")
		return
	}

	doc, err := s.documents.CreateDocument(r.Context(), userID, docType, text, language)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create document")
		return
	}

	s.jsonResponse(w, http.StatusCreated, doc)
}

// handleGetDocument returns a stored document owned by the caller.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	doc, err := s.documents.GetDocument(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load document")
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, "Document not found")
		return
	}
	if doc.OwnerID != userID {
		s.errorResponse(w, http.StatusForbidden, "Document belongs to another user")
		return
	}

	s.jsonResponse(w, http.StatusOK, doc)
}

// handleGetAnalysis returns one analysis owned by the caller.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid analysis ID")
		return
	}

	analysis, err := s.documents.GetAnalysis(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load analysis")
		return
	}
	if analysis == nil {
		s.errorResponse(w, http.StatusNotFound, "Analysis not found")
		return
	}
	if analysis.OwnerID != userID {
		s.errorResponse(w, http.StatusForbidden, "Analysis belongs to another user")
		return
	}

	s.jsonResponse(w, http.StatusOK, analysis)
}

// handleExtractStructured runs LLM extraction for one document.
func (s *Server) handleExtractStructured(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req ExtractStructuredRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	docID := uuid.MustParse(req.DocumentID)
	result, err := s.runner.ExtractStructured(r.Context(), docID, userID, req.Language)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// analyzeInput converts a validated request body into a pipeline input.
func analyzeInput(req *AnalyzeRequest, optimized bool) pipeline.AnalyzeInput {
	in := pipeline.AnalyzeInput{
		ResumeID:         uuid.MustParse(req.ResumeID),
		CoverLetterID:    uuid.MustParse(req.CoverLetterID),
		JobDescriptionID: uuid.MustParse(req.JobDescriptionID),
		Language:         req.Language,
	}
	if in.Language == "" {
		in.Language = defaultLanguage
	}
	if optimized {
		in.UseOptimizedResume = req.UseOptimizedResume
		in.UseOptimizedCoverLetter = req.UseOptimizedCoverLetter
		if !in.UseOptimizedResume && !in.UseOptimizedCoverLetter {
			// The optimized endpoint with no selector means both.
			in.UseOptimizedResume = true
			in.UseOptimizedCoverLetter = true
		}
	}
	if req.UpdateExistingAnalysisID != "" {
		id := uuid.MustParse(req.UpdateExistingAnalysisID)
		in.UpdateAnalysisID = &id
	}
	return in
}

// handleAnalyzeATS runs the ATS and cover letter tone analysis over
// structured documents.
func (s *Server) handleAnalyzeATS(w http.ResponseWriter, r *http.Request) {
	s.analyze(w, r, false)
}

// handleAnalyzeATSOptimized runs the analysis over optimized documents,
// keeping the suggestion markers visible to the model.
func (s *Server) handleAnalyzeATSOptimized(w http.ResponseWriter, r *http.Request) {
	s.analyze(w, r, true)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, optimized bool) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.runner.AnalyzeATS(r.Context(), userID, analyzeInput(&req, optimized))
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleOptimizeResume rewrites a resume according to the improvement
// suggestions of an analysis.
func (s *Server) handleOptimizeResume(w http.ResponseWriter, r *http.Request) {
	analysisID, userID, language, ok := s.optimizeParams(w, r)
	if !ok {
		return
	}

	result, err := s.runner.OptimizeResume(r.Context(), analysisID, userID, language)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleOptimizeCoverLetter rewrites a cover letter according to the
// cover letter analysis of an analysis.
func (s *Server) handleOptimizeCoverLetter(w http.ResponseWriter, r *http.Request) {
	analysisID, userID, language, ok := s.optimizeParams(w, r)
	if !ok {
		return
	}

	result, err := s.runner.OptimizeCoverLetter(r.Context(), analysisID, userID, language)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) optimizeParams(w http.ResponseWriter, r *http.Request) (analysisID, userID uuid.UUID, language string, ok bool) {
	userID, ok = s.requireUserID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, "", false
	}

	var req OptimizeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return uuid.Nil, uuid.Nil, "", false
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	return uuid.MustParse(req.AnalysisID), userID, req.Language, true
}

// handleStats returns per-type document counts for the caller.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	counts, err := s.documents.CountByOwner(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	s.jsonResponse(w, http.StatusOK, counts)
}
