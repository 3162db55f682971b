package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mhartung/resume-optimizer/internal/llm"
	"github.com/mhartung/resume-optimizer/internal/types"
)

// fakeStore is an in-memory Store for pipeline tests.
type fakeStore struct {
	docs     map[uuid.UUID]*types.Document
	analyses map[uuid.UUID]*types.AnalysisResult

	// loseRace makes the next UpdateStructured report a lost conditional
	// update, optionally installing winner as the state the racing writer
	// left behind.
	loseRace bool
	winner   *types.Document

	structuredUpdates int
	optimizedUpdates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:     make(map[uuid.UUID]*types.Document),
		analyses: make(map[uuid.UUID]*types.AnalysisResult),
	}
}

func (s *fakeStore) addDocument(doc *types.Document) *types.Document {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	s.docs[doc.ID] = doc
	return doc
}

func (s *fakeStore) addAnalysis(a *types.AnalysisResult) *types.AnalysisResult {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.analyses[a.ID] = a
	return a
}

func (s *fakeStore) GetDocument(_ context.Context, id uuid.UUID) (*types.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (s *fakeStore) UpdateStructured(_ context.Context, id uuid.UUID, structured map[string]any, status, language, prevStatus, prevLanguage string) (bool, error) {
	if s.loseRace {
		s.loseRace = false
		if s.winner != nil {
			s.winner.ID = id
			s.docs[id] = s.winner
		}
		return false, nil
	}
	doc, ok := s.docs[id]
	if !ok {
		return false, fmt.Errorf("document not found: %s", id)
	}
	if doc.Status != prevStatus || doc.Language != prevLanguage {
		return false, nil
	}
	doc.Structured = structured
	doc.Status = status
	doc.Language = language
	s.structuredUpdates++
	return true, nil
}

func (s *fakeStore) UpdateOptimized(_ context.Context, id uuid.UUID, optimized map[string]any, status string) error {
	doc, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	doc.Optimized = optimized
	doc.OptimizedStatus = status
	s.optimizedUpdates++
	return nil
}

func (s *fakeStore) GetAnalysis(_ context.Context, id uuid.UUID) (*types.AnalysisResult, error) {
	a, ok := s.analyses[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) CreateAnalysis(_ context.Context, a *types.AnalysisResult) (*types.AnalysisResult, error) {
	stored := *a
	stored.ID = uuid.New()
	s.analyses[stored.ID] = &stored
	return &stored, nil
}

func (s *fakeStore) UpdateAnalysisResult(_ context.Context, id uuid.UUID, result map[string]any, status string) error {
	a, ok := s.analyses[id]
	if !ok {
		return fmt.Errorf("analysis not found: %s", id)
	}
	a.Result = result
	a.Status = status
	return nil
}

// scriptedClient replays canned responses and records every request.
type scriptedClient struct {
	responses []string
	errs      []error
	requests  []llm.Request
}

func (c *scriptedClient) Complete(_ context.Context, req llm.Request) (string, error) {
	c.requests = append(c.requests, req)
	idx := len(c.requests) - 1
	var err error
	if idx < len(c.errs) {
		err = c.errs[idx]
	}
	if err != nil {
		return "", err
	}
	if idx < len(c.responses) {
		return c.responses[idx], nil
	}
	return "", fmt.Errorf("unexpected call %d", idx)
}

func (c *scriptedClient) Close() error { return nil }

// fixedEstimator always reports the same token count.
type fixedEstimator struct{ count int }

func (e fixedEstimator) Estimate(string) int { return e.count }

const testMaxTokens = 12000

func newTestPipeline(store *fakeStore, client *scriptedClient, tokenCount int) *Pipeline {
	return New(store, client, fixedEstimator{count: tokenCount}, testMaxTokens)
}

func structuredResume() map[string]any {
	return map[string]any{
		"summary": map[string]any{"experience": "8 years of Go"},
		"career":  []any{},
	}
}

func structuredCoverLetter() map[string]any {
	return map[string]any{
		"cover_letter": map[string]any{"subject": "Application"},
	}
}

func structuredJobDescription() map[string]any {
	return map[string]any{"job_title": "Platform Engineer"}
}
