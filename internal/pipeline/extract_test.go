package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhartung/resume-optimizer/internal/types"
)

func TestExtractStructured_Success(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	doc := store.addDocument(&types.Document{
		OwnerID:  owner,
		DocType:  types.DocTypeResume,
		RawText:  "John Doe\nSoftware Engineer",
		Status:   types.StatusUnstructured,
		Language: "en",
	})
	client := &scriptedClient{responses: []string{
		`{"summary": {"experience": "8 years"}, "career": []}`,
	}}
	p := newTestPipeline(store, client, 100)

	res, err := p.ExtractStructured(context.Background(), doc.ID, owner, "en")
	require.NoError(t, err)

	assert.Equal(t, types.StatusStructuredComplete, res.Status)
	assert.Equal(t, types.DocTypeResume, res.DocumentType)
	assert.Contains(t, res.Result, "summary")

	require.Len(t, client.requests, 1)
	assert.Equal(t, float32(0.3), client.requests[0].Temperature)
	assert.True(t, client.requests[0].JSONMode)

	stored, _ := store.GetDocument(context.Background(), doc.ID)
	assert.Equal(t, types.StatusStructuredComplete, stored.Status)
	assert.Equal(t, 1, store.structuredUpdates)
}

func TestExtractStructured_CacheHitSkipsLLM(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	doc := store.addDocument(&types.Document{
		OwnerID:    owner,
		DocType:    types.DocTypeResume,
		Status:     types.StatusStructuredComplete,
		Language:   "en",
		Structured: structuredResume(),
	})
	client := &scriptedClient{}
	p := newTestPipeline(store, client, 100)

	res, err := p.ExtractStructured(context.Background(), doc.ID, owner, "en")
	require.NoError(t, err)

	assert.Equal(t, types.StatusStructuredComplete, res.Status)
	assert.Empty(t, client.requests, "cache hit must not call the LLM")
	assert.Equal(t, 0, store.structuredUpdates)
}

func TestExtractStructured_LanguageMismatchReextracts(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	doc := store.addDocument(&types.Document{
		OwnerID:    owner,
		DocType:    types.DocTypeResume,
		RawText:    "raw",
		Status:     types.StatusStructuredComplete,
		Language:   "en",
		Structured: structuredResume(),
	})
	client := &scriptedClient{responses: []string{
		`{"summary": {"experience": "8 Jahre"}, "career": []}`,
	}}
	p := newTestPipeline(store, client, 100)

	res, err := p.ExtractStructured(context.Background(), doc.ID, owner, "de")
	require.NoError(t, err)

	assert.Equal(t, types.StatusStructuredComplete, res.Status)
	require.Len(t, client.requests, 1)

	stored, _ := store.GetDocument(context.Background(), doc.ID)
	assert.Equal(t, "de", stored.Language)
}

func TestExtractStructured_NonJSONResponse(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	doc := store.addDocument(&types.Document{
		OwnerID: owner, DocType: types.DocTypeResume, RawText: "raw",
		Status: types.StatusUnstructured, Language: "en",
	})
	client := &scriptedClient{responses: []string{"I could not parse this document."}}
	p := newTestPipeline(store, client, 100)

	res, err := p.ExtractStructured(context.Background(), doc.ID, owner, "en")
	require.NoError(t, err, "parse failure must not surface as an error")

	assert.Equal(t, types.StatusStructuredIncomplete, res.Status)
	assert.Equal(t, "I could not parse this document.", res.Result["raw_response"])
}

func TestExtractStructured_TransportError(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	doc := store.addDocument(&types.Document{
		OwnerID: owner, DocType: types.DocTypeResume, RawText: "raw",
		Status: types.StatusUnstructured, Language: "en",
	})
	client := &scriptedClient{errs: []error{errors.New("quota exceeded")}}
	p := newTestPipeline(store, client, 100)

	res, err := p.ExtractStructured(context.Background(), doc.ID, owner, "en")
	require.NoError(t, err, "transport failure must not surface as an error")

	assert.Equal(t, types.StatusStructuredFailed, res.Status)
	assert.Equal(t, "quota exceeded", res.Result["error"])
}

func TestExtractStructured_SchemaMismatchDemotes(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	doc := store.addDocument(&types.Document{
		OwnerID: owner, DocType: types.DocTypeResume, RawText: "raw",
		Status: types.StatusUnstructured, Language: "en",
	})
	// Valid JSON but missing the required resume fields.
	client := &scriptedClient{responses: []string{`{"unexpected": true}`}}
	p := newTestPipeline(store, client, 100)

	res, err := p.ExtractStructured(context.Background(), doc.ID, owner, "en")
	require.NoError(t, err)

	assert.Equal(t, types.StatusStructuredIncomplete, res.Status)
	assert.Contains(t, res.Result, "raw_response")
}

func TestExtractStructured_OverTokenBudget(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	doc := store.addDocument(&types.Document{
		OwnerID: owner, DocType: types.DocTypeResume, RawText: "huge",
		Status: types.StatusUnstructured, Language: "en",
	})
	client := &scriptedClient{}
	p := newTestPipeline(store, client, testMaxTokens+1)

	_, err := p.ExtractStructured(context.Background(), doc.ID, owner, "en")

	var tooLarge *PayloadTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, testMaxTokens+1, tooLarge.Tokens)
	assert.Empty(t, client.requests, "budget refusal must precede the LLM call")
	assert.Equal(t, 0, store.structuredUpdates, "budget refusal must not mutate")
}

func TestExtractStructured_NotFound(t *testing.T) {
	p := newTestPipeline(newFakeStore(), &scriptedClient{}, 100)

	_, err := p.ExtractStructured(context.Background(), uuid.New(), uuid.New(), "en")

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestExtractStructured_Forbidden(t *testing.T) {
	store := newFakeStore()
	doc := store.addDocument(&types.Document{
		OwnerID: uuid.New(), DocType: types.DocTypeResume,
		Status: types.StatusUnstructured, Language: "en",
	})
	p := newTestPipeline(store, &scriptedClient{}, 100)

	_, err := p.ExtractStructured(context.Background(), doc.ID, uuid.New(), "en")

	var forbidden *ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestExtractStructured_LostRaceReturnsWinner(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	doc := store.addDocument(&types.Document{
		OwnerID: owner, DocType: types.DocTypeResume, RawText: "raw",
		Status: types.StatusUnstructured, Language: "en",
	})
	winnerPayload := map[string]any{
		"summary": map[string]any{"experience": "written by the racing request"},
		"career":  []any{},
	}
	store.loseRace = true
	store.winner = &types.Document{
		OwnerID:    owner,
		DocType:    types.DocTypeResume,
		Status:     types.StatusStructuredComplete,
		Language:   "de",
		Structured: winnerPayload,
	}
	client := &scriptedClient{responses: []string{
		`{"summary": {"experience": "this write must be discarded"}, "career": []}`,
	}}
	p := newTestPipeline(store, client, 100)

	res, err := p.ExtractStructured(context.Background(), doc.ID, owner, "en")
	require.NoError(t, err)

	// The losing writer surfaces the winner's state instead of its own.
	assert.Equal(t, types.StatusStructuredComplete, res.Status)
	assert.Equal(t, winnerPayload, res.Result)

	stored, _ := store.GetDocument(context.Background(), doc.ID)
	assert.Equal(t, "de", stored.Language, "the lost write must not clobber the winner")
}
