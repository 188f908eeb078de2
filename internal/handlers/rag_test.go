package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatrag/internal/models"
	"chatrag/internal/rag"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPipeline struct {
	answer string
	err    error

	lastQuery  string
	lastID     string
	threadMode bool
}

func (s *stubPipeline) AnswerUserHistoryQuery(_ context.Context, query, userID string) (string, error) {
	s.lastQuery = query
	s.lastID = userID
	s.threadMode = false
	return s.answer, s.err
}

func (s *stubPipeline) AnswerThreadQuery(_ context.Context, query, threadParentID string) (string, error) {
	s.lastQuery = query
	s.lastID = threadParentID
	s.threadMode = true
	return s.answer, s.err
}

func performRAGQuery(t *testing.T, pipeline QueryPipeline, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/rag/query", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, RAGQueryHandler(pipeline)(c))
	return rec
}

func TestRAGQueryHandlerUserMode(t *testing.T) {
	pipeline := &stubPipeline{answer: "They mostly talk about hiking."}

	rec := performRAGQuery(t, pipeline, `{"query":"What do they talk about?","id":"user-1","isParentThread":false}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "They mostly talk about hiking.", resp.Response)
	assert.Empty(t, resp.Error)

	assert.False(t, pipeline.threadMode)
	assert.Equal(t, "user-1", pipeline.lastID)
}

func TestRAGQueryHandlerThreadMode(t *testing.T) {
	pipeline := &stubPipeline{answer: "The file describes the Q3 budget."}

	rec := performRAGQuery(t, pipeline, `{"query":"What does this file describe?","id":"msg-42","isParentThread":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, pipeline.threadMode)
	assert.Equal(t, "msg-42", pipeline.lastID)
}

func TestRAGQueryHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty query", body: `{"query":"","id":"user-1"}`},
		{name: "whitespace query", body: `{"query":"   ","id":"user-1"}`},
		{name: "missing id", body: `{"query":"hello"}`},
		{name: "malformed json", body: `{"query":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &stubPipeline{}
			rec := performRAGQuery(t, pipeline, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, pipeline.lastQuery, "pipeline should not be invoked")
		})
	}
}

func TestRAGQueryHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectFallback bool
	}{
		{
			name:           "invalid input maps to bad request",
			err:            fmt.Errorf("%w: query too long", rag.ErrInvalidInput),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing thread context maps to not found",
			err:            rag.ErrMissingThreadContext,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "embedding failure maps to bad gateway with fallback",
			err:            fmt.Errorf("%w: provider down", rag.ErrEmbeddingUnavailable),
			expectedStatus: http.StatusBadGateway,
			expectFallback: true,
		},
		{
			name:           "generation failure maps to bad gateway with fallback",
			err:            fmt.Errorf("%w: no choices", rag.ErrGenerationUnavailable),
			expectedStatus: http.StatusBadGateway,
			expectFallback: true,
		},
		{
			name:           "retrieval backend failure maps to service unavailable with fallback",
			err:            fmt.Errorf("%w: connection refused", rag.ErrRetrievalBackend),
			expectedStatus: http.StatusServiceUnavailable,
			expectFallback: true,
		},
		{
			name:           "unknown failure maps to internal error with fallback",
			err:            fmt.Errorf("something unexpected"),
			expectedStatus: http.StatusInternalServerError,
			expectFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &stubPipeline{err: tt.err}
			rec := performRAGQuery(t, pipeline, `{"query":"hello","id":"user-1"}`)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var resp models.QueryResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tt.expectFallback {
				assert.Equal(t, FallbackMessage, resp.Response)
			} else {
				assert.Empty(t, resp.Response)
			}
		})
	}
}
