package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chatrag/internal/models"
	"chatrag/internal/rag"

	"github.com/labstack/echo/v4"
)

// FallbackMessage is the fixed user-facing reply when the pipeline fails in
// a way the caller cannot act on.
const FallbackMessage = "I'm sorry, I couldn't process your request at this time."

const queryTimeout = 60 * time.Second

// QueryPipeline is the surface of the RAG pipeline the handler drives.
type QueryPipeline interface {
	AnswerUserHistoryQuery(ctx context.Context, query, userID string) (string, error)
	AnswerThreadQuery(ctx context.Context, query, threadParentID string) (string, error)
}

// RAGQueryHandler handles RAG queries against a user's history or a thread
// parent's attached file
// @Summary Query the RAG assistant
// @Description Answer a query grounded in a user's message history, or in a thread parent's attached file when isParentThread is set
// @Tags rag
// @Accept json
// @Produce json
// @Param request body models.QueryRequest true "RAG query"
// @Success 200 {object} models.QueryResponse
// @Failure 400 {object} models.QueryResponse
// @Failure 404 {object} models.QueryResponse
// @Failure 502 {object} models.QueryResponse
// @Router /api/rag/query [post]
func RAGQueryHandler(pipeline QueryPipeline) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.QueryRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.QueryResponse{
				Error: fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		if strings.TrimSpace(req.Query) == "" {
			return c.JSON(http.StatusBadRequest, models.QueryResponse{
				Error: "Query cannot be empty",
			})
		}
		if req.ID == "" {
			return c.JSON(http.StatusBadRequest, models.QueryResponse{
				Error: "ID is required",
			})
		}

		mode := "user_history"
		if req.IsParentThread {
			mode = "thread_attachment"
		}
		fmt.Printf("[RAG] Query received (mode=%s, id=%s)\n", mode, req.ID)

		ctx, cancel := context.WithTimeout(c.Request().Context(), queryTimeout)
		defer cancel()

		var answer string
		var err error
		if req.IsParentThread {
			answer, err = pipeline.AnswerThreadQuery(ctx, req.Query, req.ID)
		} else {
			answer, err = pipeline.AnswerUserHistoryQuery(ctx, req.Query, req.ID)
		}

		if err != nil {
			return ragErrorResponse(c, err)
		}

		return c.JSON(http.StatusOK, models.QueryResponse{Response: answer})
	}
}

// ragErrorResponse maps pipeline sentinel errors to HTTP statuses. Anything
// the caller cannot fix carries the fixed fallback message so the UI always
// has something to render.
func ragErrorResponse(c echo.Context, err error) error {
	fmt.Printf("[RAG] ERROR: %v\n", err)

	switch {
	case errors.Is(err, rag.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, models.QueryResponse{
			Error: err.Error(),
		})
	case errors.Is(err, rag.ErrMissingThreadContext):
		return c.JSON(http.StatusNotFound, models.QueryResponse{
			Error: "No extracted text available for this thread",
		})
	case errors.Is(err, rag.ErrEmbeddingUnavailable), errors.Is(err, rag.ErrGenerationUnavailable):
		return c.JSON(http.StatusBadGateway, models.QueryResponse{
			Response: FallbackMessage,
			Error:    err.Error(),
		})
	case errors.Is(err, rag.ErrRetrievalBackend):
		return c.JSON(http.StatusServiceUnavailable, models.QueryResponse{
			Response: FallbackMessage,
			Error:    err.Error(),
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.QueryResponse{
			Response: FallbackMessage,
			Error:    err.Error(),
		})
	}
}
