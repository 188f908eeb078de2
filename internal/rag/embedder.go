package rag

import (
	"context"
	"fmt"
	"strings"
)

// Input limit of text-embedding-3-small. Callers must pre-truncate; the
// embedder rejects oversized input instead of silently cutting it.
const (
	maxEmbeddingTokens = 8191
	charsPerToken      = 4 // rough estimate for mostly-English chat text
)

// EmbeddingClient is the narrow surface the embedder needs from the OpenAI
// client.
type EmbeddingClient interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder converts text into a fixed-length dense vector via the embedding
// model. Deterministic for identical input and model version.
type Embedder struct {
	client EmbeddingClient
}

// NewEmbedder creates a new embedder
func NewEmbedder(client EmbeddingClient) *Embedder {
	return &Embedder{client: client}
}

// Embed generates the embedding vector for one text
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrInvalidInput)
	}
	if estimateTokens(text) > maxEmbeddingTokens {
		return nil, fmt.Errorf("%w: text exceeds embedding input limit of %d tokens", ErrInvalidInput, maxEmbeddingTokens)
	}

	embeddings, err := e.client.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(embeddings) != 1 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: malformed embedding response", ErrEmbeddingUnavailable)
	}

	return embeddings[0], nil
}

func estimateTokens(text string) int {
	return len(text) / charsPerToken
}
