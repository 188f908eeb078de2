package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbeddingClient struct {
	embeddings [][]float32
	err        error
	calls      int
	lastTexts  []string
}

func (s *stubEmbeddingClient) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	s.lastTexts = texts
	if s.err != nil {
		return nil, s.err
	}
	return s.embeddings, nil
}

func TestEmbed(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		client      *stubEmbeddingClient
		expectedErr error
		expected    []float32
	}{
		{
			name:     "returns vector for valid text",
			text:     "standup notes from tuesday",
			client:   &stubEmbeddingClient{embeddings: [][]float32{{0.1, 0.2, 0.3}}},
			expected: []float32{0.1, 0.2, 0.3},
		},
		{
			name:        "empty text is invalid input",
			text:        "",
			client:      &stubEmbeddingClient{},
			expectedErr: ErrInvalidInput,
		},
		{
			name:        "whitespace-only text is invalid input",
			text:        "   \n\t ",
			client:      &stubEmbeddingClient{},
			expectedErr: ErrInvalidInput,
		},
		{
			name:        "oversized text is invalid input",
			text:        strings.Repeat("chat ", (maxEmbeddingTokens*charsPerToken)/5+1),
			client:      &stubEmbeddingClient{},
			expectedErr: ErrInvalidInput,
		},
		{
			name:        "upstream failure maps to embedding unavailable",
			text:        "anything",
			client:      &stubEmbeddingClient{err: errors.New("connection refused")},
			expectedErr: ErrEmbeddingUnavailable,
		},
		{
			name:        "malformed response maps to embedding unavailable",
			text:        "anything",
			client:      &stubEmbeddingClient{embeddings: [][]float32{}},
			expectedErr: ErrEmbeddingUnavailable,
		},
		{
			name:        "empty vector maps to embedding unavailable",
			text:        "anything",
			client:      &stubEmbeddingClient{embeddings: [][]float32{{}}},
			expectedErr: ErrEmbeddingUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := NewEmbedder(tt.client)
			got, err := embedder.Embed(context.Background(), tt.text)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEmbedDoesNotCallUpstreamOnInvalidInput(t *testing.T) {
	client := &stubEmbeddingClient{}
	embedder := NewEmbedder(client)

	_, err := embedder.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, client.calls, "invalid input must not reach the embedding service")
}

func TestEmbedRepeatability(t *testing.T) {
	// Same input and model version produce the same vector; check via cosine
	// similarity rather than exact equality.
	vec := []float32{0.6, 0.8, 0.0}
	client := &stubEmbeddingClient{embeddings: [][]float32{vec}}
	embedder := NewEmbedder(client)

	first, err := embedder.Embed(context.Background(), "same text")
	require.NoError(t, err)
	second, err := embedder.Embed(context.Background(), "same text")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cosine(first, second), 1e-6)
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
