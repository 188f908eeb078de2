package rag

import (
	"context"
	"fmt"
)

// ExtractedTextSource looks up the extracted text of a thread parent's
// attachment. found is false when the parent has no attachment or no text
// was extracted from it.
type ExtractedTextSource interface {
	GetExtractedText(ctx context.Context, parentMessageID string) (text string, found bool, err error)
}

// Pipeline wires the embedding, retrieval, assembly and generation stages
// into the two caller-facing query entry points. Each invocation is
// stateless and request-scoped; concurrent invocations share nothing but the
// underlying store.
type Pipeline struct {
	embedder    *Embedder
	retriever   *Retriever
	generator   *Generator
	attachments ExtractedTextSource
}

// NewPipeline creates a new query pipeline
func NewPipeline(embedder *Embedder, retriever *Retriever, generator *Generator, attachments ExtractedTextSource) *Pipeline {
	return &Pipeline{
		embedder:    embedder,
		retriever:   retriever,
		generator:   generator,
		attachments: attachments,
	}
}

// AnswerUserHistoryQuery answers a query grounded in one user's message
// history: embed the query, run hybrid retrieval, assemble the candidate
// context and generate.
func (p *Pipeline) AnswerUserHistoryQuery(ctx context.Context, query, userID string) (string, error) {
	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return "", err
	}

	candidates, err := p.retriever.Retrieve(ctx, query, embedding, userID)
	if err != nil {
		return "", err
	}

	contextBlock := BuildUserHistoryContext(candidates)
	return p.generator.Generate(ctx, ModeUserHistory, contextBlock, query)
}

// AnswerThreadQuery answers a query about a thread parent's attached file.
// Thread scope bypasses retrieval: the context is exactly the attachment's
// extracted text.
func (p *Pipeline) AnswerThreadQuery(ctx context.Context, query, threadParentID string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("%w: query is empty", ErrInvalidInput)
	}

	text, found, err := p.attachments.GetExtractedText(ctx, threadParentID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRetrievalBackend, err)
	}
	if !found {
		return "", ErrMissingThreadContext
	}

	contextBlock, err := BuildThreadContext(text)
	if err != nil {
		return "", err
	}

	return p.generator.Generate(ctx, ModeThreadAttachment, contextBlock, query)
}
