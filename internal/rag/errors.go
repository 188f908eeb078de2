package rag

import "errors"

// Pipeline error kinds. Every stage fails with exactly one of these, wrapped
// around the underlying cause; callers test with errors.Is.
var (
	// ErrInvalidInput means the query text was empty or over the embedding
	// model's input limit. Caller error, not retryable by this layer.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable means the upstream embedding call failed or
	// returned malformed output. The retriever never degrades to text-only
	// search on its own; callers wanting that must catch and retry.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable means the chat completion call failed or
	// returned no choices.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrMissingThreadContext means a thread query's parent message has no
	// attachment with extracted text. Surfaced as a user-visible "nothing to
	// analyze" condition.
	ErrMissingThreadContext = errors.New("no extractable file content in thread parent")

	// ErrRetrievalBackend means a storage query failed. Retryable by the
	// caller.
	ErrRetrievalBackend = errors.New("retrieval backend error")
)
