package rag

import (
	"context"
	"fmt"
	"sort"

	"chatrag/internal/models"

	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"
)

// Searcher is the message-store surface the retriever unions: a lexical
// full-text search and a vector similarity search, both scoped to one user's
// authored messages.
type Searcher interface {
	SearchLexical(ctx context.Context, userID, queryText string, limit int) ([]models.RetrievalCandidate, error)
	SearchVector(ctx context.Context, userID string, embedding pgvector.Vector, limit int) ([]models.RetrievalCandidate, error)
}

// Retriever performs hybrid semantic+lexical retrieval over a user's message
// history. Thread-scoped queries bypass the retriever entirely and go through
// the attachment text path instead.
type Retriever struct {
	store        Searcher
	vectorWeight float64
	threshold    float64
	limit        int
}

// NewRetriever creates a hybrid retriever. vectorWeight must be in [0,1];
// limit and threshold follow the configured defaults when non-positive.
func NewRetriever(store Searcher, vectorWeight, threshold float64, limit int) (*Retriever, error) {
	if vectorWeight < 0 || vectorWeight > 1 {
		return nil, fmt.Errorf("%w: vector weight %v outside [0,1]", ErrInvalidInput, vectorWeight)
	}
	if limit <= 0 {
		limit = 10
	}
	return &Retriever{
		store:        store,
		vectorWeight: vectorWeight,
		threshold:    threshold,
		limit:        limit,
	}, nil
}

// Retrieve runs the lexical and vector searches concurrently, unions the
// candidate sets by message id, scores, filters and ranks them.
//
// A message present in only one search gets 0 for the missing dimension.
// Combined score = vectorWeight*vector + (1-vectorWeight)*text; candidates
// below the threshold are dropped; ties on combined score break by most
// recent timestamp first.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, queryEmbedding []float32, userID string) ([]models.RetrievalCandidate, error) {
	var lexical, vector []models.RetrievalCandidate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := r.store.SearchLexical(gctx, userID, queryText, r.limit)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRetrievalBackend, err)
		}
		lexical = results
		return nil
	})
	g.Go(func() error {
		results, err := r.store.SearchVector(gctx, userID, pgvector.NewVector(queryEmbedding), r.limit)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRetrievalBackend, err)
		}
		vector = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := r.merge(lexical, vector)
	fmt.Printf("[RETRIEVER] Query for user %s: %d lexical + %d vector candidates, %d after merge/threshold\n",
		userID, len(lexical), len(vector), len(merged))
	return merged, nil
}

func (r *Retriever) merge(lexical, vector []models.RetrievalCandidate) []models.RetrievalCandidate {
	byID := make(map[string]*models.RetrievalCandidate, len(lexical)+len(vector))

	for _, c := range lexical {
		candidate := c
		candidate.VectorScore = 0
		byID[c.MessageID] = &candidate
	}
	for _, c := range vector {
		if existing, ok := byID[c.MessageID]; ok {
			existing.VectorScore = c.VectorScore
			continue
		}
		candidate := c
		candidate.TextScore = 0
		byID[c.MessageID] = &candidate
	}

	results := make([]models.RetrievalCandidate, 0, len(byID))
	for _, candidate := range byID {
		candidate.CombinedScore = r.vectorWeight*candidate.VectorScore + (1-r.vectorWeight)*candidate.TextScore
		if candidate.CombinedScore < r.threshold {
			continue
		}
		results = append(results, *candidate)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return results[i].InsertedAt.After(results[j].InsertedAt)
	})

	if len(results) > r.limit {
		results = results[:r.limit]
	}
	return results
}
