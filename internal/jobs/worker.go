package jobs

import (
	"context"
	"errors"
	"time"

	"chatrag/internal/database"
	"chatrag/internal/rag"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

const batchSize = 32

// Queue is the outbox surface the worker drains.
type Queue interface {
	ListPending(ctx context.Context, limit int) ([]database.PendingJob, error)
	MarkAttempt(ctx context.Context, jobID string) error
	Delete(ctx context.Context, jobID string) error
}

// EmbeddingWriter persists computed embeddings back onto messages.
type EmbeddingWriter interface {
	UpdateEmbedding(ctx context.Context, id string, embedding pgvector.Vector) error
}

// Embedder turns message text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Worker drains the embedding outbox in the background. The send path only
// enqueues; this loop does the provider calls, so a slow or down embedding
// provider never blocks message delivery.
type Worker struct {
	queue      Queue
	store      EmbeddingWriter
	embedder   Embedder
	interval   time.Duration
	maxRetries int
}

// NewWorker creates a new embedding worker
func NewWorker(queue Queue, store EmbeddingWriter, embedder Embedder, interval time.Duration, maxRetries int) *Worker {
	return &Worker{
		queue:      queue,
		store:      store,
		embedder:   embedder,
		interval:   interval,
		maxRetries: maxRetries,
	}
}

// Run polls the outbox until the context is cancelled. Intended to be
// launched as a goroutine from main.
func (w *Worker) Run(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Int("max_retries", w.maxRetries).
		Msg("Embedding worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Embedding worker stopped")
			return
		case <-ticker.C:
			if err := w.ProcessBatch(ctx); err != nil {
				log.Error().Err(err).Msg("Embedding batch failed")
			}
		}
	}
}

// ProcessBatch drains up to one batch of pending jobs. Per-job failures are
// retried on later ticks; only listing failures abort the batch.
func (w *Worker) ProcessBatch(ctx context.Context) error {
	pending, err := w.queue.ListPending(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, job := range pending {
		w.processJob(ctx, job)
	}
	return nil
}

func (w *Worker) processJob(ctx context.Context, job database.PendingJob) {
	embedding, err := w.embedder.Embed(ctx, job.Text)
	if err != nil {
		// Unembeddable text will never succeed, so drop it instead of
		// retrying.
		if errors.Is(err, rag.ErrInvalidInput) {
			log.Warn().Err(err).Str("message_id", job.MessageID).Msg("Dropping unembeddable message")
			w.drop(ctx, job.ID)
			return
		}

		if job.Attempts+1 >= w.maxRetries {
			log.Error().Err(err).
				Str("message_id", job.MessageID).
				Int("attempts", job.Attempts+1).
				Msg("Embedding job exhausted retries")
			w.drop(ctx, job.ID)
			return
		}

		log.Warn().Err(err).
			Str("message_id", job.MessageID).
			Int("attempts", job.Attempts+1).
			Msg("Embedding job failed, will retry")
		if markErr := w.queue.MarkAttempt(ctx, job.ID); markErr != nil {
			log.Error().Err(markErr).Str("job_id", job.ID).Msg("Failed to record embedding attempt")
		}
		return
	}

	if err := w.store.UpdateEmbedding(ctx, job.MessageID, pgvector.NewVector(embedding)); err != nil {
		log.Error().Err(err).Str("message_id", job.MessageID).Msg("Failed to store embedding")
		if markErr := w.queue.MarkAttempt(ctx, job.ID); markErr != nil {
			log.Error().Err(markErr).Str("job_id", job.ID).Msg("Failed to record embedding attempt")
		}
		return
	}

	w.drop(ctx, job.ID)
}

func (w *Worker) drop(ctx context.Context, jobID string) {
	if err := w.queue.Delete(ctx, jobID); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to delete embedding job")
	}
}
