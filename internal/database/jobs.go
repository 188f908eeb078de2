package database

import (
	"context"
	"fmt"
	"time"

	"chatrag/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// JobStore provides access to the embedding_jobs outbox table. Each row is
// one message whose embedding still has to be computed.
type JobStore struct {
	db *sqlx.DB
}

// NewJobStore creates a new job store
func NewJobStore(db *sqlx.DB) *JobStore {
	return &JobStore{db: db}
}

// CreateTables creates the embedding_jobs table
func (js *JobStore) CreateTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS embedding_jobs (
			id UUID PRIMARY KEY,
			message_id UUID NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
			attempts INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := js.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create embedding_jobs table: %w", err)
	}

	if _, err := js.db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_embedding_jobs_created_at ON embedding_jobs(created_at ASC)`); err != nil {
		return fmt.Errorf("failed to create embedding_jobs index: %w", err)
	}
	return nil
}

// Enqueue records that a message needs its embedding computed
func (js *JobStore) Enqueue(ctx context.Context, messageID string) error {
	query := `
		INSERT INTO embedding_jobs (id, message_id, attempts, created_at)
		VALUES ($1, $2, 0, $3)
	`
	_, err := js.db.ExecContext(ctx, query, uuid.NewString(), messageID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to enqueue embedding job: %w", err)
	}
	return nil
}

// ListPending returns pending jobs joined with their message text, oldest
// first. Jobs whose message was deleted in the meantime are gone via the
// cascade, so the worker never sees them.
func (js *JobStore) ListPending(ctx context.Context, limit int) ([]PendingJob, error) {
	query := `
		SELECT j.id, j.message_id, j.attempts, j.created_at, m.message
		FROM embedding_jobs j
		JOIN messages m ON m.id = j.message_id
		ORDER BY j.created_at ASC
		LIMIT $1
	`
	var jobs []PendingJob
	if err := js.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list pending embedding jobs: %w", err)
	}
	return jobs, nil
}

// MarkAttempt increments the attempt counter after a failed embedding run
func (js *JobStore) MarkAttempt(ctx context.Context, jobID string) error {
	_, err := js.db.ExecContext(ctx,
		`UPDATE embedding_jobs SET attempts = attempts + 1 WHERE id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("failed to mark embedding job attempt: %w", err)
	}
	return nil
}

// Delete removes a job, either after success or once it has exhausted its
// retries
func (js *JobStore) Delete(ctx context.Context, jobID string) error {
	_, err := js.db.ExecContext(ctx, `DELETE FROM embedding_jobs WHERE id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete embedding job: %w", err)
	}
	return nil
}

// PendingJob is an embedding job joined with the text to embed
type PendingJob struct {
	models.EmbeddingJob
	Text string `db:"message"`
}
