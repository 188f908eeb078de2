package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"chatrag/internal/models"
	"chatrag/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// MessageStore provides access to the messages table, including the lexical
// and vector search paths the hybrid retriever unions.
type MessageStore struct {
	db *sqlx.DB
}

// NewMessageStore creates a new message store
func NewMessageStore(db *sqlx.DB) *MessageStore {
	return &MessageStore{db: db}
}

// CreateTables creates the messages table with its pgvector and full-text
// indexes (PostgreSQL with pgvector)
func (ms *MessageStore) CreateTables() error {
	// Enable pgvector extension first
	if _, err := ms.db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		fmt.Printf("Warning: Failed to create vector extension (may already exist): %v\n", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			channel_id VARCHAR(255) NOT NULL,
			parent_id UUID REFERENCES messages(id) ON DELETE CASCADE,
			message TEXT NOT NULL,
			file_url TEXT,
			embedding vector(1536),
			inserted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := ms.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Create indexes separately
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_messages_user_id ON messages(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_channel_id ON messages(channel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_parent_id ON messages(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_inserted_at ON messages(inserted_at DESC)`,
		// GIN index for the lexical full-text search path
		`CREATE INDEX IF NOT EXISTS idx_messages_fts ON messages USING gin (to_tsvector('english', message))`,
		// HNSW index for fast cosine similarity search with pgvector
		`CREATE INDEX IF NOT EXISTS idx_messages_embedding_hnsw ON messages USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, index := range indexes {
		if _, err := ms.db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Create inserts a new message. The embedding is left NULL; the embedding
// worker fills it in asynchronously after the send path has returned.
func (ms *MessageStore) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.InsertedAt.IsZero() {
		msg.InsertedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO messages (id, user_id, channel_id, parent_id, message, file_url, inserted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := ms.db.ExecContext(ctx, query,
		msg.ID, msg.UserID, msg.ChannelID, msg.ParentID, msg.Text, msg.FileURL, msg.InsertedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// Get fetches a single message by id
func (ms *MessageStore) Get(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	query := `
		SELECT id, user_id, channel_id, parent_id, message, file_url, inserted_at
		FROM messages
		WHERE id = $1
	`
	if err := ms.db.GetContext(ctx, &msg, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("message %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	return &msg, nil
}

// Delete removes a message row. Callers must remove attachment artifacts
// first; the UI contract is delete-only, so no edit path exists.
func (ms *MessageStore) Delete(ctx context.Context, id string) error {
	result, err := ms.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("message %s not found", id)
	}
	return nil
}

// UpdateEmbedding writes the computed embedding for a message. Overwrites are
// idempotent, so duplicate embedding jobs for the same message are harmless.
func (ms *MessageStore) UpdateEmbedding(ctx context.Context, id string, embedding pgvector.Vector) error {
	_, err := ms.db.ExecContext(ctx,
		`UPDATE messages SET embedding = $2 WHERE id = $1`, id, embedding)
	if err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// ListMissingEmbeddings returns messages whose embedding has not been
// computed yet, oldest first
func (ms *MessageStore) ListMissingEmbeddings(ctx context.Context, limit int) ([]models.Message, error) {
	var messages []models.Message
	query := `
		SELECT id, user_id, channel_id, parent_id, message, file_url, inserted_at
		FROM messages
		WHERE embedding IS NULL AND message <> ''
		ORDER BY inserted_at ASC
		LIMIT $1
	`
	if err := ms.db.SelectContext(ctx, &messages, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list messages missing embeddings: %w", err)
	}
	return messages, nil
}

// SearchLexical performs a full-text search over one user's message bodies.
// Scores come from ts_rank clamped to [0,1]. Stopword-only queries return no
// candidates rather than matching everything.
func (ms *MessageStore) SearchLexical(ctx context.Context, userID, queryText string, limit int) ([]models.RetrievalCandidate, error) {
	tokens := utils.ExtractMeaningfulTokens(queryText)
	if len(tokens) == 0 {
		return nil, nil
	}

	query := `
		SELECT
			id AS message_id,
			message,
			LEAST(1.0, ts_rank(to_tsvector('english', message), plainto_tsquery('english', $2))) AS text_score,
			0::float8 AS vector_score,
			0::float8 AS similarity,
			inserted_at
		FROM messages
		WHERE user_id = $1
			AND to_tsvector('english', message) @@ plainto_tsquery('english', $2)
		ORDER BY text_score DESC, inserted_at DESC
		LIMIT $3
	`

	var candidates []models.RetrievalCandidate
	err := ms.db.SelectContext(ctx, &candidates, query, userID, strings.Join(tokens, " "), limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search failed: %w", err)
	}
	return candidates, nil
}

// SearchVector performs a cosine-similarity search over one user's stored
// message embeddings. pgvector's <=> operator returns cosine distance, so
// similarity = 1 - distance.
func (ms *MessageStore) SearchVector(ctx context.Context, userID string, embedding pgvector.Vector, limit int) ([]models.RetrievalCandidate, error) {
	query := `
		SELECT
			id AS message_id,
			message,
			0::float8 AS text_score,
			1 - (embedding <=> $2) AS vector_score,
			0::float8 AS similarity,
			inserted_at
		FROM messages
		WHERE user_id = $1
			AND embedding IS NOT NULL
		ORDER BY embedding <=> $2, inserted_at DESC
		LIMIT $3
	`

	var candidates []models.RetrievalCandidate
	err := ms.db.SelectContext(ctx, &candidates, query, userID, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return candidates, nil
}
