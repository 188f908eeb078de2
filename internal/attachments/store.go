// Package attachments stores the text extracted from uploaded files, keyed
// by the message the file was attached to. Extraction itself happens in the
// upload path (an external collaborator); this store only serves the results
// to the thread-scoped query pipeline.
package attachments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chatrag/internal/cache"

	"github.com/jmoiron/sqlx"
)

// extractedTextTTL bounds how long an extracted text is served from memory.
// Attachments are immutable (delete-only UI), so a long TTL is safe.
const extractedTextTTL = 10 * time.Minute

// Store provides access to extracted attachment texts
type Store struct {
	db    *sqlx.DB
	cache *cache.Cache
}

// NewStore creates a new attachment text store
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:    db,
		cache: cache.New(),
	}
}

// CreateTables creates the attachment text table
func (s *Store) CreateTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS attachment_texts (
			message_id UUID PRIMARY KEY REFERENCES messages(id) ON DELETE CASCADE,
			extracted_text TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create attachment_texts table: %w", err)
	}
	return nil
}

// SaveExtractedText stores the extracted text for a message's attachment.
// Re-extraction overwrites.
func (s *Store) SaveExtractedText(ctx context.Context, messageID, text string) error {
	query := `
		INSERT INTO attachment_texts (message_id, extracted_text)
		VALUES ($1, $2)
		ON CONFLICT (message_id) DO UPDATE SET extracted_text = EXCLUDED.extracted_text
	`
	if _, err := s.db.ExecContext(ctx, query, messageID, text); err != nil {
		return fmt.Errorf("failed to save extracted text: %w", err)
	}
	s.cache.Delete(messageID)
	return nil
}

// GetExtractedText returns the extracted text for a message's attachment.
// found is false when the message has no attachment text.
func (s *Store) GetExtractedText(ctx context.Context, messageID string) (string, bool, error) {
	if cached, ok := s.cache.Get(messageID); ok {
		return cached.(string), true, nil
	}

	var text string
	err := s.db.GetContext(ctx, &text,
		`SELECT extracted_text FROM attachment_texts WHERE message_id = $1`, messageID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch extracted text: %w", err)
	}

	s.cache.Set(messageID, text, extractedTextTTL)
	return text, true, nil
}

// DeleteForMessage removes the attachment text for a message. Called before
// the message row itself is deleted.
func (s *Store) DeleteForMessage(ctx context.Context, messageID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM attachment_texts WHERE message_id = $1`, messageID); err != nil {
		return fmt.Errorf("failed to delete extracted text: %w", err)
	}
	s.cache.Delete(messageID)
	return nil
}
