package main

import (
	"context"
	"errors"
	"time"

	"chatrag/internal/config"
	"chatrag/internal/database"
	"chatrag/internal/openai"
	"chatrag/internal/rag"

	"github.com/pgvector/pgvector-go"
)

const batchSize = 100

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Initialize database connection
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	store := database.NewMessageStore(db)
	if err := store.CreateTables(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create messages tables")
	}

	aiClient, err := openai.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create OpenAI client")
	}
	embedder := rag.NewEmbedder(aiClient)

	logger.Info().Msg("Backfilling embeddings for all messages missing them...")
	start := time.Now()
	ctx := context.Background()

	var embedded, skipped int
	for {
		messages, err := store.ListMissingEmbeddings(ctx, batchSize)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to list messages missing embeddings")
		}
		if len(messages) == 0 {
			break
		}

		progress := false
		for _, msg := range messages {
			vector, err := embedder.Embed(ctx, msg.Text)
			if err != nil {
				if errors.Is(err, rag.ErrInvalidInput) {
					logger.Warn().Err(err).Str("message_id", msg.ID).Msg("Skipping unembeddable message")
					skipped++
					continue
				}
				logger.Fatal().Err(err).Str("message_id", msg.ID).Msg("Embedding failed")
			}

			if err := store.UpdateEmbedding(ctx, msg.ID, pgvector.NewVector(vector)); err != nil {
				logger.Fatal().Err(err).Str("message_id", msg.ID).Msg("Failed to store embedding")
			}
			embedded++
			progress = true
		}

		// A batch of only unembeddable messages would loop forever since
		// they stay NULL.
		if !progress {
			break
		}
	}

	logger.Info().
		Dur("duration", time.Since(start)).
		Int("embedded", embedded).
		Int("skipped", skipped).
		Msg("Embedding backfill complete")
}
