package main

import (
	"context"
	"time"

	"chatrag/internal/attachments"
	"chatrag/internal/config"
	"chatrag/internal/database"
	"chatrag/internal/jobs"
	"chatrag/internal/openai"
	"chatrag/internal/rag"
	"chatrag/internal/server"
	"chatrag/internal/voice"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Initialize database connection
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	logger.Info().Msg("Database connection established successfully")

	// Bootstrap schema; messages first, the other tables reference it
	messageStore := database.NewMessageStore(db)
	if err := messageStore.CreateTables(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create messages tables")
	}
	attachmentStore := attachments.NewStore(db)
	if err := attachmentStore.CreateTables(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create attachment tables")
	}
	jobStore := database.NewJobStore(db)
	if err := jobStore.CreateTables(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create embedding job tables")
	}

	// OpenAI client (Azure primary, OpenAI fallback)
	aiClient, err := openai.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("OpenAI client initialization failed")
	}

	testCtx, testCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := aiClient.TestConnection(testCtx); err != nil {
		logger.Warn().Err(err).Msg("OpenAI connection test failed, continuing anyway")
	} else {
		logger.Info().Str("provider", aiClient.GetProviderName()).Msg("OpenAI connection verified")
	}
	testCancel()

	// RAG pipeline
	embedder := rag.NewEmbedder(aiClient)
	retriever, err := rag.NewRetriever(messageStore, cfg.VectorWeight, cfg.MatchThreshold, cfg.MatchCount)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid retrieval configuration")
	}
	generator := rag.NewGenerator(aiClient)
	pipeline := rag.NewPipeline(embedder, retriever, generator, attachmentStore)
	personas := voice.NewPersonaExtractor(pipeline)

	// Background embedding worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker := jobs.NewWorker(jobStore, messageStore, embedder,
		time.Duration(cfg.EmbedWorkerInterval)*time.Second, cfg.EmbedWorkerRetries)
	go worker.Run(workerCtx)

	// Create and initialize server
	srv := server.New(cfg, db, logger, server.Deps{
		Pipeline:    pipeline,
		Personas:    personas,
		Messages:    messageStore,
		Jobs:        jobStore,
		Attachments: attachmentStore,
	})
	srv.Initialize()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
}
