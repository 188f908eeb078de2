package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Message represents one unit of chat content. A message belongs to exactly
// one channel and optionally to one thread via ParentID. The embedding is
// nullable until the background worker computes it.
type Message struct {
	ID         string           `json:"id" db:"id" example:"5f6e1c2a-9d1f-4c55-a2de-6f54f4e3b1aa"`
	UserID     string           `json:"user_id" db:"user_id" example:"7ad24c7e-12f0-49a8-bf5c-a8c3f81d9f01"`
	ChannelID  string           `json:"channel_id" db:"channel_id" example:"general"`
	ParentID   *string          `json:"parent_id,omitempty" db:"parent_id"` // thread parent message, if any
	Text       string           `json:"message" db:"message"`
	FileURL    *string          `json:"file_url,omitempty" db:"file_url"`
	Embedding  *pgvector.Vector `json:"-" db:"embedding"`
	InsertedAt time.Time        `json:"inserted_at" db:"inserted_at"`
}

// RetrievalCandidate is an ephemeral per-query scoring of one message.
// CombinedScore = vectorWeight*VectorScore + (1-vectorWeight)*TextScore.
type RetrievalCandidate struct {
	MessageID     string    `json:"message_id" db:"message_id"`
	Text          string    `json:"message" db:"message"`
	TextScore     float64   `json:"text_score" db:"text_score"`
	VectorScore   float64   `json:"vector_score" db:"vector_score"`
	CombinedScore float64   `json:"similarity" db:"similarity"`
	InsertedAt    time.Time `json:"inserted_at" db:"inserted_at"`
}

// EmbeddingJob is one pending unit of embedding work. Jobs are enqueued in
// the same transaction scope as the message insert and deleted once the
// embedding has been written back.
type EmbeddingJob struct {
	ID        string    `json:"id" db:"id"`
	MessageID string    `json:"message_id" db:"message_id"`
	Attempts  int       `json:"attempts" db:"attempts"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HealthResponse represents a basic health check response
// @Description Health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// DBHealthResponse represents a database health check response
// @Description Database health check response
type DBHealthResponse struct {
	Status    string        `json:"status" example:"healthy"`                   // Health status
	Timestamp time.Time     `json:"timestamp" example:"2023-01-01T00:00:00Z"`   // Timestamp of the check
	Connected bool          `json:"connected" example:"true"`                   // Database connection status
	Latency   time.Duration `json:"latency" swaggertype:"string" example:"1ms"` // Database ping latency
	Error     string        `json:"error,omitempty" example:""`                 // Error message if any
}

// QueryRequest represents the request body for the RAG query endpoint.
// ID is a user id for user-history queries, or the thread parent message id
// when IsParentThread is set.
// @Description RAG query payload
type QueryRequest struct {
	Query          string `json:"query" example:"What does this file describe?"`
	ID             string `json:"id" example:"7ad24c7e-12f0-49a8-bf5c-a8c3f81d9f01"`
	IsParentThread bool   `json:"isParentThread" example:"false"`
}

// QueryResponse represents the response from the RAG query endpoint
// @Description RAG query response payload
type QueryResponse struct {
	Response string `json:"response,omitempty"`         // Generated answer text
	Error    string `json:"error,omitempty" example:""` // Error message if any
}

// SendMessageRequest represents the request body for posting a message
// @Description New chat message payload
type SendMessageRequest struct {
	UserID    string  `json:"user_id"`
	ChannelID string  `json:"channel_id"`
	ParentID  *string `json:"parent_id,omitempty"`
	Text      string  `json:"message"`
	FileURL   *string `json:"file_url,omitempty"`
}

// SendMessageResponse represents the response after posting a message
// @Description New chat message response
type SendMessageResponse struct {
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty" example:""`
}

// VoiceSessionRequest represents the request body for voice session setup
// @Description Voice session setup payload
type VoiceSessionRequest struct {
	OtherParticipantID string `json:"otherParticipantId"`
	DisplayName        string `json:"displayName" example:"morgan"`
}

// VoiceSessionResponse represents the voice session configuration handed to
// the realtime transport layer
// @Description Voice session configuration
type VoiceSessionResponse struct {
	Session interface{} `json:"session,omitempty"`
	Error   string      `json:"error,omitempty" example:""`
}
