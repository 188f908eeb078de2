package rag

import (
	"fmt"
	"strings"

	"chatrag/internal/models"
)

// Mode selects the system-prompt framing and context source for a query.
type Mode string

const (
	// ModeUserHistory grounds the answer in a user's retrieved message
	// history.
	ModeUserHistory Mode = "user_history"
	// ModeThreadAttachment grounds the answer in the extracted text of a
	// thread parent's attachment.
	ModeThreadAttachment Mode = "thread_attachment"
)

// NoContextMarker is rendered when retrieval finds nothing. The downstream
// prompt expects this literal rather than an empty block.
const NoContextMarker = "No relevant context found."

// BuildUserHistoryContext renders ranked candidates into the context block,
// one entry per candidate with its relevance scores as percentages.
func BuildUserHistoryContext(candidates []models.RetrievalCandidate) string {
	if len(candidates) == 0 {
		return NoContextMarker
	}

	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, fmt.Sprintf(
			"Message: %s\nRelevance Scores: Combined: %.2f%%, Vector: %.2f%%, Text: %.2f%%\n",
			c.Text, c.CombinedScore*100, c.VectorScore*100, c.TextScore*100))
	}
	return strings.Join(parts, "\n")
}

// BuildThreadContext passes the attachment's extracted text through as the
// context block. The thread prompt promises file-grounded analysis, so an
// absent or empty text is an error rather than a silent empty context.
func BuildThreadContext(extractedText string) (string, error) {
	if strings.TrimSpace(extractedText) == "" {
		return "", ErrMissingThreadContext
	}
	return extractedText, nil
}
