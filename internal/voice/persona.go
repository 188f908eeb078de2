package voice

import (
	"context"
	"fmt"
	"strings"
)

// DefaultPersona is substituted whenever persona derivation fails. Voice
// session setup must never be blocked by a persona failure.
const DefaultPersona = "Respond naturally in English."

const personaQueryTemplate = `Analyze %s's chat history and provide:
1. Their preferred pronouns (she/her, he/him, they/them)
2. Key personality traits (pick from: young, energetic, playful, warm, friendly, nurturing, deep, authoritative, serious, gentle, calm, wise)
3. Brief description of their speaking style and interests.
Format as: "Pronouns: [pronouns]. Traits: [traits]. Description: [1-2 sentences about speaking style and interests]"`

// HistoryAnswerer is the slice of the RAG pipeline the persona extractor
// drives.
type HistoryAnswerer interface {
	AnswerUserHistoryQuery(ctx context.Context, query, userID string) (string, error)
}

// PersonaExtractor derives a compact persona description for a user from
// their chat history, for voice-session initialization.
type PersonaExtractor struct {
	pipeline HistoryAnswerer
}

// NewPersonaExtractor creates a new persona extractor
func NewPersonaExtractor(pipeline HistoryAnswerer) *PersonaExtractor {
	return &PersonaExtractor{pipeline: pipeline}
}

// DerivePersona runs the structured persona query through the user-history
// pipeline. All failures collapse to DefaultPersona; the persona is a
// best-effort nicety, never a blocker.
func (pe *PersonaExtractor) DerivePersona(ctx context.Context, userID, displayName string) string {
	query := fmt.Sprintf(personaQueryTemplate, displayName)

	persona, err := pe.pipeline.AnswerUserHistoryQuery(ctx, query, userID)
	if err != nil {
		fmt.Printf("[PERSONA] Falling back to default persona for user %s: %v\n", userID, err)
		return DefaultPersona
	}
	if strings.TrimSpace(persona) == "" {
		return DefaultPersona
	}

	return persona
}
