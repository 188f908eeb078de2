package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chatrag/internal/models"
	"chatrag/internal/voice"

	"github.com/labstack/echo/v4"
)

const voiceSessionTimeout = 60 * time.Second

// PersonaSource derives a persona description for a user.
type PersonaSource interface {
	DerivePersona(ctx context.Context, userID, displayName string) string
}

// VoiceSessionHandler builds the realtime voice session configuration for a
// conversation with the given participant. Persona derivation can only
// degrade to the default persona, so this endpoint fails solely on bad
// input.
// @Summary Create a voice session configuration
// @Description Derive the participant's persona from their chat history and build the realtime session payload
// @Tags voice
// @Accept json
// @Produce json
// @Param request body models.VoiceSessionRequest true "Voice session request"
// @Success 200 {object} models.VoiceSessionResponse
// @Failure 400 {object} models.VoiceSessionResponse
// @Router /api/voice/session [post]
func VoiceSessionHandler(personas PersonaSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.VoiceSessionRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.VoiceSessionResponse{
				Error: fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		if req.OtherParticipantID == "" {
			return c.JSON(http.StatusBadRequest, models.VoiceSessionResponse{
				Error: "otherParticipantId is required",
			})
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), voiceSessionTimeout)
		defer cancel()

		persona := personas.DerivePersona(ctx, req.OtherParticipantID, req.DisplayName)
		selected := voice.SelectVoice(persona)
		fmt.Printf("[VOICE] Session for %s using voice %s\n", req.OtherParticipantID, selected)

		session := voice.BuildSessionConfig(req.DisplayName, persona, selected)
		return c.JSON(http.StatusOK, models.VoiceSessionResponse{Session: session})
	}
}
