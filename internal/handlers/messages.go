package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"chatrag/internal/models"

	"github.com/labstack/echo/v4"
)

// MessageWriter is the persistence surface of the message send/delete paths.
type MessageWriter interface {
	Create(ctx context.Context, msg *models.Message) error
	Delete(ctx context.Context, id string) error
}

// JobEnqueuer records that a stored message needs an embedding.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, messageID string) error
}

// AttachmentCleaner removes attachment artifacts for a message.
type AttachmentCleaner interface {
	DeleteForMessage(ctx context.Context, messageID string) error
}

// SendMessageHandler stores a new message and enqueues its embedding job.
// The embedding itself happens in the background worker; send returns as
// soon as the row and the job are persisted.
// @Summary Send a chat message
// @Description Store a new message and schedule its embedding computation
// @Tags messages
// @Accept json
// @Produce json
// @Param request body models.SendMessageRequest true "New message"
// @Success 201 {object} models.SendMessageResponse
// @Failure 400 {object} models.SendMessageResponse
// @Failure 500 {object} models.SendMessageResponse
// @Router /api/messages [post]
func SendMessageHandler(store MessageWriter, jobs JobEnqueuer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.SendMessageRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.SendMessageResponse{
				Error: fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		if strings.TrimSpace(req.Text) == "" {
			return c.JSON(http.StatusBadRequest, models.SendMessageResponse{
				Error: "Message cannot be empty",
			})
		}
		if req.UserID == "" || req.ChannelID == "" {
			return c.JSON(http.StatusBadRequest, models.SendMessageResponse{
				Error: "user_id and channel_id are required",
			})
		}

		msg := &models.Message{
			UserID:    req.UserID,
			ChannelID: req.ChannelID,
			ParentID:  req.ParentID,
			Text:      req.Text,
			FileURL:   req.FileURL,
		}

		ctx := c.Request().Context()
		if err := store.Create(ctx, msg); err != nil {
			fmt.Printf("[MESSAGES] ERROR: Failed to store message: %v\n", err)
			return c.JSON(http.StatusInternalServerError, models.SendMessageResponse{
				Error: "Failed to store message",
			})
		}

		// The send path must not fail when the outbox write does: the
		// backfill tool picks up any message left without an embedding.
		if err := jobs.Enqueue(ctx, msg.ID); err != nil {
			fmt.Printf("[MESSAGES] WARNING: Failed to enqueue embedding job for %s: %v\n", msg.ID, err)
		}

		return c.JSON(http.StatusCreated, models.SendMessageResponse{Message: msg})
	}
}

// DeleteMessageHandler removes a message and its attachment artifacts.
// Attachment text goes first so a failed delete never leaves orphaned
// extracted text behind a missing message.
// @Summary Delete a chat message
// @Description Remove a message and any extracted attachment text
// @Tags messages
// @Produce json
// @Success 200 {object} models.SendMessageResponse
// @Failure 404 {object} models.SendMessageResponse
// @Failure 500 {object} models.SendMessageResponse
// @Router /api/messages/{id} [delete]
func DeleteMessageHandler(store MessageWriter, attachments AttachmentCleaner) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if id == "" {
			return c.JSON(http.StatusBadRequest, models.SendMessageResponse{
				Error: "Message id is required",
			})
		}

		ctx := c.Request().Context()
		if err := attachments.DeleteForMessage(ctx, id); err != nil {
			fmt.Printf("[MESSAGES] ERROR: Failed to delete attachment text for %s: %v\n", id, err)
			return c.JSON(http.StatusInternalServerError, models.SendMessageResponse{
				Error: "Failed to delete attachment text",
			})
		}

		if err := store.Delete(ctx, id); err != nil {
			if strings.Contains(err.Error(), "not found") {
				return c.JSON(http.StatusNotFound, models.SendMessageResponse{
					Error: fmt.Sprintf("Message %s not found", id),
				})
			}
			fmt.Printf("[MESSAGES] ERROR: Failed to delete message %s: %v\n", id, err)
			return c.JSON(http.StatusInternalServerError, models.SendMessageResponse{
				Error: "Failed to delete message",
			})
		}

		return c.JSON(http.StatusOK, models.SendMessageResponse{})
	}
}
