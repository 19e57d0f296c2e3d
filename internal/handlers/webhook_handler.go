package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/webhook"
)

type UserSyncer interface {
	Apply(ctx context.Context, deliveryID string, body []byte) (*dto.WebhookResult, error)
}

type WebhookHandler struct {
	verifier *webhook.Verifier
	users    UserSyncer
}

func NewWebhookHandler(verifier *webhook.Verifier, users UserSyncer) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, users: users}
}

// HandleClerk verifies the svix signature before anything is applied.
func (h *WebhookHandler) HandleClerk(c *fiber.Ctx) error {
	// fasthttp reuses the body buffer after the handler returns.
	body := append([]byte(nil), c.Body()...)
	id := c.Get(webhook.HeaderID)

	if err := h.verifier.Verify(body, id, c.Get(webhook.HeaderTimestamp), c.Get(webhook.HeaderSignature)); err != nil {
		slog.Warn("webhook rejected", "delivery_id", id, "ip", c.IP(), "error", err)
		return respondError(c, err, fiber.StatusBadRequest)
	}

	result, err := h.users.Apply(c.UserContext(), id, body)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}

	msg := "event processed"
	switch {
	case result.Duplicate:
		msg = "event already processed"
	case !result.Handled:
		msg = "event ignored"
	}
	slog.Info("webhook processed", "event", result.Event, "delivery_id", id, "user_id", result.UserID, "handled", result.Handled)
	return c.JSON(dto.Response{Success: true, Data: result, Message: msg})
}
