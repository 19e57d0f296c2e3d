package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/services"
	"github.com/originhub/originhub-api/internal/webhook"
)

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, Detail: msg})
}

// respondError maps domain errors to statuses. validationStatus lets the
// webhook route answer 400 where the ideas routes answer 422.
func respondError(c *fiber.Ctx, err error, validationStatus int) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(validationStatus).JSON(dto.ErrorResponse{
			Error:  verr.Error(),
			Detail: verr.Error(),
			Fields: verr.Fields,
		})
	case errors.Is(err, services.ErrIdeaNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrChatNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotIdeaOwner),
		errors.Is(err, services.ErrCommentForbidden),
		errors.Is(err, services.ErrNotChatOwner):
		return errorJSON(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, webhook.ErrMissingHeaders), errors.Is(err, webhook.ErrInvalidTimestamp):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, webhook.ErrSecretNotConfigured),
		errors.Is(err, webhook.ErrTimestampOutOfRange),
		errors.Is(err, webhook.ErrInvalidSignature):
		return errorJSON(c, fiber.StatusUnauthorized, "webhook verification failed: "+err.Error())
	}

	slog.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"error", err,
	)
	return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
