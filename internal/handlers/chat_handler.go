package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/identity"
	"github.com/originhub/originhub-api/internal/models"
	"github.com/originhub/originhub-api/internal/services"
)

type ChatService interface {
	Create(ctx context.Context, userID string) (*models.Chat, error)
	List(ctx context.Context, userID string) ([]models.Chat, error)
	Messages(ctx context.Context, chatID uuid.UUID, userID string) ([]models.Message, error)
	Send(ctx context.Context, chatID uuid.UUID, userID, text string) (*dto.SendMessageResponse, error)
	Delete(ctx context.Context, chatID uuid.UUID, userID string) error
}

type ChatHandler struct {
	chats ChatService
}

func NewChatHandler(chats ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// Stub serves POST /chat: a canned reply, nothing stored.
func (h *ChatHandler) Stub(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	reply, err := services.StubReply(req.Message)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(dto.Response{
		Success: true,
		Data:    dto.ChatReply{Response: reply},
		Message: "Chat response generated successfully",
	})
}

func (h *ChatHandler) Create(c *fiber.Ctx) error {
	chat, err := h.chats.Create(c.UserContext(), identity.RequesterID(c))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Response{Success: true, Data: chat, Message: "chat created"})
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	chats, err := h.chats.List(c.UserContext(), identity.RequesterID(c))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(dto.Response{Success: true, Data: fiber.Map{"chats": chats}, Message: "chats retrieved"})
}

func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	messages, err := h.chats.Messages(c.UserContext(), id, identity.RequesterID(c))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(dto.Response{Success: true, Data: fiber.Map{"messages": messages}, Message: "messages retrieved"})
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	res, err := h.chats.Send(c.UserContext(), id, identity.RequesterID(c), req.Message)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(dto.Response{Success: true, Data: res, Message: "message sent"})
}

func (h *ChatHandler) Delete(c *fiber.Ctx) error {
	id, err := chatID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	if err := h.chats.Delete(c.UserContext(), id, identity.RequesterID(c)); err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(dto.Response{Success: true, Message: "chat deleted"})
}

func chatID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, services.ErrChatNotFound
	}
	return id, nil
}
