package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/identity"
	"github.com/originhub/originhub-api/internal/models"
	"github.com/originhub/originhub-api/internal/services"
)

type CommentService interface {
	Create(ctx context.Context, ideaID uuid.UUID, userID string, req dto.CreateCommentRequest) (*models.Comment, error)
	Tree(ctx context.Context, ideaID uuid.UUID) ([]*dto.CommentNode, error)
	Delete(ctx context.Context, ideaID, commentID uuid.UUID, requesterID string) error
}

type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	id, err := ideaID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	tree, err := h.comments.Tree(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.JSON(dto.CommentListResponse{
		Success: true,
		Data:    tree,
		Total:   len(tree),
		Message: fmt.Sprintf("Found %d comments", len(tree)),
	})
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	id, err := ideaID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	comment, err := h.comments.Create(c.UserContext(), id, identity.RequesterID(c), req)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Response{
		Success: true,
		Data:    comment,
		Message: "comment created",
	})
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	ideaUUID, err := ideaID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	commentID, err := uuid.Parse(c.Params("comment_id"))
	if err != nil {
		return respondError(c, services.ErrCommentNotFound, fiber.StatusUnprocessableEntity)
	}

	if err := h.comments.Delete(c.UserContext(), ideaUUID, commentID, identity.RequesterID(c)); err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.JSON(dto.Response{Success: true, Message: "comment deleted"})
}
