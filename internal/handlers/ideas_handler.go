package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/identity"
	"github.com/originhub/originhub-api/internal/models"
	"github.com/originhub/originhub-api/internal/repository"
	"github.com/originhub/originhub-api/internal/services"
)

type IdeasService interface {
	List(ctx context.Context, filter repository.IdeaFilter) ([]models.Idea, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Idea, error)
	Create(ctx context.Context, req dto.CreateIdeaRequest) (*models.Idea, error)
	Add(ctx context.Context, req dto.CreateIdeaRequest) (*models.Idea, error)
	Update(ctx context.Context, id uuid.UUID, requesterID string, req dto.UpdateIdeaRequest) (*models.Idea, error)
	Delete(ctx context.Context, id uuid.UUID, requesterID string) error
	RecordView(ctx context.Context, id uuid.UUID) (int, error)
	ToggleUpvote(ctx context.Context, id uuid.UUID, requesterID string) (bool, int, error)
}

type IdeasHandler struct {
	ideas IdeasService
}

func NewIdeasHandler(ideas IdeasService) *IdeasHandler {
	return &IdeasHandler{ideas: ideas}
}

// List serves GET /ideas?search=&tags=a,b&sort_by=createdAt|title.
func (h *IdeasHandler) List(c *fiber.Ctx) error {
	filter := repository.IdeaFilter{
		Search: c.Query("search"),
		Tags:   repository.ParseTags(c.Query("tags")),
		SortBy: repository.ParseSort(c.Query("sort_by")),
	}

	ideas, err := h.ideas.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.JSON(dto.Response{
		Success: true,
		Data:    dto.IdeaListResponse{Ideas: ideas},
		Message: "ideas retrieved",
	})
}

func (h *IdeasHandler) Get(c *fiber.Ctx) error {
	id, err := ideaID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	idea, err := h.ideas.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.JSON(dto.Response{Success: true, Data: idea, Message: "idea retrieved"})
}

func (h *IdeasHandler) Create(c *fiber.Ctx) error {
	return h.create(c, h.ideas.Create)
}

// Add is the lenient create used by older clients.
func (h *IdeasHandler) Add(c *fiber.Ctx) error {
	return h.create(c, h.ideas.Add)
}

func (h *IdeasHandler) create(c *fiber.Ctx, create func(context.Context, dto.CreateIdeaRequest) (*models.Idea, error)) error {
	var req dto.CreateIdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if req.UserID == nil || strings.TrimSpace(*req.UserID) == "" {
		if requester := identity.RequesterID(c); requester != "" {
			req.UserID = &requester
		}
	}

	idea, err := create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Response{
		Success: true,
		Data:    dto.CreateIdeaResponse{ID: idea.ID.String(), Idea: idea},
		Message: "idea created",
	})
}

func (h *IdeasHandler) Update(c *fiber.Ctx) error {
	id, err := ideaID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	var req dto.UpdateIdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	idea, err := h.ideas.Update(c.UserContext(), id, identity.RequesterID(c), req)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.JSON(dto.Response{Success: true, Data: idea, Message: "idea updated"})
}

func (h *IdeasHandler) Delete(c *fiber.Ctx) error {
	id, err := ideaID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	if err := h.ideas.Delete(c.UserContext(), id, identity.RequesterID(c)); err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.JSON(dto.Response{
		Success: true,
		Data:    fiber.Map{"id": id.String()},
		Message: "idea deleted",
	})
}

func (h *IdeasHandler) View(c *fiber.Ctx) error {
	id, err := ideaID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	views, err := h.ideas.RecordView(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.JSON(dto.Response{
		Success: true,
		Data:    dto.ViewResponse{IdeaID: id.String(), Views: views},
		Message: "view recorded",
	})
}

func (h *IdeasHandler) Upvote(c *fiber.Ctx) error {
	id, err := ideaID(c)
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}
	upvoted, count, err := h.ideas.ToggleUpvote(c.UserContext(), id, identity.RequesterID(c))
	if err != nil {
		return respondError(c, err, fiber.StatusUnprocessableEntity)
	}

	msg := "upvote removed"
	if upvoted {
		msg = "idea upvoted"
	}
	return c.JSON(dto.Response{
		Success: true,
		Data:    dto.UpvoteResponse{IdeaID: id.String(), Upvoted: upvoted, Upvotes: count},
		Message: msg,
	})
}

// ideaID parses :id; a malformed id cannot name an idea, so it is a 404.
func ideaID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, services.ErrIdeaNotFound
	}
	return id, nil
}
