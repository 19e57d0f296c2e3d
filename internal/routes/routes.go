package routes

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/originhub/originhub-api/internal/config"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/handlers"
	"github.com/originhub/originhub-api/internal/middleware"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Ideas    *handlers.IdeasHandler
	Comments *handlers.CommentHandler
	Chat     *handlers.ChatHandler
	Webhook  *handlers.WebhookHandler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.Check)

	// Signed provider deliveries are neither rate limited nor identity checked.
	app.Post("/webhooks/clerk", h.Webhook.HandleClerk)

	// General API rate limiter: 120 req/min per IP
	api := app.Group("", limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || strings.HasPrefix(c.Path(), "/webhooks/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error:  "rate limit exceeded",
				Detail: "rate limit exceeded",
			})
		},
	}), middleware.BearerAuth(cfg))

	user := middleware.RequireUser()

	ideas := api.Group("/ideas")
	ideas.Get("/", h.Ideas.List)
	ideas.Post("/", h.Ideas.Create)
	ideas.Post("/add", h.Ideas.Add)
	ideas.Get("/:id", h.Ideas.Get)
	ideas.Put("/:id", user, h.Ideas.Update)
	ideas.Delete("/:id", user, h.Ideas.Delete)
	ideas.Post("/:id/view", h.Ideas.View)
	ideas.Post("/:id/upvote", user, h.Ideas.Upvote)

	ideas.Get("/:id/comments", h.Comments.List)
	ideas.Post("/:id/comments", user, h.Comments.Create)
	ideas.Delete("/:id/comments/:comment_id", user, h.Comments.Delete)

	api.Post("/chat", h.Chat.Stub)

	chats := api.Group("/chats", user)
	chats.Post("/", h.Chat.Create)
	chats.Get("/", h.Chat.List)
	chats.Get("/:id/messages", h.Chat.Messages)
	chats.Post("/:id/messages", h.Chat.Send)
	chats.Delete("/:id", h.Chat.Delete)
}
