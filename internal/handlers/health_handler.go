package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PingFunc reports database reachability.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	ping PingFunc
}

func NewHealthHandler(ping PingFunc) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "OriginHub API is running"})
}

// Check always answers 200; a missing database only degrades the status.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := fiber.Map{
		"success":   true,
		"status":    "healthy",
		"api":       "running",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.ping(ctx); err != nil {
		resp["status"] = "degraded"
		resp["database"] = "disconnected"
		resp["database_error"] = err.Error()
	}
	return c.JSON(resp)
}
