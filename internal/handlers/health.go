package handlers

import (
	"time"

	"github.com/Netero03/GoalToTaskAI-server/internal/database"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler exposes liveness and readiness endpoints
type HealthHandler struct {
	db *database.MongoDB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.MongoDB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Live reports process liveness
// GET /health
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true, "time": time.Now()})
}

// Ready reports whether the store is reachable
// GET /health/ready
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"ok":    false,
			"error": "database unreachable",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}
