package handlers

import (
	"github.com/Netero03/GoalToTaskAI-server/internal/services"

	"github.com/gofiber/fiber/v2"
)

// GoalHandler exposes the free-text-to-task-breakdown endpoint. The result
// is returned to the client for review; nothing is persisted here. The
// client submits the (possibly edited) breakdown to POST /api/projects/from-ai,
// so generation is always finished before any transaction opens.
type GoalHandler struct {
	planner *services.PlannerService
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(planner *services.PlannerService) *GoalHandler {
	return &GoalHandler{planner: planner}
}

// Generate turns a free-text goal into a structured task breakdown
// POST /api/goals/generate
func (h *GoalHandler) Generate(c *fiber.Ctx) error {
	var body struct {
		Goal string `json:"goal"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	breakdown, err := h.planner.GenerateFromGoal(c.Context(), body.Goal)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": breakdown})
}
