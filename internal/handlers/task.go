package handlers

import (
	"fmt"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"
	"github.com/Netero03/GoalToTaskAI-server/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskHandler handles REST endpoints for tasks
type TaskHandler struct {
	tasks     *services.TaskStore
	aggregate *services.AggregateService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *services.TaskStore, aggregate *services.AggregateService) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		aggregate: aggregate,
	}
}

// Create appends a task at the end of a project's display sequence
// POST /api/tasks
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	var body struct {
		ProjectID      string              `json:"project_id"`
		Title          string              `json:"title"`
		Description    string              `json:"description"`
		EstimatedHours float64             `json:"estimated_hours"`
		Priority       models.TaskPriority `json:"priority"`
		AssigneeID     string              `json:"assignee_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	projectID, err := primitive.ObjectIDFromHex(body.ProjectID)
	if err != nil {
		return respondError(c, apperr.Validation("invalid task", apperr.FieldViolation{
			Field: "project_id", Message: "must be a valid object id",
		}))
	}

	var assigneeID *primitive.ObjectID
	if body.AssigneeID != "" {
		oid, err := primitive.ObjectIDFromHex(body.AssigneeID)
		if err != nil {
			return respondError(c, apperr.Validation("invalid task", apperr.FieldViolation{
				Field: "assignee_id", Message: "must be a valid object id",
			}))
		}
		assigneeID = &oid
	}

	task, err := h.tasks.Append(c.Context(), projectID, userID, models.TaskSpec{
		Title:          body.Title,
		Description:    body.Description,
		EstimatedHours: body.EstimatedHours,
		Priority:       body.Priority,
	}, assigneeID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"task": task})
}

// Get returns a single task (owner of the parent project only)
// GET /api/tasks/:id
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)
	taskID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid task ID"})
	}

	task, err := h.tasks.GetByID(c.Context(), taskID, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"task": task})
}

// taskUpdateBody distinguishes absent fields from explicit nulls for the
// assignee, so `"assignee_id": null` clears it while omission leaves it.
type taskUpdateBody struct {
	Title          *string              `json:"title"`
	Description    *string              `json:"description"`
	EstimatedHours *float64             `json:"estimated_hours"`
	Priority       *models.TaskPriority `json:"priority"`
	Status         *models.TaskStatus   `json:"status"`
	Order          *int                 `json:"order"`
	AssigneeID     *string              `json:"assignee_id"`
}

// Update applies a partial update over the allow-listed task fields
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)
	taskID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid task ID"})
	}

	var body taskUpdateBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	update := models.TaskUpdate{
		Title:          body.Title,
		Description:    body.Description,
		EstimatedHours: body.EstimatedHours,
		Priority:       body.Priority,
		Status:         body.Status,
		Order:          body.Order,
	}
	if body.AssigneeID != nil {
		if *body.AssigneeID == "" {
			update.ClearAssignee = true
		} else {
			oid, err := primitive.ObjectIDFromHex(*body.AssigneeID)
			if err != nil {
				return respondError(c, apperr.Validation("invalid task update", apperr.FieldViolation{
					Field: "assignee_id", Message: "must be a valid object id",
				}))
			}
			update.AssigneeID = &oid
		}
	}

	task, err := h.tasks.Update(c.Context(), taskID, userID, update)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"task": task})
}

// Delete removes a single task
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)
	taskID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid task ID"})
	}

	if err := h.tasks.Delete(c.Context(), taskID, userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}

// Reorder applies a batched order/status update to a project's tasks
// PUT /api/tasks/reorder
func (h *TaskHandler) Reorder(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	var body struct {
		ProjectID string `json:"project_id"`
		Orders    []struct {
			TaskID string             `json:"task_id"`
			Order  int                `json:"order"`
			Status *models.TaskStatus `json:"status"`
		} `json:"orders"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	projectID, err := primitive.ObjectIDFromHex(body.ProjectID)
	if err != nil {
		return respondError(c, apperr.Validation("invalid reorder", apperr.FieldViolation{
			Field: "project_id", Message: "must be a valid object id",
		}))
	}

	assignments := make([]models.OrderAssignment, len(body.Orders))
	for i, o := range body.Orders {
		taskID, err := primitive.ObjectIDFromHex(o.TaskID)
		if err != nil && o.TaskID != "" {
			return respondError(c, apperr.Validation("invalid reorder", apperr.FieldViolation{
				Field: fmt.Sprintf("orders[%d].task_id", i), Message: "must be a valid object id",
			}))
		}
		assignments[i] = models.OrderAssignment{
			TaskID: taskID,
			Order:  o.Order,
			Status: o.Status,
		}
	}

	if err := h.aggregate.BulkReorder(c.Context(), projectID, userID, assignments); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"status": "reordered"})
}
