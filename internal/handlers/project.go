package handlers

import (
	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"
	"github.com/Netero03/GoalToTaskAI-server/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectHandler handles REST endpoints for the project aggregate
type ProjectHandler struct {
	projects  *services.ProjectStore
	tasks     *services.TaskStore
	aggregate *services.AggregateService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *services.ProjectStore, tasks *services.TaskStore, aggregate *services.AggregateService) *ProjectHandler {
	return &ProjectHandler{
		projects:  projects,
		tasks:     tasks,
		aggregate: aggregate,
	}
}

// Create creates a new project without tasks
// POST /api/projects
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	var body struct {
		Title       string                 `json:"title"`
		Description string                 `json:"description"`
		Visibility  models.Visibility      `json:"visibility"`
		Metadata    map[string]interface{} `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	project := &models.Project{
		Title:       body.Title,
		Description: body.Description,
		OwnerID:     userID,
		Visibility:  body.Visibility,
		Metadata:    body.Metadata,
	}
	if err := h.projects.Create(c.Context(), project); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": project})
}

// CreateWithTasks atomically creates a project together with its tasks,
// typically from a planner breakdown the client reviewed.
// POST /api/projects/from-ai
func (h *ProjectHandler) CreateWithTasks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	var body struct {
		Title               string            `json:"title"`
		Description         string            `json:"description"`
		Visibility          models.Visibility `json:"visibility"`
		EstimatedTotalHours *float64          `json:"estimated_total_hours"`
		Tasks               []models.TaskSpec `json:"tasks"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.aggregate.CreateProjectWithTasks(c.Context(), userID, services.CreateProjectInput{
		Title:               body.Title,
		Description:         body.Description,
		Visibility:          body.Visibility,
		EstimatedTotalHours: body.EstimatedTotalHours,
		TaskSpecs:           body.Tasks,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": result})
}

// List returns the requester's projects, paged
// GET /api/projects?page=&limit=&visibility=
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	filters := services.ProjectFilters{
		Visibility: models.Visibility(c.Query("visibility")),
		Page:       int64(c.QueryInt("page", 1)),
		Limit:      int64(c.QueryInt("limit", 20)),
	}
	if filters.Visibility != "" && !models.ValidVisibility(filters.Visibility) {
		return respondError(c, apperr.Validation("invalid filters", apperr.FieldViolation{
			Field: "visibility", Message: "must be one of private, team, public",
		}))
	}

	projects, total, err := h.projects.List(c.Context(), userID, filters)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"total":    total,
		"page":     filters.Page,
		"limit":    filters.Limit,
		"projects": projects,
	})
}

// Get returns a project with its tasks in display order
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)
	projectID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid project ID"})
	}

	project, err := h.projects.RequireOwner(c.Context(), projectID, userID)
	if err != nil {
		return respondError(c, err)
	}

	tasks, err := h.tasks.ListOrdered(c.Context(), projectID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"project": models.ProjectWithTasks{Project: *project, Tasks: tasks}})
}

// Update applies a partial update over the mutable project fields
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)
	projectID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid project ID"})
	}

	var update models.ProjectUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	project, err := h.projects.Update(c.Context(), projectID, userID, update)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"project": project})
}

// Delete removes a project and every task it owns, atomically
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)
	projectID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid project ID"})
	}

	if err := h.aggregate.DeleteProjectCascade(c.Context(), projectID, userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}
