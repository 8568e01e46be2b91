package services

import (
	"fmt"
	"strings"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Input validation for the aggregate operations. Violations are collected
// exhaustively so a validation error names every bad field, not just the
// first one encountered.

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
)

func validateProjectInput(title string, visibility models.Visibility) []apperr.FieldViolation {
	var violations []apperr.FieldViolation
	if strings.TrimSpace(title) == "" {
		violations = append(violations, apperr.FieldViolation{Field: "title", Message: "is required"})
	} else if len(title) > maxTitleLen {
		violations = append(violations, apperr.FieldViolation{Field: "title", Message: fmt.Sprintf("must be at most %d characters", maxTitleLen)})
	}
	if visibility != "" && !models.ValidVisibility(visibility) {
		violations = append(violations, apperr.FieldViolation{Field: "visibility", Message: "must be one of private, team, public"})
	}
	return violations
}

func validateProjectUpdate(update models.ProjectUpdate) []apperr.FieldViolation {
	var violations []apperr.FieldViolation
	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			violations = append(violations, apperr.FieldViolation{Field: "title", Message: "must not be empty"})
		} else if len(*update.Title) > maxTitleLen {
			violations = append(violations, apperr.FieldViolation{Field: "title", Message: fmt.Sprintf("must be at most %d characters", maxTitleLen)})
		}
	}
	if update.Description != nil && len(*update.Description) > maxDescriptionLen {
		violations = append(violations, apperr.FieldViolation{Field: "description", Message: fmt.Sprintf("must be at most %d characters", maxDescriptionLen)})
	}
	if update.Visibility != nil && !models.ValidVisibility(*update.Visibility) {
		violations = append(violations, apperr.FieldViolation{Field: "visibility", Message: "must be one of private, team, public"})
	}
	return violations
}

// validateTaskSpec checks one task spec. fieldPrefix namespaces violations
// when the spec is one element of a batch ("tasks[2].title").
func validateTaskSpec(spec models.TaskSpec, fieldPrefix string) []apperr.FieldViolation {
	var violations []apperr.FieldViolation
	if strings.TrimSpace(spec.Title) == "" {
		violations = append(violations, apperr.FieldViolation{Field: fieldPrefix + "title", Message: "is required"})
	} else if len(spec.Title) > maxTitleLen {
		violations = append(violations, apperr.FieldViolation{Field: fieldPrefix + "title", Message: fmt.Sprintf("must be at most %d characters", maxTitleLen)})
	}
	if spec.EstimatedHours < 0 {
		violations = append(violations, apperr.FieldViolation{Field: fieldPrefix + "estimated_hours", Message: "must not be negative"})
	}
	if spec.Priority != "" && !models.ValidPriority(spec.Priority) {
		violations = append(violations, apperr.FieldViolation{Field: fieldPrefix + "priority", Message: "must be one of high, medium, low"})
	}
	return violations
}

// validateTaskSpecs checks a batch: it must be non-empty and every spec must
// be valid on its own.
func validateTaskSpecs(specs []models.TaskSpec) []apperr.FieldViolation {
	if len(specs) == 0 {
		return []apperr.FieldViolation{{Field: "tasks", Message: "must be a non-empty array"}}
	}
	var violations []apperr.FieldViolation
	for i, spec := range specs {
		violations = append(violations, validateTaskSpec(spec, fmt.Sprintf("tasks[%d].", i))...)
	}
	return violations
}

func validateTaskUpdate(update models.TaskUpdate) []apperr.FieldViolation {
	var violations []apperr.FieldViolation
	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			violations = append(violations, apperr.FieldViolation{Field: "title", Message: "must not be empty"})
		} else if len(*update.Title) > maxTitleLen {
			violations = append(violations, apperr.FieldViolation{Field: "title", Message: fmt.Sprintf("must be at most %d characters", maxTitleLen)})
		}
	}
	if update.Description != nil && len(*update.Description) > maxDescriptionLen {
		violations = append(violations, apperr.FieldViolation{Field: "description", Message: fmt.Sprintf("must be at most %d characters", maxDescriptionLen)})
	}
	if update.EstimatedHours != nil && *update.EstimatedHours < 0 {
		violations = append(violations, apperr.FieldViolation{Field: "estimated_hours", Message: "must not be negative"})
	}
	if update.Priority != nil && !models.ValidPriority(*update.Priority) {
		violations = append(violations, apperr.FieldViolation{Field: "priority", Message: "must be one of high, medium, low"})
	}
	if update.Status != nil && !models.ValidStatus(*update.Status) {
		violations = append(violations, apperr.FieldViolation{Field: "status", Message: "must be one of todo, inprogress, done"})
	}
	return violations
}

// validateAssignments checks a bulk reorder request against the tasks
// actually belonging to the project. Every referenced task must belong to
// the project, the assignment count must match the resolved task count
// (duplicates therefore fail too), and any status must be a valid value.
func validateAssignments(assignments []models.OrderAssignment, owned map[primitive.ObjectID]bool) []apperr.FieldViolation {
	var violations []apperr.FieldViolation
	if len(assignments) == 0 {
		return []apperr.FieldViolation{{Field: "orders", Message: "must be a non-empty array"}}
	}

	seen := make(map[primitive.ObjectID]bool, len(assignments))
	for i, a := range assignments {
		if a.TaskID.IsZero() {
			violations = append(violations, apperr.FieldViolation{Field: fmt.Sprintf("orders[%d].task_id", i), Message: "is required"})
			continue
		}
		if seen[a.TaskID] {
			violations = append(violations, apperr.FieldViolation{Field: fmt.Sprintf("orders[%d].task_id", i), Message: "is listed more than once"})
		}
		seen[a.TaskID] = true
		if !owned[a.TaskID] {
			violations = append(violations, apperr.FieldViolation{Field: fmt.Sprintf("orders[%d].task_id", i), Message: "does not belong to this project"})
		}
		if a.Status != nil && !models.ValidStatus(*a.Status) {
			violations = append(violations, apperr.FieldViolation{Field: fmt.Sprintf("orders[%d].status", i), Message: "must be one of todo, inprogress, done"})
		}
	}
	return violations
}
