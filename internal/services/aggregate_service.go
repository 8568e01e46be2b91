package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/database"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AggregateService coordinates the multi-record mutations that need real
// cross-record consistency: creating a project together with its tasks,
// deleting a project with every task it owns, and bulk reordering. Each
// operation opens exactly one transaction; ownership checks and membership
// validation run inside it against the session's view of the data. No
// external call is ever made while a transaction is open — callers complete
// generation and validation first.
type AggregateService struct {
	db       *database.MongoDB
	projects *ProjectStore
	tasks    *TaskStore
	metrics  *Metrics
}

// NewAggregateService creates the transaction coordinator.
func NewAggregateService(db *database.MongoDB, projects *ProjectStore, tasks *TaskStore, metrics *Metrics) *AggregateService {
	return &AggregateService{
		db:       db,
		projects: projects,
		tasks:    tasks,
		metrics:  metrics,
	}
}

// CreateProjectInput is the batch create request: a project plus at least
// one task spec.
type CreateProjectInput struct {
	Title               string
	Description         string
	Visibility          models.Visibility
	Metadata            map[string]interface{}
	EstimatedTotalHours *float64
	TaskSpecs           []models.TaskSpec
}

// CreateProjectWithTasks atomically creates a project and its tasks. Tasks
// get order = index in input order. Any other reader sees the aggregate
// either fully formed (project plus all n tasks) or not at all; on any
// failure the whole scope aborts and nothing persists.
func (s *AggregateService) CreateProjectWithTasks(ctx context.Context, ownerID primitive.ObjectID, input CreateProjectInput) (*models.ProjectWithTasks, error) {
	violations := validateProjectInput(input.Title, input.Visibility)
	violations = append(violations, validateTaskSpecs(input.TaskSpecs)...)
	if len(violations) > 0 {
		return nil, apperr.Validation("invalid project", violations...)
	}

	now := time.Now()
	metadata := annotateMetadata(input.Metadata, input.EstimatedTotalHours)
	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	project := &models.Project{
		Title:       input.Title,
		Description: input.Description,
		OwnerID:     ownerID,
		Visibility:  visibility,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var tasks []models.Task
	err := s.run(ctx, "create_project_with_tasks", func(sessCtx mongo.SessionContext) error {
		result, err := s.projects.collection.InsertOne(sessCtx, project)
		if err != nil {
			return err
		}
		project.ID = result.InsertedID.(primitive.ObjectID)

		// Rebuilt on every attempt: the transaction callback may be retried
		// and the project gets a fresh id each time.
		tasks = buildTaskDocs(input.TaskSpecs, project.ID, now)
		docs := make([]interface{}, len(tasks))
		for i := range tasks {
			docs[i] = tasks[i]
		}

		inserted, err := s.tasks.collection.InsertMany(sessCtx, docs)
		if err != nil {
			return err
		}
		for i, id := range inserted.InsertedIDs {
			tasks[i].ID = id.(primitive.ObjectID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.ProjectWithTasks{Project: *project, Tasks: tasks}, nil
}

// annotateMetadata returns the project metadata with the estimated total
// hours folded in. The caller's map is copied, never mutated.
func annotateMetadata(metadata map[string]interface{}, estimatedTotalHours *float64) map[string]interface{} {
	annotated := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		annotated[k] = v
	}
	if estimatedTotalHours != nil {
		annotated["estimatedTotalHours"] = *estimatedTotalHours
	}
	return annotated
}

// buildTaskDocs materializes task documents from a batch of specs: order is
// the index in input order, status starts at todo, and spec defaults are
// applied.
func buildTaskDocs(specs []models.TaskSpec, projectID primitive.ObjectID, now time.Time) []models.Task {
	tasks := make([]models.Task, len(specs))
	for i, spec := range specs {
		spec.Normalize()
		tasks[i] = models.Task{
			ProjectID:      projectID,
			Title:          spec.Title,
			Description:    spec.Description,
			EstimatedHours: spec.EstimatedHours,
			Priority:       spec.Priority,
			Status:         models.StatusTodo,
			Order:          i,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}
	return tasks
}

// DeleteProjectCascade atomically deletes a project and every task that
// references it. Ownership is re-checked inside the transaction; all-or-
// nothing, a failure at either step rolls back both.
func (s *AggregateService) DeleteProjectCascade(ctx context.Context, projectID, requesterID primitive.ObjectID) error {
	return s.run(ctx, "delete_project_cascade", func(sessCtx mongo.SessionContext) error {
		var project models.Project
		err := s.projects.collection.FindOne(sessCtx, bson.M{"_id": projectID}).Decode(&project)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return apperr.NotFound("project")
			}
			return err
		}
		if project.OwnerID != requesterID {
			return apperr.Authorization("access denied")
		}

		return cascadeDelete(sessCtx,
			s.tasks.collection, bson.M{"projectId": projectID},
			s.projects.collection, bson.M{"_id": projectID})
	})
}

// cascadeDelete removes every child matching childFilter, then the parent
// matching parentFilter, inside the caller's transaction. If either step
// fails the transaction aborts and neither deletion is visible.
func cascadeDelete(sessCtx mongo.SessionContext, children *mongo.Collection, childFilter bson.M, parent *mongo.Collection, parentFilter bson.M) error {
	if _, err := children.DeleteMany(sessCtx, childFilter); err != nil {
		return err
	}
	result, err := parent.DeleteOne(sessCtx, parentFilter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("project")
	}
	return nil
}

// BulkReorder applies a batched order (and optional status) update to the
// project's tasks. The assignment set must reference only tasks currently
// belonging to the project; any mismatch rejects the whole batch and zero
// assignments apply. Re-applying an identical set is a no-op on final state.
// No version check is performed: two concurrent reorders on the same project
// race at the store level and the last commit wins.
func (s *AggregateService) BulkReorder(ctx context.Context, projectID, requesterID primitive.ObjectID, assignments []models.OrderAssignment) error {
	return s.run(ctx, "bulk_reorder", func(sessCtx mongo.SessionContext) error {
		var project models.Project
		err := s.projects.collection.FindOne(sessCtx, bson.M{"_id": projectID}).Decode(&project)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return apperr.NotFound("project")
			}
			return err
		}
		if project.OwnerID != requesterID {
			return apperr.Authorization("access denied")
		}

		ids := make([]primitive.ObjectID, len(assignments))
		for i, a := range assignments {
			ids[i] = a.TaskID
		}

		cursor, err := s.tasks.collection.Find(sessCtx, bson.M{
			"_id":       bson.M{"$in": ids},
			"projectId": projectID,
		})
		if err != nil {
			return err
		}
		var owned []models.Task
		if err := cursor.All(sessCtx, &owned); err != nil {
			return err
		}

		ownedSet := make(map[primitive.ObjectID]bool, len(owned))
		for _, t := range owned {
			ownedSet[t.ID] = true
		}
		if violations := validateAssignments(assignments, ownedSet); len(violations) > 0 {
			return apperr.Validation("invalid reorder", violations...)
		}

		now := time.Now()
		ops := make([]mongo.WriteModel, len(assignments))
		for i, a := range assignments {
			set := bson.M{"order": a.Order, "updatedAt": now}
			if a.Status != nil {
				set["status"] = *a.Status
			}
			ops[i] = mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": a.TaskID}).
				SetUpdate(bson.M{"$set": set})
		}

		_, err = s.tasks.collection.BulkWrite(sessCtx, ops)
		return err
	})
}

// run executes fn in one transaction and classifies the outcome. Typed
// application errors (validation, not-found, authorization) pass through
// unchanged; anything else means the transaction could not commit and
// surfaces as an aborted error so callers can decide whether to retry. The
// driver has already attempted the abort by the time we see the error; an
// abort failure is logged there, never re-raised over the original error.
func (s *AggregateService) run(ctx context.Context, op string, fn func(sessCtx mongo.SessionContext) error) error {
	err := s.db.WithTransaction(ctx, fn)
	if err == nil {
		s.metrics.TransactionOutcome(op, "committed")
		return nil
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		s.metrics.TransactionOutcome(op, "rejected")
		return err
	}

	s.metrics.TransactionOutcome(op, "aborted")
	slog.Error("transaction aborted", "operation", op, "error", err)
	return apperr.Aborted("transaction aborted", err)
}
