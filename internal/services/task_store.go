package services

import (
	"context"
	"time"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/database"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskStore manages the ordered task collection of a project: appends at the
// tail of the current order, deterministic ordered listing, and single-task
// CRUD. Multi-task mutations (create-with-tasks, cascade delete, bulk
// reorder) live on AggregateService because they need a transaction.
type TaskStore struct {
	collection *mongo.Collection
	projects   *ProjectStore
}

// NewTaskStore creates a new task store
func NewTaskStore(mongodb *database.MongoDB, projects *ProjectStore) *TaskStore {
	return &TaskStore{
		collection: mongodb.Collection(database.CollectionTasks),
		projects:   projects,
	}
}

// Append inserts a task at the end of the project's display sequence:
// order = 1 + max(existing orders), or 0 for an empty project. The existence
// check and the insert do not share a transaction; a concurrent project
// delete or append can race. Tolerated: order is a display hint, not a
// unique key, and ties break by ascending creation time.
func (s *TaskStore) Append(ctx context.Context, projectID, requesterID primitive.ObjectID, spec models.TaskSpec, assigneeID *primitive.ObjectID) (*models.Task, error) {
	spec.Normalize()
	if violations := validateTaskSpec(spec, ""); len(violations) > 0 {
		return nil, apperr.Validation("invalid task", violations...)
	}

	if _, err := s.projects.RequireOwner(ctx, projectID, requesterID); err != nil {
		return nil, err
	}

	order, err := s.nextOrder(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		ProjectID:      projectID,
		Title:          spec.Title,
		Description:    spec.Description,
		EstimatedHours: spec.EstimatedHours,
		Priority:       spec.Priority,
		Status:         models.StatusTodo,
		Order:          order,
		AssigneeID:     assigneeID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	result, err := s.collection.InsertOne(ctx, task)
	if err != nil {
		return nil, apperr.Internal("failed to create task", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)
	return task, nil
}

// nextOrder computes the append position from the current maximum order.
func (s *TaskStore) nextOrder(ctx context.Context, projectID primitive.ObjectID) (int, error) {
	var last models.Task
	err := s.collection.FindOne(ctx,
		bson.M{"projectId": projectID},
		options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}}),
	).Decode(&last)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, apperr.Internal("failed to compute task order", err)
	}
	return last.Order + 1, nil
}

// ListOrdered returns the project's tasks sorted by order ascending, with
// creation time as tiebreak and _id as final key so batch-created tasks
// sharing a timestamp still sort stably. Each call recomputes the sequence
// from current state; nothing is held open between calls.
func (s *TaskStore) ListOrdered(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.collection.Find(ctx,
		bson.M{"projectId": projectID},
		options.Find().SetSort(bson.D{
			{Key: "order", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "_id", Value: 1},
		}))
	if err != nil {
		return nil, apperr.Internal("failed to list tasks", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, apperr.Internal("failed to decode tasks", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// GetByID resolves a task to its parent project and checks ownership there:
// a task is only visible to the owner of the project it belongs to.
func (s *TaskStore) GetByID(ctx context.Context, taskID, requesterID primitive.ObjectID) (*models.Task, error) {
	task, err := s.getUnchecked(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.RequireOwner(ctx, task.ProjectID, requesterID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskStore) getUnchecked(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.collection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("task")
		}
		return nil, apperr.Internal("failed to get task", err)
	}
	return &task, nil
}

// Update applies a typed partial update over the allow-listed mutable
// fields. Status accepts any valid value from any other: there is no
// transition graph.
func (s *TaskStore) Update(ctx context.Context, taskID, requesterID primitive.ObjectID, update models.TaskUpdate) (*models.Task, error) {
	if violations := validateTaskUpdate(update); len(violations) > 0 {
		return nil, apperr.Validation("invalid task update", violations...)
	}

	if _, err := s.GetByID(ctx, taskID, requesterID); err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.EstimatedHours != nil {
		set["estimatedHours"] = *update.EstimatedHours
	}
	if update.Priority != nil {
		set["priority"] = *update.Priority
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Order != nil {
		set["order"] = *update.Order
	}
	if update.AssigneeID != nil {
		set["assignee"] = *update.AssigneeID
	}

	mutation := bson.M{"$set": set}
	if update.ClearAssignee {
		mutation["$unset"] = bson.M{"assignee": ""}
	}

	var task models.Task
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": taskID},
		mutation,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("task")
		}
		return nil, apperr.Internal("failed to update task", err)
	}
	return &task, nil
}

// Delete removes a single task after resolving ownership via its project.
func (s *TaskStore) Delete(ctx context.Context, taskID, requesterID primitive.ObjectID) error {
	if _, err := s.GetByID(ctx, taskID, requesterID); err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": taskID})
	if err != nil {
		return apperr.Internal("failed to delete task", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("task")
	}
	return nil
}
