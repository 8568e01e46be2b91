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

// ProjectStore handles CRUD for projects in MongoDB. Every read that guards
// a mutation goes through RequireOwner so ownership is re-checked against
// current state on each guarded operation.
type ProjectStore struct {
	collection *mongo.Collection
}

// NewProjectStore creates a new project store
func NewProjectStore(mongodb *database.MongoDB) *ProjectStore {
	return &ProjectStore{
		collection: mongodb.Collection(database.CollectionProjects),
	}
}

// ProjectFilters narrows a paged project listing.
type ProjectFilters struct {
	Visibility models.Visibility
	Page       int64
	Limit      int64
}

// Create inserts a new project owned by ownerID.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	if violations := validateProjectInput(project.Title, project.Visibility); len(violations) > 0 {
		return apperr.Validation("invalid project", violations...)
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Visibility == "" {
		project.Visibility = models.VisibilityPrivate
	}
	if project.Metadata == nil {
		project.Metadata = map[string]interface{}{}
	}

	result, err := s.collection.InsertOne(ctx, project)
	if err != nil {
		return apperr.Internal("failed to create project", err)
	}
	project.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID returns a project regardless of requester. Callers needing a
// guarded read use RequireOwner instead.
func (s *ProjectStore) GetByID(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.collection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("project")
		}
		return nil, apperr.Internal("failed to get project", err)
	}
	return &project, nil
}

// RequireOwner is the ownership check: it resolves the project and returns
// it only when requesterID is the owner. A missing project yields not-found,
// an existing project with a different owner yields access denied — existence
// is deliberately distinguishable from ownership. Results are never cached.
func (s *ProjectStore) RequireOwner(ctx context.Context, projectID, requesterID primitive.ObjectID) (*models.Project, error) {
	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != requesterID {
		return nil, apperr.Authorization("access denied")
	}
	return project, nil
}

// List returns the requester's projects, newest first, paged. Visibility
// narrows the result when set.
func (s *ProjectStore) List(ctx context.Context, ownerID primitive.ObjectID, filters ProjectFilters) ([]models.Project, int64, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = 20
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	filter := bson.M{"ownerId": ownerID}
	if filters.Visibility != "" {
		filter["visibility"] = filters.Visibility
	}

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("failed to count projects", err)
	}

	cursor, err := s.collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((filters.Page-1)*filters.Limit).
		SetLimit(filters.Limit))
	if err != nil {
		return nil, 0, apperr.Internal("failed to list projects", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, 0, apperr.Internal("failed to decode projects", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, total, nil
}

// Update applies a typed partial update to a project the requester owns.
// OwnerID is immutable and deliberately absent from the update shape.
func (s *ProjectStore) Update(ctx context.Context, projectID, requesterID primitive.ObjectID, update models.ProjectUpdate) (*models.Project, error) {
	if violations := validateProjectUpdate(update); len(violations) > 0 {
		return nil, apperr.Validation("invalid project update", violations...)
	}

	if _, err := s.RequireOwner(ctx, projectID, requesterID); err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Visibility != nil {
		set["visibility"] = *update.Visibility
	}
	if update.Metadata != nil {
		set["metadata"] = *update.Metadata
	}

	var project models.Project
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": projectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("project")
		}
		return nil, apperr.Internal("failed to update project", err)
	}
	return &project, nil
}
