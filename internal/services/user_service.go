package services

import (
	"context"
	"strings"
	"time"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/database"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserService handles account records in MongoDB. Roles are informational
// labels; ownership of projects is the only authorization boundary.
type UserService struct {
	collection *mongo.Collection
}

// NewUserService creates a new user service
func NewUserService(mongodb *database.MongoDB) *UserService {
	return &UserService{
		collection: mongodb.Collection(database.CollectionUsers),
	}
}

// Create inserts a new user. Emails are unique; a duplicate insert surfaces
// a conflict error so signup can report "already registered".
func (s *UserService) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = "user"
	}

	result, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("email already registered")
		}
		return apperr.Internal("failed to create user", err)
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByEmail returns the user with the given email, or a not-found error.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Internal("failed to get user", err)
	}
	return &user, nil
}

// GetByID returns the user with the given id, or a not-found error.
func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Internal("failed to get user", err)
	}
	return &user, nil
}
