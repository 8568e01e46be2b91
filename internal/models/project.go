package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility controls who may eventually see a project. Only the owner can
// read or mutate it today; the field is stored so the API contract is stable.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityTeam    Visibility = "team"
	VisibilityPublic  Visibility = "public"
)

// ValidVisibility reports whether v is one of the accepted visibility values.
func ValidVisibility(v Visibility) bool {
	switch v {
	case VisibilityPrivate, VisibilityTeam, VisibilityPublic:
		return true
	}
	return false
}

// Project is the aggregate root owning an ordered collection of tasks.
// OwnerID is set at creation and never changes.
type Project struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Title       string                 `bson:"title" json:"title"`
	Description string                 `bson:"description" json:"description"`
	OwnerID     primitive.ObjectID     `bson:"ownerId" json:"owner_id"`
	Visibility  Visibility             `bson:"visibility" json:"visibility"`
	Metadata    map[string]interface{} `bson:"metadata" json:"metadata"`
	CreatedAt   time.Time              `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time              `bson:"updatedAt" json:"updated_at"`
}

// ProjectWithTasks is the get-project response shape: the project plus its
// tasks sorted by order, creation time as tiebreak.
type ProjectWithTasks struct {
	Project `bson:",inline"`
	Tasks   []Task `json:"tasks"`
}

// ProjectUpdate is a typed partial update. Nil fields are left untouched;
// only these fields are mutable after creation.
type ProjectUpdate struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Visibility  *Visibility             `json:"visibility"`
	Metadata    *map[string]interface{} `json:"metadata"`
}
