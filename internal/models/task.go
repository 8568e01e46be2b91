package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskPriority is a display hint, not a scheduling input.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// TaskStatus has no enforced transition graph: any value may be assigned
// from any other, via individual update or bulk reorder.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inprogress"
	StatusDone       TaskStatus = "done"
)

// ValidPriority reports whether p is one of the accepted priority values.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the accepted status values.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task belongs to exactly one project and never outlives it. Order is an
// integer display hint: not unique, ties broken by ascending creation time.
type Task struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProjectID      primitive.ObjectID  `bson:"projectId" json:"project_id"`
	Title          string              `bson:"title" json:"title"`
	Description    string              `bson:"description" json:"description"`
	EstimatedHours float64             `bson:"estimatedHours" json:"estimated_hours"`
	Priority       TaskPriority        `bson:"priority" json:"priority"`
	Status         TaskStatus          `bson:"status" json:"status"`
	Order          int                 `bson:"order" json:"order"`
	AssigneeID     *primitive.ObjectID `bson:"assignee,omitempty" json:"assignee_id,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updated_at"`
}

// TaskSpec is the input shape for a task to be created, either supplied
// manually or produced by the planner. Defaults are applied by Normalize.
type TaskSpec struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	EstimatedHours float64      `json:"estimated_hours"`
	Priority       TaskPriority `json:"priority"`
}

// Normalize fills in defaults for optional fields.
func (s *TaskSpec) Normalize() {
	if s.Priority == "" {
		s.Priority = PriorityMedium
	}
}

// TaskUpdate is a typed partial update over the allow-listed mutable fields.
type TaskUpdate struct {
	Title          *string
	Description    *string
	EstimatedHours *float64
	Priority       *TaskPriority
	Status         *TaskStatus
	AssigneeID     *primitive.ObjectID
	ClearAssignee  bool
	Order          *int
}

// OrderAssignment is one entry of a bulk reorder: the target task, its new
// order value and an optional status to set in the same write.
type OrderAssignment struct {
	TaskID primitive.ObjectID `json:"task_id"`
	Order  int                `json:"order"`
	Status *TaskStatus        `json:"status,omitempty"`
}
