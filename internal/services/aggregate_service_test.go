package services

import (
	"time"

	"testing"

	"github.com/Netero03/GoalToTaskAI-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildTaskDocs(t *testing.T) {
	projectID := primitive.NewObjectID()
	now := time.Now()

	specs := []models.TaskSpec{
		{Title: "First", Description: "a", EstimatedHours: 2, Priority: models.PriorityHigh},
		{Title: "Second"},
		{Title: "Third", Priority: models.PriorityLow},
	}

	tasks := buildTaskDocs(specs, projectID, now)
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}

	for i, task := range tasks {
		if task.Order != i {
			t.Errorf("Expected task %d to have order %d, got %d", i, i, task.Order)
		}
		if task.Status != models.StatusTodo {
			t.Errorf("Expected task %d to start as todo, got %q", i, task.Status)
		}
		if task.ProjectID != projectID {
			t.Errorf("Expected task %d to reference the project, got %v", i, task.ProjectID)
		}
		if !task.CreatedAt.Equal(now) || !task.UpdatedAt.Equal(now) {
			t.Errorf("Expected task %d timestamps to be %v", i, now)
		}
	}

	// Missing priority is defaulted without touching explicit ones
	if tasks[0].Priority != models.PriorityHigh {
		t.Errorf("Expected explicit priority to be kept, got %q", tasks[0].Priority)
	}
	if tasks[1].Priority != models.PriorityMedium {
		t.Errorf("Expected default priority medium, got %q", tasks[1].Priority)
	}
	if tasks[2].Priority != models.PriorityLow {
		t.Errorf("Expected explicit priority to be kept, got %q", tasks[2].Priority)
	}
}

func TestBuildTaskDocs_Empty(t *testing.T) {
	tasks := buildTaskDocs(nil, primitive.NewObjectID(), time.Now())
	if len(tasks) != 0 {
		t.Errorf("Expected no tasks, got %d", len(tasks))
	}
}

func TestBuildTaskDocs_DoesNotMutateSpecs(t *testing.T) {
	specs := []models.TaskSpec{{Title: "No priority set"}}
	buildTaskDocs(specs, primitive.NewObjectID(), time.Now())
	if specs[0].Priority != "" {
		t.Errorf("Expected input specs to be untouched, got priority %q", specs[0].Priority)
	}
}

func TestAnnotateMetadata(t *testing.T) {
	hours := 12.5
	caller := map[string]interface{}{"source": "manual"}

	annotated := annotateMetadata(caller, &hours)
	if annotated["estimatedTotalHours"] != 12.5 {
		t.Errorf("Expected estimatedTotalHours annotation, got %v", annotated["estimatedTotalHours"])
	}
	if annotated["source"] != "manual" {
		t.Errorf("Expected caller entries to be preserved, got %v", annotated["source"])
	}
	if _, ok := caller["estimatedTotalHours"]; ok {
		t.Error("Expected caller map to stay unmodified")
	}

	// Without hours, nil input still yields a usable empty map
	annotated = annotateMetadata(nil, nil)
	if annotated == nil || len(annotated) != 0 {
		t.Errorf("Expected empty map for nil input, got %v", annotated)
	}
}
