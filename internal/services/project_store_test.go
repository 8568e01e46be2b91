package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"
)

// The store has a nil collection here: if Create tried to insert an invalid
// project instead of rejecting it first, these tests would panic.
func TestProjectStore_Create_RejectsInvalidInput(t *testing.T) {
	store := &ProjectStore{}

	tests := []struct {
		name    string
		project models.Project
		field   string
	}{
		{"empty title", models.Project{Title: "", Visibility: models.VisibilityPrivate}, "title"},
		{"whitespace title", models.Project{Title: "   "}, "title"},
		{"overlong title", models.Project{Title: strings.Repeat("x", maxTitleLen+1)}, "title"},
		{"invalid visibility", models.Project{Title: "ok", Visibility: "shared"}, "visibility"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Create(context.Background(), &tt.project)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("Expected validation error, got kind %v", apperr.KindOf(err))
			}
			if !hasViolation(apperr.FieldsOf(err), tt.field) {
				t.Errorf("Expected %s violation, got %+v", tt.field, apperr.FieldsOf(err))
			}
		})
	}
}

func TestProjectStore_Create_CollectsAllViolations(t *testing.T) {
	store := &ProjectStore{}

	err := store.Create(context.Background(), &models.Project{Title: "", Visibility: "shared"})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	fields := apperr.FieldsOf(err)
	if !hasViolation(fields, "title") || !hasViolation(fields, "visibility") {
		t.Errorf("Expected both title and visibility violations, got %+v", fields)
	}
}
