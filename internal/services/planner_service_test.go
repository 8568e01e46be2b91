package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"
)

// newFakeGemini serves canned model text in the generateContent response shape.
func newFakeGemini(t *testing.T, modelText string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": modelText}},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestPlanner(server *httptest.Server) *PlannerService {
	planner := NewPlannerService("test-key", "test-model", 5*time.Second, nil, nil)
	planner.baseURL = server.URL
	return planner
}

const validBreakdownJSON = `{
	"title": "Learn Piano",
	"description": "A structured practice plan",
	"estimatedTotalHours": 40,
	"tasks": [
		{"title": "Learn scales", "description": "Major scales first", "estimated_hours": 10, "priority": "high"},
		{"title": "Practice chords", "estimated_hours": 15}
	]
}`

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"markdown fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"surrounded by prose", `Here you go: {"a":1} hope that helps!`, `{"a":1}`, false},
		{"no object", "sorry, I cannot do that", "", true},
		{"only opening brace", "{ oops", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Errorf("extractJSON(%q) expected error, got %q", tt.text, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractJSON(%q) unexpected error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseBreakdown(t *testing.T) {
	breakdown, err := parseBreakdown("```json\n" + validBreakdownJSON + "\n```")
	if err != nil {
		t.Fatalf("Failed to parse breakdown: %v", err)
	}
	if breakdown.Title != "Learn Piano" {
		t.Errorf("Expected title 'Learn Piano', got %q", breakdown.Title)
	}
	if len(breakdown.Tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(breakdown.Tasks))
	}
	// Missing priority is defaulted, not rejected
	if breakdown.Tasks[1].Priority != models.PriorityMedium {
		t.Errorf("Expected default priority medium, got %q", breakdown.Tasks[1].Priority)
	}
}

func TestParseBreakdown_RejectsInvalidOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no json", "I could not produce a plan."},
		{"malformed json", `{"title": "x", "tasks": [`},
		{"empty title", `{"title": "", "tasks": [{"title": "a"}]}`},
		{"no tasks", `{"title": "Plan", "tasks": []}`},
		{"bad task priority", `{"title": "Plan", "tasks": [{"title": "a", "priority": "urgent"}]}`},
		{"negative hours", `{"title": "Plan", "tasks": [{"title": "a", "estimated_hours": -3}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBreakdown(tt.text)
			if err == nil {
				t.Fatal("Expected error for invalid model output")
			}
			if apperr.KindOf(err) != apperr.KindUpstream {
				t.Errorf("Expected upstream error, got kind %v", apperr.KindOf(err))
			}
		})
	}
}

func TestPlannerService_GenerateFromGoal(t *testing.T) {
	server := newFakeGemini(t, validBreakdownJSON, http.StatusOK)
	defer server.Close()

	planner := newTestPlanner(server)
	breakdown, err := planner.GenerateFromGoal(context.Background(), "I want to learn piano in three months")
	if err != nil {
		t.Fatalf("Failed to generate breakdown: %v", err)
	}
	if breakdown.Title != "Learn Piano" {
		t.Errorf("Expected title 'Learn Piano', got %q", breakdown.Title)
	}
	if breakdown.EstimatedTotalHours != 40 {
		t.Errorf("Expected 40 estimated hours, got %v", breakdown.EstimatedTotalHours)
	}
}

func TestPlannerService_GenerateFromGoal_GoalLength(t *testing.T) {
	server := newFakeGemini(t, validBreakdownJSON, http.StatusOK)
	defer server.Close()
	planner := newTestPlanner(server)

	_, err := planner.GenerateFromGoal(context.Background(), "too short")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("Expected validation error for short goal, got %v", err)
	}

	long := make([]byte, maxGoalLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = planner.GenerateFromGoal(context.Background(), string(long))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("Expected validation error for overlong goal, got %v", err)
	}
}

// Length bounds count characters, not bytes.
func TestPlannerService_GenerateFromGoal_MultibyteGoalLength(t *testing.T) {
	server := newFakeGemini(t, validBreakdownJSON, http.StatusOK)
	defer server.Close()
	planner := newTestPlanner(server)

	// 9 runes but 27 bytes: a byte count would let this through
	short := strings.Repeat("ピ", minGoalLen-1)
	_, err := planner.GenerateFromGoal(context.Background(), short)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("Expected validation error for a %d-rune goal, got %v", minGoalLen-1, err)
	}

	// Exactly maxGoalLen runes but three times as many bytes: must be accepted
	atLimit := strings.Repeat("ピ", maxGoalLen)
	if _, err := planner.GenerateFromGoal(context.Background(), atLimit); err != nil {
		t.Errorf("Expected a %d-rune goal to be accepted, got %v", maxGoalLen, err)
	}
}

func TestPlannerService_GenerateFromGoal_UpstreamFailure(t *testing.T) {
	server := newFakeGemini(t, "", http.StatusInternalServerError)
	defer server.Close()
	planner := newTestPlanner(server)

	_, err := planner.GenerateFromGoal(context.Background(), "I want to learn piano in three months")
	if apperr.KindOf(err) != apperr.KindUpstream {
		t.Errorf("Expected upstream error for 500 response, got %v", err)
	}
}

func TestPlannerService_GenerateFromGoal_UnparseableModelText(t *testing.T) {
	server := newFakeGemini(t, "Sorry, no JSON today.", http.StatusOK)
	defer server.Close()
	planner := newTestPlanner(server)

	_, err := planner.GenerateFromGoal(context.Background(), "I want to learn piano in three months")
	if apperr.KindOf(err) != apperr.KindUpstream {
		t.Errorf("Expected upstream error for unparseable output, got %v", err)
	}
}
