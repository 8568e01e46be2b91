package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com"

	minGoalLen = 10
	maxGoalLen = 5000

	breakdownCacheTTL = 24 * time.Hour
)

// TaskBreakdown is the planner's output: a project outline plus task specs,
// validated against the same rules as manually supplied specs before anyone
// hands it to the transaction coordinator.
type TaskBreakdown struct {
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	EstimatedTotalHours float64           `json:"estimatedTotalHours"`
	Tasks               []models.TaskSpec `json:"tasks"`
}

// PlannerService turns a free-text goal into a structured task breakdown via
// the Gemini generateContent API. Calls are throttled client-side and results
// are cached by goal hash when Redis is available. Generation always
// completes before any store transaction is opened.
type PlannerService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *RedisService
	metrics    *Metrics
	logger     *logrus.Logger
}

// NewPlannerService creates a planner. cache may be nil (caching disabled).
func NewPlannerService(apiKey, model string, timeout time.Duration, cache *RedisService, metrics *Metrics) *PlannerService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &PlannerService{
		apiKey:     apiKey,
		model:      model,
		baseURL:    geminiBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

const plannerPrompt = `You are an expert project planner.
Convert the following user goal into a structured task breakdown.

RULES:
- Respond ONLY in VALID JSON. No markdown.
- Output strictly:
{
  "title": "Project Title",
  "description": "Short description",
  "estimatedTotalHours": number,
  "tasks": [
    {
      "title": "",
      "description": "",
      "estimated_hours": number,
      "priority": "high" | "medium" | "low"
    }
  ]
}

User Goal:
%q
`

// Gemini generateContent wire types, reduced to the fields we read.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerateFromGoal produces a validated task breakdown for a free-text goal.
// Upstream failures, unparseable model output, and model output violating
// the task spec schema all surface as upstream errors.
func (s *PlannerService) GenerateFromGoal(ctx context.Context, goal string) (*TaskBreakdown, error) {
	goal = strings.TrimSpace(goal)
	if n := utf8.RuneCountInString(goal); n < minGoalLen || n > maxGoalLen {
		return nil, apperr.Validation("invalid goal", apperr.FieldViolation{
			Field:   "goal",
			Message: fmt.Sprintf("must be between %d and %d characters", minGoalLen, maxGoalLen),
		})
	}

	requestID := uuid.NewString()
	log := s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"model":      s.model,
	})

	cacheKey := "breakdown:" + hashGoal(goal)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var breakdown TaskBreakdown
			if err := json.Unmarshal([]byte(cached), &breakdown); err == nil {
				log.Info("breakdown served from cache")
				s.metrics.GenerationResult("cached", 0)
				return &breakdown, nil
			}
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, apperr.Upstream("generation throttled", err)
	}

	start := time.Now()
	text, err := s.generateContent(ctx, fmt.Sprintf(plannerPrompt, goal))
	if err != nil {
		log.WithError(err).Error("generation request failed")
		s.metrics.GenerationResult("error", time.Since(start))
		return nil, err
	}

	breakdown, err := parseBreakdown(text)
	if err != nil {
		log.WithError(err).Error("generation output rejected")
		s.metrics.GenerationResult("error", time.Since(start))
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"tasks":      len(breakdown.Tasks),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("breakdown generated")
	s.metrics.GenerationResult("ok", time.Since(start))

	if s.cache != nil {
		if encoded, err := json.Marshal(breakdown); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(encoded), breakdownCacheTTL); err != nil {
				log.WithError(err).Warn("failed to cache breakdown")
			}
		}
	}

	return breakdown, nil
}

// generateContent calls the Gemini REST API and returns the model text.
func (s *PlannerService) generateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", apperr.Internal("failed to encode generation request", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Internal("failed to build generation request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperr.Upstream("generation service unreachable", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", apperr.Upstream("failed to read generation response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperr.Upstream(fmt.Sprintf("generation service returned status %d", resp.StatusCode), nil)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", apperr.Upstream("invalid generation response", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", apperr.Upstream("generation response contained no candidates", nil)
	}

	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// parseBreakdown extracts the JSON object from the model text and validates
// it against the task spec schema. Models often wrap JSON in markdown or
// prose, so the first balanced object slice is taken.
func parseBreakdown(text string) (*TaskBreakdown, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, apperr.Upstream("generation returned no JSON object", err)
	}

	var breakdown TaskBreakdown
	if err := json.Unmarshal([]byte(raw), &breakdown); err != nil {
		return nil, apperr.Upstream("generation returned invalid JSON", err)
	}

	for i := range breakdown.Tasks {
		breakdown.Tasks[i].Normalize()
	}

	violations := validateProjectInput(breakdown.Title, "")
	violations = append(violations, validateTaskSpecs(breakdown.Tasks)...)
	if len(violations) > 0 {
		return nil, apperr.Upstream(fmt.Sprintf("generation output failed validation: %v", violations), nil)
	}

	return &breakdown, nil
}

// extractJSON returns the substring spanning the first '{' through the last
// '}' of text.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in model output")
	}
	return text[start : end+1], nil
}

func hashGoal(goal string) string {
	sum := sha256.Sum256([]byte(goal))
	return hex.EncodeToString(sum[:])
}
