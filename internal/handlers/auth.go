package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"
	"github.com/Netero03/GoalToTaskAI-server/internal/models"
	"github.com/Netero03/GoalToTaskAI-server/internal/services"
	"github.com/Netero03/GoalToTaskAI-server/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles signup, login and the profile endpoint
type AuthHandler struct {
	tokenAuth *auth.TokenAuth
	users     *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(tokenAuth *auth.TokenAuth, users *services.UserService) *AuthHandler {
	return &AuthHandler{
		tokenAuth: tokenAuth,
		users:     users,
	}
}

// SignupRequest is the request body for account creation
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // informational only
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the response for successful authentication
type AuthResponse struct {
	User  models.UserResponse `json:"user"`
	Token string              `json:"token"`
}

// Signup creates a new user account
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var violations []apperr.FieldViolation
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 || len(req.Name) > 100 {
		violations = append(violations, apperr.FieldViolation{Field: "name", Message: "must be between 2 and 100 characters"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		violations = append(violations, apperr.FieldViolation{Field: "email", Message: "must be a valid email address"})
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		violations = append(violations, apperr.FieldViolation{Field: "password", Message: err.Error()})
	}
	if len(violations) > 0 {
		return respondError(c, apperr.Validation("invalid signup", violations...))
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("❌ Failed to hash password: %v", err)
		return respondError(c, apperr.Internal("failed to create account", err))
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
	}
	if err := h.users.Create(c.Context(), user); err != nil {
		return respondError(c, err)
	}

	token, err := h.tokenAuth.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		log.Printf("❌ Failed to generate token: %v", err)
		return respondError(c, apperr.Internal("failed to generate token", err))
	}

	log.Printf("✅ User registered: %s (%s)", user.Email, user.ID.Hex())

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		User:  user.ToResponse(),
		Token: token,
	})
}

// Login authenticates a user
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.users.GetByEmail(c.Context(), req.Email)
	if err != nil {
		// Constant-shape response to prevent email enumeration
		time.Sleep(200 * time.Millisecond)
		return respondError(c, apperr.Unauthenticated("invalid email or password"))
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil || !valid {
		log.Printf("⚠️ Failed login attempt for user: %s", req.Email)
		return respondError(c, apperr.Unauthenticated("invalid email or password"))
	}

	token, err := h.tokenAuth.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return respondError(c, apperr.Internal("failed to generate token", err))
	}

	return c.JSON(AuthResponse{
		User:  user.ToResponse(),
		Token: token,
	})
}

// Me returns the authenticated user's profile
// GET /api/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(primitive.ObjectID)

	user, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user.ToResponse()})
}
