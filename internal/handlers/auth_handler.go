package handlers

import (
	"net/http"

	"quizgen/internal/config"
	"quizgen/internal/middleware"
	"quizgen/internal/observability"
	"quizgen/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler serves signup and login
type AuthHandler struct {
	userService services.UserServiceInterface
	cfg         *config.Config
	logger      *observability.Logger
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(userService services.UserServiceInterface, cfg *config.Config, logger *observability.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		cfg:         cfg,
		logger:      logger,
		validate:    validator.New(),
	}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "signup")
	defer span.End()

	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, "name, email, and password are required.")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		HandleValidationError(c, "name, a valid email, and a password of at least 8 characters are required.")
		return
	}

	user, err := h.userService.CreateUser(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	h.logger.Info(ctx, "User registered", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user":    user,
	})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "login")
	defer span.End()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, "email and password are required.")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		HandleValidationError(c, "email and password are required.")
		return
	}

	user, err := h.userService.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	token, err := middleware.IssueToken(&h.cfg.Auth, user.ID, user.Email)
	if err != nil {
		h.logger.Error(ctx, "Failed to issue token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful.",
		"token":   token,
	})
}
