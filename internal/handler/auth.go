package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jobtrack-ai/jobtrack-api/internal/middleware"
	"github.com/jobtrack-ai/jobtrack-api/internal/model"
	"github.com/jobtrack-ai/jobtrack-api/internal/service"
)

// Authenticator is the credential workflow behind the /auth routes
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (*service.Registration, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, username, password string) (string, *model.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide username, email, and password"})
		return
	}

	reg, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"message": "Username already taken"})
		return
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
		return
	case err != nil:
		log.Error().Err(err).Msg("Failed to register user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register user"})
		return
	}

	log.Info().Str("user_id", reg.User.ID.String()).Msg("New user registered")

	if reg.Token == "" {
		c.JSON(http.StatusCreated, gin.H{
			"message": "Registration successful. Please check your email to verify your account.",
			"user":    reg.User.Public(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   reg.Token,
		"user":    reg.User.Public(),
	})
}

// VerifyEmail handles POST /auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Verification token is required"})
		return
	}

	err := h.auth.VerifyEmail(c.Request.Context(), req.Token)
	if errors.Is(err, service.ErrInvalidVerificationToken) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired verification token"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to verify email")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to verify email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully! You can now log in."})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide username and password"})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	case errors.Is(err, service.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"message": "Please verify your email before logging in."})
		return
	case err != nil:
		log.Error().Err(err).Msg("Failed to log in")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user.Public()})
}

// DeleteAccount handles DELETE /auth/delete-account.
// Applications and resumes go with the user row.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to delete account")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to delete account"})
		return
	}

	log.Info().Str("user_id", userID.String()).Msg("Account deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

var errNotAuthenticated = errors.New("no user in context")

// getUserID returns the caller set by the auth middleware
func getUserID(c *gin.Context) (uuid.UUID, error) {
	id := middleware.GetUserID(c)
	if id == uuid.Nil {
		return uuid.Nil, errNotAuthenticated
	}
	return id, nil
}
