package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jobtrack-ai/jobtrack-api/internal/service"
)

const (
	// ContextKeyUserID is the key for the caller's user UUID in the Gin context
	ContextKeyUserID = "user_id"
	// ContextKeyUsername is the key for the caller's username in the Gin context
	ContextKeyUsername = "username"
)

// TokenParser verifies a bearer token and returns its claims
type TokenParser interface {
	Parse(token string) (*service.Claims, error)
}

// AuthMiddleware validates bearer tokens and injects the caller identity into context
type AuthMiddleware struct {
	tokens TokenParser
}

func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate is the Gin middleware handler
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing Authorization header",
			})
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid Authorization header format",
			})
			return
		}

		claims, err := am.tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Debug().Err(err).Msg("Rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)

		c.Next()
	}
}

// GetUserID extracts the caller's user UUID from the Gin context.
// It returns uuid.Nil on routes that are not behind Authenticate.
func GetUserID(c *gin.Context) uuid.UUID {
	uid, _ := c.Get(ContextKeyUserID)
	if id, ok := uid.(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetUsername extracts the caller's username from the Gin context
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}
