// Package middleware provides gin middleware for the quiz service.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"quizgen/internal/config"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims issued at login
type Claims struct {
	UserID int    `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken signs a JWT for an authenticated user.
func IssueToken(cfg *config.AuthConfig, userID int, email string) (string, error) {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(cfg *config.AuthConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, contextutils.ErrUnauthorized
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, contextutils.WrapError(contextutils.ErrUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, contextutils.ErrUnauthorized
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid bearer token and records the
// authenticated user's id and email on the request context.
func RequireAuth(cfg *config.AuthConfig, logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token is required."})
			return
		}

		claims, err := ParseToken(cfg, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.Warn(c.Request.Context(), "Rejected request with invalid token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token."})
			return
		}

		ctx := contextutils.WithUserID(c.Request.Context(), claims.UserID)
		ctx = contextutils.WithUserEmail(ctx, claims.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
