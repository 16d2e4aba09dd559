package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizgen/internal/config"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := authConfig()

	token, err := IssueToken(cfg, 7, "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := IssueToken(authConfig(), 7, "ada@example.com")
	require.NoError(t, err)

	_, err = ParseToken(&config.AuthConfig{JWTSecret: "other-secret"}, token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	cfg := &config.AuthConfig{JWTSecret: "test-secret", TokenTTL: -time.Hour}

	token, err := IssueToken(cfg, 7, "ada@example.com")
	require.NoError(t, err)

	_, err = ParseToken(cfg, token)
	assert.Error(t, err)
}

func setupAuthRouter(cfg *config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})

	router := gin.New()
	router.Use(RequireAuth(cfg, logger))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId": contextutils.GetUserIDFromContext(c.Request.Context()),
			"email":  contextutils.GetUserEmailFromContext(c.Request.Context()),
		})
	})
	return router
}

func TestRequireAuth(t *testing.T) {
	cfg := authConfig()

	t.Run("valid token passes and sets identity", func(t *testing.T) {
		token, err := IssueToken(cfg, 7, "ada@example.com")
		require.NoError(t, err)

		router := setupAuthRouter(cfg)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"userId":7`)
		assert.Contains(t, w.Body.String(), "ada@example.com")
	})

	t.Run("missing header is 401", func(t *testing.T) {
		router := setupAuthRouter(cfg)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header is 401", func(t *testing.T) {
		router := setupAuthRouter(cfg)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		router := setupAuthRouter(cfg)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
