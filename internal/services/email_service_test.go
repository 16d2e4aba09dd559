package services

import (
	"context"
	"testing"

	"quizgen/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailService_Disabled(t *testing.T) {
	cfg := &config.Config{}
	service := NewEmailService(cfg, testLogger())

	assert.False(t, service.IsEnabled())

	// Disabled email is a silent no-op, never an error
	err := service.SendQuizResult(context.Background(), "student@example.com", "Math Quiz Result", 2, 3, "feedback")
	assert.NoError(t, err)
}

func TestEmailService_EnabledRequiresHost(t *testing.T) {
	cfg := &config.Config{
		Email: config.EmailConfig{Enabled: true},
	}
	service := NewEmailService(cfg, testLogger())

	assert.False(t, service.IsEnabled())
}

func TestEmailService_RenderQuizResult(t *testing.T) {
	cfg := &config.Config{}
	service := NewEmailService(cfg, testLogger())

	t.Run("includes score and feedback", func(t *testing.T) {
		body, err := service.renderQuizResult(2, 3, "• Strong in algebra.\n• Review geometry.")
		require.NoError(t, err)

		assert.Contains(t, body, "<strong>Your score:</strong> 2")
		assert.Contains(t, body, "<strong>Max score:</strong> 3")
		assert.Contains(t, body, "• Strong in algebra.<br>• Review geometry.")
	})

	t.Run("escapes feedback markup", func(t *testing.T) {
		body, err := service.renderQuizResult(0, 1, "<script>alert(1)</script>")
		require.NoError(t, err)

		assert.NotContains(t, body, "<script>")
		assert.Contains(t, body, "&lt;script&gt;")
	})
}
