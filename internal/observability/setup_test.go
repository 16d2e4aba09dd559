package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizgen/internal/config"
)

func TestSetupObservability(t *testing.T) {
	t.Run("disabled signals return nil providers", func(t *testing.T) {
		cfg := &config.OpenTelemetryConfig{
			ServiceName:    "placeholder",
			ServiceVersion: "test",
			EnableTracing:  false,
			EnableMetrics:  false,
			EnableLogging:  false,
		}

		tp, mp, logger, err := SetupObservability(cfg, "setup-test")
		require.NoError(t, err)
		assert.Nil(t, tp)
		assert.Nil(t, mp)
		require.NotNil(t, logger)

		// The entry points call Shutdown on both providers during exit, so
		// the returned types must carry it.
		var _ interface{ Shutdown(context.Context) error } = tp
		var _ interface{ Shutdown(context.Context) error } = mp
	})

	t.Run("service name argument overrides config", func(t *testing.T) {
		cfg := &config.OpenTelemetryConfig{ServiceName: "placeholder"}

		_, _, _, err := SetupObservability(cfg, "setup-test-override")
		require.NoError(t, err)
		assert.Equal(t, "setup-test-override", cfg.ServiceName)
	})
}
