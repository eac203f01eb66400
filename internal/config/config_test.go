package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("SCORING_VALUES", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "survey", cfg.MongoDatabase)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []float64{100, 80, 60, 40, 20}, cfg.ScoringValues)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "15m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "3600")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SCORING_VALUES", "50, 25.5,10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, time.Hour, cfg.RefreshTokenExpiry)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.GetKafkaBrokers())
	assert.Equal(t, []float64{50, 25.5, 10}, cfg.ScoringValues)
}

func TestGetEnvFloats(t *testing.T) {
	fallback := []float64{1, 2}

	t.Setenv("SCORES", "")
	assert.Equal(t, fallback, getEnvFloats("SCORES", fallback))

	t.Setenv("SCORES", "10,abc")
	assert.Equal(t, fallback, getEnvFloats("SCORES", fallback))

	t.Setenv("SCORES", "10,-5")
	assert.Equal(t, fallback, getEnvFloats("SCORES", fallback))

	t.Setenv("SCORES", " 7 ")
	assert.Equal(t, []float64{7}, getEnvFloats("SCORES", fallback))
}

func TestCreateEventPublisher_DisabledUsesMock(t *testing.T) {
	cfg := EventConfig{Enabled: false}

	publisher, err := cfg.CreateEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, ok := publisher.(*events.MockEventPublisher)
	assert.True(t, ok)
}
