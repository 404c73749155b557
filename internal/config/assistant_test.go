package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadAssistantConfig_Defaults(t *testing.T) {
	for _, key := range []string{"ASSISTANT_NAME", "IDLE_TIMEOUT", "RECOGNIZER", "STORE_DRIVER", "AUDIO_PLAYER_COMMAND"} {
		t.Setenv(key, "")
	}

	cfg := LoadAssistantConfig()

	assert.Equal(t, "Avril", cfg.Name)
	assert.Equal(t, 10*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 0.08, cfg.IdleThreshold)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, []string{"mpg123", "-q", "-"}, cfg.PlayerCommand)
	assert.False(t, cfg.Headless())
}

func TestLoadAssistantConfig_Overrides(t *testing.T) {
	t.Setenv("ASSISTANT_NAME", "Nova")
	t.Setenv("IDLE_TIMEOUT", "45s")
	t.Setenv("WEATHER_TIMEOUT", "not-a-duration")
	t.Setenv("RECOGNIZER", "Stream")
	t.Setenv("STORE_DRIVER", "REDIS")

	cfg := LoadAssistantConfig()

	assert.Equal(t, "Nova", cfg.Name)
	assert.Equal(t, 45*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 4*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, "redis", cfg.StoreDriver)
	assert.True(t, cfg.Headless())
}
