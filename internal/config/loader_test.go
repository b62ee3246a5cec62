package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wonderfulgo/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, config.DefaultDBPath, cfg.Database.Path)
	assert.Equal(t, config.DefaultAssistantBaseURL, cfg.Assistant.BaseURL)
	assert.Equal(t, config.DefaultAssistantTimeout, cfg.Assistant.Timeout)
	assert.Equal(t, 503, cfg.Assistant.ThrottledStatus)
	assert.False(t, cfg.Assistant.SharedGuard)
	assert.Equal(t, config.DefaultKnownBreeds, cfg.Profile.KnownBreeds)

	task, ok := cfg.Scheduler.Tasks[config.MaintenanceTask]
	require.True(t, ok)
	assert.True(t, task.Enabled)
	assert.Equal(t, config.DefaultMaintenanceSchedule, task.Schedule)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  json: true
database:
  path: /tmp/pets.db
assistant:
  base_url: https://assistant.example.com
  timeout: 30s
  throttled_status: 429
  shared_guard: true
messages:
  throttled: Too many people right now.
profile:
  known_breeds: [Akita, Shiba Inu]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "/tmp/pets.db", cfg.Database.Path)
	assert.Equal(t, "https://assistant.example.com", cfg.Assistant.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Assistant.Timeout)
	assert.Equal(t, 429, cfg.Assistant.ThrottledStatus)
	assert.True(t, cfg.Assistant.SharedGuard)
	assert.Equal(t, "Too many people right now.", cfg.Messages.Throttled)
	assert.Empty(t, cfg.Messages.NoPlan)
	assert.Equal(t, []string{"Akita", "Shiba Inu"}, cfg.Profile.KnownBreeds)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "assistant:\n  base_url: https://file.example.com\n")
	t.Setenv("WONDERFULGO_ASSISTANT_BASE_URL", "https://env.example.com")
	t.Setenv("WONDERFULGO_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Assistant.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad log level", "log:\n  level: verbose\n"},
		{"bad base url", "assistant:\n  base_url: not-a-url\n"},
		{"timeout too short", "assistant:\n  timeout: 10ms\n"},
		{"throttled status not an error", "assistant:\n  throttled_status: 200\n"},
		{"enabled task without schedule", "scheduler:\n  tasks:\n    sql_maintenance:\n      enabled: true\n      schedule: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrConfiguration))
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "log: [unclosed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfiguration)
}
