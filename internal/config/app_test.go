package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADVISOR_RUNTIME_PATH", dir)

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, core.StrategyStreaming, cfg.GetStrategy())
	assert.Equal(t, SettingsSQLite, cfg.SettingsBackend)
	assert.Equal(t, 10, cfg.GetHistoryWindow())
	assert.Equal(t, 200, cfg.GetRetainTurns())
	assert.Equal(t, filepath.Join(dir, "advisor.db"), cfg.GetDatabasePath())
	assert.Equal(t, filepath.Join(dir, "advisor.log"), cfg.GetLogPath())
}

func TestLoadAppConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown transport", env: map[string]string{"ADVISOR_TRANSPORT": "carrier-pigeon"}},
		{name: "unknown backend", env: map[string]string{"ADVISOR_SETTINGS_BACKEND": "csv"}},
		{name: "zero window", env: map[string]string{"ADVISOR_HISTORY_WINDOW": "0"}},
		{name: "negative retention", env: map[string]string{"ADVISOR_RETAIN_TURNS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADVISOR_RUNTIME_PATH", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadAppConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadStreamConfig(t *testing.T) {
	t.Run("requires url", func(t *testing.T) {
		t.Setenv("ADVISOR_CHAT_URL", "")
		_, err := LoadStreamConfig()
		assert.Error(t, err)
	})

	t.Run("parses stall timeout", func(t *testing.T) {
		t.Setenv("ADVISOR_CHAT_URL", "https://example.test/functions/v1/chat")
		t.Setenv("ADVISOR_CHAT_TOKEN", "pk")
		t.Setenv("ADVISOR_STREAM_STALL_TIMEOUT", "5s")

		cfg, err := LoadStreamConfig()
		require.NoError(t, err)
		assert.Equal(t, "pk", cfg.GetChatToken())
		assert.Equal(t, 5*time.Second, cfg.GetStallTimeout())
	})
}

func TestResolveRuntimePath(t *testing.T) {
	abs := t.TempDir()
	assert.Equal(t, abs, resolveRuntimePath(abs))
	assert.True(t, filepath.IsAbs(resolveRuntimePath("relative")))
	assert.True(t, filepath.IsAbs(resolveRuntimePath("")))
}
