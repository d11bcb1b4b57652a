package installer

import (
	"github.com/sandevgo/cropadvisor/internal/config"
	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/env"
)

// InstallState collects the answers of the wizard.
type InstallState struct {
	App      config.AppConfig
	Stream   config.StreamConfig
	Gemini   config.GeminiConfig
	Telegram config.TelegramConfig
	// Profile holds farmer settings to seed into the settings store.
	Profile map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{
		App: config.AppConfig{
			Transport:       string(core.StrategyStreaming),
			SettingsBackend: config.SettingsSQLite,
		},
		Profile: make(map[string]string),
	}
}

func (s *InstallState) Streaming() bool {
	return core.Strategy(s.App.Transport) == core.StrategyStreaming
}

// EnvFile renders the .env content for the collected configuration. Only the
// transport that was chosen is written.
func (s *InstallState) EnvFile() (string, error) {
	s.App.EnableTelegram = s.Telegram.Token != ""

	configs := []any{&s.App}
	if s.Streaming() {
		configs = append(configs, &s.Stream)
	} else {
		configs = append(configs, &s.Gemini)
	}
	if s.App.EnableTelegram {
		configs = append(configs, &s.Telegram)
	}
	return env.MarshalEnv(configs...)
}
