package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

const (
	SettingsSQLite = "sqlite"
	SettingsRedis  = "redis"
	SettingsMemory = "memory"
)

type AppConfig struct {
	RuntimePath string `env:"ADVISOR_RUNTIME_PATH" envDefault:".cropadvisor"`
	// Explicit transport selection: "streaming" or "single-shot"
	Transport string `env:"ADVISOR_TRANSPORT" envDefault:"streaming"`
	// Where farmer settings live: sqlite, redis or memory
	SettingsBackend string `env:"ADVISOR_SETTINGS_BACKEND" envDefault:"sqlite"`

	// Transport Flags
	EnableHTTP     bool `env:"ADVISOR_ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool `env:"ADVISOR_ENABLE_TELEGRAM" envDefault:"false"`

	// Context Management
	HistoryWindow int `env:"ADVISOR_HISTORY_WINDOW" envDefault:"10"`
	RetainTurns   int `env:"ADVISOR_RETAIN_TURNS" envDefault:"200"`
}

func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) validate() error {
	switch core.Strategy(c.Transport) {
	case core.StrategyStreaming, core.StrategySingleShot:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}

	switch c.SettingsBackend {
	case SettingsSQLite, SettingsRedis, SettingsMemory:
	default:
		return fmt.Errorf("unknown settings backend %q", c.SettingsBackend)
	}

	if c.HistoryWindow <= 0 {
		return fmt.Errorf("history window must be positive, got %d", c.HistoryWindow)
	}
	if c.RetainTurns < 0 {
		return fmt.Errorf("retain turns must not be negative, got %d", c.RetainTurns)
	}
	return nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "advisor.db")
}

func (c AppConfig) GetLogPath() string {
	return filepath.Join(c.RuntimePath, "advisor.log")
}

func (c AppConfig) GetHistoryWindow() int {
	return c.HistoryWindow
}

func (c AppConfig) GetRetainTurns() int {
	return c.RetainTurns
}

func (c AppConfig) GetStrategy() core.Strategy {
	return core.Strategy(c.Transport)
}
