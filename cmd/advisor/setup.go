package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/cropadvisor/internal/chat"
	"github.com/sandevgo/cropadvisor/internal/config"
	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/providers/llm"
	"github.com/sandevgo/cropadvisor/internal/service/command"
	"github.com/sandevgo/cropadvisor/internal/storage/memory"
	"github.com/sandevgo/cropadvisor/internal/storage/redis"
	"github.com/sandevgo/cropadvisor/internal/storage/sqlite"
	"github.com/sandevgo/cropadvisor/internal/transport/httpapi"
	"github.com/sandevgo/cropadvisor/internal/transport/telegram"
	"github.com/sandevgo/cropadvisor/pkg/log"
	"github.com/sandevgo/cropadvisor/pkg/retry"
	"github.com/sandevgo/cropadvisor/pkg/srv"
)

// Store is the configuration and settings backend. Commands that never
// chat only need this much.
type Store struct {
	Config   *config.AppConfig
	Settings core.SettingsProvider

	closers []srv.Service
}

// Close releases the settings backend.
func (s *Store) Close(ctx context.Context) {
	srv.ShutdownServices(doneContext(ctx), s.closers)
}

// App adds the chat transport and sessions on top of a Store.
type App struct {
	*Store
	Sessions *chat.Manager
	Router   *command.Router
}

// Close cancels open exchanges, then releases the settings backend.
func (a *App) Close(ctx context.Context) {
	a.Sessions.Close()
	a.Store.Close(ctx)
}

// doneContext lets ShutdownServices run without waiting for a signal.
func doneContext(ctx context.Context) context.Context {
	done, cancel := context.WithCancel(ctx)
	cancel()
	return done
}

func NewStore(ctx context.Context) *Store {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)

	// 2. Storage
	settings, closer, err := openSettings(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", appCfg.SettingsBackend).Msg("failed to open settings store")
	}

	return &Store{
		Config:   appCfg,
		Settings: settings,
		closers:  []srv.Service{srv.NewCleanup(closer)},
	}
}

func NewApp(ctx context.Context) *App {
	store := NewStore(ctx)

	// 3. Chat transport
	transport, err := llm.NewTransport(ctx, store.Config)
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to initialize chat transport")
	}

	// 4. Sessions and slash commands
	sessions := chat.NewManager(transport, store.Settings, store.Config.GetHistoryWindow(), store.Config.GetRetainTurns())

	return &App{
		Store:    store,
		Sessions: sessions,
		Router:   command.NewRouter(sessions, store.Settings),
	}
}

// NewServices builds the long-running front ends enabled in configuration.
func NewServices(ctx context.Context, app *App) []srv.Service {
	logger := log.FromCtx(ctx)

	// cleanups first so they run after the front ends have stopped
	services := append([]srv.Service{}, app.closers...)
	services = append(services, srv.NewCleanup(func() error {
		app.Sessions.Close()
		return nil
	}))

	if app.Config.EnableHTTP {
		services = append(services, httpapi.NewServer(ctx, config.NewServerConfig(ctx), app.Sessions))
	}

	if app.Config.EnableTelegram {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), app.Sessions, app.Router)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	if !app.Config.EnableHTTP && !app.Config.EnableTelegram {
		logger.Warn().Msg("no front end enabled, set ADVISOR_ENABLE_HTTP or ADVISOR_ENABLE_TELEGRAM")
	}
	return services
}

func openSettings(ctx context.Context, cfg *config.AppConfig) (core.SettingsProvider, func() error, error) {
	switch cfg.SettingsBackend {
	case config.SettingsSQLite:
		if err := os.MkdirAll(cfg.GetRuntimePath(), 0o755); err != nil {
			return nil, nil, err
		}
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewSettings(db), db.Close, nil

	case config.SettingsRedis:
		rc := config.NewRedisConfig(ctx)
		s, err := redis.Connect(ctx, redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
		}, retry.NewDefaultRetrier())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.SettingsMemory:
		log.FromCtx(ctx).Warn().Msg("memory settings backend: farm profile is lost on exit")
		return memory.NewSettings(nil), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown settings backend %q", cfg.SettingsBackend)
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
