package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/cropadvisor/internal/config"
	"github.com/sandevgo/cropadvisor/internal/transport/tui"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the advisor in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// the log file location comes from the config, read before logging starts
		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		cfg, err := config.LoadAppConfig()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.GetRuntimePath(), 0o755); err != nil {
			return err
		}
		logFile, err := os.OpenFile(cfg.GetLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()

		var flushLog func()
		ctx, flushLog = setupFileLogger(ctx, logFile)
		defer flushLog()

		app := NewApp(ctx)
		defer app.Close(ctx)

		return tui.Run(ctx, app.Sessions.Session(ctx, chatSession), app.Router)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "terminal", "conversation id")
	rootCmd.AddCommand(chatCmd)
}
