package main

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sandevgo/cropadvisor/internal/config"
	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/service/installer"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:          "init",
	Short:        "Create the runtime directory and a starter configuration",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()

		state, err := installer.RunWizard(runtimePath, initForce)
		if err != nil {
			return err
		}

		// Load the newly created .env file so NewAppConfig can see the values
		envPath := filepath.Join(runtimePath, ".env")
		if err := godotenv.Overload(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}

		if len(state.Profile) > 0 {
			store := NewStore(ctx)
			defer store.Close(ctx)

			if err := core.SetAll(ctx, store.Settings, state.Profile); err != nil {
				return err
			}
			logger.Info().Int("keys", len(state.Profile)).Msg("saved farm profile")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Setup complete! Run 'advisor chat' or 'advisor serve'.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing .env")
	rootCmd.AddCommand(initCmd)
}
