package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/jukebox/internal/config"
	"github.com/mcoot/jukebox/internal/factory"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()
	app = nil

	rootCmd := &cobra.Command{
		Use:   "jukebox",
		Short: "Kiosk jukebox with daily play limits",
		Long: `jukebox runs a kiosk-style music jukebox.

Each account may play three songs a day within a daily time allowance,
and each song may be played three times a day. Counters reset at midnight.
State is saved between runs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfg.ConfigFile)
			if err != nil {
				return err
			}
			if cfg.Verbose {
				loaded.Logging.Level = "debug"
			}

			logger := loaded.Logging.NewLogger(cmd.ErrOrStderr())
			app, err = factory.New(factory.FromConfig(loaded, logger))
			if err != nil {
				return fmt.Errorf("failed to start jukebox: %w", err)
			}
			app.Restore(cmd.Context())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close(context.WithoutCancel(cmd.Context()))
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "Config file (env: JUKEBOX_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose logging")

	// Add subcommands
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newQueueCmd())
	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newResetStateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
