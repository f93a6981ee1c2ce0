// Package cli wires the schemafleet commands: configuration loading,
// logging setup, and the fan-out of operations over the configured
// connection targets.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-fleet/internal/config"
)

const version = "0.1.0"

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// AppLogger is the process logger, set during PersistentPreRunE.
var AppLogger *slog.Logger //nolint:gochecknoglobals // standard Cobra pattern for shared logger

// rootCmd is the base command for the schemafleet CLI.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "schemafleet",
	Version: version,
	Short:   "Version-based schema migration for a fleet of databases",
	Long: `schemafleet discovers versioned SQL scripts, applies them in order
against one or many configured databases, records each run in a version
history table, and can roll installed versions back with paired rollback
scripts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		initLogger(cmd)

		return loadConfig(cmd)
	},
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.PersistentFlags().String("config", "db-connections.yml", "path to configuration file")
	rootCmd.PersistentFlags().StringP("target", "t", "", "connection target to operate on")
	rootCmd.PersistentFlags().Bool("all", false, "operate on every configured target")
	rootCmd.PersistentFlags().String("scripts-dir", "", "path to migration scripts")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogger builds the process logger writing to the command's stderr.
func initLogger(cmd *cobra.Command) {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	AppLogger = slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
	}))
}

// loadConfig loads configuration with precedence: flag > env > file.
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.MergeEnv(cfg)
	mergeFlags(cmd, cfg)

	AppConfig = cfg

	return nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("scripts-dir") {
		cfg.ScriptsDir, _ = cmd.Flags().GetString("scripts-dir")
	}

	if cmd.Flags().Changed("target") {
		cfg.ActiveTarget, _ = cmd.Flags().GetString("target")
	}
}

// resolveTarget picks the target selector for a run: --all (or no active
// target) fans out over the whole fleet, otherwise the active target.
func resolveTarget(cmd *cobra.Command) string {
	if all, _ := cmd.Flags().GetBool("all"); all {
		return ""
	}

	return AppConfig.ActiveTarget
}
