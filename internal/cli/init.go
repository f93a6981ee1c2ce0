package cli

import (
	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-fleet/internal/fleet"
)

var initCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "init",
	Short: "Create the version history table",
	Long: `Create the schema version history table on the selected targets.
Safe to run repeatedly; existing tables are left untouched.`,
	RunE: runInit,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for command registration
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	return runFleet(cmd, fleet.Operation{Kind: fleet.OpInit})
}
