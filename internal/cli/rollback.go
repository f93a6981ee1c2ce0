package cli

import (
	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-fleet/internal/fleet"
)

var rollbackCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "rollback",
	Short: "Roll back installed schema versions",
	Long: `Run rollback scripts for installed versions above the target, in
reverse version order, inside a single transaction per target. Without
--to, rolls back to the previous installed version.`,
	RunE: runRollback,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rollbackCmd.Flags().String("to", "", "version to roll back to (default: previous installed)")
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, _ []string) error {
	to, _ := cmd.Flags().GetString("to")

	return runFleet(cmd, fleet.Operation{Kind: fleet.OpRollback, TargetVersion: to})
}
