package cli

import (
	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-fleet/internal/fleet"
)

var migrateCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "migrate",
	Short: "Apply pending migration scripts",
	Long: `Apply every migration script above the installed version, in
version order. With --to, stop at the given version instead of the
latest.`,
	RunE: runMigrate,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	migrateCmd.Flags().String("to", "", "highest version to migrate to (default: latest)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	to, _ := cmd.Flags().GetString("to")

	return runFleet(cmd, fleet.Operation{Kind: fleet.OpMigrate, TargetVersion: to})
}
