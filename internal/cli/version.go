package cli

import (
	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-fleet/internal/fleet"
)

var versionCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "version",
	Short: "Show the installed schema version",
	Long: `Report the highest successfully installed schema version on the
selected targets. Targets with an empty history report version 0.`,
	RunE: runVersion,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for command registration
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	return runFleet(cmd, fleet.Operation{Kind: fleet.OpVersion})
}
