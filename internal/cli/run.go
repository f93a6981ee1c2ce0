package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-fleet/internal/fleet"
)

// errFleetFailures is returned when at least one target's outcome is an
// error, so the process exits non-zero even though the run completed.
var errFleetFailures = errors.New("one or more targets failed")

// runFleet executes one operation through the orchestrator and prints the
// per-target report.
func runFleet(cmd *cobra.Command, op fleet.Operation) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	o := fleet.New(AppConfig, fleet.WithLogger(AppLogger))

	report, err := o.Run(ctx, op, resolveTarget(cmd))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.String())

	if report.Failed() {
		return errFleetFailures
	}

	return nil
}
