package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-fleet/internal/config"
	"github.com/aqasim81/schema-fleet/internal/database"
	"github.com/aqasim81/schema-fleet/internal/engine"
	"github.com/aqasim81/schema-fleet/internal/fleet"
	"github.com/aqasim81/schema-fleet/internal/history"
	"github.com/aqasim81/schema-fleet/internal/script"
)

// errTargetRequired is returned when status cannot resolve a single target.
var errTargetRequired = errors.New("status needs a single target (set --target or active_target)")

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show the version history of one target",
	Long: `Display the full version history of a single target, including
failed runs, in installation order.`,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for command registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.ActiveTarget == "" {
		return errTargetRequired
	}

	target, ok := cfg.Targets[cfg.ActiveTarget]
	if !ok {
		return fmt.Errorf("%w: %s", fleet.ErrUnknownTarget, cfg.ActiveTarget)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := fetchHistory(ctx, cfg, target)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: no versions installed\n", target.Name)

		return nil
	}

	return printHistory(cmd, target.Name, rows)
}

// fetchHistory connects to the target and reads its full history.
func fetchHistory(ctx context.Context, cfg *config.Config, target config.Target) ([]history.Row, error) {
	db, product, err := database.Open(ctx, target.URL, target.Username, target.Password)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", target.Name, err)
	}
	defer db.Close()

	eng := engine.New(db, product, script.New(cfg.ScriptsDir), engine.WithLogger(AppLogger))

	rows, err := eng.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading history of %s: %w", target.Name, err)
	}

	return rows, nil
}

func printHistory(cmd *cobra.Command, targetName string, rows []history.Row) error {
	header := []string{"RANK", "VERSION", "DESCRIPTION", "TYPE", "INSTALLED ON", "BY", "TIME (MS)", "STATE"}

	data := make([][]string, 0, len(rows))

	for _, row := range rows {
		state := "success"
		if !row.Success {
			state = "FAILED"
		}

		data = append(data, []string{
			strconv.Itoa(row.InstalledRank),
			row.Version,
			row.Description,
			row.Type,
			row.InstalledOn.Format("2006-01-02 15:04:05"),
			row.InstalledBy,
			strconv.Itoa(row.ExecutionTime),
			state,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Version history of %s:\n\n", targetName)

	if err := renderTable(header, data, out); err != nil {
		return fmt.Errorf("rendering history table: %w", err)
	}

	return nil
}
