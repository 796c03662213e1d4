package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faena-transit/rosterizer/pkg/rosterservice"
)

// ReplicateCmd creates the replicate command: solve the configured month and
// expand it across the remaining months of the year.
func ReplicateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "replicate",
		Short: "Solve the configured month and replicate it across the year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := rosterservice.RunMonth(app.Ctx, nil, app.Cfg, app.Logger, rosterservice.RunOptions{DryRun: true})
			if err != nil {
				return fmt.Errorf("source month failed: %w", err)
			}

			months, err := rosterservice.ReplicateYear(app.Ctx, source, app.Cfg, app.Logger)
			if err != nil {
				return fmt.Errorf("replication failed: %w", err)
			}

			fmt.Printf("\nAnnual plan from source month %d-%02d (%d drivers)\n\n", app.Cfg.Year, app.Cfg.Month, source.Solution.DriverCount())
			for _, m := range months {
				status := "replicated"
				if m.Reoptimized {
					status = fmt.Sprintf("re-optimized (%d gaps)", len(m.Gaps))
				}
				fmt.Printf("  %d-%02d  %3d drivers  %s\n", app.Cfg.Year, m.Month, m.Solution.DriverCount(), status)
			}
			fmt.Println()
			return nil
		},
	}
}
