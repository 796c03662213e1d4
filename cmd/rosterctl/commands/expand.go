package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/faena-transit/rosterizer/pkg/conflictset"
	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
	"github.com/faena-transit/rosterizer/pkg/shiftexpand"
)

// ExpandCmd creates the expand command: dry-expand the configured services
// and report what the optimizer would see.
func ExpandCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "expand",
		Short: "Expand the configured services into dated shifts and report counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("expand command", zap.Int("year", app.Cfg.Year), zap.Int("month", app.Cfg.Month))

			shifts, err := shiftexpand.Expand(app.Cfg.Year, time.Month(app.Cfg.Month), app.Cfg.ServiceTemplates())
			if err != nil {
				return fmt.Errorf("expansion failed: %w", err)
			}

			idx := rosterdomain.NewShiftIndex(shifts)
			_, diag := conflictset.Build(idx, app.Cfg.Regime())

			totalMinutes := 0
			byService := make(map[string]int)
			for _, s := range shifts {
				totalMinutes += s.Duration
				byService[s.ServiceID]++
			}

			fmt.Printf("\nExpanded %d shifts for %d-%02d (%.1f h total)\n\n", len(shifts), app.Cfg.Year, app.Cfg.Month, float64(totalMinutes)/60.0)
			for _, svc := range app.Cfg.Services {
				fmt.Printf("  %-20s %d shifts\n", svc.ServiceID, byService[svc.ServiceID])
			}
			fmt.Printf("\nAvg conflict-set size: %.1f (max %d)\n\n", diag.AverageSetSize, diag.MaxSetSize)
			return nil
		},
	}
}
