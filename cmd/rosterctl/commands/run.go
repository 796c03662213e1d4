package commands

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/faena-transit/rosterizer/pkg/rosterservice"
)

// RunCmd creates the run command: the full monthly pipeline.
func RunCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Expand, optimize, and save the configured month's roster",
		Long:  "Run the full pipeline: expand shifts, build conflict sets, construct a greedy roster, refine it with LNS/ALNS, and save the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			seeds, _ := cmd.Flags().GetUintSlice("seeds")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetUint64("seed")
				app.Cfg.Seed = seed
			}

			opts := rosterservice.RunOptions{DryRun: dryRun}
			for _, s := range seeds {
				opts.Seeds = append(opts.Seeds, uint64(s))
			}
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				opts.Metrics = reg
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						app.Logger.Warn("metrics listener stopped", zap.Error(err))
					}
				}()
				app.Logger.Info("Serving metrics", zap.String("addr", metricsAddr))
			}

			app.Logger.Debug("run command",
				zap.Bool("dry_run", dryRun),
				zap.Uint64("seed", app.Cfg.Seed),
				zap.Int("multi_start_seeds", len(opts.Seeds)))

			var database rosterservice.RosterStore
			if app.Store != nil {
				database = app.Store
			}
			result, err := rosterservice.RunMonth(app.Ctx, database, app.Cfg, app.Logger, opts)
			if err != nil {
				return fmt.Errorf("pipeline failed: %w", err)
			}

			fmt.Printf("\nRoster for %d-%02d\n\n", app.Cfg.Year, app.Cfg.Month)
			fmt.Printf("Shifts:          %d\n", result.Shifts.Len())
			fmt.Printf("Avg conflicts:   %.1f\n", result.ConflictDiag.AverageSetSize)
			fmt.Printf("Greedy drivers:  %d\n", result.GreedyDrivers)
			fmt.Printf("Final drivers:   %d\n", result.Solution.DriverCount())
			fmt.Printf("Iterations:      %d (%.1fs)\n", result.RefineStats.Iterations, result.RefineStats.Elapsed.Seconds())
			if len(opts.Seeds) > 1 {
				fmt.Printf("Winning seed:    %d (of %d runs)\n", result.WinningSeed, len(opts.Seeds))
			}
			if result.Cancelled {
				fmt.Println("Status:          cancelled, best-so-far returned")
			}
			if result.RosterID != "" {
				fmt.Printf("Saved as:        %s\n", result.RosterID)
			} else if dryRun {
				fmt.Println("Mode:            dry run (not saved)")
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without saving to the database")
	cmd.Flags().Uint64("seed", 0, "Override the configured search seed")
	cmd.Flags().UintSlice("seeds", nil, "Run independent multi-start with these seeds and keep the best result")
	cmd.Flags().String("metrics-addr", "", "Serve prometheus engine metrics on this address (e.g. :9090)")

	return cmd
}
