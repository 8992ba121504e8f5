package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/gcovlens/internal/report"
)

// newSummaryCommand creates the "summary" subcommand.
func newSummaryCommand(common *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <run-a> [run-b]",
		Short: "Print a coverage summary without writing a report.",
		Long: `Print the terminal summary of one run, or of the comparison of two runs.
No files are written.

Examples:
  # Totals and the least covered files of a run
  gcovlens summary build/run1

  # Coverage delta between two runs, ignoring generated sources
  gcovlens summary run1 run2 --exclude 'gen/**'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.resolve(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			setupLogger(cfg)

			dirs := expandArgs(args)
			runs, err := loadRuns(cmd.Context(), cfg, dirs)
			if err != nil {
				return err
			}

			tui := newTerminalUI(cmd.OutOrStdout(), cfg)
			if len(runs) == 1 {
				return tui.RenderSingle(dirs[0], report.NewSingleReport(runs[0]))
			}
			return tui.RenderDiff(dirs[0], dirs[1], report.NewDiffReport(runs[0], runs[1], cfg.Threshold))
		},
	}
}
