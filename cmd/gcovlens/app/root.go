package app

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/gcovlens/internal/config"
	"github.com/zjy-dev/gcovlens/internal/logger"
	"github.com/zjy-dev/gcovlens/internal/report"
	"github.com/zjy-dev/gcovlens/internal/ui"
)

// reportFlags configure the written report.
type reportFlags struct {
	output         string
	format         string
	showLines      bool
	detailsDir     string
	displayBlank   bool
	stripComments  bool
	syntax         string
	syntaxTheme    string
	uiFontSize     int
	codeFontSize   float64
	codeLineHeight float64
}

// NewGcovlensCommand creates the root command, which writes a coverage report
// for one run or a diff report for two.
func NewGcovlensCommand() *cobra.Command {
	common := &commonFlags{}
	rf := &reportFlags{}
	defaults := report.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "gcovlens <run-a> [run-b]",
		Short: "Summarise and compare gcov coverage runs.",
		Long: `gcovlens reads the .gcov text dumps of one or two coverage runs and writes
an HTML or Markdown report.

With one directory it reports per-file and total line coverage. With two
directories it compares run A against run B and lists the files whose
coverage changed, together with the lines that became covered or uncovered.

Each run directory is scanned recursively for *.gcov files. When none are
found, a "codecov" sub-directory is tried once.

Configuration:
  Defaults can be set in .gcovlens.yaml (working or home directory, or
  --config) and overridden with GCOVLENS_* environment variables.
  Command line flags override both.

Examples:
  # HTML report for a single run
  gcovlens build/run1

  # Markdown diff report including the changed line numbers
  gcovlens build/run1 build/run2 -f md --show-lines

  # Only sources under src/, highlighted on the server
  gcovlens run1 run2 --include 'src/**' --syntax chroma -o out/diff.html`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.resolve(cmd)
			if err != nil {
				return err
			}
			rf.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			setupLogger(cfg)
			return runReport(cmd, cfg, expandArgs(args))
		},
	}

	common.register(cmd)

	f := cmd.Flags()
	f.StringVarP(&rf.output, "output", "o", "", "Report file (default coverage_<A>.<ext> or coverage_diff_<A>_V_<B>.<ext>)")
	f.StringVarP(&rf.format, "format", "f", string(defaults.Format), "Report format: html or md")
	f.BoolVar(&rf.showLines, "show-lines", false, "List changed line numbers in Markdown diff reports")
	f.StringVar(&rf.detailsDir, "details-dir", "", "Directory for HTML detail pages (default <output>_files)")
	f.BoolVar(&rf.displayBlank, "display-blank", false, "Show blank non-executable lines on detail pages")
	f.BoolVar(&rf.stripComments, "strip-comments", false, "Hide comment-only non-executable lines on detail pages")
	f.StringVar(&rf.syntax, "syntax", string(defaults.Syntax), "Syntax highlighting: off, hljs or chroma")
	f.StringVar(&rf.syntaxTheme, "syntax-theme", defaults.Theme, "Highlighting theme: github or github-dark")
	f.IntVar(&rf.uiFontSize, "ui-font-size", defaults.UIFontSize, "UI font size in px")
	f.Float64Var(&rf.codeFontSize, "code-font-size", defaults.CodeFontSize, "Code font size in px")
	f.Float64Var(&rf.codeLineHeight, "code-line-height", defaults.CodeLineHeight, "Code line height")

	cmd.AddCommand(newSummaryCommand(common))

	return cmd
}

func (rf *reportFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = rf.output
	}
	if flags.Changed("format") {
		cfg.Format = rf.format
	}
	if flags.Changed("show-lines") {
		cfg.ShowLines = rf.showLines
	}
	if flags.Changed("details-dir") {
		cfg.DetailsDir = rf.detailsDir
	}
	if flags.Changed("display-blank") {
		cfg.DisplayBlank = rf.displayBlank
	}
	if flags.Changed("strip-comments") {
		cfg.StripComments = rf.stripComments
	}
	if flags.Changed("syntax") {
		cfg.Syntax = rf.syntax
	}
	if flags.Changed("syntax-theme") {
		cfg.SyntaxTheme = rf.syntaxTheme
	}
	if flags.Changed("ui-font-size") {
		cfg.UIFontSize = rf.uiFontSize
	}
	if flags.Changed("code-font-size") {
		cfg.CodeFontSize = rf.codeFontSize
	}
	if flags.Changed("code-line-height") {
		cfg.CodeLineHeight = rf.codeLineHeight
	}
}

func runReport(cmd *cobra.Command, cfg *config.Config, dirs []string) error {
	runs, err := loadRuns(cmd.Context(), cfg, dirs)
	if err != nil {
		return err
	}

	opts := cfg.ReportOptions()
	if opts.Output == "" {
		runB := ""
		if len(dirs) == 2 {
			runB = dirs[1]
		}
		opts.Output = report.DefaultOutputName(dirs[0], runB, opts.Format)
	}

	reporter, err := report.New(afero.NewOsFs(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tui := newTerminalUI(out, cfg)
	if len(runs) == 1 {
		rep := report.NewSingleReport(runs[0])
		res, err := reporter.WriteSingle(rep)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		printResult(out, "coverage", res)
		return tui.RenderSingle(dirs[0], rep)
	}

	rep := report.NewDiffReport(runs[0], runs[1], cfg.Threshold)
	res, err := reporter.WriteDiff(rep)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	printResult(out, "diff", res)
	return tui.RenderDiff(dirs[0], dirs[1], rep)
}

func printResult(out io.Writer, kind string, res *report.Result) {
	logger.Debug("wrote %d detail pages", res.Pages)
	fmt.Fprintf(out, "Wrote %s report to: %s\n", kind, res.Output)
	if res.DetailsDir != "" {
		fmt.Fprintf(out, "Detail pages in: %s\n", res.DetailsDir)
	}
}

func newTerminalUI(out io.Writer, cfg *config.Config) *ui.TerminalUI {
	return ui.NewTerminalUI(out, logger.IsTerminal(out) && !cfg.NoColor)
}
