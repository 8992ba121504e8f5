package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/gcovlens/internal/config"
	"github.com/zjy-dev/gcovlens/internal/coverage"
	"github.com/zjy-dev/gcovlens/internal/logger"
)

// commonFlags are shared by every command through the root's persistent
// flag set.
type commonFlags struct {
	configPath string
	logLevel   string
	noColor    bool
	threshold  float64
	include    []string
	exclude    []string
	jobs       int
}

func (f *commonFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Config file (default .gcovlens.yaml in the working or home directory)")
	pf.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.BoolVar(&f.noColor, "no-color", false, "Disable coloured terminal output")
	pf.Float64Var(&f.threshold, "threshold", coverage.DefaultChangeThreshold, "Minimum |Δ%| for a file to count as changed in diff mode")
	pf.StringArrayVar(&f.include, "include", nil, "Only report sources matching this glob (repeatable, ** allowed)")
	pf.StringArrayVar(&f.exclude, "exclude", nil, "Skip sources matching this glob (repeatable, ** allowed)")
	pf.IntVar(&f.jobs, "jobs", 0, "Files parsed in parallel (0 = number of CPUs)")
}

// resolve loads the config file and environment, then lets explicitly set
// flags win.
func (f *commonFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flags.Changed("no-color") {
		cfg.NoColor = f.noColor
	}
	if flags.Changed("threshold") {
		cfg.Threshold = f.threshold
	}
	if flags.Changed("include") {
		cfg.Include = f.include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = f.exclude
	}
	if flags.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	return cfg, nil
}

// setupLogger applies the configured level and colour mode.
func setupLogger(cfg *config.Config) {
	logger.Init(cfg.LogLevel)
	logger.SetLevel(cfg.LogLevel)
	logger.SetColorEnable(logger.IsTerminal(os.Stderr) && !cfg.NoColor)
}

// loadRuns reads every run directory and applies the source filters.
func loadRuns(ctx context.Context, cfg *config.Config, dirs []string) ([]coverage.Run, error) {
	filter, err := coverage.NewSourceFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	loader := coverage.NewLoader(afero.NewOsFs(),
		coverage.WithExtension(cfg.Extension),
		coverage.WithWorkers(cfg.Jobs),
	)

	runs := make([]coverage.Run, 0, len(dirs))
	for _, dir := range dirs {
		run, err := loader.Load(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", dir, err)
		}
		kept := filter.Apply(run)
		logger.Info("loaded %d files from %s (%d after filters)", len(run), dir, len(kept))
		runs = append(runs, kept)
	}
	return runs, nil
}

// expandArgs expands a leading ~ in every run directory argument.
func expandArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = config.ExpandHome(a)
	}
	return out
}
