// Package config loads gcovlens settings from defaults, an optional YAML
// file and GCOVLENS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjy-dev/gcovlens/internal/coverage"
	"github.com/zjy-dev/gcovlens/internal/logger"
	"github.com/zjy-dev/gcovlens/internal/report"
)

const (
	// FileName is the config file looked up in the working and home
	// directories when no explicit path is given.
	FileName = ".gcovlens"
	// EnvPrefix prefixes environment overrides, e.g. GCOVLENS_FORMAT.
	EnvPrefix = "GCOVLENS"
)

// Config holds every tunable of a report run.
type Config struct {
	Format        string `mapstructure:"format"`
	Output        string `mapstructure:"output"`
	DetailsDir    string `mapstructure:"details_dir"`
	ShowLines     bool   `mapstructure:"show_lines"`
	DisplayBlank  bool   `mapstructure:"display_blank"`
	StripComments bool   `mapstructure:"strip_comments"`

	Syntax         string  `mapstructure:"syntax"`
	SyntaxTheme    string  `mapstructure:"syntax_theme"`
	UIFontSize     int     `mapstructure:"ui_font_size"`
	CodeFontSize   float64 `mapstructure:"code_font_size"`
	CodeLineHeight float64 `mapstructure:"code_line_height"`

	Threshold float64  `mapstructure:"threshold"`
	Include   []string `mapstructure:"include"`
	Exclude   []string `mapstructure:"exclude"`
	Jobs      int      `mapstructure:"jobs"`
	Extension string   `mapstructure:"extension"`

	LogLevel string `mapstructure:"log_level"`
	NoColor  bool   `mapstructure:"no_color"`
}

// Default returns the built-in settings.
func Default() *Config {
	opts := report.DefaultOptions()
	return &Config{
		Format:         string(opts.Format),
		Syntax:         string(opts.Syntax),
		SyntaxTheme:    opts.Theme,
		UIFontSize:     opts.UIFontSize,
		CodeFontSize:   opts.CodeFontSize,
		CodeLineHeight: opts.CodeLineHeight,
		Threshold:      coverage.DefaultChangeThreshold,
		Include:        []string{},
		Exclude:        []string{},
		Jobs:           0,
		Extension:      coverage.DefaultExtension,
		LogLevel:       "info",
	}
}

// Load reads the configuration. An explicit path must exist; otherwise
// .gcovlens.yaml is looked up in the working directory, then the home
// directory, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(ExpandHome(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("loaded config from %s", used)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("format", d.Format)
	v.SetDefault("output", d.Output)
	v.SetDefault("details_dir", d.DetailsDir)
	v.SetDefault("show_lines", d.ShowLines)
	v.SetDefault("display_blank", d.DisplayBlank)
	v.SetDefault("strip_comments", d.StripComments)
	v.SetDefault("syntax", d.Syntax)
	v.SetDefault("syntax_theme", d.SyntaxTheme)
	v.SetDefault("ui_font_size", d.UIFontSize)
	v.SetDefault("code_font_size", d.CodeFontSize)
	v.SetDefault("code_line_height", d.CodeLineHeight)
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("include", d.Include)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("extension", d.Extension)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("no_color", d.NoColor)
}

// Validate rejects values no report can be built with.
func (c *Config) Validate() error {
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := report.ParseSyntax(c.Syntax); err != nil {
		return err
	}
	if !slices.Contains(report.Themes, c.SyntaxTheme) {
		return fmt.Errorf("unknown syntax theme %q (want %s)", c.SyntaxTheme, strings.Join(report.Themes, " or "))
	}
	if c.UIFontSize <= 0 {
		return fmt.Errorf("ui_font_size must be positive, got %d", c.UIFontSize)
	}
	if c.CodeFontSize <= 0 {
		return fmt.Errorf("code_font_size must be positive, got %g", c.CodeFontSize)
	}
	if c.CodeLineHeight <= 0 {
		return fmt.Errorf("code_line_height must be positive, got %g", c.CodeLineHeight)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must not be negative, got %g", c.Threshold)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if _, err := coverage.NewSourceFilter(c.Include, c.Exclude); err != nil {
		return err
	}
	return nil
}

// ReportOptions converts the presentation settings. Output and DetailsDir are
// taken as is.
func (c *Config) ReportOptions() report.Options {
	format, _ := report.ParseFormat(c.Format)
	syntax, _ := report.ParseSyntax(c.Syntax)
	return report.Options{
		Format:         format,
		Output:         ExpandHome(c.Output),
		DetailsDir:     ExpandHome(c.DetailsDir),
		ShowLines:      c.ShowLines,
		DisplayBlank:   c.DisplayBlank,
		StripComments:  c.StripComments,
		Syntax:         syntax,
		Theme:          c.SyntaxTheme,
		UIFontSize:     c.UIFontSize,
		CodeFontSize:   c.CodeFontSize,
		CodeLineHeight: c.CodeLineHeight,
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
