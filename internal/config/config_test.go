package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/gcovlens/internal/coverage"
	"github.com/zjy-dev/gcovlens/internal/report"
)

// isolate runs the test from an empty working directory with an empty home so
// no stray .gcovlens.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "html", cfg.Format)
	assert.Equal(t, "hljs", cfg.Syntax)
	assert.Equal(t, coverage.DefaultChangeThreshold, cfg.Threshold)
	assert.Equal(t, ".gcov", cfg.Extension)
	assert.Equal(t, 1.25, cfg.CodeLineHeight)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Format, cfg.Format)
	assert.Equal(t, want.Syntax, cfg.Syntax)
	assert.Equal(t, want.SyntaxTheme, cfg.SyntaxTheme)
	assert.Equal(t, want.UIFontSize, cfg.UIFontSize)
	assert.Equal(t, want.CodeFontSize, cfg.CodeFontSize)
	assert.Equal(t, want.Threshold, cfg.Threshold)
	assert.Equal(t, want.Extension, cfg.Extension)
	assert.Equal(t, want.LogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.Include)
	assert.Empty(t, cfg.Output)
	assert.False(t, cfg.NoColor)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `
format: md
show_lines: true
threshold: 0.5
include:
  - "src/**"
exclude:
  - "src/gen/**"
jobs: 3
syntax: chroma
syntax_theme: github-dark
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "md", cfg.Format)
	assert.True(t, cfg.ShowLines)
	assert.Equal(t, 0.5, cfg.Threshold)
	assert.Equal(t, []string{"src/**"}, cfg.Include)
	assert.Equal(t, []string{"src/gen/**"}, cfg.Exclude)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, "chroma", cfg.Syntax)
	assert.Equal(t, "github-dark", cfg.SyntaxTheme)
	// Untouched keys keep their defaults.
	assert.Equal(t, 12, cfg.UIFontSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_DiscoversWorkingDirectoryFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gcovlens.yaml"), []byte("format: md\nlog_level: debug\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "md", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gcovlens.yaml"), []byte("format: [unclosed\n"), 0644))

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gcovlens.yaml"), []byte("format: html\njobs: 2\n"), 0644))
	t.Setenv("GCOVLENS_FORMAT", "md")
	t.Setenv("GCOVLENS_DETAILS_DIR", "/tmp/pages")
	t.Setenv("GCOVLENS_NO_COLOR", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "md", cfg.Format)
	assert.Equal(t, "/tmp/pages", cfg.DetailsDir)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, 2, cfg.Jobs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"format", func(c *Config) { c.Format = "pdf" }},
		{"syntax", func(c *Config) { c.Syntax = "pygments" }},
		{"theme", func(c *Config) { c.SyntaxTheme = "monokai" }},
		{"ui font", func(c *Config) { c.UIFontSize = 0 }},
		{"code font", func(c *Config) { c.CodeFontSize = -1 }},
		{"line height", func(c *Config) { c.CodeLineHeight = 0 }},
		{"threshold", func(c *Config) { c.Threshold = -0.1 }},
		{"jobs", func(c *Config) { c.Jobs = -2 }},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"include pattern", func(c *Config) { c.Include = []string{"src/[x"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestReportOptions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	cfg.Format = "md"
	cfg.Syntax = "chroma"
	cfg.Output = "~/reports/out.md"
	cfg.StripComments = true

	opts := cfg.ReportOptions()
	assert.Equal(t, report.FormatMarkdown, opts.Format)
	assert.Equal(t, report.SyntaxChroma, opts.Syntax)
	assert.Equal(t, filepath.Join(home, "reports", "out.md"), opts.Output)
	assert.True(t, opts.StripComments)
	assert.Empty(t, opts.DetailsDir)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "runs", "a"), ExpandHome("~/runs/a"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "rel/~x", ExpandHome("rel/~x"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
	assert.Equal(t, "", ExpandHome(""))
}
