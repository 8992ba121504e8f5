// Package ui prints boxed coverage summaries to a terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/zjy-dev/gcovlens/internal/coverage"
	"github.com/zjy-dev/gcovlens/internal/report"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// Box drawing characters (Unicode)
const (
	boxTopLeft     = "╔"
	boxTopRight    = "╗"
	boxBottomLeft  = "╚"
	boxBottomRight = "╝"
	boxHorizontal  = "═"
	boxVertical    = "║"
	boxTeeRight    = "╠"
	boxTeeLeft     = "╣"
)

const (
	defaultWidth = 60
	labelWidth   = 18
	// maxListedFiles bounds the least-covered list of a single-run summary.
	maxListedFiles = 5
)

// TerminalUI renders coverage summaries as a box of labelled rows.
type TerminalUI struct {
	out   io.Writer
	color bool
	width int
}

// NewTerminalUI creates a TerminalUI writing to out.
func NewTerminalUI(out io.Writer, color bool) *TerminalUI {
	return &TerminalUI{
		out:   out,
		color: color,
		width: defaultWidth,
	}
}

// RenderSingle prints the summary of one run.
func (t *TerminalUI) RenderSingle(runName string, rep *report.SingleReport) error {
	var sb strings.Builder
	tot := rep.Totals

	t.writeHeader(&sb, " gcovlens Report ")
	sb.WriteString(t.formatRow("Run", runName, colorWhite))
	sb.WriteString(t.formatRow("Files", fmt.Sprintf("%d", len(rep.Files)), colorWhite))
	sb.WriteString(t.formatRow("Covered Lines", fmt.Sprintf("%d", tot.Covered), colorGreen))
	sb.WriteString(t.formatRow("Uncovered Lines", fmt.Sprintf("%d", tot.Uncovered()), colorRed))
	t.writeSeparator(&sb)
	sb.WriteString(t.formatCoverageBar("Coverage", tot.Covered, tot.Total))

	files := rep.ByPercent()
	if len(files) > 0 && tot.Uncovered() > 0 {
		t.writeSeparator(&sb)
		for i, fc := range files {
			if i == maxListedFiles || fc.Uncovered.Len() == 0 {
				break
			}
			sb.WriteString(t.formatRow(fmt.Sprintf("%.1f%%", fc.Percent()), fc.Source, colorYellow))
		}
	}
	t.writeFooter(&sb)

	_, err := io.WriteString(t.out, sb.String())
	return err
}

// RenderDiff prints the comparison of two runs.
func (t *TerminalUI) RenderDiff(runA, runB string, rep *report.DiffReport) error {
	var sb strings.Builder
	tot := rep.Totals

	becameCovered, becameUncovered := 0, 0
	for _, d := range rep.Changed {
		becameCovered += d.BecameCovered.Len()
		becameUncovered += d.BecameUncovered.Len()
	}

	deltaColor := colorGreen
	if tot.Delta() < 0 {
		deltaColor = colorRed + colorBold
	}

	t.writeHeader(&sb, " gcovlens Diff Report ")
	sb.WriteString(t.formatRow("Run A", runA, colorWhite))
	sb.WriteString(t.formatRow("Run B", runB, colorWhite))
	t.writeSeparator(&sb)
	sb.WriteString(t.formatRow("Coverage A", fmt.Sprintf("%.1f%% (%d/%d)", tot.A.Percent(), tot.A.Covered, tot.A.Total), colorWhite))
	sb.WriteString(t.formatRow("Coverage B", fmt.Sprintf("%.1f%% (%d/%d)", tot.B.Percent(), tot.B.Covered, tot.B.Total), colorWhite))
	sb.WriteString(t.formatRow("Delta", fmt.Sprintf("%+.1f%%", tot.Delta()), deltaColor))
	t.writeSeparator(&sb)
	sb.WriteString(t.formatRow("Changed Files", fmt.Sprintf("%d", len(rep.Changed)), colorWhite))
	sb.WriteString(t.formatRow("Became Covered", fmt.Sprintf("%d", becameCovered), colorGreen))
	sb.WriteString(t.formatRow("Became Uncovered", fmt.Sprintf("%d", becameUncovered), colorRed))
	t.writeSeparator(&sb)
	sb.WriteString(t.formatCoverageBar("Run B", tot.B.Covered, tot.B.Total))
	t.writeFooter(&sb)

	_, err := io.WriteString(t.out, sb.String())
	return err
}

func (t *TerminalUI) writeHeader(sb *strings.Builder, title string) {
	sb.WriteString(t.colorize(boxTopLeft+strings.Repeat(boxHorizontal, t.width-2)+boxTopRight, colorCyan))
	sb.WriteString("\n")

	titleLen := utf8.RuneCountInString(title)
	padding := (t.width - 2 - titleLen) / 2
	sb.WriteString(t.colorize(boxVertical, colorCyan))
	sb.WriteString(strings.Repeat(" ", padding))
	sb.WriteString(t.colorize(title, colorBold+colorYellow))
	sb.WriteString(strings.Repeat(" ", t.width-2-padding-titleLen))
	sb.WriteString(t.colorize(boxVertical, colorCyan))
	sb.WriteString("\n")

	t.writeSeparator(sb)
}

func (t *TerminalUI) writeSeparator(sb *strings.Builder) {
	sb.WriteString(t.colorize(boxTeeRight+strings.Repeat(boxHorizontal, t.width-2)+boxTeeLeft, colorCyan))
	sb.WriteString("\n")
}

func (t *TerminalUI) writeFooter(sb *strings.Builder) {
	sb.WriteString(t.colorize(boxBottomLeft+strings.Repeat(boxHorizontal, t.width-2)+boxBottomRight, colorCyan))
	sb.WriteString("\n")
}

// formatRow formats a single row with label and value.
func (t *TerminalUI) formatRow(label, value, valueColor string) string {
	var sb strings.Builder

	sb.WriteString(t.colorize(boxVertical, colorCyan))
	sb.WriteString(" ")

	label = truncateLeft(label, labelWidth)
	sb.WriteString(t.colorize(label, colorDim))
	sb.WriteString(strings.Repeat(" ", labelWidth-utf8.RuneCountInString(label)))

	// Value (right aligned)
	valueWidth := t.width - labelWidth - 4
	value = truncateLeft(value, valueWidth)
	sb.WriteString(strings.Repeat(" ", valueWidth-utf8.RuneCountInString(value)))
	sb.WriteString(t.colorize(value, valueColor))

	sb.WriteString(" ")
	sb.WriteString(t.colorize(boxVertical, colorCyan))
	sb.WriteString("\n")

	return sb.String()
}

// formatCoverageBar formats a coverage label row and a progress bar row.
func (t *TerminalUI) formatCoverageBar(label string, covered, total int) string {
	var sb strings.Builder

	text := fmt.Sprintf("%s: %.1f%% (%d/%d lines)", label, coverage.Percent(covered, total), covered, total)
	text = truncateLeft(text, t.width-4)
	sb.WriteString(t.colorize(boxVertical, colorCyan))
	sb.WriteString(" ")
	sb.WriteString(t.colorize(text, colorWhite))
	sb.WriteString(strings.Repeat(" ", t.width-3-utf8.RuneCountInString(text)))
	sb.WriteString(t.colorize(boxVertical, colorCyan))
	sb.WriteString("\n")

	barWidth := t.width - 6
	filled := barWidth
	if total > 0 {
		filled = barWidth * covered / total
	}
	sb.WriteString(t.colorize(boxVertical, colorCyan))
	sb.WriteString(" [")
	if filled > 0 {
		sb.WriteString(t.colorize(strings.Repeat("█", filled), colorGreen))
	}
	if filled < barWidth {
		sb.WriteString(t.colorize(strings.Repeat("░", barWidth-filled), colorDim))
	}
	sb.WriteString("] ")
	sb.WriteString(t.colorize(boxVertical, colorCyan))
	sb.WriteString("\n")

	return sb.String()
}

// colorize wraps text with ANSI color codes when colour is enabled.
func (t *TerminalUI) colorize(text, color string) string {
	if !t.color {
		return text
	}
	return color + text + colorReset
}

// truncateLeft keeps the last max runes of s, marking the cut with "...".
func truncateLeft(s string, max int) string {
	n := utf8.RuneCountInString(s)
	if n <= max {
		return s
	}
	runes := []rune(s)
	return "..." + string(runes[n-max+3:])
}
