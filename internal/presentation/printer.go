package presentation

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"copydir/internal/domain"
)

const clearScreen = "\033[H\033[2J"

type Printer struct {
	Writer  io.Writer
	Verbose bool
	// Clear wipes the terminal before each file so only the current one
	// is on screen.
	Clear bool
}

// PrintFile announces the file about to be handled.
func (p Printer) PrintFile(item domain.MirrorItem) {
	if p.Clear {
		fmt.Fprint(p.Writer, clearScreen)
	}
	fmt.Fprintf(p.Writer, "From: %s\n", item.SourcePath)
	fmt.Fprintf(p.Writer, "To: %s\n\n", item.TargetPath)
}

func (p Printer) PrintDryRun(plan domain.MirrorPlan) {
	fmt.Fprintf(p.Writer, "Would %s:\n", verb(plan.Mode))
	fmt.Fprintln(p.Writer)

	for _, line := range formatItemLines(plan.Items) {
		fmt.Fprintln(p.Writer, line)
	}

	fmt.Fprintln(p.Writer)
	fmt.Fprintf(p.Writer, "%d files (%s) planned, %d entries skipped.\n", len(plan.Items), humanize.Bytes(uint64(plan.TotalBytes)), plan.Skipped)
	if plan.Overwrites > 0 {
		fmt.Fprintf(p.Writer, "%d existing files would be overwritten.\n", plan.Overwrites)
	}
}

func (p Printer) PrintSummary(plan domain.MirrorPlan, result domain.MirrorResult) {
	switch plan.Mode {
	case domain.ModeInfo:
		fmt.Fprintf(p.Writer, "Wrote %d info files (%s) to %s.\n", result.Processed, humanize.Bytes(uint64(result.BytesWritten)), plan.TargetDir)
	default:
		fmt.Fprintf(p.Writer, "Copied %d files (%s) to %s.\n", result.Processed, humanize.Bytes(uint64(result.BytesWritten)), plan.TargetDir)
	}

	if plan.Overwrites > 0 {
		fmt.Fprintf(p.Writer, "Overwrote %d existing files.\n", plan.Overwrites)
	}
	if skipped := plan.Skipped + len(result.Failures); skipped > 0 {
		fmt.Fprintf(p.Writer, "Skipped %d entries that were not readable regular files.\n", skipped)
	}

	if p.Verbose && (len(result.Warnings) > 0 || len(result.Failures) > 0) {
		fmt.Fprintln(p.Writer)
		fmt.Fprintln(p.Writer, "Warnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintln(p.Writer, "- "+warning)
		}
		for _, failure := range result.Failures {
			fmt.Fprintf(p.Writer, "- %s: %v\n", failure.Path, failure.Err)
		}
	}
}

func verb(mode domain.Mode) string {
	if mode == domain.ModeInfo {
		return "write info for"
	}
	return "copy"
}

func formatItemLines(items []domain.MirrorItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s -> %s", item.SourcePath, item.TargetPath))
	}

	if len(lines) <= 4 {
		return lines
	}
	short := append([]string{}, lines[:2]...)
	short = append(short, "...")
	return append(short, lines[len(lines)-2:]...)
}
