package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harrison/trialsift/internal/config"
	"github.com/harrison/trialsift/internal/display"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/parity"
	"github.com/spf13/cobra"
)

// NewCheckCommand creates and returns the check subcommand
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare trial counts of categories and their exported artifacts",
		Long: `Count the trials of every category under the categorized directory and the
data rows of every artifact exported from it, then report whether both sides
hold the same number. The size of every artifact is listed, and text chunks
larger than export.max_chunk_bytes are reported.

Differences are reported, not treated as failures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, "check", exportOverrides(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			category, _ := cmd.Flags().GetString("category")
			_, err = checkWithOutput(s.cfg, category, s.log, s.out)
			return err
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("category", "", "Check only this category")
	cmd.Flags().Int64("max-chunk-bytes", 0, "Chunk size ceiling to check against (default: export.max_chunk_bytes)")

	return cmd
}

func checkWithOutput(cfg *config.Config, only string, log logger.Logger, out io.Writer) ([]*parity.Report, error) {
	paths := cfg.Paths
	var reports []*parity.Report
	if only != "" {
		r, err := parity.CheckCategory(paths.CategorizedDir, paths.ArtifactsDir, only)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	} else {
		var err error
		if reports, err = parity.CheckAll(paths.CategorizedDir, paths.ArtifactsDir); err != nil {
			display.MissingSourceWarning(paths.CategorizedDir).Display(out)
			return nil, err
		}
	}

	for i, r := range reports {
		display.Step(out, i+1, "Checking "+r.Category)
		for _, a := range r.Artifacts {
			if a.Err != nil {
				fmt.Fprintf(out, "  %s: %s\n", a.Path, color.RedString("unreadable"))
				continue
			}
			fmt.Fprintf(out, "  %s: %d rows, %d bytes\n", a.Path, a.Rows, a.Bytes)
		}
		display.KeyValue(out, "JSON files", r.JSONFiles)
		display.KeyValue(out, "Trials in JSON", r.JSONCount)
		display.KeyValue(out, "Rows in artifacts", r.ArtifactCount)

		verdict := color.GreenString(r.Verdict())
		if !r.Match() {
			verdict = color.YellowString("%s (%+d)", r.Verdict(), r.Delta())
		}
		fmt.Fprintf(out, "  %s and its artifacts have the %s of trials\n", r.Category, verdict)

		for _, e := range r.Errors {
			logger.Warnf(log, "%v", e)
		}
		logger.Infof(log, "%s: %d trials in JSON, %d rows in artifacts", r.Category, r.JSONCount, r.ArtifactCount)
	}

	var oversized []string
	for _, r := range reports {
		for _, a := range r.OverCeiling(cfg.Export.MaxChunkBytes) {
			oversized = append(oversized, fmt.Sprintf("%s (%d bytes)", a.Path, a.Bytes))
		}
	}
	if len(oversized) > 0 {
		logger.Warnf(log, "%d artifact(s) exceed the %d byte chunk ceiling", len(oversized), cfg.Export.MaxChunkBytes)
		display.Warning{
			Title:      fmt.Sprintf("%d artifact(s) larger than %d bytes", len(oversized), cfg.Export.MaxChunkBytes),
			Message:    "A chunk only exceeds the ceiling when a single trial is larger than it.",
			Files:      oversized,
			Suggestion: "Re-run 'trialsift export' with a larger --max-chunk-bytes if these are unexpected",
		}.Display(out)
	}

	bad := parity.Discrepancies(reports)
	if len(bad) == 0 {
		display.Success(out, fmt.Sprintf("All %d categories match their artifacts", len(reports)))
		return reports, nil
	}

	names := make([]string, len(bad))
	for i, r := range bad {
		names[i] = fmt.Sprintf("%s (json %d, artifacts %d)", r.Category, r.JSONCount, r.ArtifactCount)
	}
	display.Warning{
		Title:      fmt.Sprintf("%d of %d categories differ from their artifacts", len(bad), len(reports)),
		Files:      names,
		Suggestion: "Re-run 'trialsift export' for these categories",
	}.Display(out)
	return reports, nil
}
