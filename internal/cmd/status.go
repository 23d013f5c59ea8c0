package cmd

import (
	"fmt"
	"io"

	"github.com/harrison/trialsift/internal/config"
	"github.com/harrison/trialsift/internal/display"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/parity"
	"github.com/spf13/cobra"
)

// NewStatusCommand creates and returns the status subcommand
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check that every extracted file was cleaned or categorized",
		Long: `Count the JSON files of the extracted, cleaned and categorized directories
and compare them: every extracted file should end up in exactly one of the
cleaned directory or a category.

A mismatch is reported with its differential, not treated as a failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, "status", config.FlagOverrides{})
			if err != nil {
				return err
			}
			defer s.Close()

			_, err = statusWithOutput(s.cfg.Paths, s.log, s.out)
			return err
		},
		SilenceUsage: true,
	}

	return cmd
}

func statusWithOutput(paths config.PathsConfig, log logger.Logger, out io.Writer) (*parity.Balance, error) {
	b, err := parity.CheckBalance(paths.ExtractedDir, paths.CleanedDir, paths.CategorizedDir)
	if err != nil {
		return nil, err
	}

	display.Step(out, 1, "Counting files per stage")
	display.KeyValue(out, "Extracted", fmt.Sprintf("%d (%s)", b.Extracted.Files, b.Extracted.Dir))
	display.KeyValue(out, "Cleaned", fmt.Sprintf("%d (%s)", b.Cleaned.Files, b.Cleaned.Dir))
	for _, c := range b.Categories {
		fmt.Fprintf(out, "  %s: %d\n", c.Name, c.Files)
	}
	display.KeyValue(out, "Categorized", b.Categorized)
	display.KeyValue(out, "Total processed", b.Processed())

	logger.Infof(log, "extracted %d, cleaned %d, categorized %d", b.Extracted.Files, b.Cleaned.Files, b.Categorized)

	display.Step(out, 2, "Comparing")
	if b.Match() {
		display.Success(out, "The number of files match!")
		return b, nil
	}
	display.Warning{
		Title:      fmt.Sprintf("Mismatch found! Differential: %d files", b.Differential()),
		Message:    fmt.Sprintf("%d extracted, %d cleaned or categorized", b.Extracted.Files, b.Processed()),
		Suggestion: "Look for files left in the extracted directory or copied into several categories",
	}.Display(out)
	return b, nil
}
