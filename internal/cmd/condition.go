package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/harrison/trialsift/internal/config"
	"github.com/harrison/trialsift/internal/corpus"
	"github.com/harrison/trialsift/internal/display"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/models"
	"github.com/harrison/trialsift/internal/partition"
	"github.com/spf13/cobra"
)

// NewConditionCommand creates and returns the condition subcommand
func NewConditionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "condition <condition>",
		Short: "Extract the trials that mention a condition",
		Long: `Read every JSON file under the source directory, search each trial for the
condition (case-insensitive substring of any string value, at any depth) and
write the matching trials to <processed_dir>/subset_<condition>, one file per
source file that had a match.

Examples:
  trialsift condition "Breast Cancer"
  trialsift condition diabetes --source data/extracted/2024-06`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, "condition", config.FlagOverrides{})
			if err != nil {
				return err
			}
			defer s.Close()

			source := stringFlag(cmd, "source", s.cfg.Paths.ExtractedDir)
			output := stringFlag(cmd, "output", "")
			if output == "" {
				slug, err := partition.Slug(args[0])
				if err != nil {
					return err
				}
				output = filepath.Join(s.cfg.Paths.ProcessedDir, "subset_"+slug)
			}
			return conditionWithOutput(args[0], source, output, s.log, s.out)
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("source", "", "Directory of JSON trials (default: paths.extracted_dir)")
	cmd.Flags().String("output", "", "Output directory (default: <paths.processed_dir>/subset_<condition>)")

	return cmd
}

// conditionWithOutput partitions source on condition and writes the matches to output
func conditionWithOutput(condition, source, output string, log logger.Logger, out io.Writer) error {
	c, err := readSource(source, out, log)
	if err != nil {
		return err
	}

	display.Step(out, 2, fmt.Sprintf("Searching %d trials for '%s'", c.Total(), condition))
	res := partition.Partition(c, condition, log)
	display.KeyValue(out, "Scanned", res.Scanned)
	display.KeyValue(out, "Matched", len(res.Matched))
	display.KeyValue(out, "Unmatched", len(res.Unmatched))
	if res.Empty() {
		display.Warning{
			Title:   fmt.Sprintf("Searched %d trials; %s not found", res.Scanned, condition),
			Message: "No output directory was created.",
		}.Display(out)
		return nil
	}

	display.Step(out, 3, "Saving matched trials to "+output)
	summary, err := partition.WriteGroup(output, res.Groups, log)
	if err != nil {
		return err
	}
	for _, f := range summary.Files {
		fmt.Fprintf(out, "  Saved %d items to %s\n", f.Records, f.Path)
	}
	if summary.Total != len(res.Matched) {
		return fmt.Errorf("wrote %d trials but %d matched", summary.Total, len(res.Matched))
	}
	display.Success(out, fmt.Sprintf("Filtered %d trials out of %d total trials for condition '%s'",
		summary.Total, res.Scanned, condition))
	return nil
}

// readSource runs the corpus reader as step 1 and reports missing sources and
// skipped files.
func readSource(source string, out io.Writer, log logger.Logger) (*models.Corpus, error) {
	display.Step(out, 1, "Reading trials from "+source)
	c, err := corpus.Read(source, corpus.ReadOptions{Progress: out, Label: "Listing files in " + source}, log)
	if errors.Is(err, corpus.ErrSourceMissing) || errors.Is(err, corpus.ErrSourceEmpty) {
		display.MissingSourceWarning(source).Display(out)
	}
	if err != nil {
		return nil, err
	}

	if skipped := c.Skipped(); len(skipped) > 0 {
		paths := make([]string, len(skipped))
		for i, f := range skipped {
			paths[i] = f.RelPath
		}
		display.SkippedFilesWarning(paths).Display(out)
	}
	return c, nil
}
