package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/harrison/trialsift/internal/config"
	"github.com/harrison/trialsift/internal/display"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/partition"
	"github.com/harrison/trialsift/internal/split"
	"github.com/spf13/cobra"
)

// NewRandomCommand creates and returns the random subcommand
func NewRandomCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Shuffle all trials into train and test files",
		Long: `Read every JSON file under the source directory, shuffle all trials together
and split them at floor(total * (1 - test_fraction)). Each group is cut back
into files using the original per-file counts and written as
<name>_train.json and <name>_test.json. Empty chunks produce no file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var overrides config.FlagOverrides
			if cmd.Flags().Changed("test-fraction") {
				f, _ := cmd.Flags().GetFloat64("test-fraction")
				overrides.TestFraction = &f
			}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetUint64("seed")
				overrides.Seed = &seed
			}
			s, err := newSession(cmd, "random", overrides)
			if err != nil {
				return err
			}
			defer s.Close()

			source := stringFlag(cmd, "source", s.cfg.Paths.ExtractedDir)
			output := stringFlag(cmd, "output", filepath.Join(s.cfg.Paths.ProcessedDir, "random_split"))
			return randomWithOutput(source, output, s.cfg.Split, s.log, s.out)
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("source", "", "Directory of JSON trials (default: paths.extracted_dir)")
	cmd.Flags().String("output", "", "Output directory (default: <paths.processed_dir>/random_split)")
	cmd.Flags().Float64("test-fraction", 0, "Share of trials placed in the test group, in (0,1) (default: split.test_fraction)")
	cmd.Flags().Uint64("seed", 0, "Shuffle seed; 0 picks a random seed")

	return cmd
}

func randomWithOutput(source, output string, cfg config.SplitConfig, log logger.Logger, out io.Writer) error {
	c, err := readSource(source, out, log)
	if err != nil {
		return err
	}

	display.Step(out, 2, fmt.Sprintf("Splitting %d trials (test fraction %.2f)", c.Total(), cfg.TestFraction))
	res, err := split.Split(c, cfg.TestFraction, split.NewRand(cfg.Seed))
	if err != nil {
		return err
	}
	display.KeyValue(out, "Train", len(res.Train))
	display.KeyValue(out, "Test", len(res.Test))

	display.Step(out, 3, "Saving split to "+output)
	report, err := split.Write(output, res, log)
	if err != nil {
		return err
	}
	for _, summary := range []*partition.WriteSummary{report.Train, report.Test} {
		for _, f := range summary.Files {
			fmt.Fprintf(out, "  Saved %d items to %s\n", f.Records, f.Path)
		}
	}

	if written := report.Train.Total + report.Test.Total; written != c.Total() {
		return fmt.Errorf("wrote %d trials but read %d", written, c.Total())
	}
	display.Success(out, fmt.Sprintf("Split %d trials into %d train and %d test",
		c.Total(), report.Train.Total, report.Test.Total))
	return nil
}
