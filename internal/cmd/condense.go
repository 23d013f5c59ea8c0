package cmd

import (
	"github.com/harrison/trialsift/internal/export"
	"github.com/spf13/cobra"
)

// NewCondenseCommand creates and returns the condense subcommand
func NewCondenseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "condense",
		Short: "Export every category to tab separated text and check the counts",
		Long: `Shorthand for 'trialsift export --format tsv' followed by 'trialsift check':
each category becomes <category>_part_<n>.txt chunks under the artifacts
directory and the trial counts are compared afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := exportOverrides(cmd)
			format := string(export.FormatTSV)
			overrides.Format = &format

			s, err := newSession(cmd, "condense", overrides)
			if err != nil {
				return err
			}
			defer s.Close()

			category, _ := cmd.Flags().GetString("category")
			if _, err := exportWithOutput(s.cfg, category, s.log, s.out); err != nil {
				return err
			}
			_, err = checkWithOutput(s.cfg, category, s.log, s.out)
			return err
		},
		SilenceUsage: true,
	}

	addExportFlags(cmd)

	return cmd
}
