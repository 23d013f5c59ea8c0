package cmd

import (
	"fmt"
	"io"

	"github.com/harrison/trialsift/internal/config"
	"github.com/harrison/trialsift/internal/display"
	"github.com/harrison/trialsift/internal/export"
	"github.com/harrison/trialsift/internal/fileutil"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/spf13/cobra"
)

// NewExportCommand creates and returns the export subcommand
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export categorized trials to tabular artifacts",
		Long: `Flatten every trial of every category under the categorized directory into
a table and write it to <artifacts_dir>/<category>/.

Formats:
  tsv      tab separated <category>_part_<n>.txt chunks
  csv      comma separated <category>_part_<n>.csv chunks
  md       Markdown table <category>_part_<n>.md chunks
  parquet  a single <category>.parquet file

Text chunks stay under export.max_chunk_bytes; rows are never split across
chunks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, "export", exportOverrides(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			category, _ := cmd.Flags().GetString("category")
			_, err = exportWithOutput(s.cfg, category, s.log, s.out)
			return err
		},
		SilenceUsage: true,
	}

	addExportFlags(cmd)
	cmd.Flags().String("format", "", "Artifact format: tsv, csv, md, parquet (default: export.format)")

	return cmd
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", "", "Export only this category")
	cmd.Flags().Int64("max-chunk-bytes", 0, "Size ceiling of each text chunk (default: export.max_chunk_bytes)")
}

func exportOverrides(cmd *cobra.Command) config.FlagOverrides {
	var o config.FlagOverrides
	if cmd.Flags().Changed("format") {
		format, _ := cmd.Flags().GetString("format")
		o.Format = &format
	}
	if cmd.Flags().Changed("max-chunk-bytes") {
		n, _ := cmd.Flags().GetInt64("max-chunk-bytes")
		o.MaxChunkBytes = &n
	}
	return o
}

// categories returns the single requested category or every category under root.
func categories(root, only string) ([]string, error) {
	if only != "" {
		return []string{only}, nil
	}
	names, err := fileutil.Subdirectories(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories in %s: %w", root, err)
	}
	return names, nil
}

func exportWithOutput(cfg *config.Config, only string, log logger.Logger, out io.Writer) ([]*export.Result, error) {
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}
	names, err := categories(cfg.Paths.CategorizedDir, only)
	if err != nil {
		display.MissingSourceWarning(cfg.Paths.CategorizedDir).Display(out)
		return nil, err
	}

	opts := export.Options{Format: format, MaxChunkBytes: cfg.Export.MaxChunkBytes}
	results := make([]*export.Result, 0, len(names))
	for i, name := range names {
		display.Step(out, i+1, fmt.Sprintf("Converting %s to %s", name, format))
		res, err := export.ExportCategory(cfg.Paths.CategorizedDir, cfg.Paths.ArtifactsDir, name, opts, log)
		if err != nil {
			return nil, err
		}
		for _, a := range res.Artifacts {
			fmt.Fprintf(out, "  %s: %d rows, %d bytes\n", a.Path, a.Rows, a.Bytes)
		}
		if res.Oversized > 0 {
			display.Warning{
				Title:   fmt.Sprintf("%d row(s) of %s exceed the %d byte chunk limit", res.Oversized, name, opts.MaxChunkBytes),
				Message: "Each was written to a chunk of its own.",
			}.Display(out)
		}
		if res.Rows() != res.Records {
			return nil, fmt.Errorf("%s: exported %d rows for %d trials", name, res.Rows(), res.Records)
		}
		results = append(results, res)
	}

	display.Success(out, fmt.Sprintf("Exported %d categories to %s", len(results), cfg.Paths.ArtifactsDir))
	return results, nil
}
