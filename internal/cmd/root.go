package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for trialsift
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trialsift",
		Short: "Record-conserving clinical trial corpus tooling",
		Long: `trialsift reads directory trees of clinical trial JSON documents and
partitions, splits, categorizes and exports them while accounting for every
record.

Each stage keeps a per-file ledger: records read, matched, moved or written.
The check command compares the JSON source of truth against every exported
artifact and reports "same number" or "different numbers" per category.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .trialsift/config.yaml in the project root)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Directory for run log files")
	cmd.PersistentFlags().Bool("no-file-log", false, "Do not write a run log file")

	cmd.AddCommand(NewConditionCommand())
	cmd.AddCommand(NewRandomCommand())
	cmd.AddCommand(NewCategorizeCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewCondenseCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewStatusCommand())

	return cmd
}
