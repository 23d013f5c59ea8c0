package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/harrison/trialsift/internal/config"
	"github.com/harrison/trialsift/internal/corpus"
	"github.com/harrison/trialsift/internal/display"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/partition"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewCategorizeCommand creates and returns the categorize subcommand
func NewCategorizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Move cleaned trial files into one directory per condition",
		Long: `Move every JSON file under the cleaned directory that mentions a condition
into <categorized_dir>/<condition>, keeping its relative path. Conditions are
processed in order, so a file lands in the first category it matches.

By default only BriefTitle values are searched. Repeat --field (or give a
comma separated list) to search several members, or pass --field "" to search
every string in the trial:

  --field BriefTitle,OfficialTitle,BriefSummary,DetailedDescription,Condition,ConditionMeshTerm

The conditions file is JSON or YAML holding either a list of conditions or a
mapping whose values are conditions:

  {"bc": "Breast Cancer", "dm": "Diabetes"}

Examples:
  trialsift categorize --condition "Breast Cancer"
  trialsift categorize --conditions-file conditions.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			condition, _ := cmd.Flags().GetString("condition")
			file, _ := cmd.Flags().GetString("conditions-file")
			if (condition == "") == (file == "") {
				return fmt.Errorf("provide exactly one of --condition or --conditions-file")
			}

			conditions := []string{condition}
			if file != "" {
				var err error
				if conditions, err = loadConditions(file); err != nil {
					return err
				}
			}

			s, err := newSession(cmd, "categorize", config.FlagOverrides{})
			if err != nil {
				return err
			}
			defer s.Close()

			fields, _ := cmd.Flags().GetStringSlice("field")
			source := stringFlag(cmd, "source", s.cfg.Paths.CleanedDir)
			destRoot := stringFlag(cmd, "dest", s.cfg.Paths.CategorizedDir)
			return categorizeWithOutput(conditions, fields, source, destRoot, s.log, s.out)
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("condition", "", "Condition to categorize by (e.g. \"Breast Cancer\")")
	cmd.Flags().String("conditions-file", "", "JSON or YAML file listing conditions")
	cmd.Flags().StringSlice("field", []string{"BriefTitle"}, "Only search strings under these member names (empty searches everything)")
	cmd.Flags().String("source", "", "Directory of cleaned trials (default: paths.cleaned_dir)")
	cmd.Flags().String("dest", "", "Root of the category directories (default: paths.categorized_dir)")

	return cmd
}

func categorizeWithOutput(conditions, fields []string, source, destRoot string, log logger.Logger, out io.Writer) error {
	fields = slices.DeleteFunc(slices.Clone(fields), func(f string) bool { return strings.TrimSpace(f) == "" })

	// every destination is checked before anything moves
	dests := make([]string, len(conditions))
	for i, condition := range conditions {
		slug, err := partition.Slug(condition)
		if err != nil {
			return err
		}
		dests[i] = filepath.Join(destRoot, slug)
	}

	movedFiles, movedRecords := 0, 0
	for i, condition := range conditions {
		dest := dests[i]
		display.Step(out, i+1, fmt.Sprintf("Searching for files with the condition '%s'", condition))

		report, err := partition.MoveFiles(source, dest, condition, fields, log)
		if errors.Is(err, corpus.ErrSourceMissing) {
			display.MissingSourceWarning(source).Display(out)
		}
		if report == nil {
			return err
		}

		if err != nil {
			moved := make([]string, len(report.Moved))
			for j, m := range report.Moved {
				moved[j] = m.From + " -> " + m.To
			}
			display.Warning{
				Title:      fmt.Sprintf("Stopped after moving %d file(s) for %s", len(report.Moved), condition),
				Message:    err.Error(),
				Files:      moved,
				Suggestion: "Fix the destination and re-run; moved files are no longer in " + source,
			}.Display(out)
			return err
		}

		display.KeyValue(out, "Files before", report.Before)
		display.KeyValue(out, "Files moved to "+dest, len(report.Moved))
		display.KeyValue(out, "Files after", report.After)
		if len(report.Errors) > 0 {
			files := make([]string, len(report.Errors))
			for j, e := range report.Errors {
				files[j] = e.Error()
			}
			display.SkippedFilesWarning(files).Display(out)
		}
		if report.Before != report.After+len(report.Moved) {
			display.Failure(out, "File counts do not add up; stopping")
			return fmt.Errorf("file count mismatch for %s: %d before, %d after, %d moved",
				condition, report.Before, report.After, len(report.Moved))
		}

		movedFiles += len(report.Moved)
		movedRecords += report.MovedRecords
	}

	display.Success(out, fmt.Sprintf("Moved %d files (%d trials) into %d categories",
		movedFiles, movedRecords, len(conditions)))
	return nil
}

// loadConditions reads a list of conditions, or a mapping whose values are
// conditions, from a JSON or YAML file. File order is kept.
func loadConditions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read conditions file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse conditions file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("conditions file %s is empty", path)
	}

	var nodes []*yaml.Node
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		nodes = root.Content
	case yaml.MappingNode:
		for i := 1; i < len(root.Content); i += 2 {
			nodes = append(nodes, root.Content[i])
		}
	default:
		return nil, fmt.Errorf("conditions file %s must hold a list or a mapping", path)
	}

	var conditions []string
	for _, n := range nodes {
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("conditions file %s: line %d: condition must be a string", path, n.Line)
		}
		if c := strings.TrimSpace(n.Value); c != "" {
			conditions = append(conditions, c)
		}
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("conditions file %s lists no conditions", path)
	}
	return conditions, nil
}
