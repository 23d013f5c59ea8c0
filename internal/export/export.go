// Package export converts a category of JSON trials into tabular artifacts.
//
// Text formats (tab separated .txt, .csv and Markdown tables) are written as
// <category>_part_<n> chunks bounded by a byte ceiling; parquet is written as a
// single <category>.parquet file. Each artifact row is exactly one record.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/trialsift/internal/corpus"
	"github.com/harrison/trialsift/internal/filelock"
	"github.com/harrison/trialsift/internal/logger"
)

// Format is an artifact format.
type Format string

const (
	FormatTSV      Format = "tsv"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatParquet  Format = "parquet"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTSV, FormatCSV, FormatMarkdown, FormatParquet:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want tsv, csv, md or parquet)", s)
}

// Ext returns the artifact file extension of f.
func (f Format) Ext() string {
	switch f {
	case FormatTSV:
		return ".txt"
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatParquet:
		return ".parquet"
	}
	return ""
}

func (f Format) encoder() rowEncoder {
	switch f {
	case FormatCSV:
		return delimited{comma: ','}
	case FormatMarkdown:
		return markdown{}
	default:
		return delimited{comma: '\t'}
	}
}

// Options configures Export.
type Options struct {
	Format        Format
	MaxChunkBytes int64
}

// Artifact is one written file.
type Artifact struct {
	Path  string
	Rows  int
	Bytes int64
}

// Result describes one category export.
type Result struct {
	Category  string
	Dir       string
	Records   int
	Artifacts []Artifact
	// Oversized counts rows that alone exceed the chunk ceiling
	Oversized int
}

// Rows sums the rows across all artifacts.
func (r *Result) Rows() int {
	n := 0
	for _, a := range r.Artifacts {
		n += a.Rows
	}
	return n
}

// Export writes rows as artifacts of category into destDir. Artifacts of an
// earlier export of the same category are removed first, so the directory never
// mixes chunks of two runs.
func Export(rows []Row, destDir, category string, opts Options, log logger.Logger) (*Result, error) {
	log = logger.OrNoOp(log)
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.Format != FormatParquet && opts.MaxChunkBytes <= 0 {
		return nil, fmt.Errorf("chunk ceiling must be > 0, got %d", opts.MaxChunkBytes)
	}

	res := &Result{Category: category, Dir: destDir, Records: len(rows)}

	lock, err := filelock.LockDir(destDir)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	if err := removeStale(destDir, category); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		logger.Warnf(log, "No records to export for %s", category)
		return res, nil
	}

	if opts.Format == FormatParquet {
		a, err := writeParquet(destDir, category, rows, log)
		if err != nil {
			return nil, err
		}
		res.Artifacts = []Artifact{a}
		return res, nil
	}

	t := buildTable(rows)
	res.Artifacts, res.Oversized, err = writeChunks(destDir, category, opts.Format.Ext(),
		opts.Format.encoder(), t, opts.MaxChunkBytes, log)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ExportCategory reads every record under jsonRoot/category and exports it to
// artifactRoot/category. A category without JSON files exports nothing.
func ExportCategory(jsonRoot, artifactRoot, category string, opts Options, log logger.Logger) (*Result, error) {
	log = logger.OrNoOp(log)
	c, err := corpus.Read(filepath.Join(jsonRoot, category), corpus.ReadOptions{}, log)
	if errors.Is(err, corpus.ErrSourceEmpty) {
		c, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []Row
	if c != nil {
		rows = make([]Row, 0, c.Total())
		for _, rec := range c.Records {
			rows = append(rows, Row{Source: c.Files[rec.Origin.FileIndex].RelPath, Value: rec.Value})
		}
	}
	return Export(rows, filepath.Join(artifactRoot, category), category, opts, log)
}

// removeStale deletes earlier artifacts of category from dir.
func removeStale(dir, category string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(name, category+"_part_") || name == category+".parquet" {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return fmt.Errorf("failed to remove stale artifact %s: %w", name, err)
			}
		}
	}
	return nil
}
