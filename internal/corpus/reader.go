// Package corpus loads a directory tree of JSON trial documents into memory.
//
// Every discovered file gets a descriptor, including files that could not be
// parsed; those keep Count 0 and carry the error, so the sum of descriptor counts
// always equals the number of loaded records.
package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/harrison/trialsift/internal/display"
	"github.com/harrison/trialsift/internal/fileutil"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/models"
	"github.com/tidwall/gjson"
)

// ReadOptions configures Read.
type ReadOptions struct {
	// Progress receives a "[N/Total] file" line per file; nil disables it
	Progress io.Writer
	// Label heads the progress listing
	Label string
}

// Read discovers every .json file under root, in lexicographic path order, and
// loads its records.
//
// A top-level array contributes one record per element and a top-level object
// contributes one record. Files that are unreadable, malformed or of another shape
// are logged and recorded with Count 0. A missing root or a root without any JSON
// file is fatal.
func Read(root string, opts ReadOptions, log logger.Logger) (*models.Corpus, error) {
	log = logger.OrNoOp(log)

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s (run the extraction step first)", ErrSourceMissing, root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access source directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceMissing, root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	scan, err := fileutil.ScanDirectory(absRoot, fileutil.ScanOptions{
		Extensions: []string{".json"},
		Recursive:  true,
	})
	if err != nil {
		return nil, err
	}
	for _, walkErr := range scan.Errors {
		logger.Warnf(log, "Skipping unreadable path: %v", walkErr)
	}
	if len(scan.Files) == 0 {
		return nil, fmt.Errorf("%w: %s (run the extraction step first)", ErrSourceEmpty, root)
	}

	label := opts.Label
	if label == "" {
		label = "Reading " + absRoot
	}
	var progress *display.ProgressIndicator
	if opts.Progress != nil {
		progress = display.NewProgressIndicator(opts.Progress, len(scan.Files))
		progress.Start(label)
	}

	c := &models.Corpus{
		Root:  absRoot,
		Files: make([]models.SourceFile, 0, len(scan.Files)),
	}
	for i, path := range scan.Files {
		progress.Step(path)

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		sf := models.SourceFile{Path: path, RelPath: rel}

		values, err := LoadFile(path)
		if err != nil {
			sf.Err = err
			logger.Errorf(log, "Error reading %v", err)
		} else {
			for off, v := range values {
				c.Records = append(c.Records, models.Record{
					Value:  v,
					Origin: models.Provenance{FileIndex: i, Offset: off},
				})
			}
			sf.Count = len(values)
			logger.Debugf(log, "Loaded %d records from %s", sf.Count, rel)
		}
		c.Files = append(c.Files, sf)
	}

	skipped := len(c.Skipped())
	progress.Complete(fmt.Sprintf("Loaded %d records from %d files", c.Total(), len(c.Files)))
	logger.Infof(log, "Loaded %d records from %d files under %s (%d skipped)",
		c.Total(), len(c.Files), absRoot, skipped)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("corpus %s: %w", absRoot, err)
	}
	return c, nil
}

// LoadFile parses one JSON file into its records.
// Failures are returned as *FileError.
func LoadFile(path string) ([]models.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	v, err := models.ParseValue(data)
	if err != nil {
		return nil, malformed(path, err)
	}

	switch v.Kind() {
	case models.KindArray:
		return v.Elems(), nil
	case models.KindObject:
		return []models.Value{v}, nil
	default:
		return nil, &FileError{Path: path, Err: fmt.Errorf("%w (got %s)", ErrUnsupportedShape, v.Kind())}
	}
}

// CountRecords returns how many records the file at path holds without building
// them: array length for an array, 1 for an object.
// Malformed files and other shapes count 0 and return a *FileError.
func CountRecords(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, &FileError{Path: path, Err: err}
	}
	// LoadFile accepts exactly the same documents
	if err := models.Validate(data); err != nil {
		return 0, malformed(path, err)
	}

	r := gjson.ParseBytes(data)
	switch {
	case r.IsArray():
		n := 0
		r.ForEach(func(_, _ gjson.Result) bool {
			n++
			return true
		})
		return n, nil
	case r.IsObject():
		return 1, nil
	default:
		return 0, &FileError{Path: path, Err: ErrUnsupportedShape}
	}
}

func malformed(path string, err error) *FileError {
	return &FileError{Path: path, Err: fmt.Errorf("malformed JSON: %w", err)}
}
