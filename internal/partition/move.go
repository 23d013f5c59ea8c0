package partition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/harrison/trialsift/internal/corpus"
	"github.com/harrison/trialsift/internal/fileutil"
	"github.com/harrison/trialsift/internal/filelock"
	"github.com/harrison/trialsift/internal/locator"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/models"
)

// MovedFile records one file relocated by MoveFiles.
type MovedFile struct {
	From    string
	To      string
	Match   string // record index and path where the condition was found
	Records int
}

// MoveReport summarises a MoveFiles run. Before == After + len(Moved).
type MoveReport struct {
	Condition    string
	Dest         string
	Before       int
	After        int
	Moved        []MovedFile
	MovedRecords int
	Errors       []error
}

// MoveFiles moves every JSON file under src holding a record that mentions
// condition into dest, keeping its path relative to src. When fields is non-empty
// only strings under those member names are searched. Files that fail to load are
// logged and left in place. If a move fails the report is still returned with the
// files moved before the failure.
func MoveFiles(src, dest, condition string, fields []string, log logger.Logger) (*MoveReport, error) {
	log = logger.OrNoOp(log)
	report := &MoveReport{Condition: condition, Dest: dest}

	scan, err := fileutil.ScanDirectory(src, fileutil.ScanOptions{
		Extensions: []string{".json"},
		Recursive:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", corpus.ErrSourceMissing, src, err)
	}
	report.Before = len(scan.Files)
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}

	var lock *filelock.FileLock
	defer func() {
		if lock != nil {
			lock.Release()
		}
	}()

	var moveErr error
	for _, path := range scan.Files {
		logger.Debugf(log, "Analyzing file: %s", path)
		values, err := corpus.LoadFile(path)
		if err != nil {
			report.Errors = append(report.Errors, err)
			logger.Errorf(log, "Error decoding JSON from file: %v", err)
			continue
		}

		match, ok := findInRecords(values, condition, fields)
		if !ok {
			continue
		}

		if lock == nil {
			if lock, moveErr = filelock.LockDir(dest); moveErr != nil {
				break
			}
		}

		rel, err := filepath.Rel(absSrc, path)
		if err != nil {
			moveErr = err
			break
		}
		to := filepath.Join(dest, rel)
		if moveErr = moveFile(path, to); moveErr != nil {
			logger.Errorf(log, "Stopped after moving %d files: %v", len(report.Moved), moveErr)
			break
		}
		report.Moved = append(report.Moved, MovedFile{From: path, To: to, Match: match, Records: len(values)})
		report.MovedRecords += len(values)
		logger.Infof(log, "Moved %s to %s", path, to)
		logger.Infof(log, "Condition '%s' found at: %s", condition, match)
	}

	after, err := fileutil.CountFiles(src, ".json")
	if err != nil {
		return report, errors.Join(moveErr, err)
	}
	report.After = after
	if report.Before != report.After+len(report.Moved) {
		logger.Errorf(log, "File count mismatch in %s: %d before, %d after, %d moved",
			src, report.Before, report.After, len(report.Moved))
	}
	return report, moveErr
}

func findInRecords(values []models.Value, condition string, fields []string) (string, bool) {
	for i, v := range values {
		var (
			path string
			ok   bool
		)
		if len(fields) > 0 {
			path, ok = locator.FindInFields(v, fields, condition)
		} else {
			path, ok = locator.Find(v, condition)
		}
		if ok {
			return fmt.Sprintf("record %d: %s", i, path), true
		}
	}
	return "", false
}

// moveFile renames src to dst, copying across filesystems when a rename cannot.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", filepath.Dir(dst), err)
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("move %s: %w", src, err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	if err := filelock.AtomicWrite(dst, data); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	return nil
}
