// Package parity compares record counts between JSON category trees and the
// artifacts exported from them.
//
// The checker only reads. Chunked artifacts of one category are summed before
// comparing, and a mismatch is a finding in the report, never an error.
package parity

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harrison/trialsift/internal/corpus"
	"github.com/harrison/trialsift/internal/fileutil"
)

// Verdicts reported for a category.
const (
	VerdictSame      = "same number"
	VerdictDifferent = "different numbers"
)

// Artifact is one counted artifact file.
type Artifact struct {
	Path  string
	Rows  int
	Bytes int64
	Err   error
}

// Report is the parity result for one category.
type Report struct {
	Category      string
	JSONFiles     int
	JSONCount     int
	ArtifactCount int
	Artifacts     []Artifact
	// Errors lists JSON files and artifacts that could not be counted
	Errors []error
}

// Delta is ArtifactCount - JSONCount.
func (r *Report) Delta() int { return r.ArtifactCount - r.JSONCount }

// Match reports whether both sides hold the same number of records.
func (r *Report) Match() bool { return r.Delta() == 0 }

// Verdict returns "same number" or "different numbers".
func (r *Report) Verdict() string {
	if r.Match() {
		return VerdictSame
	}
	return VerdictDifferent
}

// OverCeiling returns the text artifacts larger than limit bytes. Parquet
// files are never chunked and never returned.
func (r *Report) OverCeiling(limit int64) []Artifact {
	if limit <= 0 {
		return nil
	}
	var out []Artifact
	for _, a := range r.Artifacts {
		if strings.EqualFold(filepath.Ext(a.Path), ".parquet") {
			continue
		}
		if a.Bytes > limit {
			out = append(out, a)
		}
	}
	return out
}

// CheckCategory counts the records of jsonRoot/category and the rows of every
// artifact under artifactRoot/category, plus <category>_part_* files directly
// in artifactRoot.
func CheckCategory(jsonRoot, artifactRoot, category string) (*Report, error) {
	report := &Report{Category: category}

	scan, err := fileutil.ScanDirectory(filepath.Join(jsonRoot, category), fileutil.ScanOptions{
		Extensions: []string{".json"},
		Recursive:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}
	report.Errors = append(report.Errors, scan.Errors...)
	report.JSONFiles = len(scan.Files)
	for _, path := range scan.Files {
		n, err := corpus.CountRecords(path)
		if err != nil {
			report.Errors = append(report.Errors, err)
		}
		report.JSONCount += n
	}

	paths, err := artifactPaths(artifactRoot, category)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		n, err := CountRows(path)
		if err != nil {
			report.Errors = append(report.Errors, err)
		}
		a := Artifact{Path: path, Rows: n, Err: err}
		if info, statErr := os.Stat(path); statErr == nil {
			a.Bytes = info.Size()
		}
		report.Artifacts = append(report.Artifacts, a)
		report.ArtifactCount += n
	}
	return report, nil
}

// CheckAll checks every category directory under jsonRoot, sorted by name.
func CheckAll(jsonRoot, artifactRoot string) ([]*Report, error) {
	categories, err := fileutil.Subdirectories(jsonRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	reports := make([]*Report, 0, len(categories))
	for _, category := range categories {
		r, err := CheckCategory(jsonRoot, artifactRoot, category)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Discrepancies returns the reports whose counts differ.
func Discrepancies(reports []*Report) []*Report {
	var out []*Report
	for _, r := range reports {
		if !r.Match() {
			out = append(out, r)
		}
	}
	return out
}

func artifactPaths(artifactRoot, category string) ([]string, error) {
	var paths []string

	dir := filepath.Join(artifactRoot, category)
	if isDir(dir) {
		scan, err := fileutil.ScanDirectory(dir, fileutil.ScanOptions{
			Extensions: ArtifactExtensions,
			Recursive:  true,
		})
		if err != nil {
			return nil, err
		}
		paths = append(paths, scan.Files...)
	}

	if isDir(artifactRoot) {
		scan, err := fileutil.ScanDirectory(artifactRoot, fileutil.ScanOptions{
			Pattern:    "^" + regexp.QuoteMeta(category) + `_part_\d+$`,
			Extensions: ArtifactExtensions,
		})
		if err != nil {
			return nil, err
		}
		paths = append(paths, scan.Files...)
	}
	return paths, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
