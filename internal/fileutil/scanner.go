package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Pattern is a regex matched against the filename without its extension
	Pattern string
	// Extensions restricts results to these extensions (case-insensitive, e.g. ".json")
	Extensions []string
	// Recursive descends into subdirectories
	Recursive bool
	// ExcludeDirs lists directory names to skip in addition to hidden ones
	ExcludeDirs []string
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files holds absolute paths of matched files, sorted
	Files []string
	// Errors holds non-fatal errors met while walking
	Errors []error
}

// ScanDirectory walks dir and returns files matching opts.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var patternRegex *regexp.Regexp
	if opts.Pattern != "" {
		patternRegex, err = regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	extMap := make(map[string]bool)
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	excludeMap := make(map[string]bool)
	for _, name := range opts.ExcludeDirs {
		excludeMap[name] = true
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == dir {
			return nil
		}

		if d.IsDir() {
			if !opts.Recursive || excludeMap[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		// hidden files include staging files of an in-flight atomic write
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		filename := d.Name()
		if len(extMap) > 0 && !extMap[strings.ToLower(filepath.Ext(filename))] {
			return nil
		}
		if patternRegex != nil {
			stem := strings.TrimSuffix(filename, filepath.Ext(filename))
			if !patternRegex.MatchString(stem) {
				return nil
			}
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		result.Files = append(result.Files, absPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}

// Subdirectories returns the names of the non-hidden directories directly inside dir, sorted.
func Subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CountFiles returns how many files ScanDirectory finds under dir with the given
// extensions, recursively. A missing directory counts as zero.
func CountFiles(dir string, extensions ...string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	result, err := ScanDirectory(dir, ScanOptions{Extensions: extensions, Recursive: true})
	if err != nil {
		return 0, err
	}
	return len(result.Files), nil
}
