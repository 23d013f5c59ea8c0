package parity

import (
	"fmt"
	"path/filepath"

	"github.com/harrison/trialsift/internal/fileutil"
)

// StageCount is the number of JSON files found in one pipeline directory.
type StageCount struct {
	Name  string
	Dir   string
	Files int
}

// Balance compares file counts across the cleaning and categorizing stages.
// Every extracted file should end up either cleaned or categorized.
type Balance struct {
	Extracted   StageCount
	Cleaned     StageCount
	Categories  []StageCount
	Categorized int
}

// Processed is the number of files in the cleaned and categorized stages.
func (b *Balance) Processed() int { return b.Cleaned.Files + b.Categorized }

// Differential is Extracted - Processed.
func (b *Balance) Differential() int { return b.Extracted.Files - b.Processed() }

// Match reports whether no file was lost or duplicated between the stages.
func (b *Balance) Match() bool { return b.Differential() == 0 }

// CheckBalance counts the JSON files of each stage directory. A missing stage
// directory counts as zero; categories are the subdirectories of categorizedDir.
func CheckBalance(extractedDir, cleanedDir, categorizedDir string) (*Balance, error) {
	b := &Balance{}

	var err error
	if b.Extracted, err = countStage("extracted", extractedDir); err != nil {
		return nil, err
	}
	if b.Cleaned, err = countStage("cleaned", cleanedDir); err != nil {
		return nil, err
	}

	if !isDir(categorizedDir) {
		return b, nil
	}
	categories, err := fileutil.Subdirectories(categorizedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	for _, name := range categories {
		c, err := countStage(name, filepath.Join(categorizedDir, name))
		if err != nil {
			return nil, err
		}
		b.Categories = append(b.Categories, c)
		b.Categorized += c.Files
	}
	return b, nil
}

func countStage(name, dir string) (StageCount, error) {
	n, err := fileutil.CountFiles(dir, ".json")
	if err != nil {
		return StageCount{}, fmt.Errorf("%s: %w", name, err)
	}
	return StageCount{Name: name, Dir: dir, Files: n}, nil
}
