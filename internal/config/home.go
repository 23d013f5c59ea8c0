package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeDirName is the per-project directory holding config.yaml and run logs.
const HomeDirName = ".trialsift"

// FindProjectRoot returns the directory trialsift should treat as the project root
// Priority order:
//  1. TRIALSIFT_HOME environment variable (if set)
//  2. Nearest ancestor of start whose .trialsift directory holds config.yaml
//  3. Nearest ancestor of start containing a .trialsift directory
//  4. start itself (fallback)
func FindProjectRoot(start string) (string, error) {
	if home := os.Getenv("TRIALSIFT_HOME"); home != "" {
		return home, nil
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	marked := ""
	current := abs
	for {
		info, err := os.Stat(filepath.Join(current, HomeDirName))
		if err == nil && info.IsDir() {
			if _, err := os.Stat(filepath.Join(current, HomeDirName, "config.yaml")); err == nil {
				return current, nil
			}
			if marked == "" {
				marked = current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	if marked != "" {
		return marked, nil
	}
	return abs, nil
}

// DefaultConfigPath returns <project root>/.trialsift/config.yaml for start.
func DefaultConfigPath(start string) (string, error) {
	root, err := FindProjectRoot(start)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, HomeDirName, "config.yaml"), nil
}

// ResolvePaths joins the log directory and every relative stage directory onto
// root. Absolute paths are left alone.
func (c *Config) ResolvePaths(root string) {
	for _, p := range []*string{
		&c.LogDir,
		&c.Paths.ExtractedDir,
		&c.Paths.ProcessedDir,
		&c.Paths.CleanedDir,
		&c.Paths.CategorizedDir,
		&c.Paths.ArtifactsDir,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(root, *p)
		}
	}
}
