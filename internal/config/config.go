package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// PathsConfig names the directories of each pipeline stage
type PathsConfig struct {
	// ExtractedDir holds the unpacked source archive (input to condition and random)
	ExtractedDir string `yaml:"extracted_dir" env:"TRIALSIFT_EXTRACTED_DIR"`

	// ProcessedDir receives subset_<condition> and random_split trees
	ProcessedDir string `yaml:"processed_dir" env:"TRIALSIFT_PROCESSED_DIR"`

	// CleanedDir holds cleaned trials waiting to be categorized
	CleanedDir string `yaml:"cleaned_dir" env:"TRIALSIFT_CLEANED_DIR"`

	// CategorizedDir receives one subdirectory per condition
	CategorizedDir string `yaml:"categorized_dir" env:"TRIALSIFT_CATEGORIZED_DIR"`

	// ArtifactsDir receives exported tabular artifacts
	ArtifactsDir string `yaml:"artifacts_dir" env:"TRIALSIFT_ARTIFACTS_DIR"`
}

// SplitConfig controls the randomized train/test split
type SplitConfig struct {
	// TestFraction is the share of records placed in the test group, in (0,1)
	TestFraction float64 `yaml:"test_fraction" env:"TRIALSIFT_TEST_FRACTION"`

	// Seed fixes the shuffle; 0 picks a random seed per run
	Seed uint64 `yaml:"seed" env:"TRIALSIFT_SEED"`
}

// ExportConfig controls artifact generation
type ExportConfig struct {
	// Format is one of tsv, csv, md, parquet
	Format string `yaml:"format" env:"TRIALSIFT_EXPORT_FORMAT"`

	// MaxChunkBytes is the size ceiling of each text artifact chunk
	MaxChunkBytes int64 `yaml:"max_chunk_bytes" env:"TRIALSIFT_MAX_CHUNK_BYTES"`
}

// Config represents trialsift configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level" env:"TRIALSIFT_LOG_LEVEL"`

	// LogDir is the directory where run logs will be written
	LogDir string `yaml:"log_dir" env:"TRIALSIFT_LOG_DIR"`

	// FileLog enables the per-run log file
	FileLog bool `yaml:"file_log" env:"TRIALSIFT_FILE_LOG"`

	Paths  PathsConfig  `yaml:"paths"`
	Split  SplitConfig  `yaml:"split"`
	Export ExportConfig `yaml:"export"`
}

// ExportFormats lists the accepted export.format values.
var ExportFormats = []string{"tsv", "csv", "md", "parquet"}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		LogDir:   filepath.Join(HomeDirName, "logs"),
		FileLog:  true,
		Paths: PathsConfig{
			ExtractedDir:   filepath.Join("data", "extracted"),
			ProcessedDir:   filepath.Join("data", "processed"),
			CleanedDir:     filepath.Join("data", "cleaned"),
			CategorizedDir: filepath.Join("data", "categorized_conditions"),
			ArtifactsDir:   filepath.Join("data", "txt"),
		},
		Split: SplitConfig{
			TestFraction: 0.2,
		},
		Export: ExportConfig{
			Format:        "tsv",
			MaxChunkBytes: 10 * 1024 * 1024, // 10 MiB
		},
	}
}

// LoadConfig loads configuration from the specified file path and applies
// TRIALSIFT_* environment overrides on top.
// If the file doesn't exist, defaults plus environment are returned without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// keys absent from the file keep their default values
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromDir loads configuration from .trialsift/config.yaml in the specified directory
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, HomeDirName, "config.yaml"))
}

// ApplyEnv overrides fields whose TRIALSIFT_* variable is set.
func (c *Config) ApplyEnv() error {
	if err := cleanenv.ReadEnv(c); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return nil
}

// FlagOverrides carries CLI flag values; nil means the flag was not set.
type FlagOverrides struct {
	LogLevel      *string
	LogDir        *string
	FileLog       *bool
	TestFraction  *float64
	Seed          *uint64
	Format        *string
	MaxChunkBytes *int64
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration and environment values
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.FileLog != nil {
		c.FileLog = *f.FileLog
	}
	if f.TestFraction != nil {
		c.Split.TestFraction = *f.TestFraction
	}
	if f.Seed != nil {
		c.Split.Seed = *f.Seed
	}
	if f.Format != nil {
		c.Export.Format = *f.Format
	}
	if f.MaxChunkBytes != nil {
		c.Export.MaxChunkBytes = *f.MaxChunkBytes
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.FileLog && c.LogDir == "" {
		return fmt.Errorf("log_dir cannot be empty when file_log is enabled")
	}

	paths := []struct {
		key, value string
	}{
		{"paths.extracted_dir", c.Paths.ExtractedDir},
		{"paths.processed_dir", c.Paths.ProcessedDir},
		{"paths.cleaned_dir", c.Paths.CleanedDir},
		{"paths.categorized_dir", c.Paths.CategorizedDir},
		{"paths.artifacts_dir", c.Paths.ArtifactsDir},
	}
	for _, p := range paths {
		if p.value == "" {
			return fmt.Errorf("%s cannot be empty", p.key)
		}
	}

	if !(c.Split.TestFraction > 0 && c.Split.TestFraction < 1) {
		return fmt.Errorf("split.test_fraction must be between 0 and 1 (exclusive), got %v", c.Split.TestFraction)
	}

	if !IsExportFormat(c.Export.Format) {
		return fmt.Errorf("invalid export.format %q, must be one of: tsv, csv, md, parquet", c.Export.Format)
	}
	if c.Export.MaxChunkBytes <= 0 {
		return fmt.Errorf("export.max_chunk_bytes must be > 0, got %d", c.Export.MaxChunkBytes)
	}

	return nil
}

// IsExportFormat reports whether format is a supported export format.
func IsExportFormat(format string) bool {
	for _, f := range ExportFormats {
		if f == format {
			return true
		}
	}
	return false
}
