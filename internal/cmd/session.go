package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/harrison/trialsift/internal/config"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/spf13/cobra"
)

// session is the resolved configuration and logging of one command run.
type session struct {
	cfg     *config.Config
	log     logger.Logger
	out     io.Writer
	fileLog *logger.FileLogger
}

// newSession loads configuration (file, then TRIALSIFT_* environment, then
// flags), validates it and opens the console and run-file loggers. Relative
// paths from the file or environment resolve against the project root.
func newSession(cmd *cobra.Command, name string, overrides config.FlagOverrides) (*session, error) {
	flags := cmd.Flags()

	root, err := config.FindProjectRoot(".")
	if err != nil {
		return nil, err
	}
	configPath, _ := flags.GetString("config")
	if configPath == "" {
		configPath = filepath.Join(root, config.HomeDirName, "config.yaml")
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	// configured paths are relative to the project root, flags to the cwd
	cfg.ResolvePaths(root)

	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		overrides.LogLevel = &level
	}
	if flags.Changed("log-dir") {
		dir, _ := flags.GetString("log-dir")
		overrides.LogDir = &dir
	}
	if noFileLog, _ := flags.GetBool("no-file-log"); noFileLog {
		fileLog := false
		overrides.FileLog = &fileLog
	}
	cfg.MergeWithFlags(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &session{cfg: cfg, out: cmd.OutOrStdout()}
	console := logger.NewConsoleLogger(s.out, cfg.LogLevel)
	s.log = console

	if cfg.FileLog {
		fl, err := logger.NewFileLogger(cfg.LogDir, name, cfg.LogLevel)
		if err != nil {
			logger.Warnf(console, "Run log disabled: %v", err)
		} else {
			s.fileLog = fl
			s.log = logger.Tee(console, fl)
			logger.Debugf(console, "Run log: %s (run %s)", fl.Path(), fl.RunID())
		}
	}
	return s, nil
}

func (s *session) Close() {
	if s.fileLog != nil {
		s.fileLog.Close()
	}
}

// stringFlag returns the flag value, or fallback when the flag was not given.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}
