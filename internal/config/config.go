// Package config loads the gridlab tool configuration from
// .gridlab/config.yaml and merges command-line overrides into it.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DirName is the per-project gridlab directory.
const DirName = ".gridlab"

// Config represents gridlab configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where log files are written
	LogDir string `yaml:"log_dir"`

	// DBPath is the SQLite ledger of submissions and parse results
	DBPath string `yaml:"db_path"`

	// ParseConcurrency bounds how many run directories are parsed at once
	ParseConcurrency int `yaml:"parse_concurrency"`

	// LocalProcesses bounds concurrent runs when the start step executes locally
	LocalProcesses int `yaml:"local_processes"`

	// QsubBinary is the scheduler submission command
	QsubBinary string `yaml:"qsub_binary"`

	// DefaultK is the plan-count bound for experiments that do not set k
	DefaultK int `yaml:"default_k"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		LogDir:           filepath.Join(DirName, "logs"),
		DBPath:           filepath.Join(DirName, "gridlab.db"),
		ParseConcurrency: 4,
		LocalProcesses:   1,
		QsubBinary:       "qsub",
		DefaultK:         10000,
	}
}

// LoadConfig loads configuration from the specified file path.
// A missing file yields the defaults; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if fileCfg.DBPath != "" {
		cfg.DBPath = fileCfg.DBPath
	}
	if fileCfg.ParseConcurrency != 0 {
		cfg.ParseConcurrency = fileCfg.ParseConcurrency
	}
	if fileCfg.LocalProcesses != 0 {
		cfg.LocalProcesses = fileCfg.LocalProcesses
	}
	if fileCfg.QsubBinary != "" {
		cfg.QsubBinary = fileCfg.QsubBinary
	}
	if fileCfg.DefaultK != 0 {
		cfg.DefaultK = fileCfg.DefaultK
	}

	return cfg, nil
}

// LoadConfigFromDir loads .gridlab/config.yaml in dir. Relative log and
// database paths from the defaults are resolved against dir.
func LoadConfigFromDir(dir string) (*Config, error) {
	cfg, err := LoadConfig(filepath.Join(dir, DirName, "config.yaml"))
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.LogDir) {
		cfg.LogDir = filepath.Join(dir, cfg.LogDir)
	}
	if !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(dir, cfg.DBPath)
	}
	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, dbPath *string, parseConcurrency *int) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if dbPath != nil {
		c.DBPath = *dbPath
	}
	if parseConcurrency != nil {
		c.ParseConcurrency = *parseConcurrency
	}
}

// Validate validates the configuration values
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
	if c.ParseConcurrency < 1 {
		return fmt.Errorf("parse_concurrency must be >= 1, got %d", c.ParseConcurrency)
	}
	if c.LocalProcesses < 1 {
		return fmt.Errorf("local_processes must be >= 1, got %d", c.LocalProcesses)
	}
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be >= 1, got %d", c.DefaultK)
	}
	if c.QsubBinary == "" {
		return fmt.Errorf("qsub_binary cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}
	return nil
}
