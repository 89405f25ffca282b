package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/gridlab/internal/config"
	"github.com/harrison/gridlab/internal/experiment"
	"github.com/harrison/gridlab/internal/grid"
	"github.com/harrison/gridlab/internal/logger"
	"github.com/harrison/gridlab/internal/store"
)

// newRunner creates the runner used for qsub and local dispatcher calls.
// Tests replace it.
var newRunner = func() grid.CommandRunner {
	return grid.ExecRunner{}
}

// loadConfig reads the tool configuration selected by --config (or the
// project's .gridlab/config.yaml) and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	var cfg *config.Config
	var err error
	if configPath, _ := flags.GetString("config"); configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		var dir string
		dir, err = config.FindProjectDir(".")
		if err != nil {
			return nil, err
		}
		cfg, err = config.LoadConfigFromDir(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var logLevel, logDir, dbPath *string
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		logLevel = &v
	}
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		logDir = &v
	}
	if flags.Changed("db") {
		v, _ := flags.GetString("db")
		dbPath = &v
	}
	var parseConcurrency *int
	if f := flags.Lookup("concurrency"); f != nil && f.Changed {
		v, _ := flags.GetInt("concurrency")
		parseConcurrency = &v
	}
	cfg.MergeWithFlags(logLevel, logDir, dbPath, parseConcurrency)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// session bundles what a command needs: configuration, loggers and the
// optional ledger. Close releases all of it.
type session struct {
	cfg     *config.Config
	log     logger.Logger
	fileLog *logger.FileLogger
	store   *store.Store
}

type sessionOptions struct {
	fileLog bool // also log to <log_dir>
	ledger  bool // open the SQLite ledger
}

func openSession(cmd *cobra.Command, opts sessionOptions) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if opts.fileLog {
		fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			// step jobs keep running with console logging only
			console.LogWarn(fmt.Sprintf("file logging disabled: %v", err))
		} else {
			s.fileLog = fileLog
		}
	}
	if s.fileLog != nil {
		s.log = logger.NewMultiLogger(console, s.fileLog)
	} else {
		s.log = console
	}

	if opts.ledger {
		st, err := store.NewStore(cfg.DBPath)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		s.store = st
	}
	return s, nil
}

// options wires the session into an experiment.
func (s *session) options() experiment.Options {
	opts := experiment.Options{
		Runner:           newRunner(),
		SubmitBinary:     s.cfg.QsubBinary,
		Logger:           s.log,
		DefaultK:         s.cfg.DefaultK,
		ParseConcurrency: s.cfg.ParseConcurrency,
		LocalProcesses:   s.cfg.LocalProcesses,
	}
	if s.store != nil {
		opts.Ledger = s.store
	}
	return opts
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
	if s.fileLog != nil {
		s.fileLog.Close()
	}
}

// useColor reports whether w is a terminal that accepts colors.
func useColor(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
