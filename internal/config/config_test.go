package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DirName, "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10000, cfg.DefaultK)
	assert.Equal(t, "qsub", cfg.QsubBinary)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name:    "partial file keeps defaults",
			content: "log_level: debug\nparse_concurrency: 16\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, 16, cfg.ParseConcurrency)
				assert.Equal(t, 1, cfg.LocalProcesses)
				assert.Equal(t, 10000, cfg.DefaultK)
			},
		},
		{
			name: "all fields",
			content: `log_level: warn
log_dir: /var/log/gridlab
db_path: /tmp/ledger.db
parse_concurrency: 2
local_processes: 8
qsub_binary: /opt/sge/bin/qsub
default_k: 100
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, &Config{
					LogLevel:         "warn",
					LogDir:           "/var/log/gridlab",
					DBPath:           "/tmp/ledger.db",
					ParseConcurrency: 2,
					LocalProcesses:   8,
					QsubBinary:       "/opt/sge/bin/qsub",
					DefaultK:         100,
				}, cfg)
			},
		},
		{
			name:    "malformed yaml",
			content: "log_level: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			cfg, err := LoadConfig(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromDirResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "db_path: ledger.db\nlog_dir: /abs/logs\n")

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ledger.db"), cfg.DBPath)
	assert.Equal(t, "/abs/logs", cfg.LogDir)
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	level := "trace"
	db := "/tmp/x.db"
	workers := 3

	cfg.MergeWithFlags(&level, nil, &db, &workers)

	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, DefaultConfig().LogDir, cfg.LogDir)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 3, cfg.ParseConcurrency)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "zero concurrency", mutate: func(c *Config) { c.ParseConcurrency = 0 }, wantErr: "parse_concurrency"},
		{name: "zero local processes", mutate: func(c *Config) { c.LocalProcesses = 0 }, wantErr: "local_processes"},
		{name: "zero k", mutate: func(c *Config) { c.DefaultK = 0 }, wantErr: "default_k"},
		{name: "no qsub", mutate: func(c *Config) { c.QsubBinary = "" }, wantErr: "qsub_binary"},
		{name: "no db", mutate: func(c *Config) { c.DBPath = "" }, wantErr: "db_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestFindProjectDir(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(HomeEnv, home)
		dir, err := FindProjectDir(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, home, dir)
	})

	t.Run("nearest ancestor with .gridlab", func(t *testing.T) {
		t.Setenv(HomeEnv, "")
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, DirName), 0755))
		nested := filepath.Join(root, "experiments", "topq")
		require.NoError(t, os.MkdirAll(nested, 0755))

		dir, err := FindProjectDir(nested)
		require.NoError(t, err)
		assert.Equal(t, root, dir)
	})

	t.Run("falls back to start", func(t *testing.T) {
		t.Setenv(HomeEnv, "")
		start := t.TempDir()
		dir, err := FindProjectDir(start)
		require.NoError(t, err)
		// a .gridlab in an ancestor of the temp dir would change the answer
		if _, err := os.Stat(filepath.Join(filepath.Dir(start), DirName)); err == nil {
			t.Skip("ancestor has a .gridlab directory")
		}
		assert.Equal(t, start, dir)
	})
}
