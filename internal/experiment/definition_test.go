package experiment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/gridlab/internal/models"
)

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FullDefinition(t *testing.T) {
	t.Setenv("PLANNER_HOME", "/opt/planner")
	path := writeDefinition(t, `
experiment:
  name: topq-eval
  date: "2026-10-01"
  dir: results
  benchmarks_dir: /data/benchmarks
  suite:
    - gripper
    - logistics:prob03.pddl
  planner: ${PLANNER_HOME}/plan
  algorithms:
    - name: topq-1.0
      args: ["--search", "topq(q=1.0)", "{domain}", "{problem}"]
      properties:
        q: 1.0
  time_limit: 29m
  memory_limit: 2048
  k: 1000
  attributes: [coverage, total_time]
  steps: [build, start, fetch]
  randomize_task_order: true
  seed: 42
environment:
  preset: oge-allq
  priority: -10
  email: someone@example.org
`)

	def, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "topq-eval", def.Name)
	assert.Equal(t, "2026-10-01", def.Date)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "results"), def.Dir)
	assert.Equal(t, "/data/benchmarks", def.BenchmarksDir)
	assert.Equal(t, []string{"gripper", "logistics:prob03.pddl"}, def.Suite)
	assert.Equal(t, "/opt/planner/plan", def.Planner)
	require.Len(t, def.Algorithms, 1)
	assert.Equal(t, []string{"--search", "topq(q=1.0)", "{domain}", "{problem}"}, def.Algorithms[0].Args)
	assert.Equal(t, 1.0, def.Algorithms[0].Properties["q"])
	assert.Equal(t, 29*time.Minute, def.TimeLimit)
	assert.Equal(t, 2048, def.MemoryLimit)
	assert.Equal(t, 1000, def.K)
	assert.Equal(t, []string{"coverage", "total_time"}, def.Attributes)
	assert.Equal(t, []string{"build", "start", "fetch"}, def.Steps)
	assert.True(t, def.RandomizeTaskOrder)
	assert.Equal(t, uint64(42), def.Seed)
	assert.Equal(t, "oge-allq", def.Environment.Preset)
	require.NotNil(t, def.Environment.Priority)
	assert.Equal(t, -10, *def.Environment.Priority)
	assert.Nil(t, def.Environment.Queue)
	assert.NoError(t, def.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	path := writeDefinition(t, `
experiment:
  name: minimal
  benchmarks_dir: benchmarks
  suite: [gripper]
  planner: plan
  algorithms:
    - name: base
  time_limit: "1800"
  memory_limit: 1024
`)

	def, err := Load(path)
	require.NoError(t, err)

	base := filepath.Dir(path)
	assert.Equal(t, base, def.Dir)
	assert.Equal(t, filepath.Join(base, "benchmarks"), def.BenchmarksDir)
	assert.Equal(t, 1800*time.Second, def.TimeLimit)
	assert.Equal(t, time.Now().Format("2006-01-02"), def.Date)
	assert.Equal(t, DefaultAttributes, def.Attributes)
	assert.Equal(t, []string{"build", "start", "fetch", "parse-again", "report"}, def.Steps)
	assert.Zero(t, def.K)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "experiment: [",
			wantErr: "failed to parse experiment file",
		},
		{
			name:    "bad time limit",
			content: "experiment:\n  time_limit: soon\n",
			wantErr: "invalid time_limit",
		},
		{
			name:    "unset variable",
			content: "experiment:\n  planner: ${GRIDLAB_TEST_UNSET_VAR}/plan\n",
			wantErr: "GRIDLAB_TEST_UNSET_VAR is not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeDefinition(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read experiment file")
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Definition)
		wantErr string
	}{
		{name: "valid", mutate: func(d *Definition) {}},
		{name: "name with slash", mutate: func(d *Definition) { d.Name = "a/b" }, wantErr: "must start with a letter"},
		{name: "name with digit first", mutate: func(d *Definition) { d.Name = "1exp" }, wantErr: "must start with a letter"},
		{name: "no suite", mutate: func(d *Definition) { d.Suite = nil }, wantErr: "suite must list"},
		{name: "no algorithms", mutate: func(d *Definition) { d.Algorithms = nil }, wantErr: "at least one algorithm"},
		{name: "unnamed algorithm", mutate: func(d *Definition) { d.Algorithms[0].Name = "" }, wantErr: "name is required"},
		{name: "duplicate algorithm", mutate: func(d *Definition) {
			d.Algorithms = append(d.Algorithms, d.Algorithms[0])
		}, wantErr: "listed twice"},
		{name: "zero time limit", mutate: func(d *Definition) { d.TimeLimit = 0 }, wantErr: "time_limit"},
		{name: "zero memory", mutate: func(d *Definition) { d.MemoryLimit = 0 }, wantErr: "memory_limit"},
		{name: "negative k", mutate: func(d *Definition) { d.K = -1 }, wantErr: "k must be positive"},
		{name: "unknown step", mutate: func(d *Definition) { d.Steps = []string{"build", "deploy"} }, wantErr: `unknown step "deploy"`},
		{name: "repeated step", mutate: func(d *Definition) { d.Steps = []string{"build", "build"} }, wantErr: "listed twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition(t.TempDir())
			tt.mutate(def)
			err := def.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefinition_ValidateReportsAllErrors(t *testing.T) {
	def := &Definition{Name: "x"}
	err := def.Validate()
	require.Error(t, err)
	lines := strings.Split(err.Error(), "\n")
	assert.GreaterOrEqual(t, len(lines), 5)
}

func TestDefinition_SelectSteps(t *testing.T) {
	def := testDefinition(t.TempDir())

	t.Run("all steps", func(t *testing.T) {
		steps, err := def.SelectSteps(nil)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultSteps(), steps)
	})

	t.Run("subset keeps positions", func(t *testing.T) {
		steps, err := def.SelectSteps([]string{"start", "fetch"})
		require.NoError(t, err)
		assert.Equal(t, []models.StepDescriptor{
			{Name: "start", IsRun: true, Position: 2},
			{Name: "fetch", Position: 3},
		}, steps)
	})

	t.Run("out of order", func(t *testing.T) {
		_, err := def.SelectSteps([]string{"fetch", "start"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must come after")
	})

	t.Run("step not in experiment", func(t *testing.T) {
		def := testDefinition(t.TempDir())
		def.Steps = []string{"build", "start"}
		_, err := def.SelectSteps([]string{"report"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not part of experiment")
	})

	t.Run("unknown step", func(t *testing.T) {
		_, err := def.SelectSteps([]string{"deploy"})
		require.Error(t, err)
	})
}
