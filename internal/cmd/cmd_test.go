package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harrison/gridlab/internal/grid"
)

const testExperiment = `
experiment:
  name: topq-eval
  date: "2026-10-17"
  benchmarks_dir: benchmarks
  suite: [gripper]
  planner: /opt/planner/plan
  algorithms:
    - name: topq-1.0
      args: ["{domain}", "{problem}"]
      properties:
        q: 1.0
  time_limit: 30m
  memory_limit: 2048
  k: 50
environment:
  preset: oge-allq
`

// qsubRunner accepts every submission.
type qsubRunner struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *qsubRunner) Run(ctx context.Context, dir, name string, args []string) (string, string, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	return fmt.Sprintf("Your job %d (\"job\") has been submitted\n", 300+len(r.calls)), "", 0, nil
}

// useRunner makes commands run through runner for the rest of the test.
func useRunner(t *testing.T, runner grid.CommandRunner) {
	t.Helper()
	prev := newRunner
	newRunner = func() grid.CommandRunner { return runner }
	t.Cleanup(func() { newRunner = prev })
}

// testProject writes benchmarks and an experiment file and returns the
// experiment file path.
func testProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	gripper := filepath.Join(root, "benchmarks", "gripper")
	require.NoError(t, os.MkdirAll(gripper, 0755))
	for _, name := range []string{"domain.pddl", "prob01.pddl", "prob02.pddl"} {
		require.NoError(t, os.WriteFile(filepath.Join(gripper, name), []byte("(define)\n"), 0644))
	}
	path := filepath.Join(root, "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testExperiment), 0644))
	return path
}

// execute runs the root command with isolated config, ledger and log dir.
func execute(t *testing.T, state string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(state, "config.yaml"),
		"--db", filepath.Join(state, "gridlab.db"),
		"--log-dir", filepath.Join(state, "logs"),
	}, args...))
	err := cmd.Execute()
	return buf.String(), err
}
