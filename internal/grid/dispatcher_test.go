package grid

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDispatcher_Content(t *testing.T) {
	script, err := GenerateDispatcher([]string{"runs-00001-00100/00002", "runs-00001-00100/00001"})
	require.NoError(t, err)

	assert.Equal(t, DispatcherName, script.Name)
	assert.Equal(t, os.FileMode(0o755), script.Mode)

	wantOrder := "TASK_ORDER=(\n  runs-00001-00100/00002\n  runs-00001-00100/00001\n)\n"
	if !strings.Contains(script.Content, wantOrder) {
		t.Errorf("task order block mismatch (-want +got):\n%s", cmp.Diff(wantOrder, script.Content))
	}
	assert.True(t, strings.HasPrefix(script.Content, "#!/bin/bash\n"))
	assert.Contains(t, script.Content, "exec ./run")
}

func TestGenerateDispatcher_QuotesUnsafeEntries(t *testing.T) {
	script, err := GenerateDispatcher([]string{"runs/it's here"})
	require.NoError(t, err)
	assert.Contains(t, script.Content, `'runs/it'"'"'s here'`)
}

// TestGenerateDispatcher_Executes runs the generated script against fake run
// directories and checks that each index reaches the right run.
func TestGenerateDispatcher_Executes(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	root := t.TempDir()
	order := []string{"runs-00001-00100/00002", "runs-00001-00100/00001"}
	for _, dir := range order {
		runDir := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(runDir, 0o755))
		body := "#!/bin/bash\necho " + filepath.Base(dir) + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(runDir, "run"), []byte(body), 0o755))
	}

	script, err := GenerateDispatcher(order)
	require.NoError(t, err)
	path := filepath.Join(root, script.Name)
	require.NoError(t, os.WriteFile(path, []byte(script.Content), script.Mode))

	tests := []struct {
		index   string
		want    string
		wantErr bool
	}{
		{index: "1", want: "00002"},
		{index: "2", want: "00001"},
		{index: "0", wantErr: true},
		{index: "3", wantErr: true},
		{index: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run("index "+tt.index, func(t *testing.T) {
			out, err := exec.Command(path, tt.index).Output()
			if tt.wantErr {
				var exitErr *exec.ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 2, exitErr.ExitCode())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(string(out)))
		})
	}
}

func TestTaskOrder(t *testing.T) {
	dirs := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	t.Run("declared order when not randomized", func(t *testing.T) {
		assert.Equal(t, dirs, TaskOrder(dirs, false, 0))
	})

	t.Run("seeded permutation is stable", func(t *testing.T) {
		first := TaskOrder(dirs, true, 42)
		second := TaskOrder(dirs, true, 42)
		assert.Equal(t, first, second)
		assert.ElementsMatch(t, dirs, first)
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := append([]string(nil), dirs...)
		TaskOrder(in, true, 7)
		assert.Equal(t, dirs, in)
	})
}

func TestShellQuote(t *testing.T) {
	tests := map[string]string{
		"":                      "''",
		"plain-word_1.pddl":     "plain-word_1.pddl",
		"two words":             "'two words'",
		"symq-bd(quality=1.0)":  "'symq-bd(quality=1.0)'",
		"it's":                  `'it'"'"'s'`,
		"$HOME":                 "'$HOME'",
	}
	for in, want := range tests {
		assert.Equal(t, want, ShellQuote(in), "input %q", in)
	}
}
