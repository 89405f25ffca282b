package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJobs(t *testing.T) {
	exp, _ := newTestExperiment(t, Options{})
	steps, err := exp.Def.SelectSteps(nil)
	require.NoError(t, err)

	set, err := exp.WriteJobs(steps)
	require.NoError(t, err)
	require.Len(t, set.Jobs, 5)
	assert.Empty(t, set.Warnings)

	stepsDir := exp.Layout.StepsDir()
	for i, job := range set.Jobs {
		assert.Equal(t, steps[i], job.Step)
		assert.Equal(t, stepsDir, job.Dir)
		assert.FileExists(t, filepath.Join(stepsDir, job.File))
	}
	assert.Equal(t, "topq-eval-02-start", set.Jobs[1].Name)
	assert.Equal(t, "02-start.job", set.Jobs[1].File)

	run, err := os.ReadFile(filepath.Join(stepsDir, "02-start.job"))
	require.NoError(t, err)
	content := string(run)
	assert.Contains(t, content, "#$ -N topq-eval-02-start\n")
	assert.Contains(t, content, "#$ -o 02-start.log\n")
	assert.Contains(t, content, "#$ -e driver.err\n")
	assert.Contains(t, content, "#$ -q all.q\n")
	assert.Contains(t, content, "#$ -t 1-2\n")
	assert.Contains(t, content, "#$ -l h_rt=0:35:00,h_vmem=2560M\n")
	assert.Contains(t, content, "./run-dispatcher \"$SGE_TASK_ID\"\n")

	fetch, err := os.ReadFile(filepath.Join(stepsDir, "03-fetch.job"))
	require.NoError(t, err)
	assert.Contains(t, string(fetch), testBinary+" step fetch ")
	assert.NotContains(t, string(fetch), "#$ -t")
	assert.Contains(t, string(fetch), "## (not used)\n")
}

func TestWriteJobs_Notification(t *testing.T) {
	t.Run("last step mails", func(t *testing.T) {
		exp, _ := newTestExperiment(t, Options{})
		exp.Env.Email = "someone@example.org"
		steps, err := exp.Def.SelectSteps([]string{"build", "fetch"})
		require.NoError(t, err)

		set, err := exp.WriteJobs(steps)
		require.NoError(t, err)
		assert.Empty(t, set.Warnings)

		first, err := os.ReadFile(filepath.Join(exp.Layout.StepsDir(), "01-build.job"))
		require.NoError(t, err)
		assert.Contains(t, string(first), "#$ -m n\n")

		last, err := os.ReadFile(filepath.Join(exp.Layout.StepsDir(), "03-fetch.job"))
		require.NoError(t, err)
		assert.Contains(t, string(last), "#$ -M someone@example.org\n#$ -m e\n")
	})

	t.Run("run step last warns", func(t *testing.T) {
		exp, _ := newTestExperiment(t, Options{})
		exp.Env.Email = "someone@example.org"
		steps, err := exp.Def.SelectSteps([]string{"build", "start"})
		require.NoError(t, err)

		set, err := exp.WriteJobs(steps)
		require.NoError(t, err)
		require.Len(t, set.Warnings, 1)
		assert.Contains(t, set.Warnings[0].Title, "start")

		last, err := os.ReadFile(filepath.Join(exp.Layout.StepsDir(), "02-start.job"))
		require.NoError(t, err)
		assert.Contains(t, string(last), "#$ -m n\n")
	})
}

func TestWriteJobs_HostRestriction(t *testing.T) {
	exp, _ := newTestExperiment(t, Options{})
	exp.Env.HostRestrictions = map[string][]string{"fast": {"node01", "node02"}}
	exp.Env.HostRestriction = "fast"
	steps, err := exp.Def.SelectSteps([]string{"build"})
	require.NoError(t, err)

	_, err = exp.WriteJobs(steps)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(exp.Layout.StepsDir(), "01-build.job"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `#$ -l hostname="node01|node02"`)
}

func TestWriteJobs_NoSteps(t *testing.T) {
	exp, _ := newTestExperiment(t, Options{})
	_, err := exp.WriteJobs(nil)
	require.Error(t, err)
}
