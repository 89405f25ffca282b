package logger

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/gridlab/internal/models"
)

var linePattern = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] \[(TRACE|DEBUG|INFO|WARN|ERROR)\] .+$`)

func TestNewConsoleLogger(t *testing.T) {
	t.Run("with buffer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := NewConsoleLogger(buf, "DEBUG")
		if l.writer != buf {
			t.Error("writer not set correctly")
		}
		if l.logLevel != "debug" {
			t.Errorf("log level = %q, want debug", l.logLevel)
		}
		if l.colorOutput {
			t.Error("color enabled for a non-terminal writer")
		}
	})

	t.Run("nil writer discards", func(t *testing.T) {
		l := NewConsoleLogger(nil, "info")
		l.LogInfo("dropped")
		l.LogSubmission(models.Submission{JobName: "x"})
	})
}

func TestConsoleLoggerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewConsoleLogger(buf, "trace")

	l.LogTrace("t")
	l.LogDebug("d")
	l.LogInfo("i")
	l.LogWarn("w")
	l.LogError("e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), buf.String())
	}
	for _, line := range lines {
		if !linePattern.MatchString(line) {
			t.Errorf("line %q does not match log format", line)
		}
	}
}

func TestLogSubmission(t *testing.T) {
	tests := []struct {
		name string
		sub  models.Submission
		want string
	}{
		{
			name: "first link",
			sub:  models.Submission{JobName: "topq-01-build", Step: "build", Position: 1, SchedulerID: "4711"},
			want: "submitted topq-01-build (step 1: build, id 4711)",
		},
		{
			name: "dependent link",
			sub: models.Submission{
				JobName:    "topq-02-start",
				Step:       "start",
				Position:   2,
				Dependency: "topq-01-build",
			},
			want: "submitted topq-02-start (step 2: start) after topq-01-build",
		},
		{
			name: "bare submission",
			sub:  models.Submission{JobName: "solo"},
			want: "submitted solo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			NewConsoleLogger(buf, "info").LogSubmission(tt.sub)
			if !strings.HasSuffix(strings.TrimSpace(buf.String()), tt.want) {
				t.Errorf("output %q does not end with %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLogSubmissionFilteredAtWarn(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "warn").LogSubmission(models.Submission{JobName: "x"})
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLogParseSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewConsoleLogger(buf, "info")

	l.LogParseSummary("runs-00001-00100/00001", 1, 3, 0)
	l.LogParseSummary("runs-00001-00100/00002", 0, 2, 1)

	out := buf.String()
	for _, want := range []string{
		"parsed runs-00001-00100/00001: coverage 1, 3 plans\n",
		"parsed runs-00001-00100/00002: coverage 0, 2 plans, 1 without cost\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestColorFormatting(t *testing.T) {
	scheme := newColorScheme()
	got := formatSubmission(models.Submission{JobName: "job"}, scheme)
	if !strings.Contains(got, "job") {
		t.Errorf("colored submission %q lost job name", got)
	}
	if formatParseSummary("d", 1, 0, 0, nil) != "parsed d: coverage 1, 0 plans" {
		t.Errorf("plain summary = %q", formatParseSummary("d", 1, 0, 0, nil))
	}
	if colorLevel("OTHER") != "OTHER" {
		t.Error("unknown level should not be colored")
	}
}

func TestConsoleLoggerConcurrentWrites(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.LogInfo("concurrent message")
			time.Sleep(time.Millisecond)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, line := range lines {
		if !linePattern.MatchString(line) {
			t.Errorf("interleaved line %q", line)
		}
	}
}
