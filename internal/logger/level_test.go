package logger

import (
	"bytes"
	"strings"
	"testing"
)

func logAt(l *ConsoleLogger, level, message string) {
	switch level {
	case "trace":
		l.LogTrace(message)
	case "debug":
		l.LogDebug(message)
	case "info":
		l.LogInfo(message)
	case "warn":
		l.LogWarn(message)
	case "error":
		l.LogError(message)
	}
}

// TestLogLevelFiltering verifies that messages are filtered based on log level
func TestLogLevelFiltering(t *testing.T) {
	levels := []string{"trace", "debug", "info", "warn", "error"}

	for ci, configured := range levels {
		for mi, message := range levels {
			shouldAppear := mi >= ci
			t.Run(configured+"/"+message, func(t *testing.T) {
				buf := &bytes.Buffer{}
				l := NewConsoleLogger(buf, configured)
				logAt(l, message, message+" msg")

				got := strings.Contains(buf.String(), message+" msg")
				if got != shouldAppear {
					t.Errorf("level %s, message %s: appeared=%v, want %v", configured, message, got, shouldAppear)
				}
			})
		}
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	tests := map[string]string{
		"":        "info",
		"DEBUG":   "debug",
		" warn ":  "warn",
		"verbose": "info",
		"error":   "error",
	}
	for in, want := range tests {
		if got := normalizeLogLevel(in); got != want {
			t.Errorf("normalizeLogLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
