package logger

import "github.com/harrison/gridlab/internal/models"

// Logger is the full logging surface implemented by every gridlab logger.
// Packages that log declare the narrower interface they need.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogSubmission(sub models.Submission)
	LogParseSummary(dir string, coverage, numPlans, misses int)
	LogProgress(bar *ProgressBar)
}

var (
	_ Logger = (*ConsoleLogger)(nil)
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*MultiLogger)(nil)
)

// MultiLogger forwards every call to each of its loggers in order.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger fans out to loggers, skipping nil entries.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	ml := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			ml.loggers = append(ml.loggers, l)
		}
	}
	return ml
}

func (ml *MultiLogger) LogTrace(message string) {
	for _, l := range ml.loggers {
		l.LogTrace(message)
	}
}

func (ml *MultiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

func (ml *MultiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

func (ml *MultiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

func (ml *MultiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

func (ml *MultiLogger) LogSubmission(sub models.Submission) {
	for _, l := range ml.loggers {
		l.LogSubmission(sub)
	}
}

func (ml *MultiLogger) LogParseSummary(dir string, coverage, numPlans, misses int) {
	for _, l := range ml.loggers {
		l.LogParseSummary(dir, coverage, numPlans, misses)
	}
}

func (ml *MultiLogger) LogProgress(bar *ProgressBar) {
	for _, l := range ml.loggers {
		l.LogProgress(bar)
	}
}
