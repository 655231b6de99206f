package output

import "strings"

// Level is the log level a line of child output is reported at.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Classifier decides the log level of a line of child output.
type Classifier interface {
	Classify(line string, isStderr bool) Level
}

// DefaultClassifier reports stdout as info and stderr as error.
type DefaultClassifier struct{}

// Classify implements Classifier.
func (DefaultClassifier) Classify(line string, isStderr bool) Level {
	if isStderr {
		return LevelError
	}
	return LevelInfo
}

// MavenClassifier understands Maven's "[ERROR]" and "[WARNING]" prefixes,
// which Maven prints on stdout.
type MavenClassifier struct{}

// Classify implements Classifier.
func (MavenClassifier) Classify(line string, isStderr bool) Level {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "[ERROR]"), strings.HasPrefix(trimmed, "[FATAL]"):
		return LevelError
	case strings.HasPrefix(trimmed, "[WARNING]"), strings.HasPrefix(trimmed, "[WARN]"):
		return LevelWarn
	}
	return DefaultClassifier{}.Classify(line, isStderr)
}

// AsAdminClassifier maps asadmin's failure banner to error level.
// asadmin prints "Command <name> failed." on stdout before exiting non-zero.
type AsAdminClassifier struct{}

// Classify implements Classifier.
func (AsAdminClassifier) Classify(line string, isStderr bool) Level {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "Command ") && strings.HasSuffix(trimmed, " failed.") {
		return LevelError
	}
	if strings.HasPrefix(trimmed, "Warning:") {
		return LevelWarn
	}
	return DefaultClassifier{}.Classify(line, isStderr)
}
