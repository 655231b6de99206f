// Package logger provides the logging interface shared by hf components.
// Actions, the pipeline executor and the process runner log through it
// without being coupled to where the lines end up.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})

	// Named returns a logger that tags each line with name (usually the action).
	Named(name string) Logger
}

// Level colours for the timestamp column.
const (
	colorDebug lipgloss.Color = "2" // Green
	colorInfo  lipgloss.Color = "4" // Blue
	colorWarn  lipgloss.Color = "5" // Magenta
	colorError lipgloss.Color = "1" // Red
)

// TimeFormat is the layout of the leading timestamp.
const TimeFormat = "15:04:05.000"

// ConsoleOptions configures a console logger.
type ConsoleOptions struct {
	// Out receives debug and info lines. Defaults to os.Stdout.
	Out io.Writer
	// Err receives warn and error lines. Defaults to os.Stderr.
	Err io.Writer

	Verbose bool
	Quiet   bool
	NoColor bool

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// sink is shared by a console logger and all loggers derived via Named,
// so concurrent writers never interleave partial lines.
type sink struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	verbose bool
	quiet   bool
	now     func() time.Time

	debug lipgloss.Style
	info  lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
}

type consoleLogger struct {
	sink *sink
	name string
}

// NewConsoleLogger creates a logger that writes `[HH:mm:ss.SSS] name: message`
// lines. Debug lines need Verbose; info lines are dropped when Quiet.
func NewConsoleLogger(opts ConsoleOptions) Logger {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Quiet {
		opts.Verbose = false
	}

	renderer := lipgloss.NewRenderer(opts.Out)
	if opts.NoColor {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &consoleLogger{
		sink: &sink{
			out:     opts.Out,
			err:     opts.Err,
			verbose: opts.Verbose,
			quiet:   opts.Quiet,
			now:     opts.Now,
			debug:   renderer.NewStyle().Foreground(colorDebug),
			info:    renderer.NewStyle().Foreground(colorInfo),
			warn:    renderer.NewStyle().Foreground(colorWarn),
			fail:    renderer.NewStyle().Foreground(colorError),
		},
	}
}

func (l *consoleLogger) Named(name string) Logger {
	return &consoleLogger{sink: l.sink, name: name}
}

func (l *consoleLogger) Debug(format string, args ...interface{}) {
	if !l.sink.verbose {
		return
	}
	l.write(l.sink.out, l.sink.debug, format, args...)
}

func (l *consoleLogger) Info(format string, args ...interface{}) {
	if l.sink.quiet {
		return
	}
	l.write(l.sink.out, l.sink.info, format, args...)
}

func (l *consoleLogger) Warn(format string, args ...interface{}) {
	l.write(l.sink.err, l.sink.warn, format, args...)
}

func (l *consoleLogger) Error(format string, args ...interface{}) {
	l.write(l.sink.err, l.sink.fail, format, args...)
}

func (l *consoleLogger) write(w io.Writer, style lipgloss.Style, format string, args ...interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	stamp := style.Render("[" + l.sink.now().Format(TimeFormat) + "]")
	msg := fmt.Sprintf(format, args...)
	if l.name != "" {
		fmt.Fprintf(w, "%s %s: %s\n", stamp, l.name, msg)
		return
	}
	fmt.Fprintf(w, "%s %s\n", stamp, msg)
}

// noopLogger implements Logger but discards all messages.
// Useful for testing or when logging is not desired.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}
func (l *noopLogger) Named(name string) Logger                 { return l }

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Name    string
	Message string
}

// BufferLogger captures log messages for testing.
// Safe for concurrent use; loggers returned by Named share the buffer.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, name, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Name: name, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.add("debug", "", format, args...)
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.add("info", "", format, args...)
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.add("warn", "", format, args...)
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.add("error", "", format, args...)
}

// Named returns a view on the same buffer that records name with each message.
func (l *BufferLogger) Named(name string) Logger {
	return &namedBuffer{parent: l, name: name}
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Lines returns the messages logged at level, in order.
func (l *BufferLogger) Lines(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var lines []string
	for _, m := range l.Messages {
		if m.Level == level {
			lines = append(lines, m.Message)
		}
	}
	return lines
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

type namedBuffer struct {
	parent *BufferLogger
	name   string
}

func (n *namedBuffer) Debug(format string, args ...interface{}) {
	n.parent.add("debug", n.name, format, args...)
}

func (n *namedBuffer) Info(format string, args ...interface{}) {
	n.parent.add("info", n.name, format, args...)
}

func (n *namedBuffer) Warn(format string, args ...interface{}) {
	n.parent.add("warn", n.name, format, args...)
}

func (n *namedBuffer) Error(format string, args ...interface{}) {
	n.parent.add("error", n.name, format, args...)
}

func (n *namedBuffer) Named(name string) Logger {
	return &namedBuffer{parent: n.parent, name: name}
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewConsoleLogger(ConsoleOptions{})

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
// The CLI calls this once the verbose/quiet flags are known.
func SetDefault(l Logger) {
	defaultLogger = l
}
