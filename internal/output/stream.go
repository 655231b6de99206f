package output

import (
	"bytes"
	"strings"
	"sync"

	"github.com/heringsfish/hf/internal/logger"
)

// StreamHandler routes stdout and stderr of a child process into a logger,
// one log entry per line. Blank lines are dropped.
type StreamHandler struct {
	log logger.Logger
	mu  sync.Mutex

	// classifier picks the log level for each line.
	classifier Classifier

	stdoutLines int
	stderrLines int
}

// NewStreamHandler creates a handler that logs through log.
func NewStreamHandler(log logger.Logger) *StreamHandler {
	return &StreamHandler{
		log:        log,
		classifier: DefaultClassifier{},
	}
}

// SetClassifier sets the line classifier. Nil restores the default.
func (h *StreamHandler) SetClassifier(c Classifier) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c == nil {
		c = DefaultClassifier{}
	}
	h.classifier = c
}

// Stdout returns a line-buffered writer for the child's stdout.
func (h *StreamHandler) Stdout() *LineWriter {
	return NewLineWriter(func(line string) { h.WriteLine(line, false) })
}

// Stderr returns a line-buffered writer for the child's stderr.
func (h *StreamHandler) Stderr() *LineWriter {
	return NewLineWriter(func(line string) { h.WriteLine(line, true) })
}

// StdoutLines returns the number of stdout lines logged.
func (h *StreamHandler) StdoutLines() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stdoutLines
}

// StderrLines returns the number of stderr lines logged.
func (h *StreamHandler) StderrLines() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stderrLines
}

// WriteLine logs one line of child output.
func (h *StreamHandler) WriteLine(line string, isStderr bool) {
	line = cleanLine(line)
	if strings.TrimSpace(line) == "" {
		return
	}

	h.mu.Lock()
	if isStderr {
		h.stderrLines++
	} else {
		h.stdoutLines++
	}
	level := h.classifier.Classify(line, isStderr)
	h.mu.Unlock()

	switch level {
	case LevelError:
		h.log.Error("%s", line)
	case LevelWarn:
		h.log.Warn("%s", line)
	default:
		h.log.Info("%s", line)
	}
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, "\r")
	return strings.ReplaceAll(line, "\t", "  ")
}

// LineWriter is an io.Writer that hands complete lines to a callback.
// Incomplete lines are buffered until a newline arrives or Flush is called.
type LineWriter struct {
	mu   sync.Mutex
	emit func(string)
	buf  []byte
}

// NewLineWriter creates a line-buffered writer.
func NewLineWriter(emit func(string)) *LineWriter {
	return &LineWriter{emit: emit}
}

// Write buffers data and emits complete lines.
func (lw *LineWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	n = len(p)
	lw.buf = append(lw.buf, p...)

	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		line := string(lw.buf[:idx])
		lw.buf = lw.buf[idx+1:]
		lw.emit(line)
	}

	return n, nil
}

// Flush emits any remaining buffered content.
func (lw *LineWriter) Flush() {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if len(lw.buf) > 0 {
		line := string(lw.buf)
		lw.buf = nil
		lw.emit(line)
	}
}
