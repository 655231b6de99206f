package logger

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 9, 5, 7, 42*int(time.Millisecond), time.UTC)
}

func newTestConsole(verbose, quiet bool) (Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	l := NewConsoleLogger(ConsoleOptions{
		Out:     &out,
		Err:     &errOut,
		Verbose: verbose,
		Quiet:   quiet,
		NoColor: true,
		Now:     fixedClock,
	})
	return l, &out, &errOut
}

func TestConsoleLogger_Format(t *testing.T) {
	l, out, _ := newTestConsole(false, false)

	l.Named("start").Info("Starts domain %q ...", "domain1")
	l.Info("no name")

	assert.Equal(t,
		"[09:05:07.042] start: Starts domain \"domain1\" ...\n[09:05:07.042] no name\n",
		out.String())
}

func TestConsoleLogger_Gating(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		quiet     bool
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default", wantInfo: true},
		{name: "verbose", verbose: true, wantDebug: true, wantInfo: true},
		{name: "quiet", quiet: true},
		{name: "quiet wins over verbose", verbose: true, quiet: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, out, errOut := newTestConsole(tt.verbose, tt.quiet)

			l.Debug("debug line")
			l.Info("info line")
			l.Warn("warn line")
			l.Error("error line")

			assert.Equal(t, tt.wantDebug, bytes.Contains(out.Bytes(), []byte("debug line")))
			assert.Equal(t, tt.wantInfo, bytes.Contains(out.Bytes(), []byte("info line")))
			// warn and error are never suppressed
			assert.Contains(t, errOut.String(), "warn line")
			assert.Contains(t, errOut.String(), "error line")
		})
	}
}

func TestConsoleLogger_NamedSharesSink(t *testing.T) {
	l, out, _ := newTestConsole(false, false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Named("deploy").Info("line %d", n)
		}(i)
	}
	wg.Wait()

	lines := bytes.Split(bytes.TrimRight(out.Bytes(), "\n"), []byte("\n"))
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.True(t, bytes.HasPrefix(line, []byte("[09:05:07.042] deploy: line ")), string(line))
	}
}

func TestNoop(t *testing.T) {
	l := Noop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	assert.NotNil(t, l.Named("x"))
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Info("hello %s", "world")
	l.Named("build").Error("failed with %d", 2)

	require.Len(t, l.Messages, 2)
	assert.Equal(t, LogMessage{Level: "info", Message: "hello world"}, l.Messages[0])
	assert.Equal(t, LogMessage{Level: "error", Name: "build", Message: "failed with 2"}, l.Messages[1])
	assert.True(t, l.HasLevel("error"))
	assert.False(t, l.HasLevel("warn"))
	assert.Equal(t, []string{"hello world"}, l.Lines("info"))

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	buf := NewBufferLogger()
	SetDefault(buf)
	Default().Info("via default")

	assert.Equal(t, []string{"via default"}, buf.Lines("info"))
}
