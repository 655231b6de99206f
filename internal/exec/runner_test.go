package exec

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/logger"
	"github.com/heringsfish/hf/internal/output"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell scripts")
	}
}

// writeScript creates an executable shell script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestRun_Success(t *testing.T) {
	skipOnWindows(t)
	log := logger.NewBufferLogger()
	r := NewLocalRunner(log)

	script := writeScript(t, `echo "Domain $1 started."
echo
echo "	tabbed"
echo "warning on stderr" >&2`)

	result, err := r.Run(context.Background(), Command{Name: script, Args: []string{"domain1"}})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, result.Success())
	assert.Empty(t, result.Message)
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
	assert.Equal(t, []string{"Domain domain1 started.", "  tabbed"}, log.Lines("info"))
	assert.Equal(t, []string{"warning on stderr"}, log.Lines("error"))
}

func TestRun_NonZeroExitResolves(t *testing.T) {
	skipOnWindows(t)
	r := NewLocalRunner(logger.NewBufferLogger())

	result, err := r.Run(context.Background(), Command{Name: writeScript(t, "exit 7")})

	require.NoError(t, err, "a failing process is a result, not an error")
	assert.Equal(t, 7, result.ExitCode)
	assert.Equal(t, "Finish with error (exit code 7)", result.Message)
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
	assert.False(t, result.Success())
}

func TestRun_SpawnFailure(t *testing.T) {
	r := NewLocalRunner(logger.NewBufferLogger())

	result, err := r.Run(context.Background(), Command{Name: filepath.Join(t.TempDir(), "does-not-exist")})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.True(t, errors.HasTag(err, errors.TagSpawn))

	hfErr, ok := errors.As(err)
	require.True(t, ok)
	assert.NotEmpty(t, hfErr.Stack())
}

func TestRun_Timeout(t *testing.T) {
	skipOnWindows(t)
	log := logger.NewBufferLogger()
	r := NewLocalRunner(log)

	start := time.Now()
	_, err := r.Run(context.Background(), Command{
		Name:    writeScript(t, "exec sleep 5"),
		Timeout: 100 * time.Millisecond,
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTimeout))
	assert.True(t, errors.HasTag(err, errors.TagTimeout))
	assert.Less(t, time.Since(start), 4*time.Second, "the child is interrupted")

	hfErr, _ := errors.As(err)
	assert.GreaterOrEqual(t, hfErr.Duration, 100*time.Millisecond)
	assert.Contains(t, log.Lines("error"), "Timeout is reaching. Stop execution!")
}

func TestRun_ZeroTimeoutDisablesIt(t *testing.T) {
	skipOnWindows(t)
	r := NewLocalRunner(logger.NewBufferLogger())

	result, err := r.Run(context.Background(), Command{Name: writeScript(t, "sleep 0.2"), Timeout: 0})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRun_ParentCancellation(t *testing.T) {
	skipOnWindows(t)
	r := NewLocalRunner(logger.NewBufferLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := r.Run(ctx, Command{Name: writeScript(t, "exec sleep 5"), Timeout: time.Minute})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.False(t, errors.IsCode(err, errors.ErrTimeout))
}

func TestRun_EnvAndDir(t *testing.T) {
	skipOnWindows(t)
	log := logger.NewBufferLogger()
	r := NewLocalRunner(log)
	dir := t.TempDir()

	result, err := r.Run(context.Background(), Command{
		Name: writeScript(t, `echo "$HF_TEST_VALUE"; pwd`),
		Env:  map[string]string{"HF_TEST_VALUE": "from-config"},
		Dir:  dir,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	lines := log.Lines("info")
	require.Len(t, lines, 2)
	assert.Equal(t, "from-config", lines[0])
	resolved, _ := filepath.EvalSymlinks(dir)
	actual, _ := filepath.EvalSymlinks(lines[1])
	assert.Equal(t, resolved, actual)
}

func TestRun_Classifier(t *testing.T) {
	skipOnWindows(t)
	log := logger.NewBufferLogger()
	r := NewLocalRunner(log)

	_, err := r.Run(context.Background(), Command{
		Name:       writeScript(t, `echo "[INFO] ok"; echo "[ERROR] broken"`),
		Classifier: output.MavenClassifier{},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"[INFO] ok"}, log.Lines("info"))
	assert.Equal(t, []string{"[ERROR] broken"}, log.Lines("error"))
}

func TestRun_CommandLoggerWins(t *testing.T) {
	skipOnWindows(t)
	runnerLog := logger.NewBufferLogger()
	stepLog := logger.NewBufferLogger()
	r := NewLocalRunner(runnerLog)

	_, err := r.Run(context.Background(), Command{
		Name: writeScript(t, `echo "building"; echo "oops" >&2`),
		Log:  stepLog,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"building"}, stepLog.Lines("info"))
	assert.Equal(t, []string{"oops"}, stepLog.Lines("error"))
	assert.Empty(t, runnerLog.Messages)
}

func TestRun_CommandNotFoundWarns(t *testing.T) {
	skipOnWindows(t)
	log := logger.NewBufferLogger()
	r := NewLocalRunner(log)

	result, err := r.Run(context.Background(), Command{Name: writeScript(t, "exit 127")})

	require.NoError(t, err)
	assert.Equal(t, 127, result.ExitCode)
	assert.True(t, log.HasLevel("warn"))
}

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		command  string
		args     []string
		wantName string
		wantArgs []string
	}{
		{
			name:     "unix runs directly",
			goos:     "linux",
			command:  "/opt/gf/bin/asadmin",
			args:     []string{"start-domain", "d1"},
			wantName: "/opt/gf/bin/asadmin",
			wantArgs: []string{"start-domain", "d1"},
		},
		{
			name:     "windows goes through cmd.exe",
			goos:     "windows",
			command:  `C:\gf\bin\asadmin.bat`,
			args:     []string{"start-domain", "d1"},
			wantName: "cmd.exe",
			wantArgs: []string{"/c", `C:\gf\bin\asadmin.bat`, "start-domain", "d1"},
		},
		{
			name:     "no args",
			goos:     "darwin",
			command:  "mvn",
			wantName: "mvn",
			wantArgs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args := BuildCommand(tt.goos, tt.command, tt.args)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildCommand_DoesNotAliasArgs(t *testing.T) {
	in := []string{"a", "b"}
	_, out := BuildCommand("linux", "x", in)
	out[0] = "changed"
	assert.Equal(t, "a", in[0])
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/bin", "HOME=/home/dev", "JAVA_HOME=/old"}

	got := MergeEnv(base, map[string]string{"JAVA_HOME": "/new", "AS_ADMIN": "x"})
	assert.Equal(t, []string{"PATH=/bin", "HOME=/home/dev", "AS_ADMIN=x", "JAVA_HOME=/new"}, got)

	assert.Equal(t, base, MergeEnv(base, nil))
}

func TestIsCommandNotFound(t *testing.T) {
	assert.True(t, IsCommandNotFound("linux", 127))
	assert.False(t, IsCommandNotFound("linux", 1))
	assert.True(t, IsCommandNotFound("windows", 9009))
	assert.False(t, IsCommandNotFound("windows", 127))
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "mvn -f pom.xml package", Command{Name: "mvn", Args: []string{"-f", "pom.xml", "package"}}.String())
	assert.Equal(t, "mvn", Command{Name: "mvn"}.String())
}

func TestFindCommand(t *testing.T) {
	_, ok := FindCommand("")
	assert.False(t, ok)

	path, ok := FindCommand("/opt/gf/bin/../bin/asadmin")
	assert.True(t, ok)
	assert.Equal(t, filepath.Clean("/opt/gf/bin/../bin/asadmin"), path)

	_, ok = FindCommand("hf-definitely-not-installed-tool")
	assert.False(t, ok)
}
