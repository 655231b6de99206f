// Package exec runs external tools (asadmin, mvn) and streams their output
// into the logger.
package exec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/logger"
	"github.com/heringsfish/hf/internal/output"
	"github.com/heringsfish/hf/internal/util"
)

// waitDelay bounds how long Wait blocks on output pipes after the child
// has been interrupted.
const waitDelay = 10 * time.Second

// Command describes one external process.
type Command struct {
	Name string
	Args []string

	// Env is added on top of the inherited environment.
	Env map[string]string

	// Dir is the working directory. Empty means the current one.
	Dir string

	// Timeout interrupts the process when exceeded. Zero disables it.
	Timeout time.Duration

	// Classifier picks the log level per output line. Nil uses stdout=info,
	// stderr=error.
	Classifier output.Classifier

	// Log receives the output lines. Nil uses the runner's logger.
	Log logger.Logger
}

// String renders the command line for log output, quoting words a shell
// would split.
func (c Command) String() string {
	return util.CommandLine(c.Name, c.Args)
}

// Result is the outcome of a process that ran to completion. A non-zero
// ExitCode is still a Result, not an error; callers decide what it means.
type Result struct {
	ExitCode int
	Duration time.Duration
	Message  string
}

// Success returns true if the process exited with code 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner starts external processes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// LocalRunner runs commands on this machine.
type LocalRunner struct {
	log  logger.Logger
	goos string
}

// NewLocalRunner creates a runner that logs child output through log.
func NewLocalRunner(log logger.Logger) *LocalRunner {
	return &LocalRunner{log: log, goos: runtime.GOOS}
}

// Run starts the command and waits for it.
//
// Exit code 0 and non-zero exits both return a Result. Errors are reserved
// for processes that couldn't be started (ErrExec) and for timeouts
// (ErrTimeout); both carry the elapsed duration.
func (r *LocalRunner) Run(ctx context.Context, c Command) (*Result, error) {
	start := time.Now()
	log := r.log
	if c.Log != nil {
		log = c.Log
	}

	runCtx := ctx
	cancel := func() {}
	if c.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
	}
	defer cancel()

	name, args := BuildCommand(r.goos, c.Name, c.Args)
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = c.Dir
	cmd.Env = MergeEnv(os.Environ(), c.Env)
	cmd.WaitDelay = waitDelay
	cmd.Cancel = func() error {
		if r.goos == "windows" {
			return cmd.Process.Kill()
		}
		return cmd.Process.Signal(os.Interrupt)
	}

	handler := output.NewStreamHandler(log)
	handler.SetClassifier(c.Classifier)
	stdout := handler.Stdout()
	stderr := handler.Stderr()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Debug("Run: %s", c.String())

	if err := cmd.Start(); err != nil {
		return nil, errors.WithDuration(
			errors.WrapWithCode(err, errors.ErrExec,
				fmt.Sprintf("Couldn't start %s", c.Name),
				"Make sure the command exists and is executable, or set its path in server-config.json").
				WithTag(errors.TagSpawn),
			time.Since(start))
	}

	waitErr := cmd.Wait()
	stdout.Flush()
	stderr.Flush()
	duration := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		log.Error("Timeout is reaching. Stop execution!")
		return nil, errors.WithDuration(
			errors.WrapWithCode(runCtx.Err(), errors.ErrTimeout,
				fmt.Sprintf("%s timed out after %s", c.Name, c.Timeout),
				"Raise command.timeout (milliseconds) in server-config.json, or set it to 0 to disable").
				WithTag(errors.TagTimeout),
			duration)
	}
	if ctx.Err() != nil {
		return nil, errors.WithDuration(
			errors.WrapWithCode(ctx.Err(), errors.ErrExec,
				fmt.Sprintf("%s was interrupted", c.Name), ""),
			duration)
	}

	if waitErr != nil {
		exitErr, ok := waitErr.(*exec.ExitError)
		if !ok {
			return nil, errors.WithDuration(
				errors.WrapWithCode(waitErr, errors.ErrExec,
					fmt.Sprintf("Failed while running %s", c.Name), "").
					WithTag(errors.TagSpawn),
				duration)
		}
		code := exitErr.ExitCode()
		if code <= 0 {
			// killed by a signal
			code = 1
		}
		if IsCommandNotFound(r.goos, code) {
			log.Warn("%s looks like it isn't installed or not on PATH", c.Name)
		}
		return &Result{
			ExitCode: code,
			Duration: duration,
			Message:  fmt.Sprintf("Finish with error (exit code %d)", code),
		}, nil
	}

	return &Result{ExitCode: 0, Duration: duration}, nil
}

// BuildCommand returns the program and arguments to start. On Windows the
// command is run through `cmd.exe /c` so .bat/.cmd wrappers (asadmin.bat,
// mvn.cmd) resolve the way they do in a console.
func BuildCommand(goos, name string, args []string) (string, []string) {
	if goos == "windows" {
		return "cmd.exe", append([]string{"/c", name}, args...)
	}
	out := make([]string, len(args))
	copy(out, args)
	return name, out
}

// MergeEnv overlays extra on base (KEY=VALUE pairs). Later keys replace
// earlier ones; extra keys are appended in sorted order.
func MergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			key = kv[:i]
		}
		if _, overridden := extra[key]; overridden {
			continue
		}
		out = append(out, kv)
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}

// IsCommandNotFound reports whether an exit code is the shell's
// "command not found" status: 127 for POSIX shells, 9009 for cmd.exe.
func IsCommandNotFound(goos string, exitCode int) bool {
	if goos == "windows" {
		return exitCode == 9009
	}
	return exitCode == 127
}
