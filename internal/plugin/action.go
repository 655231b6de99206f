package plugin

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/heringsfish/hf/internal/config"
	"github.com/heringsfish/hf/internal/exec"
	"github.com/heringsfish/hf/internal/logger"
	"github.com/heringsfish/hf/internal/params"
)

// Action is the common shape of every handler in the registration table.
type Action interface {
	Execute(ctx context.Context, rc *Context) (*Result, error)
}

// ActionFunc adapts a plain function to Action.
type ActionFunc func(ctx context.Context, rc *Context) (*Result, error)

// Execute calls f.
func (f ActionFunc) Execute(ctx context.Context, rc *Context) (*Result, error) {
	return f(ctx, rc)
}

// Factory builds the handler for one registry entry. It runs once, at
// registry construction.
type Factory func(d Descriptor) (Action, error)

// Handlers is the registration table: handler path -> factory.
type Handlers map[string]Factory

// StepObserver receives pipeline progress. index counts from 1. Both calls
// happen on the goroutine running the pipeline.
type StepObserver interface {
	OnStepStart(index, total int, step Step)
	OnStepComplete(index, total int, step Step, res *Result, err error, d time.Duration)
}

// Context is what a handler gets to work with: the loaded configuration plus
// the parameters of this one invocation.
type Context struct {
	Config   *config.Config
	Params   *params.Parameters
	Registry *Registry
	Runner   exec.Runner
	Log      logger.Logger

	// Out receives what an action prints for the user (help text, config
	// dumps). Defaults to os.Stdout.
	Out io.Writer

	// Steps is notified while a pipeline runs. May be nil.
	Steps StepObserver

	// Depth is the number of pipelines this invocation runs inside of.
	Depth int
}

// Action returns the requested action name.
func (c *Context) Action() string {
	if c.Params == nil {
		return params.DefaultAction
	}
	return c.Params.Action
}

// Plugin returns the registry entry of the requested action.
func (c *Context) Plugin() (*Plugin, bool) {
	if c.Registry == nil {
		return nil, false
	}
	return c.Registry.Get(c.Action())
}

// Output returns the writer for user-facing output.
func (c *Context) Output() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Logger returns the logger, never nil.
func (c *Context) Logger() logger.Logger {
	if c.Log == nil {
		return logger.Noop()
	}
	return c.Log
}

// WithParams returns a copy of the context that runs with p. The copy shares
// configuration, registry and runner; its logger is named after p's action.
func (c *Context) WithParams(p *params.Parameters) *Context {
	child := *c
	child.Params = p
	child.Log = c.Logger().Named(p.Action)
	return &child
}

// Result is the outcome of a handler that ran to completion. A non-zero
// ExitCode is a failure the caller decides how to surface.
type Result struct {
	Message  []string
	Duration time.Duration
	ExitCode int

	// Details carries handler-specific payload (app names, file names,
	// finished pipeline steps).
	Details map[string]interface{}
}

// NewResult creates a successful result with the given message lines.
func NewResult(lines ...string) *Result {
	return &Result{Message: lines}
}

// FromExec turns a process result into an action result.
func FromExec(r *exec.Result) *Result {
	res := &Result{ExitCode: r.ExitCode, Duration: r.Duration}
	if r.Message != "" {
		res.Message = []string{r.Message}
	}
	return res
}

// Success returns true if the result carries exit code 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// WithDetail adds a payload entry and returns the result for chaining.
func (r *Result) WithDetail(key string, value interface{}) *Result {
	if r.Details == nil {
		r.Details = make(map[string]interface{})
	}
	r.Details[key] = value
	return r
}
