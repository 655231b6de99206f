// Package pipeline runs a plugin's configured list of actions one after
// another, stopping at the first failure.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/params"
	"github.com/heringsfish/hf/internal/plugin"
	"github.com/heringsfish/hf/internal/util"
)

// HandlerPath is the registration-table key of the executor.
const HandlerPath = "pipeline"

// MaxDepth bounds how deeply pipelines may run one another. A pipeline that
// reaches itself through its steps fails at this depth.
const MaxDepth = 16

// DetailFinished is the result/error detail listing the steps that
// completed before the pipeline stopped.
const DetailFinished = "finished"

// Executor runs the pipeline declared in its plugin's settings.
type Executor struct {
	desc plugin.Descriptor
}

// New is the plugin.Factory for pipeline plugins.
func New(d plugin.Descriptor) (plugin.Action, error) {
	return &Executor{desc: d}, nil
}

// state is the position of a run: steps before next are done. Every
// transition returns a new value.
type state struct {
	steps    []plugin.Step
	next     int
	finished []string
	start    time.Time
}

func (s state) done() bool {
	return s.next >= len(s.steps)
}

func (s state) head() plugin.Step {
	return s.steps[s.next]
}

func (s state) advance(name string) state {
	finished := make([]string, len(s.finished), len(s.finished)+1)
	copy(finished, s.finished)
	s.finished = append(finished, name)
	s.next++
	return s
}

// Execute implements plugin.Action.
func (e *Executor) Execute(ctx context.Context, rc *plugin.Context) (*plugin.Result, error) {
	action := rc.Action()
	log := rc.Logger()

	steps, ok := e.desc.PipelineSteps()
	if !ok {
		return nil, errors.New(errors.ErrPipeline,
			fmt.Sprintf("Plugin %q missing pipeline", action),
			`Declare "settings.pipeline" as a list of {"action": "..."} steps in plugins.json`).
			WithTag(errors.TagPipelineMissing)
	}

	log.Debug("Pipeline (%d)", len(steps))
	for _, step := range steps {
		log.Debug("> Pipe %q -> %s", orUnknown(step.Action), orUnknown(step.Description))
	}

	if rc.Params != nil && rc.Params.IsParam("try", "test") {
		return dryRun(rc, action, steps), nil
	}

	for i, step := range steps {
		if step.Action == "" {
			return nil, errors.New(errors.ErrPipeline,
				fmt.Sprintf("Pipe %d of plugin %q has no action", i+1, action),
				`Every pipeline step needs an "action" naming another plugin`).
				WithTag(errors.TagPipelineStepInvalid)
		}
	}

	if rc.Depth >= MaxDepth {
		return nil, errors.New(errors.ErrPipeline,
			fmt.Sprintf("Pipeline %q is nested more than %d levels deep", action, MaxDepth),
			`Check the "pipeline" steps in plugins.json for a cycle`).
			WithTag(errors.TagPipelineRecursion)
	}

	return run(ctx, rc, action, state{steps: steps, start: time.Now()})
}

func run(ctx context.Context, rc *plugin.Context, action string, st state) (*plugin.Result, error) {
	total := len(st.steps)

	for !st.done() {
		select {
		case <-ctx.Done():
			return nil, stopped(st,
				errors.WrapWithCode(ctx.Err(), errors.ErrPipeline,
					fmt.Sprintf("Pipeline %q was interrupted", action), ""))
		default:
		}

		step := st.head()
		index := st.next + 1

		p, ok := registryGet(rc, step.Action)
		if !ok {
			return nil, stopped(st, errors.New(errors.ErrPipeline,
				fmt.Sprintf("Pipe %q of plugin %q is missing in the plugin registry", step.Action, action),
				"Register the plugin in plugins.json or fix the pipeline step").
				WithTag(errors.TagPipelineStepMissing))
		}

		child := rc.WithParams(stepParams(rc.Params, step))
		child.Depth = rc.Depth + 1

		if rc.Steps != nil {
			rc.Steps.OnStepStart(index, total, step)
		}
		stepStart := time.Now()
		res, err := p.Execute(ctx, child)
		if rc.Steps != nil {
			rc.Steps.OnStepComplete(index, total, step, res, err, time.Since(stepStart))
		}

		if err != nil {
			return nil, stopped(st, err)
		}
		if res.ExitCode > 0 {
			return nil, stopped(st, stepFailed(action, step, res))
		}

		st = st.advance(p.Name)
	}

	return &plugin.Result{
		ExitCode: 0,
		Duration: time.Since(st.start),
		Message: []string{
			fmt.Sprintf("Pipes: %s", util.JoinOrNone(st.finished)),
			fmt.Sprintf("Plugin %q is finished", action),
		},
		Details: map[string]interface{}{DetailFinished: st.finished},
	}, nil
}

func registryGet(rc *plugin.Context, name string) (*plugin.Plugin, bool) {
	if rc.Registry == nil {
		return nil, false
	}
	return rc.Registry.Get(name)
}

// stepParams parses [action, params...] the way the command line is parsed.
// verbose and quiet carry over from the invoking parameters unless the step
// sets them itself.
func stepParams(parent *params.Parameters, step plugin.Step) *params.Parameters {
	argv := make([]string, 0, len(step.Params)+1)
	argv = append(argv, step.Action)
	argv = append(argv, step.Params...)
	p := params.Parse(argv)

	if parent != nil {
		if parent.Quiet && !p.Verbose {
			p.Quiet = true
		}
		if parent.Verbose && !p.Quiet {
			p.Verbose = true
		}
	}
	return p
}

func stepFailed(action string, step plugin.Step, res *plugin.Result) *errors.Error {
	message := strings.Join(res.Message, "\n")
	if message == "" {
		message = fmt.Sprintf("Pipe %q failed with exit code %d", step.Action, res.ExitCode)
	}
	err := errors.New(errors.ErrPipeline, message,
		fmt.Sprintf("Pipeline %q stopped at %q", action, step.Action)).
		WithTag(errors.TagPipelineStepFailed).
		WithExitCode(res.ExitCode).
		WithDetail("step", step.Action)
	for k, v := range res.Details {
		if _, taken := err.Details[k]; !taken {
			err.WithDetail(k, v)
		}
	}
	return err
}

// stopped attaches the finished steps and the pipeline's elapsed time to err.
func stopped(st state, err error) error {
	hfErr, ok := errors.As(err)
	if !ok {
		hfErr = errors.WrapWithCode(err, errors.ErrPipeline, err.Error(), "")
	}
	hfErr.WithDetail(DetailFinished, st.finished)
	hfErr.Duration = time.Since(st.start)
	return hfErr
}

func dryRun(rc *plugin.Context, action string, steps []plugin.Step) *plugin.Result {
	log := rc.Logger()
	log.Info("Plugin %q is trying the pipe action", action)
	for _, step := range steps {
		log.Info("> Pipe %q @ params(%s)", step.Action, strings.Join(step.Params, " "))
	}
	return plugin.NewResult(
		fmt.Sprintf("Plugin %q is only try. Remove parameter \"try\" or \"test\"...", action))
}

// FinishedSteps returns the steps a failed pipeline completed before it
// stopped.
func FinishedSteps(err error) []string {
	hfErr, ok := errors.As(err)
	if !ok {
		return nil
	}
	finished, _ := hfErr.Details[DetailFinished].([]string)
	return finished
}

func orUnknown(s string) string {
	if s == "" {
		return "??"
	}
	return s
}
