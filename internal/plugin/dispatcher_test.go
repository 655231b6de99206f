package plugin

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heringsfish/hf/internal/config"
	"github.com/heringsfish/hf/internal/errors"
	exectest "github.com/heringsfish/hf/internal/exec/testing"
	"github.com/heringsfish/hf/internal/logger"
	"github.com/heringsfish/hf/internal/params"
)

func newTestContext(t *testing.T, argv []string, defs map[string]interface{}, handlers Handlers) (*Context, *logger.BufferLogger, *exectest.FakeRunner) {
	t.Helper()
	log := logger.NewBufferLogger()
	runner := exectest.NewFakeRunner()
	return &Context{
		Config:   config.New(nil, config.Paths{}),
		Params:   params.Parse(argv),
		Registry: NewRegistry(defs, handlers),
		Runner:   runner,
		Log:      log,
	}, log, runner
}

func TestDispatch_PluginMissing(t *testing.T) {
	// the handler would fail on missing settings; it must never be reached
	handlers := Handlers{"start": func(d Descriptor) (Action, error) {
		return ActionFunc(func(ctx context.Context, rc *Context) (*Result, error) {
			return nil, errors.New(errors.ErrConfig, "Missing AsAdmin settings", "").WithTag(errors.TagAsAdminSettings)
		}), nil
	}}
	defs := map[string]interface{}{
		"start": map[string]interface{}{"name": "start", "path": "start"},
	}
	rc, _, runner := newTestContext(t, []string{"undeploy-everything"}, defs, handlers)

	res, err := Dispatch(context.Background(), rc)

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsCode(err, errors.ErrPlugin))
	assert.True(t, errors.HasTag(err, errors.TagPluginMissing))
	assert.False(t, errors.HasTag(err, errors.TagAsAdminSettings))
	assert.Contains(t, err.Error(), `Plugin "undeploy-everything" is missing`)
	assert.Equal(t, 0, runner.CallCount())
	assert.Equal(t, 1, errors.ExitCode(err))
}

func TestDispatch_PluginMissingSuggestsSimilar(t *testing.T) {
	defs := map[string]interface{}{
		"start":   map[string]interface{}{"name": "start", "path": "start"},
		"restart": map[string]interface{}{"name": "restart", "path": "start"},
		"deploy":  map[string]interface{}{"name": "deploy", "path": "start"},
	}
	handlers := Handlers{"start": func(d Descriptor) (Action, error) {
		return ActionFunc(func(ctx context.Context, rc *Context) (*Result, error) { return NewResult(), nil }), nil
	}}

	tests := []struct {
		name   string
		action string
		want   string
	}{
		{name: "typo", action: "strat", want: "Did you mean start? Run 'hf help' to list the available actions"},
		{name: "case", action: "DEPLOYS", want: "Did you mean deploy? Run 'hf help' to list the available actions"},
		{name: "nothing close", action: "jdbc", want: "Run 'hf help' to list the available actions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, _, _ := newTestContext(t, []string{tt.action}, defs, handlers)

			_, err := Dispatch(context.Background(), rc)

			hfErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, hfErr.Suggestion)
		})
	}
}

func TestDispatch_Failures(t *testing.T) {
	handlers := Handlers{
		"failing": func(d Descriptor) (Action, error) { return nil, stderrors.New("boom") },
		"nil":     func(d Descriptor) (Action, error) { return nil, nil },
	}
	defs := map[string]interface{}{
		"about":   map[string]interface{}{"name": "about", "help": "about.txt"},
		"unknown": map[string]interface{}{"name": "unknown", "path": "nowhere"},
		"failing": map[string]interface{}{"name": "failing", "path": "failing"},
		"nil":     map[string]interface{}{"name": "nil", "path": "nil"},
	}

	tests := []struct {
		name    string
		action  string
		wantTag errors.Tag
		wantMsg string
	}{
		{name: "help only plugin", action: "about", wantTag: errors.TagPluginNoHandler, wantMsg: `Plugin "about" requires a path`},
		{name: "unknown handler", action: "unknown", wantTag: errors.TagPluginLoad, wantMsg: `Plugin "unknown" could not load`},
		{name: "factory error", action: "failing", wantTag: errors.TagPluginLoad, wantMsg: `Plugin "failing" could not load (boom)`},
		{name: "not invocable", action: "nil", wantTag: errors.TagPluginInvalid, wantMsg: `Plugin "nil" is not valid`},
		{name: "missing", action: "nope", wantTag: errors.TagPluginMissing, wantMsg: `Plugin "nope" is missing`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, _, _ := newTestContext(t, []string{tt.action}, defs, handlers)

			_, err := Dispatch(context.Background(), rc)

			require.Error(t, err)
			assert.True(t, errors.HasTag(err, tt.wantTag), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDispatch_Success(t *testing.T) {
	var seen *Context
	handlers := Handlers{"build": func(d Descriptor) (Action, error) {
		return ActionFunc(func(ctx context.Context, rc *Context) (*Result, error) {
			seen = rc
			time.Sleep(5 * time.Millisecond)
			return NewResult("built").WithDetail("goal", d.Setting("goal", "")), nil
		}), nil
	}}
	defs := map[string]interface{}{
		"build": map[string]interface{}{
			"name": "build", "description": "Build the project", "path": "build",
			"settings": map[string]interface{}{"goal": "package"},
		},
	}
	rc, log, _ := newTestContext(t, []string{"build", "--clean"}, defs, handlers)

	res, err := Dispatch(context.Background(), rc)

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Success())
	assert.Equal(t, []string{"built"}, res.Message)
	assert.Equal(t, "package", res.Details["goal"])
	assert.GreaterOrEqual(t, res.Duration, 5*time.Millisecond)
	assert.Same(t, rc, seen)
	assert.Contains(t, log.Lines("info"), `Execute action "build" @ "Build the project"`)
}

func TestDispatch_NonZeroResultIsNotAnError(t *testing.T) {
	handlers := Handlers{"build": func(d Descriptor) (Action, error) {
		return ActionFunc(func(ctx context.Context, rc *Context) (*Result, error) {
			return &Result{ExitCode: 2, Message: []string{"Finish with error (exit code 2)"}}, nil
		}), nil
	}}
	defs := map[string]interface{}{"build": map[string]interface{}{"name": "build", "path": "build"}}
	rc, _, _ := newTestContext(t, []string{"build"}, defs, handlers)

	res, err := Dispatch(context.Background(), rc)

	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.False(t, res.Success())
}

func TestDispatch_HandlerErrorCarriesDuration(t *testing.T) {
	handlers := Handlers{"deploy": func(d Descriptor) (Action, error) {
		return ActionFunc(func(ctx context.Context, rc *Context) (*Result, error) {
			time.Sleep(5 * time.Millisecond)
			return nil, stderrors.New("no artifact")
		}), nil
	}}
	defs := map[string]interface{}{"deploy": map[string]interface{}{"name": "deploy", "path": "deploy"}}
	rc, _, _ := newTestContext(t, []string{"deploy"}, defs, handlers)

	_, err := Dispatch(context.Background(), rc)

	require.Error(t, err)
	hfErr, ok := errors.As(err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, hfErr.Duration, 5*time.Millisecond)
	assert.Equal(t, errors.ErrExec, hfErr.Code)
}

func TestDispatch_NilResultBecomesEmptySuccess(t *testing.T) {
	handlers := Handlers{"noop": func(d Descriptor) (Action, error) {
		return ActionFunc(func(ctx context.Context, rc *Context) (*Result, error) {
			return nil, nil
		}), nil
	}}
	defs := map[string]interface{}{"noop": map[string]interface{}{"name": "noop", "path": "noop"}}
	rc, _, _ := newTestContext(t, []string{"noop"}, defs, handlers)

	res, err := Dispatch(context.Background(), rc)

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

func TestContext_WithParamsIsIndependent(t *testing.T) {
	rc, _, _ := newTestContext(t, []string{"deploy-all", "--verbose"}, nil, nil)
	rc.Steps = nil

	child := rc.WithParams(params.Parse([]string{"deploy", "--foo", "bar"}))
	child.Params.Options["foo"] = "changed"

	assert.Equal(t, "deploy-all", rc.Action())
	assert.Equal(t, "deploy", child.Action())
	assert.NotContains(t, rc.Params.Options, "foo")
	assert.Same(t, rc.Config, child.Config)
	assert.Same(t, rc.Registry, child.Registry)
}

func TestContext_RunLogsUnderStepName(t *testing.T) {
	rc, log, runner := newTestContext(t, []string{"deploy-all"}, nil, nil)
	rc.Log = log.Named("deploy-all")

	child := rc.WithParams(params.Parse([]string{"build"}))
	res, err := child.Run(context.Background(), "mvn", []string{"package"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)

	require.Equal(t, 1, runner.CallCount())
	require.NotNil(t, runner.Calls[0].Log)
	runner.Calls[0].Log.Info("[INFO] BUILD SUCCESS")

	last := log.Messages[len(log.Messages)-1]
	assert.Equal(t, "build", last.Name)
	assert.Equal(t, "[INFO] BUILD SUCCESS", last.Message)
}

func TestContext_Defaults(t *testing.T) {
	rc := &Context{}
	assert.Equal(t, params.DefaultAction, rc.Action())
	assert.NotNil(t, rc.Logger())
	assert.NotNil(t, rc.Output())
	_, ok := rc.Plugin()
	assert.False(t, ok)
}
