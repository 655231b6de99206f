package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/heringsfish/hf/internal/actions"
	"github.com/heringsfish/hf/internal/config"
	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/exec"
	"github.com/heringsfish/hf/internal/logger"
	"github.com/heringsfish/hf/internal/params"
	"github.com/heringsfish/hf/internal/plugin"
	"github.com/heringsfish/hf/internal/ui"
)

// App runs one hf invocation. The zero value writes to the process streams
// and spawns real processes.
type App struct {
	Out io.Writer
	Err io.Writer

	// Env holds the HF_* settings. Defaults to the process environment.
	Env *viper.Viper

	// Runner spawns the external tools. Defaults to a LocalRunner.
	Runner exec.Runner

	// Handlers is the registration table. Defaults to actions.Handlers().
	Handlers plugin.Handlers
}

func (a *App) defaults() {
	if a.Out == nil {
		a.Out = os.Stdout
	}
	if a.Err == nil {
		a.Err = os.Stderr
	}
	if a.Env == nil {
		a.Env = newEnv()
	}
	if a.Handlers == nil {
		a.Handlers = actions.Handlers()
	}
}

// Run executes the action named by argv and returns the process exit code.
func (a *App) Run(ctx context.Context, argv []string) int {
	a.defaults()

	p := params.Parse(argv)
	settings := LoadSettings(a.Env)
	machine := p.IsParam("json")
	noColor := settings.NoColor || p.IsDisabled("color")
	if noColor {
		ui.DisableColors()
	}

	log := logger.NewConsoleLogger(logger.ConsoleOptions{
		Out:     a.Out,
		Err:     a.Err,
		Verbose: p.Verbose,
		Quiet:   p.Quiet || machine,
		NoColor: noColor,
	}).Named(p.Action)
	logger.SetDefault(log)

	rc, err := a.context(p, settings, log)
	if err != nil {
		return a.finish(p, machine, nil, err)
	}

	for _, warning := range rc.Registry.Validate() {
		log.Warn("%s", warning.Error())
	}
	if !p.Quiet && !machine {
		rc.Steps = ui.NewStepDisplay(a.Out)
	}

	res, err := plugin.Dispatch(ctx, rc)
	return a.finish(p, machine, res, err)
}

// loadConfig reads the configuration of the project and the plugin
// definitions layered over the built-in ones.
func loadConfig(settings Settings) (*config.Config, map[string]interface{}, error) {
	paths, err := config.DefaultPaths(config.Paths{
		ProjectHome: settings.ProjectHome,
		AppHome:     settings.AppHome,
	})
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(paths)
	if err != nil {
		return nil, nil, err
	}
	if settings.Timeout >= 0 {
		merged, err := config.Merge(cfg.Data(), map[string]interface{}{
			"command": map[string]interface{}{"timeout": settings.Timeout},
		})
		if err != nil {
			return nil, nil, err
		}
		cfg = config.New(merged, paths)
	}

	defs, err := config.PluginDefinitions(actions.BuiltinPlugins, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, defs, nil
}

// context builds the handler context of p.
func (a *App) context(p *params.Parameters, settings Settings, log logger.Logger) (*plugin.Context, error) {
	cfg, defs, err := loadConfig(settings)
	if err != nil {
		return nil, err
	}

	runner := a.Runner
	if runner == nil {
		runner = exec.NewLocalRunner(log)
	}

	return &plugin.Context{
		Config:   cfg,
		Params:   p,
		Registry: plugin.NewRegistry(defs, a.Handlers),
		Runner:   runner,
		Log:      log,
		Out:      a.Out,
	}, nil
}

// finish renders the outcome and maps it to an exit code.
func (a *App) finish(p *params.Parameters, machine bool, res *plugin.Result, err error) int {
	code := 0
	switch {
	case err != nil:
		code = errors.ExitCode(err)
	case res != nil && res.ExitCode > 0:
		code = res.ExitCode
	case res != nil && res.ExitCode < 0:
		code = 1
	}

	if machine {
		if err != nil {
			_ = WriteJSONFromError(a.Out, err)
		} else {
			_ = WriteJSONResult(a.Out, p.Action, res)
		}
		return code
	}

	if err != nil {
		ui.RenderError(a.Err, err, p.Verbose)
		return code
	}
	if res != nil && (res.ExitCode != 0 || !p.Quiet) {
		w := a.Out
		if res.ExitCode != 0 {
			w = a.Err
		}
		ui.RenderResult(w, p.Action, res)
	}
	return code
}
