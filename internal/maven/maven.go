// Package maven implements the build tool actions: build, test and clean.
package maven

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"

	"github.com/heringsfish/hf/internal/config"
	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/exec"
	"github.com/heringsfish/hf/internal/logger"
	"github.com/heringsfish/hf/internal/output"
	"github.com/heringsfish/hf/internal/params"
	"github.com/heringsfish/hf/internal/plugin"
)

// Handler paths in the registration table.
const (
	BuildHandler = "maven/build"
	TestHandler  = "maven/test"
	CleanHandler = "maven/clean"
)

// DefaultProject is used when maven.project isn't set.
const DefaultProject = "pom.xml"

// findCommand resolves tools on PATH. Tests replace it.
var findCommand = exec.FindCommand

// Settings are the resolved maven settings of the project.
type Settings struct {
	Command string
	Project string
	// SettingsFile is the optional settings.xml (-s).
	SettingsFile string
}

// LoadSettings reads command.maven (platform aware, falling back to mvn on
// PATH), maven.project and maven.setting, with placeholders resolved. Each
// missing setting is logged before the CONFIG error is returned.
func LoadSettings(cfg *config.Config, log logger.Logger) (*Settings, error) {
	var missing []string

	command, err := resolved(cfg, cfg.GetPlatform("command.maven", nil))
	if err != nil {
		return nil, err
	}
	if command == "" {
		if path, ok := findCommand("mvn"); ok {
			command = path
		}
	}
	if command == "" {
		missing = append(missing, `Setting "command.maven" is required!`)
	}

	project, err := resolved(cfg, cfg.Get("maven.project", DefaultProject))
	if err != nil {
		return nil, err
	}
	if project == "" {
		missing = append(missing, `Setting "maven.project" is required`)
	}

	settingsFile, err := resolved(cfg, cfg.Get("maven.setting", nil))
	if err != nil {
		return nil, err
	}

	if len(missing) > 0 {
		for _, m := range missing {
			log.Error("%s", m)
		}
		return nil, errors.New(errors.ErrConfig, "Missing Maven settings",
			"Set command.maven (or put mvn on PATH) and maven.project in server-config.json").
			WithTag(errors.TagMavenSettings)
	}

	s := &Settings{
		Command: filepath.Clean(command),
		Project: filepath.Clean(project),
	}
	if settingsFile != "" {
		s.SettingsFile = filepath.Clean(settingsFile)
	}
	log.Debug("maven settings: command=%s project=%s setting=%s", s.Command, s.Project, s.SettingsFile)
	return s, nil
}

func resolved(cfg *config.Config, v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	s, err := cfg.ResolveString(cast.ToString(v))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Args assembles a maven argument vector.
type Args struct {
	args []string
}

// NewArgs starts an empty argument list.
func NewArgs() *Args {
	return &Args{}
}

// Project adds -f <pom>.
func (a *Args) Project(project string) *Args {
	if project != "" {
		a.args = append(a.args, "-f", project)
	}
	return a
}

// Setting adds -s <settings.xml> when set.
func (a *Args) Setting(setting string) *Args {
	if setting != "" {
		a.args = append(a.args, "-s", setting)
	}
	return a
}

// Profiles adds -P <profiles> when set.
func (a *Args) Profiles(profiles string) *Args {
	if profiles != "" {
		a.args = append(a.args, "-P", profiles)
	}
	return a
}

// Add appends one argument.
func (a *Args) Add(arg string) *Args {
	if arg != "" {
		a.args = append(a.args, arg)
	}
	return a
}

// AddIf appends arg when cond holds.
func (a *Args) AddIf(cond bool, arg string) *Args {
	if cond {
		return a.Add(arg)
	}
	return a
}

// Build returns a copy of the argument list.
func (a *Args) Build() []string {
	out := make([]string, len(a.args))
	copy(out, a.args)
	return out
}

// BuildArgs is the argv of `mvn package`.
func BuildArgs(s *Settings, p *params.Parameters) []string {
	return NewArgs().
		Project(s.Project).
		Setting(s.SettingsFile).
		AddIf(p.IsParam("c", "clean"), "clean").
		Add("package").
		AddIf(p.IsParam("skip", "notest"), "-DskipTests=true").
		Profiles(p.ParamByNames("", "p", "profiles")).
		Build()
}

// UnitTestArgs is the argv of `mvn test`.
func UnitTestArgs(s *Settings, p *params.Parameters) []string {
	return NewArgs().
		Project(s.Project).
		Setting(s.SettingsFile).
		AddIf(p.IsParam("c", "clean"), "clean").
		Add("test").
		Profiles(p.ParamByNames("", "p", "profiles")).
		Build()
}

// CleanArgs is the argv of `mvn clean`.
func CleanArgs(s *Settings, _ *params.Parameters) []string {
	return NewArgs().
		Project(s.Project).
		Setting(s.SettingsFile).
		Add("clean").
		Build()
}

type goal struct {
	verb string
	args func(*Settings, *params.Parameters) []string
}

func (g goal) Execute(ctx context.Context, rc *plugin.Context) (*plugin.Result, error) {
	log := rc.Logger()
	s, err := LoadSettings(rc.Config, log)
	if err != nil {
		return nil, err
	}
	p := rc.Params
	if p == nil {
		p = params.Parse(nil)
	}
	args := g.args(s, p)
	log.Debug("%s: %s %s", g.verb, filepath.Base(s.Command), strings.Join(args, " "))
	return rc.Run(ctx, s.Command, args, output.MavenClassifier{})
}

// Build runs `mvn package` with the current parameters. The deploy action
// calls it directly before deploying.
func Build(ctx context.Context, rc *plugin.Context) (*plugin.Result, error) {
	return goal{verb: "Building", args: BuildArgs}.Execute(ctx, rc)
}

// NewBuild is the factory of the build action.
func NewBuild(plugin.Descriptor) (plugin.Action, error) {
	return goal{verb: "Building", args: BuildArgs}, nil
}

// NewTest is the factory of the test action.
func NewTest(plugin.Descriptor) (plugin.Action, error) {
	return goal{verb: "Testing", args: UnitTestArgs}, nil
}

// NewClean is the factory of the clean action.
func NewClean(plugin.Descriptor) (plugin.Action, error) {
	return goal{verb: "Cleaning", args: CleanArgs}, nil
}

// Handlers returns the registration-table entries of this package.
func Handlers() plugin.Handlers {
	return plugin.Handlers{
		BuildHandler: NewBuild,
		TestHandler:  NewTest,
		CleanHandler: NewClean,
	}
}
