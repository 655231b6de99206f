package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/heringsfish/hf/internal/config"
	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/exec"
	"github.com/heringsfish/hf/internal/plugin"
)

// DefaultProjectName is used when the project directory has no usable name.
const DefaultProjectName = "hf-project"

// Seams for tests.
var (
	findCommand = exec.FindCommand

	isTerminal = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd()))
	}

	confirmOverwrite = func(path string) (bool, error) {
		var confirm bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Overwrite %s?", filepath.Base(path))).
					Description("The current settings will be lost").
					Value(&confirm),
			),
		)
		if err := form.Run(); err != nil {
			return false, err
		}
		return confirm, nil
	}
)

type initAction struct{}

// NewInit is the factory of the init action.
func NewInit(plugin.Descriptor) (plugin.Action, error) {
	return initAction{}, nil
}

// Execute writes server-config.json into the project home. An existing file
// is only replaced with -f/--force or after an interactive confirmation.
func (initAction) Execute(_ context.Context, rc *plugin.Context) (*plugin.Result, error) {
	log := rc.Logger()
	home := rc.Config.Paths().ProjectHome
	filename := filepath.Join(home, config.ProjectConfigFile)

	if _, err := os.Stat(filename); err == nil {
		if err := allowOverwrite(rc, filename); err != nil {
			return nil, err
		}
		log.Debug("Override the existing %s", config.ProjectConfigFile)
	} else {
		log.Debug("Create the %s", config.ProjectConfigFile)
	}

	name := projectName(home)
	content, err := serverConfig(name)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Couldn't write %s", filename),
			"Check the permissions of the project directory").
			WithTag(errors.TagWriteFile)
	}

	log.Info("The server config is written to %q", filename)
	log.Info("Please adjust the configuration to your needs:")
	for _, hint := range []string{
		"set the project name and version",
		"set server.home (the application server installation)",
		"set maven.home when mvn isn't on the PATH",
		"set command.timeout for the external commands (0 is infinity)",
		"add the java archives to domain.deploy",
		"add the JDBC pools to domain.jdbc",
	} {
		log.Info("- %s", hint)
	}

	return plugin.NewResult(fmt.Sprintf("Initialized project %q", name)).
		WithDetail("file", filename), nil
}

func allowOverwrite(rc *plugin.Context, filename string) error {
	if parameters(rc).IsParam("f", "force") {
		return nil
	}
	cancelled := errors.New(errors.ErrConfig,
		fmt.Sprintf("Cancel: %s already exists", config.ProjectConfigFile),
		`Use parameter "-f" or "--force" to override it`).
		WithTag(errors.TagInitCancelled)

	if !isTerminal() {
		return cancelled
	}
	ok, err := confirmOverwrite(filename)
	if err != nil || !ok {
		return cancelled
	}
	return nil
}

// projectName derives the project name from its directory.
func projectName(home string) string {
	name := filepath.Base(filepath.Clean(home))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DefaultProjectName
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

// serverConfig fills the embedded template with the project name and the
// tool locations found on the PATH.
func serverConfig(name string) ([]byte, error) {
	data, err := config.ParseJSON("server-config.json template", serverConfigTemplate)
	if err != nil {
		return nil, err
	}
	data["name"] = name
	section(data, "domain")["name"] = name

	if mvn, ok := findCommand("mvn"); ok {
		section(data, "maven")["home"] = toolHome(mvn)
	} else {
		// Leave command.maven unset so the PATH is searched at run time.
		delete(section(data, "command"), "maven")
		delete(section(data, "command"), "maven.win32")
	}
	if asadmin, ok := findCommand("asadmin"); ok {
		section(data, "server")["home"] = toolHome(asadmin)
	}

	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Couldn't encode server-config.json", "")
	}
	return append(content, '\n'), nil
}

// toolHome is the installation directory of a tool in <home>/bin.
func toolHome(path string) string {
	return filepath.Dir(filepath.Dir(path))
}

func section(data map[string]interface{}, key string) map[string]interface{} {
	if m, ok := data[key].(map[string]interface{}); ok {
		return m
	}
	m := map[string]interface{}{}
	data[key] = m
	return m
}
