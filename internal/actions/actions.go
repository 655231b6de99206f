// Package actions holds the actions that don't drive an external tool (help,
// init and config) and the registration table that maps every handler path
// of plugins.json to its factory.
package actions

import (
	"embed"

	"github.com/heringsfish/hf/internal/asadmin"
	"github.com/heringsfish/hf/internal/maven"
	"github.com/heringsfish/hf/internal/params"
	"github.com/heringsfish/hf/internal/pipeline"
	"github.com/heringsfish/hf/internal/plugin"
)

// Handler paths of the built-in actions.
const (
	HelpHandler   = "actions/help"
	InitHandler   = "actions/init"
	ConfigHandler = "actions/config"
)

// BuiltinPlugins is the plugin registry shipped with hf. The app home
// plugins.json and the project's "plugins" object are merged over it.
//
//go:embed plugins.json
var BuiltinPlugins []byte

//go:embed help/*.txt
var helpTexts embed.FS

//go:embed templates/server-config.json
var serverConfigTemplate []byte

// Handlers returns the complete registration table.
func Handlers() plugin.Handlers {
	handlers := plugin.Handlers{
		HelpHandler:          NewHelp,
		InitHandler:          NewInit,
		ConfigHandler:        NewConfig,
		pipeline.HandlerPath: pipeline.New,
	}
	for _, table := range []plugin.Handlers{asadmin.Handlers(), maven.Handlers()} {
		for path, factory := range table {
			handlers[path] = factory
		}
	}
	return handlers
}

func parameters(rc *plugin.Context) *params.Parameters {
	if rc.Params == nil {
		return params.Parse([]string{rc.Action()})
	}
	return rc.Params
}
