package asadmin

import (
	"github.com/heringsfish/hf/internal/plugin"
)

// Handler paths in the registration table.
const (
	StartHandler         = "asadmin/start"
	StopHandler          = "asadmin/stop"
	RestartHandler       = "asadmin/restart"
	CreateHandler        = "asadmin/create"
	RemoveHandler        = "asadmin/remove"
	ListHandler          = "asadmin/list"
	DeployHandler        = "asadmin/deploy"
	UndeployHandler      = "asadmin/undeploy"
	JDBCHandler          = "asadmin/jdbc"
	StartDatabaseHandler = "asadmin/start-database"
	StopDatabaseHandler  = "asadmin/stop-database"
)

func factory(c command) plugin.Factory {
	return func(plugin.Descriptor) (plugin.Action, error) {
		return c, nil
	}
}

// Handlers returns the registration-table entries of this package.
func Handlers() plugin.Handlers {
	return plugin.Handlers{
		StartHandler:         factory(start),
		StopHandler:          factory(stop),
		RestartHandler:       factory(restart),
		CreateHandler:        factory(create),
		RemoveHandler:        factory(remove),
		ListHandler:          factory(list),
		DeployHandler:        factory(deploy),
		UndeployHandler:      factory(undeploy),
		JDBCHandler:          factory(jdbc),
		StartDatabaseHandler: factory(startDatabase),
		StopDatabaseHandler:  factory(stopDatabase),
	}
}
