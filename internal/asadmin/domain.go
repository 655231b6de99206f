package asadmin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/output"
	"github.com/heringsfish/hf/internal/params"
	"github.com/heringsfish/hf/internal/plugin"
)

// command is the shape shared by every asadmin action.
type command func(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error)

// Execute loads the settings and runs the command.
func (c command) Execute(ctx context.Context, rc *plugin.Context) (*plugin.Result, error) {
	if rc.Params == nil {
		rc = rc.WithParams(params.Parse([]string{rc.Action()}))
	}
	s, err := LoadSettings(rc.Config, rc.Logger())
	if err != nil {
		return nil, err
	}
	return c(ctx, rc, s)
}

func run(ctx context.Context, rc *plugin.Context, s *Settings, args ...string) (*plugin.Result, error) {
	return rc.Run(ctx, s.Command, args, output.AsAdminClassifier{})
}

// StartArgs is the argv of start-domain.
func StartArgs(s *Settings) []string {
	return []string{"start-domain", "--domaindir", s.DomainHome, "--debug=true", s.DomainName}
}

// StopArgs is the argv of stop-domain.
func StopArgs(s *Settings, kill bool) []string {
	args := []string{"stop-domain", "--domaindir", s.DomainHome}
	if kill {
		args = append(args, "--kill=true")
	}
	return append(args, s.DomainName)
}

// CreateArgs is the argv of create-domain.
func CreateArgs(s *Settings) []string {
	return []string{
		"create-domain",
		"--portbase", strconv.Itoa(s.PortBase),
		"--domaindir", s.DomainHome,
		"--nopassword",
		s.DomainName,
	}
}

// RemoveArgs is the argv of delete-domain.
func RemoveArgs(s *Settings) []string {
	return []string{"delete-domain", "--domaindir", s.DomainHome, s.DomainName}
}

func start(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	rc.Logger().Info("Starts domain %q ...", s.DomainName)
	return run(ctx, rc, s, StartArgs(s)...)
}

func stop(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	kill := rc.Params.IsParam("k", "kill")
	rc.Logger().Info("Stops domain %q ...", s.DomainName)
	return run(ctx, rc, s, StopArgs(s, kill)...)
}

// restart stops and starts the domain. The start runs even when the stop
// reports a failure (the domain may not have been running).
func restart(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	stopped, err := stop(ctx, rc, s)
	if err != nil {
		return nil, err
	}
	started, err := start(ctx, rc, s)
	if err != nil {
		return nil, err
	}

	res := &plugin.Result{Duration: stopped.Duration + started.Duration}
	if stopped.ExitCode != 0 || started.ExitCode != 0 {
		res.ExitCode = max(stopped.ExitCode, started.ExitCode)
		res.Message = append(append(res.Message, stopped.Message...), started.Message...)
	}
	return res, nil
}

func create(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	log := rc.Logger()
	log.Info("Check the domain %q", s.DomainName)

	domainDir := filepath.Join(s.DomainHome, s.DomainName)
	if _, err := os.Stat(domainDir); err == nil {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Cancel to create domain %q", s.DomainName),
			fmt.Sprintf("%s already exists. Run 'hf remove' first to recreate it", domainDir)).
			WithTag(errors.TagDomainExists)
	}

	log.Info("Create domain %q ...", s.DomainName)
	return run(ctx, rc, s, CreateArgs(s)...)
}

func remove(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	rc.Logger().Info("Delete domain %q...", s.DomainName)
	return run(ctx, rc, s, RemoveArgs(s)...)
}

// list shows the domains with d/domain, otherwise the deployed applications.
func list(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	if rc.Params.IsParam("d", "domain") {
		return run(ctx, rc, s, "list-domains", "--domaindir", s.DomainHome)
	}
	return run(ctx, rc, s, "list-applications", "--port", s.Port())
}

// databaseArgs appends --dbport when database.port is configured.
func databaseArgs(rc *plugin.Context, subcommand string) []string {
	args := []string{subcommand}
	if rc.Config != nil {
		if port := rc.Config.GetInt("database.port", 0); port > 0 {
			args = append(args, "--dbport", strconv.Itoa(port))
		}
	}
	return args
}

func startDatabase(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	rc.Logger().Info("Starts the database of domain %q ...", s.DomainName)
	return run(ctx, rc, s, databaseArgs(rc, "start-database")...)
}

func stopDatabase(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	rc.Logger().Info("Stops the database of domain %q ...", s.DomainName)
	return run(ctx, rc, s, databaseArgs(rc, "stop-database")...)
}
