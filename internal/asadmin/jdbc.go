package asadmin

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/plugin"
)

// JDBC subcommands, given as the first positional argument.
const (
	JDBCCreate = "create"
	JDBCDelete = "delete"
	JDBCPing   = "ping"
	JDBCList   = "list"
)

// PoolName is the connection pool id of a JDBC resource.
func PoolName(name string) string {
	return name + "Pool"
}

// ResourceName is the JNDI name of a JDBC resource.
func ResourceName(name string) string {
	return "jdbc/" + name
}

// jdbcSettings returns domain.jdbc.<name>.
func jdbcSettings(rc *plugin.Context, name string) (map[string]interface{}, error) {
	if name == "" {
		return nil, errors.New(errors.ErrConfig, "Missing the JDBC name",
			"Usage: hf jdbc create|delete|ping <name>")
	}
	settings := rc.Config.GetMap("domain.jdbc." + name)
	if settings == nil {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Missing JDBC settings for %q", name),
			fmt.Sprintf("Add domain.jdbc.%s to server-config.json", name))
	}
	return settings, nil
}

// PoolArgs is the argv of create-jdbc-connection-pool. Settings become
// options in key order; "properties" is folded into one --property value and
// the description gets a " (Pool)" suffix.
func PoolArgs(s *Settings, name string, settings map[string]interface{}) []string {
	args := []string{"--port", s.Port(), "create-jdbc-connection-pool"}
	for _, key := range sortedKeys(settings) {
		value := settings[key]
		switch strings.ToLower(key) {
		case "properties":
			if props := jdbcProperties(value); props != "" {
				args = append(args, "--property", props)
			}
		case "description":
			args = append(args, "--description", fmt.Sprintf("%s (Pool)", cast.ToString(value)))
		default:
			args = append(args, "--"+key, cast.ToString(value))
		}
	}
	return append(args, PoolName(name))
}

// ResourceArgs is the argv of create-jdbc-resource.
func ResourceArgs(s *Settings, name string, settings map[string]interface{}) []string {
	args := []string{"--port", s.Port(), "create-jdbc-resource", "--connectionpoolid", PoolName(name)}
	if desc := cast.ToString(settings["description"]); desc != "" {
		args = append(args, "--description", fmt.Sprintf("%s (JDBC)", desc))
	}
	return append(args, ResourceName(name))
}

var propertyEscaper = strings.NewReplacer(";", `\;`, ":", `\:`)

// jdbcProperties renders a=b:c=d with ; and : in values escaped.
func jdbcProperties(v interface{}) string {
	props, err := cast.ToStringMapE(v)
	if err != nil || len(props) == 0 {
		return ""
	}
	parts := make([]string, 0, len(props))
	for _, k := range sortedKeys(props) {
		parts = append(parts, k+"="+propertyEscaper.Replace(cast.ToString(props[k])))
	}
	return strings.Join(parts, ":")
}

// jdbc dispatches on the first positional argument.
func jdbc(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	sub := rc.Params.Param(0, "")
	name := rc.Params.Param(1, "")

	switch sub {
	case JDBCCreate:
		return jdbcCreate(ctx, rc, s, name)
	case JDBCDelete:
		return jdbcDelete(ctx, rc, s, name)
	case JDBCPing:
		return jdbcPing(ctx, rc, s, name)
	case JDBCList:
		return jdbcList(ctx, rc, s)
	}
	return nil, errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown JDBC command %q", sub),
		"Usage: hf jdbc create|delete|ping <name>, or hf jdbc list")
}

// sequence runs the steps in order and stops at the first non-zero exit.
// Durations add up.
func sequence(ctx context.Context, rc *plugin.Context, s *Settings, steps ...[]string) (*plugin.Result, error) {
	total := &plugin.Result{}
	for _, args := range steps {
		res, err := run(ctx, rc, s, args...)
		if err != nil {
			return nil, err
		}
		total.Duration += res.Duration
		if res.ExitCode != 0 {
			total.ExitCode = res.ExitCode
			total.Message = res.Message
			return total, nil
		}
	}
	return total, nil
}

func jdbcCreate(ctx context.Context, rc *plugin.Context, s *Settings, name string) (*plugin.Result, error) {
	settings, err := jdbcSettings(rc, name)
	if err != nil {
		return nil, err
	}
	pool, resource := PoolName(name), ResourceName(name)
	log := rc.Logger()

	poolArgs := PoolArgs(s, name, settings)
	log.Info("Create JDBC Connection Pool %q for %q", pool, s.DomainName)
	log.Debug("JDBC Connection Pool Parameters: %s", strings.Join(poolArgs, " "))

	res, err := sequence(ctx, rc, s, poolArgs)
	if err != nil || res.ExitCode != 0 {
		return res, err
	}

	log.Info("Create JDBC Resource %q for %q", resource, s.DomainName)
	more, err := sequence(ctx, rc, s, ResourceArgs(s, name, settings))
	if err != nil {
		return nil, err
	}
	more.Duration += res.Duration
	if more.ExitCode == 0 {
		more.Message = []string{fmt.Sprintf("create JDBC connection pool %q and JDBC resource %q", pool, resource)}
	}
	return more, nil
}

func jdbcDelete(ctx context.Context, rc *plugin.Context, s *Settings, name string) (*plugin.Result, error) {
	if _, err := jdbcSettings(rc, name); err != nil {
		return nil, err
	}
	pool, resource := PoolName(name), ResourceName(name)
	rc.Logger().Info("Delete JDBC Resource %q and Connection Pool %q from %q", resource, pool, s.DomainName)

	res, err := sequence(ctx, rc, s,
		[]string{"--port", s.Port(), "delete-jdbc-resource", resource},
		[]string{"--port", s.Port(), "delete-jdbc-connection-pool", "--cascade=true", pool},
	)
	if err != nil {
		return nil, err
	}
	if res.ExitCode == 0 {
		res.Message = []string{fmt.Sprintf("Delete JDBC Connection Pool %q and JDBC Resource %q", pool, resource)}
	}
	return res, nil
}

func jdbcPing(ctx context.Context, rc *plugin.Context, s *Settings, name string) (*plugin.Result, error) {
	if _, err := jdbcSettings(rc, name); err != nil {
		return nil, err
	}
	pool := PoolName(name)
	rc.Logger().Info("Ping JDBC Connection Pool %q from %q", pool, s.DomainName)
	return run(ctx, rc, s, "--port", s.Port(), "ping-connection-pool", pool)
}

func jdbcList(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	rc.Logger().Info("List all JDBC Connection Pools and Resources of %q", s.DomainName)
	return sequence(ctx, rc, s,
		[]string{"--port", s.Port(), "list-jdbc-connection-pools"},
		[]string{"--port", s.Port(), "list-jdbc-resources"},
	)
}
