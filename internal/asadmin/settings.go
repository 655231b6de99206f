// Package asadmin implements the application server actions. Every action
// shells out to the Glassfish/Payara asadmin tool.
package asadmin

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/heringsfish/hf/internal/config"
	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/exec"
	"github.com/heringsfish/hf/internal/logger"
)

const (
	// DefaultPortBase is used when domain.ports.base isn't set.
	DefaultPortBase = 8000

	// adminPortOffset is where asadmin puts the admin listener relative to
	// the port base.
	adminPortOffset = 48
)

// findCommand resolves tools on PATH. Tests replace it.
var findCommand = exec.FindCommand

// Settings are the resolved asadmin settings of the project.
type Settings struct {
	Command    string
	DomainHome string
	DomainName string
	PortBase   int
	AdminPort  int
}

// Port renders the admin port for the --port option.
func (s *Settings) Port() string {
	return strconv.Itoa(s.AdminPort)
}

// LoadSettings reads command.asadmin (platform aware, falling back to
// asadmin on PATH), domain.home and domain.name with placeholders resolved,
// plus the domain ports. Every missing setting is logged before the CONFIG
// error is returned, so nothing is spawned with half a configuration.
func LoadSettings(cfg *config.Config, log logger.Logger) (*Settings, error) {
	var missing []string

	command, err := resolve(cfg, cfg.GetPlatform("command.asadmin", nil))
	if err != nil {
		return nil, err
	}
	if command == "" {
		if path, ok := findCommand("asadmin"); ok {
			command = path
		}
	}
	if command == "" {
		missing = append(missing, `The setting "command.asadmin" is required!`)
	}

	domainHome, err := resolve(cfg, cfg.Get("domain.home", nil))
	if err != nil {
		return nil, err
	}
	if domainHome == "" {
		missing = append(missing, `The setting "domain.home" is required!`)
	}

	domainName, err := resolve(cfg, cfg.Get("domain.name", nil))
	if err != nil {
		return nil, err
	}
	if domainName == "" {
		missing = append(missing, `The setting "domain.name" is required!`)
	}

	if len(missing) > 0 {
		for _, m := range missing {
			log.Error("%s", m)
		}
		return nil, errors.New(errors.ErrConfig, "Missing AsAdmin settings",
			"Set command.asadmin (or put asadmin on PATH), domain.home and domain.name in server-config.json").
			WithTag(errors.TagAsAdminSettings)
	}

	base := cfg.GetInt("domain.ports.base", DefaultPortBase)
	admin := cfg.GetInt("domain.ports.admin", -1)
	if admin <= 0 {
		admin = base + adminPortOffset
	}

	s := &Settings{
		Command:    filepath.Clean(command),
		DomainHome: filepath.Clean(domainHome),
		DomainName: domainName,
		PortBase:   base,
		AdminPort:  admin,
	}
	log.Debug("asadmin: %s (domain %q in %s, admin port %d)", s.Command, s.DomainName, s.DomainHome, s.AdminPort)
	return s, nil
}

func resolve(cfg *config.Config, v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	s, err := cfg.ResolveString(cast.ToString(v))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

var nonLetters = regexp.MustCompile(`[^a-zA-Z]`)

// AdjustPropertyName turns an application name into the key used under
// domain.deploy: every non-letter becomes a dash, the first double dash is
// collapsed, and the result is lowercased.
func AdjustPropertyName(name string) string {
	s := nonLetters.ReplaceAllString(name, "-")
	s = strings.Replace(s, "--", "-", 1)
	return strings.ToLower(s)
}
