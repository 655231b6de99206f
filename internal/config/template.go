package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/heringsfish/hf/internal/errors"
)

// MaxTemplateDepth bounds nested token resolution. A settings entry that
// refers to itself, directly or through others, fails instead of looping.
const MaxTemplateDepth = 16

var tokenPattern = regexp.MustCompile(`\{([a-zA-Z0-9.]+)\}`)

// Resolve expands `{token}` placeholders when value is a string.
// Any other value is returned unchanged.
func (c *Config) Resolve(value interface{}) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	return c.ResolveString(s)
}

// ResolveString expands every `{token}` placeholder in s.
//
// Known tokens:
//   - user.home, project.home, app.home
//   - server.home, maven.home, ant.home (platform aware, also read from settings.*)
//   - domain.name (default "domain1"), domain.home (default project home)
//   - version / project.version (default "0.0.0")
//   - name / project.name (default: project directory name)
//
// Known tokens match regardless of case. Anything else is looked up as
// settings.<token> with its case kept; unknown tokens resolve to their own
// text without braces.
func (c *Config) ResolveString(s string) (string, error) {
	return c.resolve(s, 0)
}

// MustResolveString is ResolveString for values where a failure should
// degrade to the raw text (log lines, help output).
func (c *Config) MustResolveString(s string) string {
	out, err := c.ResolveString(s)
	if err != nil {
		return s
	}
	return out
}

func (c *Config) resolve(s string, depth int) (string, error) {
	if depth > MaxTemplateDepth {
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Template nesting too deep while resolving %q", s),
			"Check the settings for placeholders that refer to each other").
			WithTag(errors.TagTemplateRecursion)
	}

	var firstErr error
	out := tokenPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		token := match[1 : len(match)-1]
		v, err := c.token(token, depth)
		if err != nil {
			firstErr = err
			return match
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (c *Config) token(token string, depth int) (string, error) {
	switch key := strings.ToLower(token); key {
	case "user.home":
		return c.paths.UserHome, nil
	case "project.home":
		return c.paths.ProjectHome, nil
	case "app.home":
		return c.paths.AppHome, nil
	case "server.home":
		return c.nested(c.platformOrSetting("server.home", ""), depth)
	case "maven.home", "ant.home":
		return c.nested(c.platformOrSetting(key, "-"), depth)
	case "domain.name":
		return cast.ToString(c.GetOrSetting("domain.name", "domain1")), nil
	case "domain.home":
		return c.nested(c.GetString("domain.home", c.paths.ProjectHome), depth)
	case "version", "project.version":
		return c.GetString("version", "0.0.0"), nil
	case "name", "project.name":
		return c.GetString("name", c.ProjectName()), nil
	}

	v, ok := lookup(c.data, "settings."+token)
	if !ok || v == nil {
		return token, nil
	}
	return c.nested(cast.ToString(v), depth)
}

func (c *Config) nested(s string, depth int) (string, error) {
	return c.resolve(s, depth+1)
}

func (c *Config) platformOrSetting(key, def string) string {
	if v := c.GetPlatform(key, nil); v != nil {
		return cast.ToString(v)
	}
	if v := c.GetPlatform("settings."+key, nil); v != nil {
		return cast.ToString(v)
	}
	return def
}

// ProjectName returns the configured name, or the project directory name.
func (c *Config) ProjectName() string {
	if name := c.GetString("name", ""); name != "" {
		return name
	}
	return filepath.Base(c.paths.ProjectHome)
}

// Environment returns the env.* settings with placeholders resolved.
func (c *Config) Environment() (map[string]string, error) {
	env := make(map[string]string)
	for k, v := range c.GetMap("env") {
		if v == nil {
			continue
		}
		resolved, err := c.ResolveString(cast.ToString(v))
		if err != nil {
			return nil, err
		}
		env[k] = resolved
	}
	return env, nil
}
