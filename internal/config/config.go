// Package config loads server-config.json, merges the user-level override
// file into it and resolves `{token}` placeholders in setting values.
package config

import (
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const (
	// ProjectConfigFile is the project-level settings file.
	ProjectConfigFile = "server-config.json"

	// PluginsFile is the optional app-level plugin registry file.
	PluginsFile = "plugins.json"

	// UserConfigDir holds per-project user overrides, under the user home.
	UserConfigDir = ".heringsfish"

	// DefaultTimeout applies when command.timeout isn't set.
	DefaultTimeout = 20 * time.Minute
)

// Paths are the directories the resolver needs to know about.
type Paths struct {
	// AppHome is where hf is installed (plugins.json, help texts).
	AppHome string
	// ProjectHome is the directory holding server-config.json.
	ProjectHome string
	// UserHome is the current user's home directory.
	UserHome string
}

// Config is the merged settings tree of one invocation. It's read-only
// after Load; every accessor returns copies or scalars.
type Config struct {
	data  map[string]interface{}
	paths Paths
	goos  string
}

// New wraps an already-merged settings tree.
func New(data map[string]interface{}, paths Paths) *Config {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &Config{data: data, paths: paths, goos: runtime.GOOS}
}

// WithGOOS returns a copy of c that resolves platform keys as if running on goos.
func (c *Config) WithGOOS(goos string) *Config {
	return &Config{data: c.data, paths: c.paths, goos: goos}
}

// GOOS returns the operating system platform keys are resolved for.
func (c *Config) GOOS() string {
	return c.goos
}

// Paths returns the directories of this invocation.
func (c *Config) Paths() Paths {
	return c.paths
}

// PlatformSuffix returns ".win32" on Windows and ".unix" elsewhere.
func (c *Config) PlatformSuffix() string {
	if c.goos == "windows" {
		return ".win32"
	}
	return ".unix"
}

// Has reports whether key is present.
func (c *Config) Has(key string) bool {
	_, ok := lookup(c.data, key)
	return ok
}

// Get returns the value at the dotted key, or def when absent.
func (c *Config) Get(key string, def interface{}) interface{} {
	if v, ok := lookup(c.data, key); ok {
		return v
	}
	return def
}

// GetPlatform looks up key with the platform suffix first and falls back
// to the bare key.
func (c *Config) GetPlatform(key string, def interface{}) interface{} {
	if v, ok := lookup(c.data, key+c.PlatformSuffix()); ok {
		return v
	}
	return c.Get(key, def)
}

// GetOrSetting looks up key, then settings.<key>.
func (c *Config) GetOrSetting(key string, def interface{}) interface{} {
	if v, ok := lookup(c.data, key); ok {
		return v
	}
	return c.Get("settings."+key, def)
}

// GetString returns the value at key as a string.
func (c *Config) GetString(key, def string) string {
	v, ok := lookup(c.data, key)
	if !ok || v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// GetInt returns the value at key as an int.
func (c *Config) GetInt(key string, def int) int {
	v, ok := lookup(c.data, key)
	if !ok || v == nil {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// GetBool returns the value at key as a bool.
func (c *Config) GetBool(key string, def bool) bool {
	v, ok := lookup(c.data, key)
	if !ok || v == nil {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// GetMap returns a copy of the object at key, or nil if it isn't an object.
func (c *Config) GetMap(key string) map[string]interface{} {
	v, ok := lookup(c.data, key)
	if !ok {
		return nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil
	}
	return deepCopyMap(m)
}

// Timeout returns command.timeout (milliseconds) as a duration. Zero disables it.
func (c *Config) Timeout() time.Duration {
	ms := c.GetInt("command.timeout", int(DefaultTimeout/time.Millisecond))
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// Data returns a deep copy of the whole settings tree.
func (c *Config) Data() map[string]interface{} {
	return deepCopyMap(c.data)
}

// Keys returns the sorted dotted paths of all leaf values.
func (c *Config) Keys() []string {
	var keys []string
	collectKeys(c.data, "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(m map[string]interface{}, prefix string, keys *[]string) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok && len(sub) > 0 {
			collectKeys(sub, path, keys)
			continue
		}
		*keys = append(*keys, path)
	}
}

// lookup resolves a dotted key. At each level the longest matching literal
// key wins, so both {"command": {"asadmin.unix": ...}} and nested objects work.
func lookup(m map[string]interface{}, key string) (interface{}, bool) {
	if key == "" {
		return nil, false
	}
	parts := strings.Split(key, ".")
	return lookupParts(m, parts)
}

func lookupParts(m map[string]interface{}, parts []string) (interface{}, bool) {
	for i := len(parts); i > 0; i-- {
		v, ok := m[strings.Join(parts[:i], ".")]
		if !ok {
			continue
		}
		if i == len(parts) {
			return v, true
		}
		if sub, ok := v.(map[string]interface{}); ok {
			if found, ok := lookupParts(sub, parts[i:]); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
