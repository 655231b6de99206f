package config

import (
	"path/filepath"
)

// PluginDefinitions merges the plugin registry layers: the built-in
// definitions, then <app home>/plugins.json, then the `plugins` object of
// the project configuration. Later layers win key for key.
func PluginDefinitions(builtin []byte, cfg *Config) (map[string]interface{}, error) {
	base, err := ParseJSON("built-in plugins.json", builtin)
	if err != nil {
		return nil, err
	}

	var app map[string]interface{}
	if home := cfg.Paths().AppHome; home != "" {
		app, err = ReadJSONFile(filepath.Join(home, PluginsFile))
		if err != nil {
			return nil, err
		}
	}

	return Merge(base, app, cfg.GetMap("plugins"))
}
