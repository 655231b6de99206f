package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"dario.cat/mergo"
	"github.com/mitchellh/go-homedir"

	"github.com/heringsfish/hf/internal/errors"
)

// DefaultPaths fills the empty fields of p: the project home defaults to the
// working directory, the app home to the executable's directory and the user
// home to $HOME (or %USERPROFILE%).
func DefaultPaths(p Paths) (Paths, error) {
	if p.ProjectHome == "" {
		wd, err := os.Getwd()
		if err != nil {
			return p, errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't determine the working directory", "")
		}
		p.ProjectHome = wd
	}
	if p.AppHome == "" {
		if exe, err := os.Executable(); err == nil {
			p.AppHome = filepath.Dir(exe)
		} else {
			p.AppHome = p.ProjectHome
		}
	}
	if p.UserHome == "" {
		home, err := homedir.Dir()
		if err != nil {
			return p, errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't determine the user home directory",
				"Set HOME (or USERPROFILE on Windows)")
		}
		p.UserHome = home
	}
	return p, nil
}

// Load reads the project's server-config.json and the user-level override
// file and merges them. Project values win over user values; objects merge
// key by key, arrays are replaced wholesale. A missing project file yields an
// empty configuration so actions like init and help still work.
func Load(paths Paths) (*Config, error) {
	project, err := ReadJSONFile(filepath.Join(paths.ProjectHome, ProjectConfigFile))
	if err != nil {
		return nil, err
	}

	base := New(project, paths)
	userFile := UserConfigPath(paths.UserHome, base.ProjectName())
	user, err := ReadJSONFile(userFile)
	if err != nil {
		return nil, err
	}

	merged, err := Merge(user, project)
	if err != nil {
		return nil, err
	}
	return New(merged, paths), nil
}

var nonSlug = regexp.MustCompile(`\s+`)

// UserConfigPath returns the user-level override file for a project:
// <user home>/.heringsfish/<project name, lowercased, spaces as dashes>.json
func UserConfigPath(userHome, projectName string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(projectName)), "-")
	return filepath.Join(userHome, UserConfigDir, slug+".json")
}

// Merge deep-merges the layers left to right into a new map; later layers win.
// The inputs are not modified.
func Merge(layers ...map[string]interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		if err := mergo.Merge(&out, deepCopyMap(layer), mergo.WithOverride); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't merge configuration layers", "")
		}
	}
	return out, nil
}

// ReadJSONFile parses a JSON object file. A missing file is not an error and
// returns an empty map.
func ReadJSONFile(path string) (map[string]interface{}, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Couldn't read %s", path),
			"Check the file permissions").
			WithTag(errors.TagReadFile)
	}
	return ParseJSON(path, content)
}

// ParseJSON decodes content as a JSON object. name is used in error messages.
func ParseJSON(name string, content []byte) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	if len(strings.TrimSpace(string(content))) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid JSON in %s", name),
			"Fix the syntax error or validate the file with a JSON linter").
			WithTag(errors.TagParseFile)
	}
	return data, nil
}
