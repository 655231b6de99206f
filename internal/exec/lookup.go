package exec

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// FindCommand resolves a tool name through PATH (the `which`/`where`
// equivalent). Names containing a path separator are returned cleaned and
// unchecked; the runner reports them if they can't be started.
func FindCommand(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) {
		return filepath.Clean(name), true
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
