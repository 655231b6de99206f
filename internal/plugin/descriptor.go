// Package plugin holds the action registry and the dispatcher that turns a
// CLI action name into a running handler.
package plugin

import (
	"github.com/spf13/cast"

	"github.com/heringsfish/hf/internal/config"
)

// Descriptor is one entry of the plugin registry (plugins.json).
type Descriptor struct {
	Name        string
	Description string
	// Path names the handler in the registration table.
	Path string
	// Help is the help text file, relative to the app or project home.
	Help     string
	Settings map[string]interface{}
}

// Step is one link of a pipeline.
type Step struct {
	Action      string
	Description string
	Params      []string
}

// ParseDescriptor reads a registry entry. ok is false when the entry must be
// skipped: no name, or neither a handler path nor a help file.
func ParseDescriptor(raw interface{}) (Descriptor, bool) {
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return Descriptor{}, false
	}
	d := Descriptor{
		Name:        stringField(m, "name"),
		Description: stringField(m, "description"),
		Path:        stringField(m, "path"),
		Help:        stringField(m, "help"),
	}
	if settings, err := cast.ToStringMapE(m["settings"]); err == nil {
		d.Settings = settings
	}
	if d.Name == "" || (d.Path == "" && d.Help == "") {
		return Descriptor{}, false
	}
	return d, true
}

func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// Setting looks up a dotted path inside the plugin's settings.
func (d Descriptor) Setting(path string, def interface{}) interface{} {
	return config.New(d.Settings, config.Paths{}).Get(path, def)
}

// PipelineSteps returns the steps declared under settings.pipeline. ok is
// false unless the setting is a non-empty list. Entries that aren't objects
// come back as steps without an action.
func (d Descriptor) PipelineSteps() ([]Step, bool) {
	raw, isList := d.Setting("pipeline", nil).([]interface{})
	if !isList || len(raw) == 0 {
		return nil, false
	}

	steps := make([]Step, 0, len(raw))
	for _, item := range raw {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			steps = append(steps, Step{})
			continue
		}
		step := Step{
			Action:      stringField(m, "action"),
			Description: stringField(m, "description"),
		}
		if raw, ok := m["params"]; ok && raw != nil {
			if params, err := cast.ToStringSliceE(raw); err == nil && len(params) > 0 {
				step.Params = params
			}
		}
		steps = append(steps, step)
	}
	return steps, true
}
