package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/heringsfish/hf/internal/config"
	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/plugin"
)

type configAction struct{}

// NewConfig is the factory of the config action.
func NewConfig(plugin.Descriptor) (plugin.Action, error) {
	return configAction{}, nil
}

// Execute prints the merged configuration: JSON by default, YAML with
// --yaml, one row per setting with -l/--list.
func (configAction) Execute(_ context.Context, rc *plugin.Context) (*plugin.Result, error) {
	p := parameters(rc)
	out := rc.Output()

	var err error
	switch {
	case p.IsParam("l", "list"):
		err = writeConfigTable(out, rc.Config)
	case p.IsParam("yaml"):
		err = writeConfigYAML(out, rc.Config.Data())
	default:
		err = writeConfigJSON(out, rc.Config.Data())
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrIO, "Couldn't print the configuration", "").
			WithTag(errors.TagWriteFile)
	}

	return plugin.NewResult(fmt.Sprintf("Configuration of %q", rc.Config.ProjectName())), nil
}

func writeConfigJSON(w io.Writer, data map[string]interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeConfigYAML(w io.Writer, data map[string]interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// writeConfigTable lists every leaf setting. Values with placeholders get
// their resolved form in a third column.
func writeConfigTable(w io.Writer, cfg *config.Config) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Value", "Resolved"})

	for _, key := range cfg.Keys() {
		raw := displayValue(cfg.Get(key, nil))
		resolved := ""
		if s, ok := cfg.Get(key, nil).(string); ok {
			if r := cfg.MustResolveString(s); r != s {
				resolved = r
			}
		}
		t.AppendRow(table.Row{key, raw, resolved})
	}
	t.Render()
	return nil
}

func displayValue(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
	return cast.ToString(v)
}
