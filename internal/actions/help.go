package actions

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/plugin"
	"github.com/heringsfish/hf/internal/util"
)

const helpDivider = "-------------------------------------------------------------------------------"

// fallbackHelp is rendered for plugins without a help file.
const fallbackHelp = `{{ .Name | upper }} - {{ .Description }}
`

type help struct{}

// NewHelp is the factory of the help action.
func NewHelp(plugin.Descriptor) (plugin.Action, error) {
	return help{}, nil
}

// Execute lists every plugin, or shows the help text of the one named by
// the first positional argument.
func (help) Execute(_ context.Context, rc *plugin.Context) (*plugin.Result, error) {
	if rc.Registry == nil {
		return nil, errors.New(errors.ErrPlugin, "The plugin registry is not available", "")
	}
	target := helpTarget(parameters(rc).Param(0, ""))
	if target == "" {
		return listPlugins(rc)
	}

	p, ok := rc.Registry.Get(target)
	if !ok {
		return nil, errors.New(errors.ErrPlugin,
			fmt.Sprintf("Plugin %q is missing", target),
			"Run 'hf help' to list the available actions").
			WithTag(errors.TagHelpMissing)
	}

	text, err := renderHelp(rc, p)
	if err != nil {
		return nil, err
	}

	out := rc.Output()
	fmt.Fprintln(out, helpDivider)
	fmt.Fprint(out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, helpDivider)

	return plugin.NewResult(fmt.Sprintf("Plugin %q shows %q help", rc.Action(), target)), nil
}

// helpTarget normalises "Start Database" to "start-database".
func helpTarget(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

func listPlugins(rc *plugin.Context) (*plugin.Result, error) {
	t := table.NewWriter()
	t.SetOutputMirror(rc.Output())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Action", "Description", "Steps"})

	rc.Registry.ForEach(func(name string, p *plugin.Plugin) {
		var steps []string
		if list, ok := p.PipelineSteps(); ok {
			for _, s := range list {
				steps = append(steps, s.Action)
			}
		}
		t.AppendRow(table.Row{name, p.Description, strings.Join(steps, " > ")})
	})
	t.Render()

	n := rc.Registry.Size()
	return plugin.NewResult(fmt.Sprintf("%d %s available. Run 'hf help <action>' for details",
		n, util.Pluralize(n, "action", "actions"))), nil
}

// helpData is what a help template sees.
type helpData struct {
	Name        string
	Description string
	Path        string
	Settings    map[string]interface{}
	Steps       []plugin.Step
}

func renderHelp(rc *plugin.Context, p *plugin.Plugin) (string, error) {
	source, err := readHelp(rc, p.Help)
	if err != nil {
		return "", err
	}
	if source == "" {
		source = fallbackHelp
	}

	tmpl, err := template.New(p.Key()).Funcs(sprig.TxtFuncMap()).Parse(source)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Help text of %q is not a valid template", p.Key()),
			fmt.Sprintf("Check %s", p.Help)).
			WithTag(errors.TagParseFile)
	}

	steps, _ := p.PipelineSteps()
	data := helpData{
		Name:        p.Key(),
		Description: p.Title(),
		Path:        p.Path,
		Settings:    p.Settings,
		Steps:       steps,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't render the help text of %q", p.Key()), "").
			WithTag(errors.TagParseFile)
	}
	return buf.String(), nil
}

// readHelp looks for the help file in the app home, then the project home,
// then among the texts built into hf. Not found anywhere is an empty text.
func readHelp(rc *plugin.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	paths := rc.Config.Paths()
	for _, dir := range []string{paths.AppHome, paths.ProjectHome} {
		if dir == "" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.WrapWithCode(err, errors.ErrIO,
				fmt.Sprintf("Couldn't read the help text %s", name), "").
				WithTag(errors.TagReadFile)
		}
	}

	content, err := fs.ReadFile(helpTexts, filepath.ToSlash(name))
	if err != nil {
		rc.Logger().Debug("no help text %s", name)
		return "", nil
	}
	return string(content), nil
}
