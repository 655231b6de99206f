package plugin

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/heringsfish/hf/internal/errors"
)

// Plugin is an admitted registry entry with its handler already resolved.
type Plugin struct {
	Descriptor

	key       string
	action    Action
	loadCause error
	loadMsg   string
}

// Key returns the action name the plugin is registered under.
func (p *Plugin) Key() string {
	return p.key
}

// Title returns the description, falling back to the name.
func (p *Plugin) Title() string {
	if p.Description != "" {
		return p.Description
	}
	return p.Name
}

// Runnable reports whether the plugin has a usable handler.
func (p *Plugin) Runnable() bool {
	return p.Path != "" && p.loadMsg == "" && p.action != nil
}

// LoadError returns the handler resolution failure, or nil.
func (p *Plugin) LoadError() error {
	if p.Path == "" {
		return nil
	}
	if p.loadMsg != "" {
		if p.loadCause == nil {
			return errors.New(errors.ErrPlugin, p.loadMsg,
				"Check the \"path\" of the plugin in plugins.json").
				WithTag(errors.TagPluginLoad)
		}
		return errors.WrapWithCode(p.loadCause, errors.ErrPlugin, p.loadMsg,
			"Check the settings of the plugin in plugins.json").
			WithTag(errors.TagPluginLoad)
	}
	if p.action == nil {
		return errors.New(errors.ErrPlugin,
			fmt.Sprintf("Plugin %q is not valid", p.key), "").
			WithTag(errors.TagPluginInvalid)
	}
	return nil
}

// Execute runs the handler and records its duration on the result or the
// error.
func (p *Plugin) Execute(ctx context.Context, rc *Context) (*Result, error) {
	if p.Path == "" {
		return nil, errors.New(errors.ErrPlugin,
			fmt.Sprintf("Plugin %q requires a path", p.key),
			fmt.Sprintf("Run 'hf help %s' to read about it", p.key)).
			WithTag(errors.TagPluginNoHandler)
	}
	if err := p.LoadError(); err != nil {
		return nil, err
	}

	log := rc.Logger()
	log.Info("Execute action %q @ %q", p.Name, p.Title())

	start := time.Now()
	res, err := p.action.Execute(ctx, rc)
	elapsed := time.Since(start)
	if err != nil {
		return nil, errors.WithDuration(err, elapsed)
	}
	if res == nil {
		res = &Result{}
	}
	res.Duration = elapsed
	return res, nil
}

// Registry holds the plugins known to this invocation. It's built once and
// never changes afterwards.
type Registry struct {
	plugins map[string]*Plugin
}

// NewRegistry admits the entries of defs that have a name and a handler path
// or help file, and resolves each handler path against handlers. Entries
// that don't qualify are dropped silently. Unknown handler paths don't fail
// construction; the plugin reports the problem when it's executed or
// validated.
func NewRegistry(defs map[string]interface{}, handlers Handlers) *Registry {
	r := &Registry{plugins: make(map[string]*Plugin)}
	for key, raw := range defs {
		d, ok := ParseDescriptor(raw)
		if !ok {
			continue
		}
		p := &Plugin{Descriptor: d, key: key}
		if d.Path != "" {
			p.load(handlers)
		}
		r.plugins[key] = p
	}
	return r
}

func (p *Plugin) load(handlers Handlers) {
	factory, ok := handlers[p.Path]
	if !ok || factory == nil {
		p.loadMsg = fmt.Sprintf("Plugin %q could not load (unknown handler %q)", p.key, p.Path)
		return
	}
	action, err := factory(p.Descriptor)
	if err != nil {
		p.loadMsg = fmt.Sprintf("Plugin %q could not load (%s)", p.key, err.Error())
		p.loadCause = err
		return
	}
	p.action = action
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.plugins[name]
	return ok
}

// Get returns the plugin registered under name.
func (r *Registry) Get(name string) (*Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// Size returns the number of plugins.
func (r *Registry) Size() int {
	return len(r.plugins)
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForEach visits every plugin in name order.
func (r *Registry) ForEach(fn func(name string, p *Plugin)) {
	for _, name := range r.Names() {
		fn(name, r.plugins[name])
	}
}
