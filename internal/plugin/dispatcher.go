package plugin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/util"
)

// Dispatch runs the plugin registered for the context's action.
//
// Lookup failures are terminal: a missing plugin fails before any of its
// settings are looked at, and nothing is retried. The wall-clock duration of
// the whole call is recorded on the result or the error.
func Dispatch(ctx context.Context, rc *Context) (*Result, error) {
	start := time.Now()
	action := rc.Action()
	log := rc.Logger()

	if rc.Registry != nil {
		log.Debug("Plugin Registry (%d)", rc.Registry.Size())
		rc.Registry.ForEach(func(name string, p *Plugin) {
			log.Debug(" > Plugin: %s -> %s", name, p.Title())
		})
	}

	p, ok := rc.Plugin()
	if !ok {
		return nil, errors.WithDuration(
			errors.New(errors.ErrPlugin,
				fmt.Sprintf("Plugin %q is missing in the plugin registry", action),
				missingSuggestion(rc.Registry, action)).
				WithTag(errors.TagPluginMissing),
			time.Since(start))
	}

	log.Debug("Load Plugin %q from %q", action, p.Path)

	res, err := p.Execute(ctx, rc)
	if err != nil {
		return nil, errors.WithDuration(err, time.Since(start))
	}
	res.Duration = time.Since(start)
	return res, nil
}

// missingSuggestion points at registered plugins with a similar name.
func missingSuggestion(r *Registry, action string) string {
	const list = "Run 'hf help' to list the available actions"
	if r == nil {
		return list
	}
	similar := util.SuggestSimilar(action, r.Names(), 3)
	if len(similar) == 0 {
		return list
	}
	return fmt.Sprintf("Did you mean %s? %s", strings.Join(similar, " or "), list)
}
