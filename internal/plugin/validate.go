package plugin

import (
	stderrors "errors"
	"fmt"

	"github.com/dominikbraun/graph"
)

// Validate checks the pipeline references between plugins and returns one
// error per problem: handlers that failed to load, steps without an action,
// steps naming an unregistered plugin, and references that close a cycle.
// None of them stop the registry from being used.
func (r *Registry) Validate() []error {
	var problems []error

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	names := r.Names()
	for _, name := range names {
		_ = g.AddVertex(name)
	}

	for _, name := range names {
		p := r.plugins[name]
		if err := p.LoadError(); err != nil {
			problems = append(problems, err)
		}

		steps, ok := p.PipelineSteps()
		if !ok {
			continue
		}
		for i, step := range steps {
			switch {
			case step.Action == "":
				problems = append(problems,
					fmt.Errorf("pipeline %q: step %d has no action", name, i+1))
			case !r.Has(step.Action):
				problems = append(problems,
					fmt.Errorf("pipeline %q: step %d refers to missing plugin %q", name, i+1, step.Action))
			default:
				err := g.AddEdge(name, step.Action)
				if stderrors.Is(err, graph.ErrEdgeCreatesCycle) {
					problems = append(problems,
						fmt.Errorf("pipeline %q: step %d (%q) closes a cycle", name, i+1, step.Action))
				}
			}
		}
	}

	return problems
}
