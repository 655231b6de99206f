package plugin

import (
	"context"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/exec"
	"github.com/heringsfish/hf/internal/output"
)

// Run starts an external tool for the current action. The command gets the
// configured env.* additions, the project home as working directory and the
// configured timeout. Its output is logged under the current action's name.
func (c *Context) Run(ctx context.Context, name string, args []string, classifier output.Classifier) (*Result, error) {
	if c.Runner == nil {
		return nil, errors.New(errors.ErrExec, "No process runner configured", "")
	}

	cmd := exec.Command{
		Name:       name,
		Args:       args,
		Classifier: classifier,
		Log:        c.Logger(),
	}
	if c.Config != nil {
		env, err := c.Config.Environment()
		if err != nil {
			return nil, err
		}
		cmd.Env = env
		cmd.Dir = c.Config.Paths().ProjectHome
		cmd.Timeout = c.Config.Timeout()
	}

	res, err := c.Runner.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return FromExec(res), nil
}
