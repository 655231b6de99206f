package asadmin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/heringsfish/hf/internal/config"
	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/maven"
	"github.com/heringsfish/hf/internal/params"
	"github.com/heringsfish/hf/internal/plugin"
)

// Result details of deploy and undeploy.
const (
	DetailAppNames  = "appNames"
	DetailFilenames = "filenames"
)

// DeployArgs is the argv of deploy for one application archive.
func DeployArgs(s *Settings, appName, filename string) []string {
	return []string{"deploy", "--port", s.Port(), "--force=true", "--name=" + appName, filename}
}

// UndeployArgs is the argv of undeploy for one application.
func UndeployArgs(s *Settings, appName string) []string {
	return []string{"undeploy", "--port", s.Port(), "--cascade=true", appName}
}

// flagWords are positional words that act as flags for deploy and undeploy
// and never name an application.
var flagWords = map[string]bool{
	"nobuild": true,
	"skip":    true,
	"notest":  true,
	"clean":   true,
	"try":     true,
	"test":    true,
}

// appName returns the first positional argument that isn't a flag word.
func appName(p *params.Parameters) string {
	for _, word := range p.List {
		if !flagWords[word] {
			return word
		}
	}
	return ""
}

// app is one entry of domain.deploy.
type app struct {
	name     string
	filename string
}

// deploy builds the project (unless nobuild is given) and deploys either the
// application named by the first positional argument or every entry of
// domain.deploy, the latter concurrently.
func deploy(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	start := time.Now()
	log := rc.Logger()

	apps, err := deployTargets(rc)
	if err != nil {
		return nil, err
	}

	if !rc.Params.IsParam("nobuild") {
		built, err := maven.Build(ctx, rc)
		if err != nil {
			return nil, err
		}
		if built.ExitCode != 0 {
			return built, nil
		}
		log.Debug("build project in %s", built.Duration)
	}

	results, err := forEachApp(ctx, apps, func(ctx context.Context, a app) (*plugin.Result, error) {
		return deployApp(ctx, rc, s, a)
	})
	if err != nil {
		return nil, err
	}

	res := joinResults(apps, results, start)
	home := rc.Config.Paths().ProjectHome
	names := make([]string, len(apps))
	files := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.name
		files[i] = shortPathName(home, a.filename)
	}
	res.WithDetail(DetailAppNames, names).WithDetail(DetailFilenames, files)
	if res.ExitCode == 0 {
		res.Message = []string{fmt.Sprintf("Deployed %s", strings.Join(names, ", "))}
	}
	return res, nil
}

// undeploy removes the named application, or every entry of domain.deploy.
func undeploy(ctx context.Context, rc *plugin.Context, s *Settings) (*plugin.Result, error) {
	start := time.Now()

	var apps []app
	if name := appName(rc.Params); name != "" {
		apps = []app{{name: AdjustPropertyName(name)}}
	} else {
		all := rc.Config.GetMap("domain.deploy")
		if len(all) == 0 {
			return nil, errors.New(errors.ErrConfig, "There are no applications for removing!",
				"Add the applications to domain.deploy in server-config.json or name one")
		}
		for _, name := range sortedKeys(all) {
			apps = append(apps, app{name: AdjustPropertyName(name)})
		}
	}

	results, err := forEachApp(ctx, apps, func(ctx context.Context, a app) (*plugin.Result, error) {
		rc.Logger().Info("try to undeploy %q on domain %q ...", a.name, s.DomainName)
		return run(ctx, rc, s, UndeployArgs(s, a.name)...)
	})
	if err != nil {
		return nil, err
	}

	res := joinResults(apps, results, start)
	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.name
	}
	res.WithDetail(DetailAppNames, names)
	return res, nil
}

func deployTargets(rc *plugin.Context) ([]app, error) {
	cfg := rc.Config

	if name := appName(rc.Params); name != "" {
		key := AdjustPropertyName(name)
		raw := cfg.Get("domain.deploy."+key, nil)
		if raw == nil {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Missing for %q the java archive", name),
				fmt.Sprintf("Add domain.deploy.%s to server-config.json", key))
		}
		filename, err := cfg.ResolveString(cast.ToString(raw))
		if err != nil {
			return nil, err
		}
		return []app{{name: key, filename: inProject(cfg, filename)}}, nil
	}

	all := cfg.GetMap("domain.deploy")
	if len(all) == 0 {
		return nil, errors.New(errors.ErrConfig, "There are no applications for deployment!",
			"Add the applications to domain.deploy in server-config.json")
	}
	apps := make([]app, 0, len(all))
	for _, name := range sortedKeys(all) {
		filename, err := cfg.ResolveString(cast.ToString(all[name]))
		if err != nil {
			return nil, err
		}
		apps = append(apps, app{name: AdjustPropertyName(name), filename: inProject(cfg, filename)})
	}
	return apps, nil
}

func deployApp(ctx context.Context, rc *plugin.Context, s *Settings, a app) (*plugin.Result, error) {
	short := shortPathName(rc.Config.Paths().ProjectHome, a.filename)
	rc.Logger().Info("try to deploy %q (%s) on domain %q ...", a.name, short, s.DomainName)

	if _, err := os.Stat(a.filename); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("File %q is not exist! Could not deploy %q!", short, a.name),
			"Build the project first, or drop the nobuild flag").
			WithTag(errors.TagReadFile)
	}
	return run(ctx, rc, s, DeployArgs(s, a.name, a.filename)...)
}

// forEachApp runs fn for every app at the same time. The first error
// cancels the others; non-zero exit codes don't.
func forEachApp(ctx context.Context, apps []app, fn func(context.Context, app) (*plugin.Result, error)) ([]*plugin.Result, error) {
	results := make([]*plugin.Result, len(apps))
	if len(apps) == 1 {
		res, err := fn(ctx, apps[0])
		if err != nil {
			return nil, err
		}
		results[0] = res
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range apps {
		g.Go(func() error {
			res, err := fn(gctx, a)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// joinResults reports the first failing app in name order.
func joinResults(apps []app, results []*plugin.Result, start time.Time) *plugin.Result {
	res := &plugin.Result{Duration: time.Since(start)}
	for i, r := range results {
		if r.ExitCode != 0 {
			res.ExitCode = r.ExitCode
			res.Message = append([]string{fmt.Sprintf("%q failed", apps[i].name)}, r.Message...)
			break
		}
	}
	return res
}

// inProject anchors relative archive paths at the project home.
func inProject(cfg *config.Config, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.Paths().ProjectHome, path)
}

// shortPathName shows paths inside the project relative to it.
func shortPathName(projectHome, path string) string {
	if projectHome != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(projectHome, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
