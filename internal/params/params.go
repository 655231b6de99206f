// Package params parses hf's command line into an action, flags and
// positional arguments.
//
// The grammar is deliberately loose: any word that isn't the action is both
// a positional argument and a boolean option, so `hf deploy nobuild` and
// `hf deploy --nobuild` mean the same thing. Pipeline steps are parsed with
// the same rules, which is why this lives outside of cobra's flag set.
package params

import (
	"strconv"
	"strings"
)

// DefaultAction runs when no action is given.
const DefaultAction = "help"

// Parameters is the parsed form of one invocation. Use Clone before handing
// a copy to code that may modify it.
type Parameters struct {
	Action  string
	Verbose bool
	Quiet   bool

	// Options maps flag names (without dashes) to a string or bool value.
	Options map[string]interface{}

	// List holds the positional arguments, action removed.
	List []string
}

// Parse builds Parameters from argv (without the program name).
func Parse(argv []string) *Parameters {
	options := make(map[string]interface{})
	var list []string

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		switch {
		case arg == "--":
			for _, rest := range argv[i+1:] {
				list = append(list, rest)
				options[rest] = true
			}
			i = len(argv)

		case strings.HasPrefix(arg, "--") && len(arg) > 2:
			name := arg[2:]
			if eq := strings.IndexByte(name, '='); eq >= 0 {
				options[name[:eq]] = name[eq+1:]
				continue
			}
			if strings.HasPrefix(name, "no-") && len(name) > 3 {
				options[name[3:]] = false
				continue
			}
			if i+1 < len(argv) && !isFlag(argv[i+1]) && !isBoolName(name) {
				options[name] = argv[i+1]
				i++
				continue
			}
			options[name] = true

		case strings.HasPrefix(arg, "-") && len(arg) > 1 && !isNumber(arg):
			letters := arg[1:]
			if eq := strings.IndexByte(letters, '='); eq > 0 {
				for _, r := range letters[:eq-1] {
					options[string(r)] = true
				}
				options[string(letters[eq-1])] = letters[eq+1:]
				continue
			}
			for _, r := range letters[:len(letters)-1] {
				options[string(r)] = true
			}
			last := string(letters[len(letters)-1])
			if i+1 < len(argv) && !isFlag(argv[i+1]) && !isBoolName(last) {
				options[last] = argv[i+1]
				i++
				continue
			}
			options[last] = true

		default:
			list = append(list, arg)
			options[arg] = true
		}
	}

	p := &Parameters{Options: options, List: list}
	p.Action = p.resolveAction()
	if len(p.List) == 0 {
		p.List = nil
	}

	p.Verbose = p.IsParam("v", "verbose")
	p.Quiet = p.IsParam("q", "quiet")
	if p.Action == DefaultAction {
		p.Quiet = false
	}
	if p.Quiet {
		p.Verbose = false
	}
	return p
}

// boolNames never consume the following word as their value.
var boolNames = map[string]bool{
	"v":       true,
	"verbose": true,
	"q":       true,
	"quiet":   true,
	"f":       true,
	"force":   true,
	"c":       true,
	"clean":   true,
	"k":       true,
	"kill":    true,
	"l":       true,
	"list":    true,
	"d":       true,
	"domain":  true,
	"try":     true,
	"test":    true,
	"skip":    true,
	"notest":  true,
	"nobuild": true,
	"json":    true,
	"yaml":    true,
}

func isBoolName(name string) bool {
	return boolNames[name]
}

func isFlag(arg string) bool {
	return strings.HasPrefix(arg, "-") && len(arg) > 1 && !isNumber(arg)
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// resolveAction takes the action from -a/--action or the first positional
// argument and removes it from both options and list.
func (p *Parameters) resolveAction() string {
	for _, key := range []string{"a", "action"} {
		if v, ok := p.Options[key].(string); ok && v != "" {
			delete(p.Options, "a")
			delete(p.Options, "action")
			p.removePositional(v)
			return v
		}
	}
	if len(p.List) == 0 {
		return DefaultAction
	}
	action := p.List[0]
	p.List = p.List[1:]
	delete(p.Options, action)
	return action
}

func (p *Parameters) removePositional(v string) {
	for i, item := range p.List {
		if item == v {
			p.List = append(p.List[:i:i], p.List[i+1:]...)
			delete(p.Options, v)
			return
		}
	}
}

// Clone returns an independent copy.
func (p *Parameters) Clone() *Parameters {
	options := make(map[string]interface{}, len(p.Options))
	for k, v := range p.Options {
		options[k] = v
	}
	var list []string
	if p.List != nil {
		list = make([]string, len(p.List))
		copy(list, p.List)
	}
	return &Parameters{
		Action:  p.Action,
		Verbose: p.Verbose,
		Quiet:   p.Quiet,
		Options: options,
		List:    list,
	}
}

// IsParam reports whether any of the names is set to a truthy value.
func (p *Parameters) IsParam(names ...string) bool {
	for _, name := range names {
		if truthy(p.Options[name]) {
			return true
		}
	}
	return false
}

// Param returns the positional argument at index, or def.
func (p *Parameters) Param(index int, def string) string {
	if index < 0 || index >= len(p.List) || p.List[index] == "" {
		return def
	}
	return p.List[index]
}

// ParamByNames returns the first string value set for one of the names.
// A bare boolean flag has no value and yields def.
func (p *Parameters) ParamByNames(def string, names ...string) string {
	for _, name := range names {
		if s, ok := p.Options[name].(string); ok && s != "" {
			return s
		}
	}
	return def
}

// IsDisabled reports whether a flag was negated with --no-<name>.
func (p *Parameters) IsDisabled(name string) bool {
	v, ok := p.Options[name].(bool)
	return ok && !v
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	default:
		return false
	}
}
