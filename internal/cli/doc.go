// Package cli implements the hf command-line interface.
//
// hf has one generic command: the first word names an action, everything
// after it is handed to the action untouched. Cobra only routes the two
// real subcommands; the rest goes through params.Parse so pipeline steps
// and the command line share one grammar.
//
//	hf <action> [options...] [positional...]
//	hf version [--short]
//	hf completion bash|zsh|fish|powershell
//
// # Flow
//
// App.Run handles one invocation:
//
//  1. Parse the arguments and read the HF_* environment (viper)
//  2. Load server-config.json and the user override file
//  3. Build the plugin registry and report validation warnings
//  4. Dispatch the action
//  5. Render the result (or a JSON envelope with --json) and map it to an
//     exit code
//
// # Exit codes
//
// 0 on success. A result with a non-zero exit code passes it through; an
// error uses its explicit exit code or 1.
package cli
