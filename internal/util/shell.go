// Package util provides small string helpers shared by the runner and the
// actions.
package util

import "strings"

// shellSpecial are the characters that make a word need quoting.
const shellSpecial = " \t\n'\"\\$`;&|<>()*?[]{}~#!"

// ShellQuote wraps a string in single quotes, escaping any existing single quotes.
func ShellQuote(s string) string {
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// QuoteArg returns s unchanged when a shell would read it as one literal
// word, and single-quoted otherwise.
func QuoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	return ShellQuote(s)
}

// CommandLine renders name and args as a copy-pasteable command line.
func CommandLine(name string, args []string) string {
	words := make([]string, 0, len(args)+1)
	if name != "" {
		words = append(words, QuoteArg(name))
	}
	for _, arg := range args {
		words = append(words, QuoteArg(arg))
	}
	return strings.Join(words, " ")
}
