package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/plugin"
)

// RenderResult prints the outcome of an action that ran to completion.
// A non-zero exit code renders as a failure.
//
//	✓ Deployed shop 12.4s
//	✗ "shop" failed 3.1s
//	  Finish with error (exit code 1)
func RenderResult(w io.Writer, action string, res *plugin.Result) {
	symbol, color := SymbolSuccess, ColorSuccess
	if res.ExitCode != 0 {
		symbol, color = SymbolFail, ColorError
	}

	lines := res.Message
	if len(lines) == 0 {
		if res.ExitCode != 0 {
			lines = []string{fmt.Sprintf("%s finished with exit code %d", action, res.ExitCode)}
		} else {
			lines = []string{fmt.Sprintf("%s finished", action)}
		}
	}

	fmt.Fprintln(w, FormatPhase(symbol, color, lines[0], formatDuration(res.Duration)))
	for _, line := range lines[1:] {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// RenderError prints a failure: the message lines, the suggestion, and in
// verbose mode the stack trace of the cause.
func RenderError(w io.Writer, err error, verbose bool) {
	hfErr, ok := errors.As(err)
	if !ok {
		fmt.Fprintln(w, FormatPhase(SymbolFail, ColorError, err.Error(), ""))
		return
	}

	lines := hfErr.Lines()
	if len(lines) == 0 {
		lines = []string{hfErr.Code + " error"}
	}
	timing := ""
	if hfErr.Duration > 0 {
		timing = formatDuration(hfErr.Duration)
	}
	fmt.Fprintln(w, FormatPhase(SymbolFail, ColorError, lines[0], timing))
	for _, line := range lines[1:] {
		fmt.Fprintf(w, "  %s\n", line)
	}

	if hfErr.Cause != nil && hfErr.Cause.Error() != hfErr.Message {
		fmt.Fprintf(w, "  %s\n", styled(ColorMuted).Render(hfErr.Cause.Error()))
	}
	if hfErr.Suggestion != "" {
		fmt.Fprintf(w, "  %s %s\n", styled(ColorMuted).Render(SymbolArrow), hfErr.Suggestion)
	}

	if verbose {
		if stack := strings.TrimSpace(hfErr.Stack()); stack != "" {
			fmt.Fprintln(w, FormatDivider(DividerWidth))
			fmt.Fprintln(w, styled(ColorMuted).Render(stack))
		}
	}
}
