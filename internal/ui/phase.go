package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/heringsfish/hf/internal/plugin"
)

// DividerWidth is the default width for divider lines.
const DividerWidth = 64

// StepDisplay renders pipeline progress. It implements plugin.StepObserver.
type StepDisplay struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStepDisplay creates a step display writing to w.
func NewStepDisplay(w io.Writer) *StepDisplay {
	return &StepDisplay{w: w}
}

// OnStepStart shows: ◐ [1/2] build ...
func (d *StepDisplay) OnStepStart(index, total int, step plugin.Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "%s %s %s ...\n",
		styled(ColorSecondary).Render(SymbolProgress),
		counter(index, total),
		stepName(step),
	)
}

// OnStepComplete shows: ● [1/2] build 0.3s, or ✗ when the step failed.
func (d *StepDisplay) OnStepComplete(index, total int, step plugin.Step, res *plugin.Result, err error, elapsed time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	symbol, color := SymbolComplete, ColorSuccess
	if err != nil || (res != nil && res.ExitCode != 0) {
		symbol, color = SymbolFail, ColorError
	}
	fmt.Fprintln(d.w, FormatPhase(symbol, color,
		counter(index, total)+" "+stepName(step),
		formatDuration(elapsed)))
}

func counter(index, total int) string {
	return styled(ColorMuted).Render(fmt.Sprintf("[%d/%d]", index, total))
}

func stepName(step plugin.Step) string {
	if len(step.Params) == 0 {
		return step.Action
	}
	return step.Action + " " + strings.Join(step.Params, " ")
}

// FormatPhase returns a formatted status line as a string.
func FormatPhase(symbol string, symbolColor lipgloss.Color, name string, timing string) string {
	if timing == "" {
		return fmt.Sprintf("%s %s", styled(symbolColor).Render(symbol), name)
	}
	return fmt.Sprintf("%s %s %s", styled(symbolColor).Render(symbol), name, styled(ColorMuted).Render(timing))
}

// FormatDivider returns a divider line as a string.
func FormatDivider(width int) string {
	return styled(ColorMuted).Render(strings.Repeat("━", width))
}

func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
