// Package testing provides test doubles for the exec package.
package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/heringsfish/hf/internal/exec"
)

// Response scripts the outcome of one fake invocation.
type Response struct {
	ExitCode int
	Err      error
	Duration time.Duration
	// Block makes Run wait until ctx is done before returning ctx.Err().
	Block bool
}

// FakeRunner records commands instead of starting processes.
// Responses are matched against the argument words (an asadmin subcommand,
// a maven goal) in order, falling back to Default.
type FakeRunner struct {
	mu sync.Mutex

	// Calls records every command passed to Run, in order.
	Calls []exec.Command

	responses map[string]Response
	Default   Response
}

// NewFakeRunner creates a runner where every command succeeds.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]Response)}
}

// On scripts the response for commands whose arguments contain word.
func (f *FakeRunner) On(word string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[word] = resp
	return f
}

// Run implements exec.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd exec.Command) (*exec.Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	resp := f.match(cmd)
	f.mu.Unlock()

	if resp.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	result := &exec.Result{ExitCode: resp.ExitCode, Duration: resp.Duration}
	if resp.ExitCode != 0 {
		result.Message = fmt.Sprintf("Finish with error (exit code %d)", resp.ExitCode)
	}
	return result, nil
}

func (f *FakeRunner) match(cmd exec.Command) Response {
	for _, arg := range cmd.Args {
		if resp, ok := f.responses[arg]; ok {
			return resp
		}
	}
	return f.Default
}

// Argv returns the argument vectors of all recorded calls.
func (f *FakeRunner) Argv() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = append([]string(nil), c.Args...)
	}
	return out
}

// CallCount returns the number of recorded calls.
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// Lines renders the recorded calls as command lines, for readable assertions.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}
