package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// Error codes for categorizing errors
const (
	ErrConfig   = "CONFIG"
	ErrPlugin   = "PLUGIN"
	ErrPipeline = "PIPELINE"
	ErrExec     = "EXEC"
	ErrTimeout  = "TIMEOUT"
	ErrIO       = "IO"
)

// Tag identifies the exact site that raised an error. Codes group errors
// into classes; tags stay stable across releases so scripts can match them.
type Tag int

// String renders the tag in hex, the way it's printed in verbose output.
func (t Tag) String() string {
	if t == 0 {
		return ""
	}
	return fmt.Sprintf("0x%x", int(t))
}

const (
	TagPluginMissing       Tag = 0xff0001
	TagPluginNoHandler     Tag = 0xff0002
	TagPluginLoad          Tag = 0xff0003
	TagPluginInvalid       Tag = 0xff0004
	TagHelpMissing         Tag = 0xff0011
	TagInitCancelled       Tag = 0xff0101
	TagAsAdminSettings     Tag = 0xff00a1
	TagSpawn               Tag = 0xff00c1
	TagTimeout             Tag = 0xff00c2
	TagTemplateRecursion   Tag = 0xff00d1
	TagMavenSettings       Tag = 0xff00f1
	TagDomainExists        Tag = 0xfff201
	TagReadFile            Tag = 0xff1001
	TagWriteFile           Tag = 0xff1002
	TagParseFile           Tag = 0xff1003
	TagPipelineMissing     Tag = 0xffff2a1
	TagPipelineStepInvalid Tag = 0xffff2a2
	TagPipelineStepMissing Tag = 0xffff2a3
	TagPipelineStepFailed  Tag = 0xffff2a4
	TagPipelineRecursion   Tag = 0xffff2a5
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
//
// ExitCode and Duration travel with the error up to the CLI boundary so the
// process exit status and timing survive any number of wrapping layers.
type Error struct {
	Code       string
	Tag        Tag
	Message    string
	Suggestion string
	Cause      error

	// ExitCode is the process exit code to report. Zero means "use the default" (1).
	ExitCode int

	// Duration is the wall-clock time spent before the failure.
	Duration time.Duration

	// Details carries handler-specific diagnostics (finished steps, app names).
	Details map[string]interface{}
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
// The cause gets a stack trace attached if it doesn't carry one already.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      withStack(err),
	}
}

// WithTag sets the failure-site tag and returns the error for chaining.
func (e *Error) WithTag(tag Tag) *Error {
	e.Tag = tag
	return e
}

// WithExitCode sets the exit code and returns the error for chaining.
func (e *Error) WithExitCode(code int) *Error {
	e.ExitCode = code
	return e
}

// WithDetail adds a diagnostic detail and returns the error for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Lines splits a multi-line message into its lines.
func (e *Error) Lines() []string {
	if e.Message == "" {
		return nil
	}
	return strings.Split(e.Message, "\n")
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Stack returns the innermost recorded stack trace in the cause chain,
// or an empty string when nothing recorded one.
func (e *Error) Stack() string {
	var found stackTracer
	var cur error = e.Cause
	for cur != nil {
		if st, ok := cur.(stackTracer); ok {
			found = st
		}
		cur = errors.Unwrap(cur)
	}
	if found == nil {
		return ""
	}
	return strings.TrimLeft(fmt.Sprintf("%+v", found.StackTrace()), "\n")
}

func withStack(err error) error {
	if err == nil {
		return nil
	}
	var st stackTracer
	if errors.As(err, &st) {
		return err
	}
	return pkgerrors.WithStack(err)
}

// As extracts the structured error from err's chain.
func As(err error) (*Error, bool) {
	var hfErr *Error
	if errors.As(err, &hfErr) {
		return hfErr, true
	}
	return nil, false
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if hfErr, ok := As(err); ok {
		return hfErr.Code == code
	}
	return false
}

// HasTag checks if an error is a structured Error raised at the given site.
func HasTag(err error, tag Tag) bool {
	if hfErr, ok := As(err); ok {
		return hfErr.Tag == tag
	}
	return false
}

// ExitCode maps an error to a process exit code: the explicit code when one
// was recorded, 1 otherwise. A nil error maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if hfErr, ok := As(err); ok && hfErr.ExitCode > 0 {
		return hfErr.ExitCode
	}
	return 1
}

// WithDuration records the elapsed time on err. Plain errors are promoted to
// a structured EXEC error so the duration has somewhere to live.
func WithDuration(err error, d time.Duration) error {
	if err == nil {
		return nil
	}
	hfErr, ok := As(err)
	if !ok {
		hfErr = WrapWithCode(err, ErrExec, err.Error(), "")
	}
	hfErr.Duration = d
	return hfErr
}
