package cli

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/heringsfish/hf/internal/errors"
	"github.com/heringsfish/hf/internal/plugin"
)

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	RunID   string      `json:"run_id"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string                 `json:"code"`
	Tag        string                 `json:"tag,omitempty"`
	Message    string                 `json:"message"`
	Suggestion string                 `json:"suggestion,omitempty"`
	ExitCode   int                    `json:"exit_code"`
	DurationMS int64                  `json:"duration_ms,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// JSONResult is the data of a completed action.
type JSONResult struct {
	Action     string                 `json:"action"`
	ExitCode   int                    `json:"exit_code"`
	DurationMS int64                  `json:"duration_ms"`
	Message    []string               `json:"message,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// ErrCodeUnknown marks errors that didn't come from hf's error type.
const ErrCodeUnknown = "UNKNOWN"

// WriteJSONResult writes the envelope of an action that ran to completion.
// A non-zero exit code is reported as success=false with the result as data.
func WriteJSONResult(w io.Writer, action string, res *plugin.Result) error {
	if res == nil {
		res = &plugin.Result{}
	}
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: res.ExitCode == 0,
		RunID:   uuid.NewString(),
		Data: JSONResult{
			Action:     action,
			ExitCode:   res.ExitCode,
			DurationMS: res.Duration.Milliseconds(),
			Message:    res.Message,
			Details:    res.Details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		RunID:   uuid.NewString(),
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	hfErr, ok := errors.As(err)
	if !ok {
		return &JSONError{
			Code:     ErrCodeUnknown,
			Message:  err.Error(),
			ExitCode: errors.ExitCode(err),
		}
	}

	return &JSONError{
		Code:       hfErr.Code,
		Tag:        hfErr.Tag.String(),
		Message:    hfErr.Message,
		Suggestion: hfErr.Suggestion,
		ExitCode:   errors.ExitCode(err),
		DurationMS: hfErr.Duration.Milliseconds(),
		Details:    hfErr.Details,
	}
}
