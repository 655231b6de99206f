// Package ui renders hf's terminal output: the final result of an action,
// failures with their suggestion, and the progress of pipeline steps.
//
// Colors are ANSI codes styled with Lip Gloss:
//
//	ColorSuccess   (green)  - Successful actions and steps
//	ColorError     (red)    - Failures
//	ColorMuted     (gray)   - Timing, suggestions, stack traces
//	ColorSecondary (blue)   - Running steps
//
// Use DisableColors() to switch to monochrome output.
//
// # Step progress
//
// StepDisplay implements plugin.StepObserver. Child process output is
// streamed between its lines, so every event ends its own line:
//
//	◐ [1/2] build ...
//	● [1/2] build 12.3s
//	◐ [2/2] deploy nobuild ...
//	✗ [2/2] deploy nobuild 4.1s
package ui
