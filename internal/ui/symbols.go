package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Action succeeded
	SymbolFail     = "✗" // Action or step failed
	SymbolPending  = "○" // Step not yet started
	SymbolProgress = "◐" // Step running
	SymbolComplete = "●" // Step done
	SymbolArrow    = "→" // Suggestion
)
