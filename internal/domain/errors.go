package domain

import "fmt"

// SweepError is the base error type with context.
type SweepError struct {
	Phase      string // "config", "parse", "scan", "filter", "materialize", "manifest", "submit", "report"
	File       string
	LineNumber int
	Message    string
	Suggestion string
	Cause      error
}

func (e *SweepError) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.File != "" {
		s += fmt.Sprintf(" %s", e.File)
	}
	if e.LineNumber > 0 {
		s += fmt.Sprintf(":%d", e.LineNumber)
	}
	s += fmt.Sprintf(": %s", e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Suggestion != "" {
		s += fmt.Sprintf(" (hint: %s)", e.Suggestion)
	}
	return s
}

func (e *SweepError) Unwrap() error {
	return e.Cause
}

// NewError creates a new SweepError.
func NewError(phase, file string, line int, message string, cause error) *SweepError {
	return &SweepError{
		Phase:      phase,
		File:       file,
		LineNumber: line,
		Message:    message,
		Cause:      cause,
	}
}

// NewErrorWithSuggestion creates a SweepError carrying a remediation hint.
func NewErrorWithSuggestion(phase, file string, line int, message, suggestion string, cause error) *SweepError {
	e := NewError(phase, file, line, message, cause)
	e.Suggestion = suggestion
	return e
}
