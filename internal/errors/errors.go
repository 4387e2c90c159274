package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig   = "CONFIG"
	ErrCollect  = "COLLECT"
	ErrExport   = "EXPORT"
	ErrJournal  = "JOURNAL"
	ErrNotify   = "NOTIFY"
	ErrTerminal = "TERMINAL"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error

	// Problems lists individual findings when one error stands for several,
	// e.g. every failed check of a config validation pass.
	Problems []string
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrCollect code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrCollect,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewValidation creates a config error carrying every validation problem found.
func NewValidation(problems []string, suggestion string) *Error {
	msg := "Configuration is invalid"
	if len(problems) == 1 {
		msg = "Configuration is invalid: 1 problem"
	} else if len(problems) > 1 {
		msg = fmt.Sprintf("Configuration is invalid: %d problems", len(problems))
	}
	return &Error{
		Code:       ErrConfig,
		Message:    msg,
		Suggestion: suggestion,
		Problems:   append([]string(nil), problems...),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if len(e.Problems) > 0 {
		b.WriteString("\n")
		for _, p := range e.Problems {
			b.WriteString(fmt.Sprintf("  - %s\n", p))
		}
	}

	// Include cause if present (why it failed)
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	// Include suggestion if present (how to fix)
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var smErr *Error
	if errors.As(err, &smErr) {
		return smErr.Code == code
	}
	return false
}

// ProblemsOf returns the validation problems carried by err, if any.
func ProblemsOf(err error) []string {
	var smErr *Error
	if errors.As(err, &smErr) {
		return smErr.Problems
	}
	return nil
}

// ExitError carries a process exit code without extra output. The caller is
// expected to have already reported the failure to the user.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the exit code from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
