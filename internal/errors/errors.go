// Package errors provides a lightweight structured error type for
// category-based classification across the fetch, render, and publish layers.
package errors

import "fmt"

// ErrorCategory represents the category of a dashboard error for classification.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"
	CategoryScrape  ErrorCategory = "scrape"
	CategoryGit     ErrorCategory = "git"

	// Output and processing errors
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryState    ErrorCategory = "state"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// ContextFields carries structured context for a DashboardError.
type ContextFields map[string]any

// DashboardError is a structured error with category, retryability, and context.
type DashboardError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *DashboardError) WithContext(key string, value any) *DashboardError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithRetryable marks whether the operation that produced the error may be retried.
func (e *DashboardError) WithRetryable(retryable bool) *DashboardError {
	e.Retryable = retryable
	return e
}

// New creates a new DashboardError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *DashboardError {
	return &DashboardError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new DashboardError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *DashboardError {
	return &DashboardError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}
