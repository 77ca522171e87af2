package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *DashboardError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *DashboardError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *DashboardError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Fetch errors

func FetchFailed(source string, cause error) *DashboardError {
	return Wrap(cause, CategoryNetwork, SeverityWarning, "profile fetch failed").
		WithRetryable(true).
		WithContext("source", source)
}

func ScrapeUnavailable(source, reason string) *DashboardError {
	return New(CategoryScrape, SeverityWarning, "expected markup not found").
		WithContext("source", source).
		WithContext("reason", reason)
}

// Render and output errors

func RenderFailed(reason string) *DashboardError {
	return New(CategoryRender, SeverityFatal, "document render failed").
		WithContext("reason", reason)
}

func WriteFailed(path string, cause error) *DashboardError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "output write failed").
		WithContext("path", path)
}

// Git errors

func GitPublishError(operation string, cause error) *DashboardError {
	return Wrap(cause, CategoryGit, SeverityError, "git publish failed").
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *DashboardError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
