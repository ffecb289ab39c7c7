package errors

import (
	"fmt"
	"sync"
	"time"
)

// BuildError represents a single problem found while generating redirect pages.
type BuildError struct {
	Docname   string
	File      string
	Line      int
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (be *BuildError) Error() string {
	if be.File == "" {
		return fmt.Sprintf("%s: %s", be.Severity, be.Message)
	}

	return fmt.Sprintf("%s:%d: %s: %s", be.File, be.Line, be.Severity, be.Message)
}

// ErrorCollector collects build errors across a generation run
type ErrorCollector struct {
	buildErrors []BuildError
	errors      []error
	mutex       sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		buildErrors: make([]BuildError, 0),
		errors:      make([]error, 0),
	}
}

// Add adds a build error to the collector
func (ec *ErrorCollector) Add(err BuildError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	ec.buildErrors = append(ec.buildErrors, err)
}

// AddError adds a general error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}

	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// GetErrors returns a copy of all collected build errors
func (ec *ErrorCollector) GetErrors() []BuildError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	result := make([]BuildError, len(ec.buildErrors))
	copy(result, ec.buildErrors)

	return result
}

// GetAllErrors returns all errors, build and general, as a flat error slice
func (ec *ErrorCollector) GetAllErrors() []error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	result := make([]error, 0, len(ec.buildErrors)+len(ec.errors))
	for i := range ec.buildErrors {
		result = append(result, &ec.buildErrors[i])
	}
	result = append(result, ec.errors...)

	return result
}

// HasErrors reports whether any errors have been collected
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	return len(ec.buildErrors) > 0 || len(ec.errors) > 0
}

// HasSeverity reports whether any build error at or above the given severity
// has been collected
func (ec *ErrorCollector) HasSeverity(min ErrorSeverity) bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	for _, be := range ec.buildErrors {
		if be.Severity >= min {
			return true
		}
	}

	return false
}

// Clear removes all collected errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	ec.buildErrors = ec.buildErrors[:0]
	ec.errors = ec.errors[:0]
}

// GetErrorsByDocname returns build errors for a specific document
func (ec *ErrorCollector) GetErrorsByDocname(docname string) []BuildError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	var result []BuildError
	for _, be := range ec.buildErrors {
		if be.Docname == docname {
			result = append(result, be)
		}
	}

	return result
}

// Summary returns a one-line count summary suitable for console output
func (ec *ErrorCollector) Summary() string {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	var warnings, errs int
	for _, be := range ec.buildErrors {
		if be.Severity >= ErrorSeverityError {
			errs++
		} else if be.Severity == ErrorSeverityWarning {
			warnings++
		}
	}
	errs += len(ec.errors)

	return fmt.Sprintf("%d warning(s), %d error(s)", warnings, errs)
}
