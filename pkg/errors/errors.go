package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Configuration errors (1xxx)
	ErrCodeConfigNotFound ErrorCode = "STFG1001"
	ErrCodeConfigInvalid  ErrorCode = "STFG1002"
	ErrCodeConfigMissing  ErrorCode = "STFG1003"

	// Data file errors (2xxx)
	ErrCodeFileNotFound   ErrorCode = "STFG2001"
	ErrCodeFilePermission ErrorCode = "STFG2002"
	ErrCodeFileCorrupted  ErrorCode = "STFG2003"
	ErrCodeFileOperation  ErrorCode = "STFG2004"
	ErrCodeCSVMalformed   ErrorCode = "STFG2005"
	ErrCodeColumnMissing  ErrorCode = "STFG2006"

	// Generator errors (3xxx)
	ErrCodeGenerateFailed ErrorCode = "STFG3001"

	// Transform errors (4xxx)
	ErrCodeTransformFailed ErrorCode = "STFG4001"
	ErrCodeTypeCoercion    ErrorCode = "STFG4002"
	ErrCodeEmptyTable      ErrorCode = "STFG4003"

	// Validation errors (5xxx)
	ErrCodeValidationFailed ErrorCode = "STFG5001"
	ErrCodeInvalidInput     ErrorCode = "STFG5002"
	ErrCodeRequiredField    ErrorCode = "STFG5003"

	// KPI errors (6xxx)
	ErrCodeKPIUnknown       ErrorCode = "STFG6001"
	ErrCodeKPICatalog       ErrorCode = "STFG6002"
	ErrCodeThresholdInvalid ErrorCode = "STFG6003"

	// Export errors (7xxx)
	ErrCodeExportFailed ErrorCode = "STFG7001"

	// System errors (9xxx)
	ErrCodeInternal ErrorCode = "STFG9001"
	ErrCodeUnknown  ErrorCode = "STFG9999"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Stack:       captureStack(),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'starforge setup' to reconfigure",
		)
}

// FileError creates a data-file error
func FileError(message string, path string, cause error) *AppError {
	return Wrap(cause, ErrCodeFileOperation, message).
		WithContext("path", path).
		WithSuggestions(
			"Verify the data directory exists and is readable",
			"Run 'starforge generate' to produce the raw tables",
		)
}

// CSVError creates a CSV parsing error for a table
func CSVError(message string, table string, cause error) *AppError {
	return Wrap(cause, ErrCodeCSVMalformed, message).
		WithContext("table", table).
		WithSuggestions(
			"Check the file was produced by 'starforge generate' or 'starforge transform'",
			"Inspect the header row for missing or renamed columns",
		)
}

// TransformError creates a transform-stage error
func TransformError(message string, table string, cause error) *AppError {
	return Wrap(cause, ErrCodeTransformFailed, message).
		WithContext("table", table)
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning).
		AsRecoverable()
}

// KPIError creates a KPI calculation error
func KPIError(message string, kpiID string, cause error) *AppError {
	return Wrap(cause, ErrCodeKPIUnknown, message).
		WithContext("kpi_id", kpiID).
		WithSuggestions(
			"Check the KPI catalog file for unknown or duplicated KPI ids",
		)
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
