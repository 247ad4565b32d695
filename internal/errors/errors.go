// Package errors provides centralized error handling with category and
// context metadata for consistent reporting across components.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"time"
)

// ErrorCategory represents the type of error for better categorization
type ErrorCategory string

const (
	CategoryDevice       ErrorCategory = "audio-device"
	CategoryStream       ErrorCategory = "audio-stream"
	CategoryAudio        ErrorCategory = "audio-processing"
	CategoryFileIO       ErrorCategory = "file-io"
	CategoryFileParsing  ErrorCategory = "file-parsing"
	CategoryModelLoad    ErrorCategory = "model-loading"
	CategoryModelInit    ErrorCategory = "model-initialization"
	CategoryInference    ErrorCategory = "inference"
	CategoryValidation   ErrorCategory = "validation"
	CategoryState        ErrorCategory = "state"
	CategoryCancellation ErrorCategory = "cancellation"
	CategoryGeneric      ErrorCategory = "generic"
)

// ComponentUnknown is used when the component cannot be determined.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with additional context and metadata.
type EnhancedError struct {
	Err       error          // Original error
	Component string         // Component where the error occurred
	Category  ErrorCategory  // Error category for better grouping
	Context   map[string]any // Additional context data
	Timestamp time.Time      // When the error occurred
}

// Error implements the error interface
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches either the wrapped error chain or another EnhancedError's category.
func (ee *EnhancedError) Is(target error) bool {
	var ee2 *EnhancedError
	if stderrors.As(target, &ee2) {
		return ee.Category == ee2.Category
	}
	return stderrors.Is(ee.Err, target)
}

// GetContext returns a copy of the context map.
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	return maps.Clone(ee.Context)
}

// ErrorBuilder provides a fluent interface for building enhanced errors
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder wrapping an existing error.
func New(err error) *ErrorBuilder {
	if err == nil {
		err = stderrors.New("unknown error")
	}
	return &ErrorBuilder{
		err:      err,
		category: CategoryGeneric,
	}
}

// Newf creates a new error builder from a format string.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Wrap is an alias for New, for readability at call sites that decorate
// an error received from a lower layer.
func Wrap(err error) *ErrorBuilder {
	return New(err)
}

// Component sets the component name
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds a key-value pair to the error context
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// ModelContext adds model-related context fields.
func (eb *ErrorBuilder) ModelContext(modelPath, modelID string) *ErrorBuilder {
	if modelPath != "" {
		eb.Context("model_path", modelPath)
	}
	if modelID != "" {
		eb.Context("model_id", modelID)
	}
	return eb
}

// FileContext adds file-related context fields.
func (eb *ErrorBuilder) FileContext(filePath string, fileSize int64) *ErrorBuilder {
	eb.Context("file_path", filePath)
	if fileSize >= 0 {
		eb.Context("file_size_bytes", fileSize)
	}
	return eb
}

// Timing records how long an operation ran before failing.
func (eb *ErrorBuilder) Timing(operation string, duration time.Duration) *ErrorBuilder {
	eb.Context("operation", operation)
	eb.Context("duration_ms", duration.Milliseconds())
	return eb
}

// Build creates the final enhanced error
func (eb *ErrorBuilder) Build() *EnhancedError {
	component := eb.component
	if component == "" {
		component = ComponentUnknown
	}
	return &EnhancedError{
		Err:       eb.err,
		Component: component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
}

// Standard library forwarding so callers only import this package.

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// NewStd creates a plain standard library error without enhancement.
func NewStd(text string) error {
	return stderrors.New(text)
}
