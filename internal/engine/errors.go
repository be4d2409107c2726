package engine

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of an EngineError.
type ErrorCode string

const (
	ErrCodeDriverInit        ErrorCode = "DRIVER_INIT"
	ErrCodePageLoadTimeout   ErrorCode = "PAGE_LOAD_TIMEOUT"
	ErrCodeElementExtraction ErrorCode = "ELEMENT_EXTRACTION"
	ErrCodeSinkWrite         ErrorCode = "SINK_WRITE"
)

// Common errors
var (
	ErrDriverInitialization = errors.New("browser session could not be started")
	ErrPageLoadTimeout      = errors.New("review content did not appear in time")
	ErrElementExtraction    = errors.New("review element could not be read")
	ErrSinkWrite            = errors.New("reviews could not be written")
)

// sentinels maps each code to the error an EngineError with that code matches.
var sentinels = map[ErrorCode]error{
	ErrCodeDriverInit:        ErrDriverInitialization,
	ErrCodePageLoadTimeout:   ErrPageLoadTimeout,
	ErrCodeElementExtraction: ErrElementExtraction,
	ErrCodeSinkWrite:         ErrSinkWrite,
}

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is the sentinel for e.Code or an EngineError with the same Code.
// The underlying error is reached through Unwrap.
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return target != nil && sentinels[e.Code] == target
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not an EngineError.
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}
