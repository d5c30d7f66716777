package errors

import (
	"fmt"
)

// Error types for different categories of failures
const (
	// Input/decode errors (shell boundary)
	ErrInputRead   = "INPUT_READ_ERROR"
	ErrInputDecode = "INPUT_DECODE_ERROR"

	// Render errors (core walk)
	ErrUnknownCommandType = "UNKNOWN_COMMAND_TYPE"
	ErrMissingParameter   = "MISSING_PARAMETER"
	ErrMalformedBody      = "MALFORMED_BODY"

	// Workflow errors (session shell)
	ErrCommandNotAvailable = "COMMAND_NOT_AVAILABLE"
	ErrIndexOutOfRange     = "INDEX_OUT_OF_RANGE"
)

// BlockError represents a structured error with type and context
type BlockError struct {
	Type    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *BlockError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows error unwrapping
func (e *BlockError) Unwrap() error {
	return e.Cause
}

// New creates a new BlockError
func New(errorType, message string) *BlockError {
	return &BlockError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap creates a new BlockError wrapping an existing error
func Wrap(errorType, message string, cause error) *BlockError {
	return &BlockError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *BlockError) WithContext(key string, value interface{}) *BlockError {
	e.Context[key] = value
	return e
}

// GetType returns the error type
func (e *BlockError) GetType() string {
	return e.Type
}

// GetContext returns context value by key
func (e *BlockError) GetContext(key string) (interface{}, bool) {
	value, exists := e.Context[key]
	return value, exists
}

// Helper functions for common error scenarios

// NewInputError creates an input-related error
func NewInputError(message string, cause error) *BlockError {
	return Wrap(ErrInputRead, message, cause)
}

// NewDecodeError creates a decode error for malformed block payloads
func NewDecodeError(message string, cause error) *BlockError {
	return Wrap(ErrInputDecode, message, cause)
}

// NewUnknownCommandError creates an unknown command type error. The path
// identifies the offending node's position in the block tree; suggestion,
// when non-empty, names the closest known command.
func NewUnknownCommandError(blockType, path, suggestion string) *BlockError {
	msg := fmt.Sprintf("unknown command type '%s' at %s", blockType, path)
	if suggestion != "" {
		msg = fmt.Sprintf("%s (did you mean '%s'?)", msg, suggestion)
	}
	err := New(ErrUnknownCommandType, msg).
		WithContext("block_type", blockType).
		WithContext("path", path)
	if suggestion != "" {
		err = err.WithContext("suggestion", suggestion)
	}
	return err
}

// NewMissingParameterError creates a missing parameter error for a command
func NewMissingParameterError(blockType, param, path string) *BlockError {
	return New(ErrMissingParameter,
		fmt.Sprintf("command '%s' at %s is missing required parameter '%s'", blockType, path, param)).
		WithContext("block_type", blockType).
		WithContext("parameter", param).
		WithContext("path", path)
}

// NewMalformedBodyError creates a malformed body error for a container command
func NewMalformedBodyError(blockType, field, path string, cause error) *BlockError {
	return Wrap(ErrMalformedBody,
		fmt.Sprintf("command '%s' at %s has a malformed '%s' body", blockType, path, field), cause).
		WithContext("block_type", blockType).
		WithContext("field", field).
		WithContext("path", path)
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	if blockErr, ok := err.(*BlockError); ok {
		return blockErr.Type == errorType
	}
	return false
}
