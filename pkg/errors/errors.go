// Package errors provides structured error types for the gantt layout engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (bad time ranges, unknown formats)
//   - *_NOT_FOUND: Missing resources or files
//   - DUPLICATE_*: Identifier collisions
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeResourceNotFound, "no resource with id %q", id)
//	if errors.Is(err, errors.ErrCodeResourceNotFound) {
//	    // Report to the caller, the snapshot is unchanged
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidTimeRange, parseErr, "task %s start", id)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle     Code = "INVALID_STYLE"
	ErrCodeInvalidVizType   Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidTimeRange Code = "INVALID_TIME_RANGE"
	ErrCodeInvalidDataset   Code = "INVALID_DATASET"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeResourceNotFound Code = "RESOURCE_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Identifier collisions
	ErrCodeDuplicateTaskID Code = "DUPLICATE_TASK_ID"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// A *RejectedTasksError matches ErrCodeInvalidTimeRange.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var r *RejectedTasksError
	if errors.As(err, &r) {
		return r.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// =============================================================================
// Rejected Tasks
// =============================================================================

// RejectedTask identifies one task excluded from a layout pass.
type RejectedTask struct {
	TaskID     string `json:"task_id"`
	ResourceID string `json:"resource_id"`
	Reason     string `json:"reason"`
}

// RejectedTasksError reports every task a layout pass excluded because its
// time range was invalid. The pass itself completed; the error only lists
// what is missing from the result.
type RejectedTasksError struct {
	Tasks []RejectedTask
}

// Error implements the error interface.
func (e *RejectedTasksError) Error() string {
	ids := e.TaskIDs()
	noun := "tasks"
	if len(ids) == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%s: rejected %d %s: %s", ErrCodeInvalidTimeRange, len(ids), noun, strings.Join(ids, ", "))
}

// Code returns the error code for this error type.
func (e *RejectedTasksError) Code() Code {
	return ErrCodeInvalidTimeRange
}

// TaskIDs returns the identifiers of the rejected tasks in report order.
func (e *RejectedTasksError) TaskIDs() []string {
	ids := make([]string, len(e.Tasks))
	for i, t := range e.Tasks {
		ids[i] = t.TaskID
	}
	return ids
}
