package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation     ErrorType = "VALIDATION"
	ErrorTypeNodeNotFound   ErrorType = "NODE_NOT_FOUND"
	ErrorTypeBranchNotFound ErrorType = "BRANCH_NOT_FOUND"
	ErrorTypeCannotUndo     ErrorType = "CANNOT_UNDO"
	ErrorTypeCannotRedo     ErrorType = "CANNOT_REDO"
	ErrorTypeDuplicateID    ErrorType = "DUPLICATE_ID"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeUnauthorized   ErrorType = "UNAUTHORIZED"

	// Application errors
	ErrorTypeImportDecode ErrorType = "IMPORT_DECODE"
	ErrorTypeInternal     ErrorType = "INTERNAL"

	// Infrastructure errors
	ErrorTypePersistence ErrorType = "PERSISTENCE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewNodeNotFoundError creates a node-not-found error
func NewNodeNotFoundError(nodeID string) *AppError {
	return &AppError{
		Type:       ErrorTypeNodeNotFound,
		Message:    fmt.Sprintf("history node %s not found", nodeID),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewBranchNotFoundError creates a branch-not-found error
func NewBranchNotFoundError(branchID string) *AppError {
	return &AppError{
		Type:       ErrorTypeBranchNotFound,
		Message:    fmt.Sprintf("branch %s not found", branchID),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewCannotUndoError signals that no prior state exists
func NewCannotUndoError() *AppError {
	return &AppError{
		Type:       ErrorTypeCannotUndo,
		Message:    "nothing to undo",
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewCannotRedoError signals that no forward state exists
func NewCannotRedoError() *AppError {
	return &AppError{
		Type:       ErrorTypeCannotRedo,
		Message:    "nothing to redo",
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewDuplicateIDError signals a node id collision
func NewDuplicateIDError(nodeID string) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicateID,
		Message:    fmt.Sprintf("history node %s already exists", nodeID),
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
		StackTrace: captureStackTrace(),
	}
}

// NewImportDecodeError creates an import decode error
func NewImportDecodeError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeImportDecode,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewPersistenceError creates a persistence error.
// Persistence failures are logged and never abort an in-memory transition.
func NewPersistenceError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypePersistence,
		Message:    fmt.Sprintf("persistence operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNodeNotFound checks if an error is a node-not-found error
func IsNodeNotFound(err error) bool {
	return IsType(err, ErrorTypeNodeNotFound)
}

// IsBranchNotFound checks if an error is a branch-not-found error
func IsBranchNotFound(err error) bool {
	return IsType(err, ErrorTypeBranchNotFound)
}

// IsCannotUndo checks if an error signals exhausted undo history
func IsCannotUndo(err error) bool {
	return IsType(err, ErrorTypeCannotUndo)
}

// IsCannotRedo checks if an error signals exhausted redo history
func IsCannotRedo(err error) bool {
	return IsType(err, ErrorTypeCannotRedo)
}

// IsImportDecode checks if an error is an import decode error
func IsImportDecode(err error) bool {
	return IsType(err, ErrorTypeImportDecode)
}
