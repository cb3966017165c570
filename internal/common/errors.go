package common

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupported      = errors.New("unsupported file type")
	ErrInternal         = errors.New("internal error")
	ErrDatabase         = errors.New("database error")
	ErrValidation       = errors.New("validation failed")
	ErrInsufficientData = errors.New("insufficient data")
)

// Error codes carried by AppError.
const (
	CodeInputRejected = "INPUT_REJECTED"
	CodeNotFound      = "NOT_FOUND"
	CodePersistence   = "PERSISTENCE_ERROR"
	CodeConfig        = "CONFIG_ERROR"
)

// PersistenceFailureMessage is the caller-facing text for failed commits.
const PersistenceFailureMessage = "failed to save forest records"

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InputRejected reports input refused before any state was written.
// The message is shown to the caller as is.
func InputRejected(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrInvalidInput
	} else if !errors.Is(cause, ErrInvalidInput) && !errors.Is(cause, ErrUnsupported) {
		cause = fmt.Errorf("%w: %v", ErrInvalidInput, cause)
	}
	return NewAppError(CodeInputRejected, message, cause)
}

// NotFound reports a missing resource.
func NotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message, ErrNotFound)
}

// PersistenceFailure wraps a storage error after rollback.
func PersistenceFailure(cause error) *AppError {
	return NewAppError(CodePersistence, PersistenceFailureMessage, fmt.Errorf("%w: %v", ErrDatabase, cause))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// PublicMessage returns the text safe to surface to a requester.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// HTTPStatus maps err onto an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupported), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

// GRPCStatus converts an application error into a gRPC status error.
func GRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	switch HTTPStatus(err) {
	case http.StatusNotFound:
		return NotFoundError(PublicMessage(err))
	case http.StatusBadRequest:
		return InvalidArgumentError(PublicMessage(err))
	case http.StatusUnprocessableEntity:
		return status.Error(codes.FailedPrecondition, PublicMessage(err))
	default:
		return InternalError(PublicMessage(err))
	}
}
