package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidID           = errors.New("invalid identifier")
	ErrIncompleteRange     = errors.New("incomplete range")
	ErrInvalidOperand      = errors.New("invalid operand")
	ErrUnknownOperator     = errors.New("unknown operator")
	ErrReferentialConflict = errors.New("referenced by another entity")
	ErrInternal            = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidID creates a 400 error for an identifier the active backend cannot parse.
func InvalidID(resource, id string) *AppError {
	return &AppError{
		Code:    "INVALID_ID",
		Message: fmt.Sprintf("%s id %q is not valid", resource, id),
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidID,
	}
}

// IncompleteRange creates a 400 error for a between/<> filter missing a bound.
// The whole request is rejected before any query executes.
func IncompleteRange(key string) *AppError {
	return &AppError{
		Code:    "INCOMPLETE_RANGE",
		Message: fmt.Sprintf("filter %q uses a range operator but is missing a bound", key),
		Status:  http.StatusBadRequest,
		Err:     ErrIncompleteRange,
	}
}

// InvalidOperand creates a 400 error for a filter operand that cannot be
// parsed to the type the comparison requires.
func InvalidOperand(key string, value any) *AppError {
	return &AppError{
		Code:    "INVALID_OPERAND",
		Message: fmt.Sprintf("filter %q has unusable operand %v", key, value),
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidOperand,
	}
}

// UnknownOperator creates a 400 error for an unrecognized operator token.
func UnknownOperator(key, token string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_OPERATOR",
		Message: fmt.Sprintf("filter %q uses unknown operator %q", key, token),
		Status:  http.StatusBadRequest,
		Err:     ErrUnknownOperator,
	}
}

// ReferentialConflict creates a 409 error for a deletion blocked by a live reference.
func ReferentialConflict(resource, id string) *AppError {
	return &AppError{
		Code:    "REFERENTIAL_CONFLICT",
		Message: fmt.Sprintf("%s with id %s is still referenced and cannot be deleted", resource, id),
		Status:  http.StatusConflict,
		Err:     ErrReferentialConflict,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// IsValidation reports whether err is one of the filter validation errors,
// i.e. the request was rejected before any query executed.
func IsValidation(err error) bool {
	return errors.Is(err, ErrIncompleteRange) ||
		errors.Is(err, ErrInvalidOperand) ||
		errors.Is(err, ErrUnknownOperator) ||
		errors.Is(err, ErrInvalidInput)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrReferentialConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrIncompleteRange), errors.Is(err, ErrInvalidOperand),
		errors.Is(err, ErrUnknownOperator):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
