package apperrors

import (
	"errors"
	"net/http"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAuthDenied indicates that a sign-in attempt was refused by one of the sign-in gates.
var ErrAuthDenied = errors.New("authentication denied")

// ErrDelivery indicates that an outbound transport (mail, object storage) failed.
var ErrDelivery = errors.New("delivery failed")

// ErrUpstream indicates that a third-party API call failed.
var ErrUpstream = errors.New("upstream request failed")

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// AppError is an error carrying the HTTP status and the user-facing message
// a handler should respond with.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	kind    error
	Err     error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the sentinel kind and the underlying cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewAppError creates an AppError without a sentinel kind.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func newKindError(code int, kind error, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, kind: kind, Err: err}
}

// NewValidationError aggregates field messages into a single "msg1, msg2" message.
func NewValidationError(messages ...string) *AppError {
	return newKindError(http.StatusBadRequest, ErrValidation, strings.Join(messages, ", "), nil)
}

func NewDuplicateEmailError(message string) *AppError {
	return newKindError(http.StatusConflict, ErrDuplicate, message, nil)
}

// NewAuthDeniedError reports a refused sign-in. The message stays generic so
// callers cannot learn which gate failed.
func NewAuthDeniedError(message string, err error) *AppError {
	return newKindError(http.StatusUnauthorized, ErrAuthDenied, message, err)
}

func NewDeliveryError(message string, err error) *AppError {
	return newKindError(http.StatusBadGateway, ErrDelivery, message, err)
}

func NewUpstreamError(message string, err error) *AppError {
	return newKindError(http.StatusBadGateway, ErrUpstream, message, err)
}

func NewNotFoundError(message string) *AppError {
	return newKindError(http.StatusNotFound, ErrNotFound, message, nil)
}

func NewUnauthorizedError(message string) *AppError {
	return newKindError(http.StatusUnauthorized, ErrUnauthorized, message, nil)
}

func NewForbiddenError(message string) *AppError {
	return newKindError(http.StatusForbidden, ErrForbidden, message, nil)
}

func NewBadRequestError(message string) *AppError {
	return newKindError(http.StatusBadRequest, ErrValidation, message, nil)
}

func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, nil)
}

// Message returns the user-facing message of err when it is an AppError,
// otherwise the fallback.
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
