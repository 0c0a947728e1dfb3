package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError.
type ErrorKind string

const (
	KindAuthenticationRequired ErrorKind = "authentication_required"
	KindEntitlementDenied      ErrorKind = "entitlement_denied"
	KindValidation             ErrorKind = "validation"
	KindNotFound               ErrorKind = "not_found"
	KindSignatureInvalid       ErrorKind = "signature_invalid"
	KindUpstream               ErrorKind = "upstream"
	KindInternal               ErrorKind = "internal"
)

// AppError is a structured application error with HTTP status code.
type AppError struct {
	Kind         ErrorKind `json:"-"`
	Code         int       `json:"code"`
	Message      string    `json:"error"`
	RequiredPlan PlanID    `json:"requiredPlan,omitempty"`
	Err          error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error constructors.

func ErrAuthenticationRequired(msg string) *AppError {
	return &AppError{Kind: KindAuthenticationRequired, Code: http.StatusUnauthorized, Message: msg}
}

// ErrUnauthorized is kept for credential failures (login, bad token).
func ErrUnauthorized(msg string) *AppError {
	return ErrAuthenticationRequired(msg)
}

func ErrEntitlementDenied(required PlanID, msg string) *AppError {
	return &AppError{Kind: KindEntitlementDenied, Code: http.StatusForbidden, Message: msg, RequiredPlan: required}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Kind: KindEntitlementDenied, Code: http.StatusForbidden, Message: msg}
}

func ErrNotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Code: http.StatusNotFound, Message: msg}
}

func ErrBadRequest(msg string) *AppError {
	return &AppError{Kind: KindValidation, Code: http.StatusBadRequest, Message: msg}
}

func ErrValidation(msg string) *AppError {
	return ErrBadRequest(msg)
}

func ErrSignatureInvalid(err error) *AppError {
	return &AppError{Kind: KindSignatureInvalid, Code: http.StatusBadRequest, Message: "signature verification failed", Err: err}
}

func ErrUpstream(msg string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Code: http.StatusInternalServerError, Message: msg, Err: err}
}

func ErrInternal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: http.StatusInternalServerError, Message: msg, Err: err}
}

// AsAppError attempts to extract an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}
