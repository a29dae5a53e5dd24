package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

const (
	CodeValidation         = "validation_error"
	CodeDuplicateEmail     = "duplicate_email"
	CodeNotFound           = "not_found"
	CodeUnauthenticated    = "unauthenticated"
	CodeInvalidCredentials = "invalid_credentials"
	CodeForbidden          = "forbidden"
	CodeInternal           = "internal_error"
)

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func DuplicateEmail() *Error {
	return New(http.StatusBadRequest, CodeDuplicateEmail, errors.New("email já cadastrado"))
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Unauthenticated(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthenticated, err)
}

func InvalidCredentials() *Error {
	return New(http.StatusUnauthorized, CodeInvalidCredentials, errors.New("senha incorreta"))
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(msg))
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// As extracts the API error from err. Anything untyped becomes an internal error.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

// HasCode reports whether err carries the given API error code.
func HasCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
