package errors

import (
	"errors"
	"net/http"
)

// Error kinds. Wrap them in ErrorWithStatusCode and test with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrRemoteUnavailable  = errors.New("remote store unavailable")
	ErrLocalStorage       = errors.New("local storage error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmptyExport        = errors.New("empty export")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Kind       error
	Err        error // underlying cause, never shown to the client
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func Validation(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest, Kind: ErrValidation}
}

func RemoteUnavailable(message string, cause error) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusServiceUnavailable, Kind: ErrRemoteUnavailable, Err: cause}
}

func LocalStorage(message string, cause error) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusInternalServerError, Kind: ErrLocalStorage, Err: cause}
}

func Unauthorized(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusForbidden, Kind: ErrUnauthorized}
}

func EmptyExport() error {
	return &ErrorWithStatusCode{Message: "No data to export", StatusCode: http.StatusBadRequest, Kind: ErrEmptyExport}
}

func NotFound(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound, Kind: ErrNotFound}
}

func InvalidCredentials() error {
	return &ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized, Kind: ErrInvalidCredentials}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns the http status carried by err, 500 otherwise.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) && e.StatusCode != 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}
