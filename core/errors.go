package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is raised by a client-side precondition before any network
// call is made.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ConnectionError means the server could not be reached at all: the request
// never produced an HTTP response.
type ConnectionError struct {
	Err error
}

func NewConnectionError(err error) error {
	return &ConnectionError{Err: err}
}

func (err ConnectionError) Error() string {
	return "unable to connect to server. please check your connection"
}

func (err ConnectionError) Unwrap() error { return err.Err }

// AuthenticationError means a well-formed request was rejected because the
// credentials are bad or the session has expired (HTTP 401).
type AuthenticationError struct {
	Message string
}

func NewAuthenticationError(msg string) error {
	if msg == "" {
		msg = "invalid email or password"
	}
	return &AuthenticationError{Message: msg}
}

func (err AuthenticationError) Error() string { return err.Message }

// ServerError means the server understood the request and rejected it by its
// own rules (duplicate email, forbidden, plain 500...). Message carries the
// backend's wording verbatim when it provided one.
type ServerError struct {
	StatusCode int
	Message    string
}

func NewServerError(code int, msg string) error {
	if msg == "" {
		msg = "something went wrong. please try again"
	}
	return &ServerError{StatusCode: code, Message: msg}
}

func (err ServerError) Error() string { return err.Message }

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

func IsConnectionError(err error) bool {
	_, ok := errors.Cause(err).(*ConnectionError)
	return ok
}

func IsAuthenticationError(err error) bool {
	_, ok := errors.Cause(err).(*AuthenticationError)
	return ok
}

func IsServerError(err error) bool {
	_, ok := errors.Cause(err).(*ServerError)
	return ok
}
