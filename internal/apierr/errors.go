package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Kind classifies an error for transport-level handling.
type Kind string

const (
	// KindValidation indicates malformed or missing arguments.
	KindValidation Kind = "validation_error"

	// KindAuthentication indicates a bad or missing API key.
	KindAuthentication Kind = "authentication_error"

	// KindAuthorization indicates the Google credential was denied access.
	KindAuthorization Kind = "authorization_error"

	// KindNotFound indicates a referenced spreadsheet, sheet, or range is absent.
	KindNotFound Kind = "not_found"

	// KindUpstream indicates an unclassified Google API or network failure.
	KindUpstream Kind = "upstream_error"
)

// Error is a classified error carrying the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Authentication creates an authentication error.
func Authentication(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...)}
}

// Authorization creates an authorization error.
func Authorization(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Upstream creates an upstream error wrapping the underlying cause.
func Upstream(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindUpstream, Message: fmt.Sprintf(format, args...), err: err}
}

// FromGoogle classifies an error returned by the Google API client.
// Already-classified errors pass through unchanged. googleapi errors are
// classified by status code; anything else becomes an upstream error with
// the underlying message preserved for diagnostics.
func FromGoogle(op string, err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Error()
		}
		switch gerr.Code {
		case http.StatusBadRequest:
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("%s: %s", op, msg), err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Kind: KindAuthorization, Message: fmt.Sprintf("%s: %s", op, msg), err: err}
		case http.StatusNotFound:
			return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s: %s", op, msg), err: err}
		}
	}

	return &Error{Kind: KindUpstream, Message: fmt.Sprintf("%s: %v", op, err), err: err}
}

// KindOf returns the kind of err, or KindUpstream for unclassified errors.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUpstream
}

// HTTPStatus maps an error kind to the HTTP response status used by the
// REST transport.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
