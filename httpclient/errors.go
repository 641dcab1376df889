package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies client errors.
type Kind int

const (
	// KindGeneric covers failures with no dedicated category: local request
	// construction errors, sink write failures and unexpected statuses.
	KindGeneric Kind = iota
	// KindServer is any 5xx, or a body reporting exhausted purpose numbers.
	KindServer
	// KindBadRequest is a 400.
	KindBadRequest
	// KindUnauthorized is a 401.
	KindUnauthorized
	// KindPaymentRequired is a 402: the account has no credit left.
	KindPaymentRequired
	// KindForbidden is a 403.
	KindForbidden
	// KindNotFound is a 404.
	KindNotFound
	// KindNotAcceptable is a 406.
	KindNotAcceptable
	// KindProxyAuthRequired is a 407, from the platform or the proxy itself.
	KindProxyAuthRequired
	// KindTimeout is a 408, a transport timeout or a cancelled context.
	KindTimeout
	// KindConflict is a 409.
	KindConflict
	// KindConnection is a transport failure before a status was received.
	KindConnection
	// KindInvalidURL is a target that could not be normalized for signing.
	KindInvalidURL
)

var kindNames = [...]string{
	KindGeneric:           "generic",
	KindServer:            "server_error",
	KindBadRequest:        "bad_request",
	KindUnauthorized:      "unauthorized",
	KindPaymentRequired:   "payment_required",
	KindForbidden:         "forbidden",
	KindNotFound:          "not_found",
	KindNotAcceptable:     "not_acceptable",
	KindProxyAuthRequired: "proxy_auth_required",
	KindTimeout:           "timeout",
	KindConflict:          "conflict",
	KindConnection:        "connection",
	KindInvalidURL:        "invalid_url",
}

// String returns the kind name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Error is a classified client error.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// StatusCode is the HTTP status (0 when no response was received).
	StatusCode int
	// Message describes the error.
	Message string
	// URI is the request target.
	URI string
	// Body is the response body, if one was read.
	Body []byte
	// Partial is set when a streamed download failed after bytes reached
	// the sink. The caller owns cleanup of the sink.
	Partial bool
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Partial {
		msg += " (partial write to sink)"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Kind, msg)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a timeout error for a request that never
// completed.
func NewTimeoutError(uri string, err error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: err.Error(),
		URI:     uri,
		Err:     err,
	}
}

// NewConnectionError creates a connection error.
func NewConnectionError(uri string, err error) *Error {
	return &Error{
		Kind:    KindConnection,
		Message: err.Error(),
		URI:     uri,
		Err:     err,
	}
}

// NewInvalidURLError wraps a signing failure for uri.
func NewInvalidURLError(uri string, err error) *Error {
	return &Error{
		Kind:    KindInvalidURL,
		Message: err.Error(),
		URI:     uri,
		Err:     err,
	}
}

// NewGenericError creates an error with no dedicated category.
func NewGenericError(uri, msg string, err error) *Error {
	return &Error{
		Kind:    KindGeneric,
		Message: msg,
		URI:     uri,
		Err:     err,
	}
}

// NewProxyAuthError is returned when the proxy itself rejects the tunnel.
func NewProxyAuthError(uri string, err error) *Error {
	return &Error{
		Kind:       KindProxyAuthRequired,
		StatusCode: http.StatusProxyAuthRequired,
		Message:    msgProxyAuth,
		URI:        uri,
		Err:        err,
	}
}

func is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// KindOf returns the kind of err, or KindGeneric if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneric
}

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool { return is(err, KindServer) }

// IsBadRequest checks if an error is a 400.
func IsBadRequest(err error) bool { return is(err, KindBadRequest) }

// IsUnauthorized checks if an error is a 401.
func IsUnauthorized(err error) bool { return is(err, KindUnauthorized) }

// IsPaymentRequired checks if the account ran out of credit.
func IsPaymentRequired(err error) bool { return is(err, KindPaymentRequired) }

// IsForbidden checks if an error is a 403.
func IsForbidden(err error) bool { return is(err, KindForbidden) }

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsNotAcceptable checks if an error is a 406.
func IsNotAcceptable(err error) bool { return is(err, KindNotAcceptable) }

// IsProxyAuthRequired checks if proxy credentials were missing or wrong.
func IsProxyAuthRequired(err error) bool { return is(err, KindProxyAuthRequired) }

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool { return is(err, KindTimeout) }

// IsConflict checks if the resource already exists.
func IsConflict(err error) bool { return is(err, KindConflict) }

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool { return is(err, KindConnection) }

// IsInvalidURL checks if the target could not be signed.
func IsInvalidURL(err error) bool { return is(err, KindInvalidURL) }

// IsPartial checks if a streamed download left partial data in its sink.
func IsPartial(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Partial
}
