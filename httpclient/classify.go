package httpclient

import (
	"bytes"
	"net/http"
)

// capacityMarker in a response body means the platform ran out of purpose
// numbers. It is reported as a server error whatever the status line says.
var capacityMarker = []byte("purpose numbers")

const (
	msgMalformed     = "The request was malformed"
	msgUnauthorized  = "The request was not authorized"
	msgNoCredit      = "The account has insufficient credit"
	msgForbidden     = "The request was forbidden"
	msgNotAcceptable = "The request was not acceptable"
	msgProxyAuth     = "Proxy credentials must be specified or were incorrect"
	msgTimedOut      = "The request timed out"
	msgExists        = "Resource already exists"
)

// Classify maps a response to a typed error, or nil when the call succeeded.
// uri is used in not-found style messages.
func Classify(status int, uri string, body []byte) *Error {
	if bytes.Contains(body, capacityMarker) {
		status = http.StatusInternalServerError
	}
	return classifyStatus(status, uri, body)
}

// classifyStatus applies the status table without inspecting the body for
// the capacity marker. Streamed downloads use it directly.
func classifyStatus(status int, uri string, body []byte) *Error {
	var (
		kind Kind
		msg  string
	)
	switch {
	case status >= 500 && status < 600:
		kind, msg = KindServer, orDefault(body, uri+" was not found")
	case status == http.StatusBadRequest:
		kind, msg = KindBadRequest, orDefault(body, msgMalformed)
	case status == http.StatusUnauthorized:
		kind, msg = KindUnauthorized, msgUnauthorized
	case status == http.StatusPaymentRequired:
		kind, msg = KindPaymentRequired, msgNoCredit
	case status == http.StatusForbidden:
		kind, msg = KindForbidden, msgForbidden
	case status == http.StatusNotFound:
		kind, msg = KindNotFound, uri+" was not found"
	case status == http.StatusNotAcceptable:
		kind, msg = KindNotAcceptable, msgNotAcceptable
	case status == http.StatusProxyAuthRequired:
		kind, msg = KindProxyAuthRequired, msgProxyAuth
	case status == http.StatusRequestTimeout:
		kind, msg = KindTimeout, msgTimedOut
	case status == http.StatusConflict:
		kind, msg = KindConflict, msgExists
	default:
		return nil
	}
	return &Error{
		Kind:       kind,
		StatusCode: status,
		Message:    msg,
		URI:        uri,
		Body:       body,
	}
}

func orDefault(body []byte, fallback string) string {
	if len(body) > 0 {
		return string(body)
	}
	return fallback
}
