package httpclient

import (
	"net/http"
	"reflect"

	"github.com/kbukum/ribbitkit/signing"
)

// Request describes one signed call.
type Request struct {
	// Method is GET, POST, PUT or DELETE.
	Method string
	// URI is absolute when it starts with "http"; otherwise it is resolved
	// against the credential source's endpoint.
	URI string
	// Payload is JSON-encoded as the body. Only POST and PUT carry a body.
	Payload any
	// Raw is sent verbatim as the body. It cannot be combined with Payload.
	Raw []byte
	// ContentType overrides the body content type. Payload bodies default
	// to application/json; Raw bodies send none unless set.
	ContentType string
	// Accept defaults to DefaultAccept.
	Accept string
	// XAuth adds two-legged login credentials to the signature.
	XAuth *signing.XAuth
}

func (r *Request) hasBody() bool {
	return r.hasPayload() || r.Raw != nil
}

// hasPayload reports whether Payload holds a value. A nil map, slice or
// pointer stored in the interface counts as no payload.
func (r *Request) hasPayload() bool {
	if r.Payload == nil {
		return false
	}
	v := reflect.ValueOf(r.Payload)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return !v.IsNil()
	}
	return true
}

// Response is the result of a call.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the status line text, e.g. "201 Created".
	Status string
	// Headers are all response headers, keyed by canonical name. Values of
	// a repeated header keep their wire order.
	Headers http.Header
	// Body is the response body. Empty for streamed downloads.
	Body []byte
	// Location is the Location header, set by create-style endpoints.
	Location string
	// Written is the number of bytes copied to the sink of a streamed
	// download.
	Written int64
}

// Value is what a caller usually wants from a successful call: the
// Location when present, else the body.
func (r *Response) Value() string {
	if r.Location != "" {
		return r.Location
	}
	return string(r.Body)
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
