package httpclient

import (
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/ribbitkit/logger"
	"github.com/kbukum/ribbitkit/signing"
)

type options struct {
	log            *logger.Logger
	signer         *signing.Signer
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	transport      http.RoundTripper
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the request logger. Requests are not logged by default.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSigner replaces the default signer.
func WithSigner(s *signing.Signer) Option {
	return func(o *options) { o.signer = s }
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithTransport replaces the built transport. TLS and proxy settings from
// Config are then the caller's responsibility.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// CallOption adjusts a single call.
type CallOption func(*Request)

// WithXAuth signs the call with a username and password for the two-legged
// login bootstrap.
func WithXAuth(username, password string) CallOption {
	return func(r *Request) {
		r.XAuth = &signing.XAuth{Username: username, Password: password}
	}
}

// WithAccept overrides the Accept header.
func WithAccept(accept string) CallOption {
	return func(r *Request) { r.Accept = accept }
}

// WithContentType overrides the body content type.
func WithContentType(ct string) CallOption {
	return func(r *Request) { r.ContentType = ct }
}
