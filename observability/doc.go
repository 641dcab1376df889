// Package observability wires OpenTelemetry tracing and metrics for the
// Ribbit client.
//
// The client records one span and one set of request metrics per signed
// request against whatever providers it is given. This package creates
// OTLP/HTTP providers for programs that want to export them:
//
//	shutdown, err := observability.Setup(ctx, observability.Config{
//	    Enabled:  true,
//	    Endpoint: "localhost:4318",
//	    Insecure: true,
//	})
//	defer shutdown(ctx)
package observability
