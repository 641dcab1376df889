package httpclient

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/ribbitkit/observability"
)

const instrumentationName = "github.com/kbukum/ribbitkit/httpclient"

// outcomeOK labels successful requests in metrics and spans.
const outcomeOK = "ok"

type telemetry struct {
	tracer  trace.Tracer
	metrics *observability.RequestMetrics
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	m, err := observability.NewRequestMetrics(mp.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	return &telemetry{
		tracer:  tp.Tracer(instrumentationName),
		metrics: m,
	}, nil
}

func (t *telemetry) start(ctx context.Context, method, uri, requestID string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, observability.SpanSignedRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrMethod, method),
			attribute.String(observability.AttrURLFull, uri),
			attribute.String(observability.AttrRequestID, requestID),
		),
	)
	t.metrics.RecordStart(ctx)
	return ctx, span
}

func (t *telemetry) end(ctx context.Context, span trace.Span, method string, resp *Response, err error, elapsed time.Duration) {
	outcome := outcomeOK
	if err != nil {
		outcome = KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if resp != nil {
		span.SetAttributes(attribute.Int(observability.AttrStatusCode, resp.StatusCode))
		if resp.Written > 0 {
			span.SetAttributes(attribute.Int64(observability.AttrBytesWritten, resp.Written))
		}
	}
	span.SetAttributes(attribute.String(observability.AttrOutcome, outcome))
	span.End()

	t.metrics.RecordEnd(ctx, method, outcome, elapsed)
}
