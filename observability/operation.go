package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/kvbridge/errors"
)

// Operation tracks one traced and metered bridge call.
type Operation struct {
	Name      string
	StartTime time.Time

	span    trace.Span
	metrics *Metrics
}

// StartOperation opens a "kvbridge.<name>" span. metrics may be nil.
func StartOperation(ctx context.Context, metrics *Metrics, name string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, "kvbridge."+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append([]attribute.KeyValue{attribute.String(AttrOperation, name)}, attrs...)...),
	)
	return ctx, &Operation{
		Name:      name,
		StartTime: time.Now(),
		span:      span,
		metrics:   metrics,
	}
}

// End closes the span and records the outcome. AppError codes become the
// error.code attribute and the error.total code label.
func (o *Operation) End(ctx context.Context, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		code := string(apperrors.ErrCodeInternal)
		if appErr, ok := apperrors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		o.span.SetAttributes(
			attribute.String(AttrErrorCode, code),
			attribute.String(AttrErrorMessage, err.Error()),
		)
		if o.metrics != nil {
			o.metrics.RecordError(ctx, code, "bridge")
		}
	}
	o.span.SetAttributes(attribute.String(AttrStatus, status))
	o.span.End()

	if o.metrics != nil {
		o.metrics.RecordOperation(ctx, o.Name, status, o.Duration())
	}
}

// Duration returns the elapsed time since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.StartTime)
}
