package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names spans started by application services
const TracerName = "agency-backend"

// Span attribute keys shared by application services
const (
	AttrClientID  = attribute.Key("client.id")
	AttrServiceID = attribute.Key("service.id")
	AttrInvoiceID = attribute.Key("invoice.id")
	AttrCurrency  = attribute.Key("currency")
	AttrUserID    = attribute.Key("user.id")
)

// StartSpan starts an internal span named "{component}.{operation}".
//
//	ctx, span := telemetry.StartSpan(ctx, "client", "update_service", telemetry.AttrClientID.String(id))
//	defer span.End()
func StartSpan(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, component+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks the span failed. Nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
