package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var tracer = otel.Tracer("github.com/aryan0dhankhar/crm/internal/service")

// Deps bundles what every service needs
type Deps struct {
	Tx     domain.Transactor
	Clock  domain.Clock
	Logger *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// now returns the current instant in storage format
func (d Deps) now() string {
	return domain.FormatTimestamp(d.Clock())
}

// startSpan opens a span named after the service operation
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// endSpan records err on span before ending it
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
