package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/infrastructure"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/session"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// TracedLoader wraps a session.Loader with a dataset.load span and load metrics.
type TracedLoader struct {
	next    session.Loader
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
}

// NewTracedLoader wraps next. metrics and tracer may be nil.
func NewTracedLoader(next session.Loader, metrics *infrastructure.BusinessMetrics, tracer trace.Tracer) *TracedLoader {
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	return &TracedLoader{next: next, metrics: metrics, tracer: tracer}
}

// LoadFile implements session.Loader.
func (l *TracedLoader) LoadFile(ctx context.Context, path string) (*domain.Table, error) {
	ctx, span := l.tracer.Start(ctx, "dataset.load", trace.WithAttributes(
		attribute.String("dataset.source", path),
	))
	defer span.End()

	start := time.Now()
	table, err := l.next.LoadFile(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		infrastructure.RecordDatasetLoad(ctx, l.metrics, "failure", time.Since(start), 0)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("dataset.rows", table.Len()),
		attribute.Int("dataset.columns", table.Width()))
	infrastructure.RecordDatasetLoad(ctx, l.metrics, "success", time.Since(start), table.Len())
	return table, nil
}
