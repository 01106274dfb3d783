package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	// default config exports metrics but no traces
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.TracerOrNoop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfigFrom(t *testing.T) {
	tel := config.Default().Telemetry
	tel.Environment = "test"
	tel.TraceExporter = "stdout"
	tel.SampleRatio = 0.5

	cfg := OTelConfigFrom(tel)
	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
	assert.Equal(t, 0.5, cfg.SampleRatio)
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		config  *OTelConfig
		wantErr string
	}{
		{
			name: "stdout traces and prometheus metrics",
			config: &OTelConfig{
				ServiceName: "test", ServiceVersion: "v0", Environment: "development",
				TraceExporter: "stdout", MetricExporter: "prometheus",
				EnableTracing: true, EnableMetrics: true, SampleRatio: 1,
			},
		},
		{
			name: "tracing disabled",
			config: &OTelConfig{
				ServiceName: "test", ServiceVersion: "v0", Environment: "test",
				TraceExporter: "stdout", MetricExporter: "prometheus",
				EnableTracing: false, EnableMetrics: true,
			},
		},
		{
			name: "metrics disabled",
			config: &OTelConfig{
				ServiceName: "test", ServiceVersion: "v0", Environment: "test",
				TraceExporter: "stdout", MetricExporter: "none",
				EnableTracing: true, EnableMetrics: false, SampleRatio: 1,
			},
		},
		{
			name: "unknown trace exporter",
			config: &OTelConfig{
				ServiceName: "test", TraceExporter: "jaeger", EnableTracing: true,
			},
			wantErr: "unsupported trace exporter",
		},
		{
			name: "unknown metric exporter",
			config: &OTelConfig{
				ServiceName: "test", MetricExporter: "statsd", EnableMetrics: true,
			},
			wantErr: "unsupported metric exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, discardLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			if tt.config.EnableTracing {
				assert.NotNil(t, providers.TracerProvider)
				assert.NotNil(t, providers.Tracer)
			} else {
				assert.Nil(t, providers.TracerProvider)
			}
			if tt.config.EnableMetrics {
				assert.NotNil(t, providers.MeterProvider)
			} else {
				assert.Nil(t, providers.Meter)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestNilProvidersFallBack(t *testing.T) {
	var p *OTelProviders
	assert.NotNil(t, p.TracerOrNoop())
	assert.NotNil(t, p.MeterOrNoop())
}

func TestBusinessMetrics(t *testing.T) {
	metrics, err := CreateBusinessMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.DatasetLoadsTotal)
	assert.NotNil(t, metrics.DatasetRows)
	assert.NotNil(t, metrics.QueriesTotal)
	assert.NotNil(t, metrics.Errors)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, metrics, "success", time.Second, 1200)
		RecordQuery(ctx, metrics, "plot", time.Millisecond, nil)
		RecordQuery(ctx, metrics, "summary", time.Millisecond, errors.New("boom"))
		RecordDatasetLoad(ctx, nil, "failure", 0, 0)
		RecordQuery(ctx, nil, "plot", 0, nil)
	})
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordDatasetLoad(context.Background(), metrics, "success", 2*time.Second, 10)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "dataset_loads_total")
}

func TestSpanHelpers(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName: "test", TraceExporter: "stdout", EnableTracing: true, SampleRatio: 1,
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.TracerOrNoop().Start(context.Background(), "explorer.plot")
	defer span.End()

	assert.True(t, span.IsRecording())
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))

	assert.NotPanics(t, func() {
		SetSpanAttributes(ctx, map[string]interface{}{
			"dataset.rows": 42,
			"plot.x":       "PRACTICE_NAME",
			"plot.limit":   int64(15),
			"ratio":        0.5,
			"grouped":      true,
			"other":        []string{"a"},
		})
		RecordError(ctx, assert.AnError)
	})

	// helpers are no-ops without a span
	assert.Empty(t, TraceIDFromContext(context.Background()))
	assert.NotPanics(t, func() { RecordError(context.Background(), assert.AnError) })
}
