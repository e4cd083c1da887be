// Package tracing sets up the Jaeger tracer shared by the API and the
// worker. Spans are opened through the opentracing globals so instrumented
// code never carries a tracer handle, and tracing left disabled degrades to
// no-op spans.
package tracing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// InitTracer configures a Jaeger tracer reporting to collectorEndpoint and
// installs it process-wide. Every trace is sampled; job volume is low enough
// that probabilistic sampling would mostly discard the interesting failures.
// Close the returned closer on shutdown to flush buffered spans.
func InitTracer(serviceName, collectorEndpoint string) (opentracing.Tracer, io.Closer, error) {
	cfg := &jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:            false,
			CollectorEndpoint:   collectorEndpoint,
			BufferFlushInterval: time.Second,
		},
	}

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, closer, nil
}

// StartSpan opens a span as a child of whatever span ctx already carries,
// tagged with the asset being worked on.
func StartSpan(ctx context.Context, operation, assetID string) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, operation)
	span.SetTag("asset_id", assetID)
	return span, ctx
}

// FinishSpan closes the span, marking it failed when err is non-nil. A nil
// span is a no-op so call sites need no guard.
func FinishSpan(span opentracing.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.SetTag("error", true)
		span.LogKV("message", err.Error())
	}
	span.Finish()
}
