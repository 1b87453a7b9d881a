package generate

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/genia-lsp/genia/internal/llm"
)

const tracerName = "github.com/genia-lsp/genia/internal/generate"

// Span names and attribute keys follow the OpenTelemetry gen-ai
// semantic conventions where one exists.
const (
	spanGenerate = "genia.generate"
	spanAttempt  = "genia.attempt"
	eventSkipped = "genia.skipped"

	attrProvider     = "gen_ai.provider.name"
	attrModel        = "gen_ai.request.model"
	attrTemperature  = "gen_ai.request.temperature"
	attrMaxTokens    = "gen_ai.request.max_tokens"
	attrInputTokens  = "gen_ai.usage.input_tokens"
	attrOutputTokens = "gen_ai.usage.output_tokens"
	attrStopReason   = "gen_ai.response.finish_reason"
	attrCandidates   = "genia.candidates"
	attrErrorKind    = "genia.error.kind"
	attrHasCode      = "genia.has_code"
)

// WithTracerProvider sets where generation spans are sent. The default is
// the global provider, which drops spans until one is installed.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(g *Generator) {
		g.tracer = tp.Tracer(tracerName)
	}
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// startRun opens the span covering one Generate call.
func (g *Generator) startRun(ctx context.Context) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, spanGenerate, trace.WithAttributes(
		attribute.String(attrProvider, g.provider),
		attribute.Int(attrCandidates, len(g.models)),
	))
}

// startAttempt opens a child span for one candidate request.
func (g *Generator) startAttempt(ctx context.Context, req *llm.CompletionRequest) (context.Context, trace.Span) {
	ctx, span := g.tracer.Start(ctx, spanAttempt, trace.WithAttributes(
		attribute.String(attrProvider, g.provider),
		attribute.String(attrModel, req.Model),
	))
	if req.Temperature != nil {
		span.SetAttributes(attribute.Float64(attrTemperature, *req.Temperature))
	}
	if req.MaxTokens > 0 {
		span.SetAttributes(attribute.Int(attrMaxTokens, req.MaxTokens))
	}
	return ctx, span
}

func recordResponse(span trace.Span, resp *llm.CompletionResponse) {
	span.SetAttributes(
		attribute.Int(attrInputTokens, resp.Usage.InputTokens),
		attribute.Int(attrOutputTokens, resp.Usage.OutputTokens),
	)
	if resp.StopReason != "" {
		span.SetAttributes(attribute.String(attrStopReason, resp.StopReason))
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	if kind := KindOf(err); kind != KindUnknown {
		span.SetAttributes(attribute.String(attrErrorKind, kind.String()))
	}
	span.SetStatus(codes.Error, err.Error())
}
