package services

import (
	"context"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type instrumentedLLM struct {
	next     LLMService
	tracer   trace.Tracer
	duration metric.Float64Histogram
	failures metric.Int64Counter
	attrs    []attribute.KeyValue
}

// InstrumentLLM wraps llm with a span per call, a latency histogram and an
// error counter. Instrument creation failures fall back to the bare service.
func InstrumentLLM(llm LLMService, tracer trace.Tracer, meter metric.Meter, log *zap.Logger) LLMService {
	duration, err := meter.Float64Histogram(
		"llm.request.duration",
		metric.WithDescription("LLM request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		log.Warn("failed to create llm duration histogram", zap.Error(err))
		return llm
	}

	failures, err := meter.Int64Counter(
		"llm.request.errors",
		metric.WithDescription("Failed LLM requests"),
	)
	if err != nil {
		log.Warn("failed to create llm error counter", zap.Error(err))
		return llm
	}

	return &instrumentedLLM{
		next:     llm,
		tracer:   tracer,
		duration: duration,
		failures: failures,
		attrs: []attribute.KeyValue{
			attribute.String("llm.provider", llm.Provider()),
			attribute.String("llm.model", llm.Model()),
		},
	}
}

func (i *instrumentedLLM) Provider() string { return i.next.Provider() }

func (i *instrumentedLLM) Model() string { return i.next.Model() }

func (i *instrumentedLLM) Generate(ctx context.Context, req ChatRequest) (string, error) {
	ctx, span := i.tracer.Start(ctx, "llm_generate", trace.WithAttributes(i.requestAttrs(req)...))
	defer span.End()

	start := time.Now()
	text, err := i.next.Generate(ctx, req)
	i.record(ctx, span, start, err)
	if err == nil {
		span.SetAttributes(attribute.Int("llm.response_chars", len(text)))
	}

	return text, err
}

func (i *instrumentedLLM) Stream(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, span := i.tracer.Start(ctx, "llm_stream", trace.WithAttributes(i.requestAttrs(req)...))
		defer span.End()

		start := time.Now()
		chunks := 0
		var streamErr error

		for chunk, err := range i.next.Stream(ctx, req) {
			if err != nil {
				streamErr = err
			} else {
				chunks++
			}
			if !yield(chunk, err) {
				break
			}
			if err != nil {
				break
			}
		}

		span.SetAttributes(attribute.Int("llm.chunks", chunks))
		i.record(ctx, span, start, streamErr)
	}
}

func (i *instrumentedLLM) requestAttrs(req ChatRequest) []attribute.KeyValue {
	attrs := append([]attribute.KeyValue{}, i.attrs...)
	return append(attrs,
		attribute.Int("llm.messages", len(req.Messages)),
		attribute.Bool("llm.json", req.JSON),
	)
}

func (i *instrumentedLLM) record(ctx context.Context, span trace.Span, start time.Time, err error) {
	i.duration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(i.attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.failures.Add(ctx, 1, metric.WithAttributes(i.attrs...))
	}
}
