package gotel

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// OTELProvider is the default Provider, backed by the OpenTelemetry SDK
// with in-process tracer/meter providers. No exporter or metric reader is
// wired: NewOTELProvider takes no SDK options, so spans and measurements
// stay in process.
type OTELProvider struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	tracer     trace.Tracer
	meter      metric.Meter
	propagator propagation.TextMapPropagator
}

// NewOTELProvider builds a Provider whose spans/metrics are tagged under
// serviceName. The returned Provider's Shutdown must be called to flush
// and release SDK resources.
func NewOTELProvider(serviceName string) Provider {
	tp := sdktrace.NewTracerProvider()
	mp := sdkmetric.NewMeterProvider()

	return &OTELProvider{
		tp:         tp,
		mp:         mp,
		tracer:     tp.Tracer(serviceName),
		meter:      mp.Meter(serviceName),
		propagator: propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
	}
}

func (p *OTELProvider) Start(ctx context.Context, spanName string, opts ...SpanStartOption) (context.Context, Span) {
	ctx, span := p.tracer.Start(ctx, spanName)
	return ctx, &OTELSpan{span: span}
}

func (p *OTELProvider) Extract(ctx context.Context, carrier TextMapCarrier) (context.Context, SpanContext) {
	carrierImpl := &textMapCarrier{carrier: carrier}
	ctx = p.propagator.Extract(ctx, carrierImpl)

	if span := trace.SpanFromContext(ctx); span != nil {
		return ctx, &OTELSpanContext{spanContext: span.SpanContext()}
	}
	return ctx, nil
}

func (p *OTELProvider) Inject(ctx context.Context, carrier TextMapCarrier, spanContext SpanContext) error {
	carrierImpl := &textMapCarrier{carrier: carrier}

	var sc trace.SpanContext
	if otelSC, ok := spanContext.(*OTELSpanContext); ok {
		sc = otelSC.spanContext
	}

	ctx = trace.ContextWithSpanContext(ctx, sc)
	p.propagator.Inject(ctx, carrierImpl)
	return nil
}

func (p *OTELProvider) Counter(name string, opts ...InstrumentOption) Counter {
	counter, _ := p.meter.Float64Counter(name)
	return &OTELCounter{counter: counter}
}

func (p *OTELProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	histogram, _ := p.meter.Float64Histogram(name)
	return &OTELHistogram{histogram: histogram}
}

func (p *OTELProvider) Gauge(name string, opts ...InstrumentOption) Gauge {
	gauge, _ := p.meter.Float64Gauge(name)
	return &OTELGauge{gauge: gauge}
}

func (p *OTELProvider) Shutdown(ctx context.Context) error {
	if err := p.tp.Shutdown(ctx); err != nil {
		return err
	}
	return p.mp.Shutdown(ctx)
}

type OTELSpan struct {
	span trace.Span
}

func (s *OTELSpan) Context() SpanContext {
	return &OTELSpanContext{spanContext: s.span.SpanContext()}
}

func (s *OTELSpan) SetAttributes(attributes ...KeyValue) {
	attrs := convertAttributes(attributes)
	s.span.SetAttributes(attrs...)
}

func (s *OTELSpan) SetStatus(code StatusCode, description string) {
	s.span.SetStatus(convertStatusCode(code), description)
}

func (s *OTELSpan) RecordError(err error, attributes ...KeyValue) {
	attrs := convertAttributes(attributes)
	s.span.RecordError(err, trace.WithAttributes(attrs...))
}

func (s *OTELSpan) AddEvent(name string, attributes ...KeyValue) {
	attrs := convertAttributes(attributes)
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (s *OTELSpan) End(options ...SpanEndOption) {
	s.span.End()
}

type OTELSpanContext struct {
	spanContext trace.SpanContext
}

func (sc *OTELSpanContext) TraceID() string {
	return sc.spanContext.TraceID().String()
}

func (sc *OTELSpanContext) SpanID() string {
	return sc.spanContext.SpanID().String()
}

func (sc *OTELSpanContext) IsSampled() bool {
	return sc.spanContext.IsSampled()
}

func (sc *OTELSpanContext) Serialize() map[string]string {
	return map[string]string{
		"traceparent": sc.spanContext.TraceID().String() + "-" + sc.spanContext.SpanID().String(),
	}
}

type OTELCounter struct {
	counter metric.Float64Counter
}

func (c *OTELCounter) Add(ctx context.Context, value float64, attributes ...KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(convertAttributes(attributes)...))
}

func (c *OTELCounter) Increment(ctx context.Context, attributes ...KeyValue) {
	c.Add(ctx, 1, attributes...)
}

type OTELHistogram struct {
	histogram metric.Float64Histogram
}

func (h *OTELHistogram) Record(ctx context.Context, value float64, attributes ...KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(convertAttributes(attributes)...))
}

type OTELGauge struct {
	gauge metric.Float64Gauge
}

func (g *OTELGauge) Record(ctx context.Context, value float64, attributes ...KeyValue) {
	g.gauge.Record(ctx, value, metric.WithAttributes(convertAttributes(attributes)...))
}

type textMapCarrier struct {
	carrier TextMapCarrier
}

func (c *textMapCarrier) Get(key string) string { return c.carrier.Get(key) }
func (c *textMapCarrier) Set(key, value string) { c.carrier.Set(key, value) }
func (c *textMapCarrier) Keys() []string        { return c.carrier.Keys() }
