package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tanpawarit/screening-decision"

type Config struct {
	Enabled     bool   `envconfig:"ENABLED" default:"false"`
	ServiceName string `envconfig:"SERVICE_NAME" split_words:"true" default:"screening-decision"`
	PrettyPrint bool   `envconfig:"PRETTY_PRINT" split_words:"true" default:"false"`
}

// TracerProvider wraps the sdk provider so callers only need Shutdown.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// NewTracerProvider installs a global provider that exports spans to w.
// When tracing is disabled the global no-op provider is left in place and nil is returned.
func NewTracerProvider(cfg Config, w io.Writer) (*TracerProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create trace exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)

	return &TracerProvider{provider: provider}, nil
}

func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp == nil || tp.provider == nil {
		return nil
	}
	return tp.provider.Shutdown(ctx)
}

func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

var (
	AttrConversationID = attribute.Key("screening.conversation.id")
	AttrMatchID        = attribute.Key("screening.match.id")
	AttrOutcome        = attribute.Key("screening.analysis.outcome")
	AttrForce          = attribute.Key("screening.analysis.force")
	AttrToolName       = attribute.Key("screening.tool.name")
	AttrToolCallID     = attribute.Key("screening.tool.call_id")
	AttrToolCount      = attribute.Key("screening.tool.count")
	AttrDecisionType   = attribute.Key("screening.decision.type")
	AttrEngineBackend  = attribute.Key("screening.engine.backend")
)
