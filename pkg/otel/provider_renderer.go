package otel

import (
	"context"
	"time"

	"github.com/adrianliechti/menuart/pkg/provider"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/semconv/v1.38.0/genaiconv"
)

type Renderer interface {
	Observable
	provider.Renderer
}

type observableRenderer struct {
	model    string
	provider string

	renderer provider.Renderer

	operationDurationMetric genaiconv.ClientOperationDuration
	failureCounter          metric.Int64Counter
}

func NewRenderer(provider, model string, p provider.Renderer) Renderer {
	meter := otel.Meter(instrumentationName)

	operationDurationMetric, _ := genaiconv.NewClientOperationDuration(meter)
	failureCounter, _ := meter.Int64Counter("menuart.render.failures")

	return &observableRenderer{
		renderer: p,

		model:    model,
		provider: provider,

		operationDurationMetric: operationDurationMetric,
		failureCounter:          failureCounter,
	}
}

func (p *observableRenderer) otelSetup() {
}

func (p *observableRenderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "render "+p.model)
	defer span.End()

	timestamp := time.Now()

	result, err := p.renderer.Render(ctx, input, options)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if p.failureCounter != nil {
			p.failureCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("provider", p.provider),
				attribute.String("reason", string(provider.ReasonOf(err))),
			))
		}
	}

	if result != nil {
		duration := time.Since(timestamp).Seconds()

		providerName := genaiconv.ProviderNameAttr(p.provider)
		providerModel := p.model

		if result.Model != "" {
			providerModel = result.Model
		}

		p.operationDurationMetric.Record(ctx, duration,
			genaiconv.OperationNameGenerateContent,
			providerName,
			p.operationDurationMetric.AttrRequestModel(p.model),
			p.operationDurationMetric.AttrResponseModel(providerModel),
		)
	}

	return result, err
}

func (p *observableRenderer) Release(ctx context.Context) error {
	if r, ok := p.renderer.(provider.Releaser); ok {
		return r.Release(ctx)
	}

	return nil
}
