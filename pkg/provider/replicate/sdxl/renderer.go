package sdxl

import (
	"context"
	"net/http"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/adrianliechti/menuart/pkg/provider/replicate"
	"github.com/google/uuid"
)

var _ provider.Renderer = (*Renderer)(nil)

const (
	// https://replicate.com/stability-ai/sdxl/api/schema#input-schema
	DefaultModel = "stability-ai/sdxl:db21e45d3f7023abc9825e12b9592c9ec1a66a45436c34bea345f28519e50f90"

	DefaultWidth  = 600
	DefaultHeight = 800

	DefaultScheduler     = "K_EULER_ANCESTRAL"
	DefaultSteps         = 50
	DefaultGuidanceScale = 7.5
)

type Renderer struct {
	*replicate.Client

	model string
}

func NewRenderer(model string, options ...replicate.Option) (*Renderer, error) {
	if model == "" {
		model = DefaultModel
	}

	client, err := replicate.New(model, options...)

	if err != nil {
		return nil, err
	}

	return &Renderer{
		Client: client,

		model: model,
	}, nil
}

func (r *Renderer) Render(ctx context.Context, prompt string, options *provider.RenderOptions) (*provider.Rendering, error) {
	if options == nil {
		options = new(provider.RenderOptions)
	}

	resp, err := r.Run(ctx, convertInput(prompt, options))

	if err != nil {
		return nil, err
	}

	data, err := replicate.ReadOutput(resp)

	if err != nil {
		return nil, err
	}

	return &provider.Rendering{
		ID:    uuid.NewString(),
		Model: r.model,

		Content:     data,
		ContentType: http.DetectContentType(data),
	}, nil
}

func convertInput(prompt string, options *provider.RenderOptions) replicate.PredictionInput {
	width := DefaultWidth
	height := DefaultHeight

	if options.Width > 0 {
		width = options.Width
	}

	if options.Height > 0 {
		height = options.Height
	}

	input := map[string]any{
		"prompt": prompt,

		"num_outputs": 1,

		"width":  width,
		"height": height,

		"scheduler":           DefaultScheduler,
		"num_inference_steps": DefaultSteps,
		"guidance_scale":      DefaultGuidanceScale,
	}

	if options.Seed != nil {
		input["seed"] = *options.Seed
	}

	return input
}
