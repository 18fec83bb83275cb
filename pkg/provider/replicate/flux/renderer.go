package flux

import (
	"context"
	"errors"
	"slices"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/adrianliechti/menuart/pkg/provider/replicate"
	"github.com/google/uuid"
)

var _ provider.Renderer = (*Renderer)(nil)

type Renderer struct {
	*replicate.Client

	model string
}

const (
	FluxSchnell string = "black-forest-labs/flux-schnell"
	FluxDev     string = "black-forest-labs/flux-dev"
	FluxPro     string = "black-forest-labs/flux-pro"

	FluxPro11      string = "black-forest-labs/flux-1.1-pro"
	FluxProUltra11 string = "black-forest-labs/flux-1.1-pro-ultra"
)

var SupportedModels = []string{
	FluxPro,
	FluxDev,
	FluxSchnell,

	FluxPro11,
	FluxProUltra11,
}

func NewRenderer(model string, options ...replicate.Option) (*Renderer, error) {
	if !slices.Contains(SupportedModels, model) {
		return nil, errors.New("unsupported model")
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

	input, err := r.convertInput(prompt, options)

	if err != nil {
		return nil, err
	}

	resp, err := r.Run(ctx, input)

	if err != nil {
		return nil, err
	}

	data, err := replicate.ReadOutput(resp)

	if err != nil {
		return nil, err
	}

	return &provider.Rendering{
		ID:    uuid.New().String(),
		Model: r.model,

		Content:     data,
		ContentType: "image/jpeg",
	}, nil
}

func (r *Renderer) convertInput(prompt string, options *provider.RenderOptions) (replicate.PredictionInput, error) {
	switch r.model {
	case FluxSchnell, FluxDev:
		// https://replicate.com/black-forest-labs/flux-schnell/api/schema#input-schema
		// https://replicate.com/black-forest-labs/flux-dev/api/schema#input-schema
		input := map[string]any{
			"prompt": prompt,

			"aspect_ratio":  "1:1",
			"output_format": "jpg",
		}

		if options.Seed != nil {
			input["seed"] = *options.Seed
		}

		return input, nil

	case FluxPro, FluxPro11, FluxProUltra11:
		// https://replicate.com/black-forest-labs/flux-pro/api/schema#input-schema
		// https://replicate.com/black-forest-labs/flux-1.1-pro/api/schema#input-schema
		input := map[string]any{
			"prompt": prompt,

			"aspect_ratio":  "1:1",
			"output_format": "jpg",
		}

		if options.Seed != nil {
			input["seed"] = *options.Seed
		}

		return input, nil
	}

	return nil, errors.New("unsupported model")
}
