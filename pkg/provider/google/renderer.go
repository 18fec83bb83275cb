package google

import (
	"context"
	"errors"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

var _ provider.Renderer = (*Renderer)(nil)

type Renderer struct {
	*Config
}

const DefaultModel = "gemini-2.5-flash-image"

func NewRenderer(model string, options ...Option) (*Renderer, error) {
	if model == "" {
		model = DefaultModel
	}

	cfg := &Config{
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	return &Renderer{
		Config: cfg,
	}, nil
}

func (r *Renderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	client, err := r.newClient(ctx)

	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(input, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}

	if r.aspectRatio != "" {
		config.ImageConfig = &genai.ImageConfig{
			AspectRatio: r.aspectRatio,
		}
	}

	image, err := client.Models.GenerateContent(ctx, r.model, contents, config)

	if err != nil {
		return nil, convertError(err)
	}

	result := &provider.Rendering{
		ID:    uuid.NewString(),
		Model: r.model,
	}

	if len(image.Candidates) == 0 || image.Candidates[0].Content == nil {
		return nil, &provider.Failure{Reason: provider.ReasonError, Err: errors.New("no candidates in response")}
	}

	for _, part := range image.Candidates[0].Content.Parts {
		if part.InlineData == nil {
			continue
		}

		result.Content = part.InlineData.Data
		result.ContentType = part.InlineData.MIMEType
	}

	if len(result.Content) == 0 {
		return nil, &provider.Failure{Reason: provider.ReasonError, Err: errors.New("no image in response")}
	}

	return result, nil
}

func convertError(err error) error {
	var apierr genai.APIError

	if errors.As(err, &apierr) && apierr.Code != 0 {
		return provider.NewStatusFailure(apierr.Code, err)
	}

	return provider.ConvertError(err)
}
