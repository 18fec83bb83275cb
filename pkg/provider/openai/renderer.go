package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/google/uuid"

	"github.com/openai/openai-go/v3"
)

var _ provider.Renderer = (*Renderer)(nil)

type Renderer struct {
	*Config
	images openai.ImageService
}

const DefaultModel = "gpt-image-1"

func NewRenderer(url, model string, options ...Option) (*Renderer, error) {
	if model == "" {
		model = DefaultModel
	}

	cfg := &Config{
		url:   url,
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	return &Renderer{
		Config: cfg,
		images: openai.NewImageService(cfg.Options()...),
	}, nil
}

func (r *Renderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	if options == nil {
		options = new(provider.RenderOptions)
	}

	params := openai.ImageGenerateParams{
		Model:  r.model,
		Prompt: input,
	}

	if size := r.imageSize(options); size != "" {
		params.Size = openai.ImageGenerateParamsSize(size)
	}

	image, err := r.images.Generate(ctx, params)

	if err != nil {
		return nil, convertError(err)
	}

	if len(image.Data) == 0 {
		return nil, &provider.Failure{Reason: provider.ReasonError, Err: errors.New("no image in response")}
	}

	data, err := r.getData(ctx, image.Data[0])

	if err != nil {
		return nil, provider.ConvertError(err)
	}

	return &provider.Rendering{
		ID:    uuid.NewString(),
		Model: r.model,

		Content:     data,
		ContentType: http.DetectContentType(data),
	}, nil
}

func (r *Renderer) imageSize(options *provider.RenderOptions) string {
	if options.Width > 0 && options.Height > 0 {
		return fmt.Sprintf("%dx%d", options.Width, options.Height)
	}

	return r.size
}

func (r *Renderer) getData(ctx context.Context, image openai.Image) ([]byte, error) {
	if image.URL != "" {
		if strings.HasPrefix(image.URL, "data:") {
			re := regexp.MustCompile(`data:([a-zA-Z]+\/[a-zA-Z0-9.+_-]+);base64,\s*(.+)`)

			match := re.FindStringSubmatch(image.URL)

			if len(match) != 3 {
				return nil, fmt.Errorf("invalid data url")
			}

			return base64.StdEncoding.DecodeString(match[2])
		}

		req, err := http.NewRequestWithContext(ctx, "GET", image.URL, nil)

		if err != nil {
			return nil, err
		}

		resp, err := r.client.Do(req)

		if err != nil {
			return nil, err
		}

		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, provider.NewStatusFailure(resp.StatusCode, nil)
		}

		return io.ReadAll(resp.Body)
	}

	if image.B64JSON != "" {
		return base64.StdEncoding.DecodeString(image.B64JSON)
	}

	return nil, errors.New("invalid image data")
}
