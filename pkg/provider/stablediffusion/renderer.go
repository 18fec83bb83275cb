package stablediffusion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/google/uuid"
)

var (
	_ provider.Renderer = (*Renderer)(nil)
	_ provider.Releaser = (*Renderer)(nil)
)

// Renderer drives a diffusion model served on the local machine through an
// AUTOMATIC1111 compatible API. The accelerator is held exclusively, so only
// one generation runs at a time.
type Renderer struct {
	*Config

	mu       sync.Mutex
	unloaded bool
}

func NewRenderer(url, model string, options ...Option) (*Renderer, error) {
	if url == "" {
		url = DefaultURL
	}

	cfg := &Config{
		url:   strings.TrimRight(url, "/"),
		model: model,

		width:  DefaultWidth,
		height: DefaultHeight,

		steps: DefaultSteps,
		scale: DefaultGuidanceScale,

		timeout: DefaultTimeout,

		client: http.DefaultClient,
	}

	for _, option := range options {
		option(cfg)
	}

	return &Renderer{
		Config: cfg,
	}, nil
}

func (r *Renderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	if options == nil {
		options = new(provider.RenderOptions)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if r.unloaded {
		if err := r.post(ctx, "/sdapi/v1/reload-checkpoint", nil, nil); err != nil {
			return nil, pipelineError(err)
		}

		r.unloaded = false
	}

	req := txt2imgRequest{
		Prompt: input,

		Width:  r.width,
		Height: r.height,

		Steps:    r.steps,
		CfgScale: r.scale,

		SamplerName: r.sampler,

		Seed: options.Seed,
	}

	if options.Width > 0 {
		req.Width = options.Width
	}

	if options.Height > 0 {
		req.Height = options.Height
	}

	if r.model != "" {
		req.OverrideSettings = map[string]any{
			"sd_model_checkpoint": r.model,
		}
	}

	var resp txt2imgResponse

	if err := r.post(ctx, "/sdapi/v1/txt2img", req, &resp); err != nil {
		return nil, pipelineError(err)
	}

	if len(resp.Images) == 0 {
		return nil, pipelineError(errors.New("no image in response"))
	}

	data, err := decodeImage(resp.Images[0])

	if err != nil {
		return nil, pipelineError(err)
	}

	return &provider.Rendering{
		ID:    uuid.NewString(),
		Model: r.model,

		Content:     data,
		ContentType: http.DetectContentType(data),
	}, nil
}

func (r *Renderer) Release(ctx context.Context) error {
	if !r.unload {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unloaded {
		return nil
	}

	if err := r.post(ctx, "/sdapi/v1/unload-checkpoint", nil, nil); err != nil {
		return err
	}

	r.unloaded = true
	return nil
}

func (r *Renderer) post(ctx context.Context, path string, body any, result any) error {
	var reader io.Reader = http.NoBody

	if body != nil {
		data, err := json.Marshal(body)

		if err != nil {
			return err
		}

		reader = bytes.NewReader(data)
	}

	u, err := url.JoinPath(r.url, path)

	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, reader)

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return convertError(resp)
	}

	if result == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func decodeImage(val string) ([]byte, error) {
	if i := strings.Index(val, ";base64,"); i >= 0 {
		val = val[i+len(";base64,"):]
	}

	return base64.StdEncoding.DecodeString(val)
}

func pipelineError(err error) error {
	failure := provider.ConvertError(err)

	return &provider.Failure{
		Reason:     provider.ReasonPipeline,
		StatusCode: failure.StatusCode,

		Err: failure,
	}
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if len(data) == 0 {
		return provider.NewStatusFailure(resp.StatusCode, nil)
	}

	return provider.NewStatusFailure(resp.StatusCode, errors.New(strings.TrimSpace(string(data))))
}
