package pollinations

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/google/uuid"
)

var _ provider.Renderer = (*Renderer)(nil)

// Renderer requests images from a service that takes the prompt as part of
// the URL path and answers with the raw image bytes.
type Renderer struct {
	*Config
}

func NewRenderer(url, model string, options ...Option) (*Renderer, error) {
	if url == "" {
		url = DefaultURL
	}

	if model == "" {
		model = DefaultModel
	}

	cfg := &Config{
		url:   strings.TrimRight(url, "/"),
		model: model,

		width:  DefaultWidth,
		height: DefaultHeight,

		enhance: true,
		nologo:  true,

		timeout: DefaultTimeout,

		client: http.DefaultClient,
	}

	for _, option := range options {
		option(cfg)
	}

	if _, err := parseURL(cfg.url); err != nil {
		return nil, err
	}

	return &Renderer{
		Config: cfg,
	}, nil
}

func (r *Renderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	if options == nil {
		options = new(provider.RenderOptions)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.requestURL(input, options), nil)

	if err != nil {
		return nil, &provider.Failure{Reason: provider.ReasonError, Err: err}
	}

	resp, err := r.client.Do(req)

	if err != nil {
		return nil, provider.ConvertError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, convertError(resp)
	}

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, provider.ConvertError(err)
	}

	contentType := resp.Header.Get("Content-Type")

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &provider.Rendering{
		ID:    uuid.NewString(),
		Model: r.model,

		Content:     data,
		ContentType: contentType,
	}, nil
}

func (r *Renderer) requestURL(prompt string, options *provider.RenderOptions) string {
	width := r.width
	height := r.height

	if options.Width > 0 {
		width = options.Width
	}

	if options.Height > 0 {
		height = options.Height
	}

	query := url.Values{}
	query.Set("width", strconv.Itoa(width))
	query.Set("height", strconv.Itoa(height))
	query.Set("model", r.model)

	if r.enhance {
		query.Set("enhance", "true")
	}

	if r.nologo {
		query.Set("nologo", "true")
	}

	if options.Seed != nil {
		query.Set("seed", strconv.Itoa(*options.Seed))
	}

	return r.url + "/prompt/" + url.PathEscape(prompt) + "?" + query.Encode()
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)

	if err != nil {
		return nil, err
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid url")
	}

	return u, nil
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if len(data) == 0 {
		return provider.NewStatusFailure(resp.StatusCode, nil)
	}

	return provider.NewStatusFailure(resp.StatusCode, errors.New(strings.TrimSpace(string(data))))
}
