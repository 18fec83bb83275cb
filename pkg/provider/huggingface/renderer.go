package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/google/uuid"
)

var _ provider.Renderer = (*Renderer)(nil)

// Renderer posts prompts to a hosted inference endpoint. A 503 answer means
// the model is still being loaded and the request is retried with a linearly
// growing delay.
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

		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		timeout:  DefaultTimeout,

		client: http.DefaultClient,

		wait: sleep,
	}

	for _, option := range options {
		option(cfg)
	}

	if cfg.attempts < 1 {
		cfg.attempts = 1
	}

	return &Renderer{
		Config: cfg,
	}, nil
}

type queryRequest struct {
	Inputs string `json:"inputs"`
}

func (r *Renderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	body, err := json.Marshal(queryRequest{
		Inputs: input,
	})

	if err != nil {
		return nil, &provider.Failure{Reason: provider.ReasonError, Err: err}
	}

	var last *provider.Failure

	for attempt := 1; attempt <= r.attempts; attempt++ {
		data, contentType, err := r.query(ctx, body)

		if err == nil {
			return &provider.Rendering{
				ID:    uuid.NewString(),
				Model: r.model,

				Content:     data,
				ContentType: contentType,
			}, nil
		}

		failure := provider.ConvertError(err)

		if ctx.Err() != nil {
			return nil, failure
		}

		switch failure.Reason {
		case provider.ReasonLoading:
			last = failure

			if attempt == r.attempts {
				continue
			}

			delay := time.Duration(attempt) * r.backoff

			slog.InfoContext(ctx, "model loading, waiting", "model", r.model, "attempt", attempt, "delay", delay)

			if err := r.wait(ctx, delay); err != nil {
				return nil, provider.ConvertError(err)
			}

		case provider.ReasonTimeout:
			last = failure

			slog.WarnContext(ctx, "request timed out", "model", r.model, "attempt", attempt)

		default:
			return nil, failure
		}
	}

	return nil, last
}

func (r *Renderer) query(ctx context.Context, body []byte) ([]byte, string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	u, err := url.JoinPath(r.url, "models", r.model)

	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))

	if err != nil {
		return nil, "", err
	}

	req.Header.Set("Content-Type", "application/json")

	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)

	if err != nil {
		return nil, "", err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", convertError(resp)
	}

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}

func convertError(resp *http.Response) error {
	if resp.StatusCode == http.StatusServiceUnavailable {
		return &provider.Failure{
			Reason:     provider.ReasonLoading,
			StatusCode: resp.StatusCode,
		}
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 100))

	if len(data) == 0 {
		return provider.NewStatusFailure(resp.StatusCode, nil)
	}

	return provider.NewStatusFailure(resp.StatusCode, errors.New(strings.TrimSpace(string(data))))
}
