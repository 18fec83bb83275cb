package fallback

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/adrianliechti/menuart/pkg/router"
)

var (
	_ provider.Renderer = (*Renderer)(nil)
	_ provider.Releaser = (*Renderer)(nil)
)

// Renderer asks its backends in order and returns the first image produced.
// Backends that keep failing are skipped for a while.
type Renderer struct {
	renderers []provider.Renderer
	circuits  []*router.Circuit

	failureThreshold int
	recoveryTimeout  time.Duration
}

type Option func(*Renderer)

func WithFailureThreshold(threshold int) Option {
	return func(r *Renderer) {
		r.failureThreshold = threshold
	}
}

func WithRecoveryTimeout(timeout time.Duration) Option {
	return func(r *Renderer) {
		r.recoveryTimeout = timeout
	}
}

func NewRenderer(renderers []provider.Renderer, options ...Option) (*Renderer, error) {
	if len(renderers) == 0 {
		return nil, errors.New("at least one renderer is required")
	}

	circuits := make([]*router.Circuit, len(renderers))

	for i := range circuits {
		circuits[i] = router.NewCircuit()
	}

	r := &Renderer{
		renderers: renderers,
		circuits:  circuits,

		failureThreshold: router.DefaultFailureThreshold,
		recoveryTimeout:  router.DefaultRecoveryTimeout,
	}

	for _, option := range options {
		option(r)
	}

	return r, nil
}

func (r *Renderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	var last error

	for i, renderer := range r.renderers {
		circuit := r.circuits[i]

		if !circuit.IsAvailable(r.recoveryTimeout) {
			continue
		}

		result, err := renderer.Render(ctx, input, options)

		if err == nil {
			circuit.RecordSuccess()
			return result, nil
		}

		if ctx.Err() != nil {
			return nil, err
		}

		circuit.RecordFailure(r.failureThreshold)

		slog.DebugContext(ctx, "renderer failed, trying next", "index", i, "reason", provider.ReasonOf(err), "error", err)

		last = err
	}

	if last == nil {
		return nil, &provider.Failure{Reason: provider.ReasonError, Err: errors.New("all renderers are unavailable")}
	}

	return nil, last
}

func (r *Renderer) Release(ctx context.Context) error {
	var result error

	for _, renderer := range r.renderers {
		if releaser, ok := renderer.(provider.Releaser); ok {
			result = errors.Join(result, releaser.Release(ctx))
		}
	}

	return result
}
