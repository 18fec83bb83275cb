package limiter

import (
	"context"

	"github.com/adrianliechti/menuart/pkg/provider"

	"golang.org/x/time/rate"
)

type Renderer interface {
	Limiter
	provider.Renderer
}

type limitedRenderer struct {
	limiter  *rate.Limiter
	provider provider.Renderer
}

func NewRenderer(l *rate.Limiter, p provider.Renderer) Renderer {
	return &limitedRenderer{
		limiter:  l,
		provider: p,
	}
}

func (p *limitedRenderer) limiterSetup() {
}

func (p *limitedRenderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, convertError(ctx, err)
		}
	}

	return p.provider.Render(ctx, input, options)
}

func (p *limitedRenderer) Release(ctx context.Context) error {
	if r, ok := p.provider.(provider.Releaser); ok {
		return r.Release(ctx)
	}

	return nil
}

// convertError treats a wait that would overrun the deadline as a timeout.
func convertError(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		if _, ok := ctx.Deadline(); ok {
			return &provider.Failure{Reason: provider.ReasonTimeout, Err: err}
		}
	}

	return provider.ConvertError(err)
}
