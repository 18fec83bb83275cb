package provider

import (
	"context"
)

type Renderer interface {
	Render(ctx context.Context, input string, options *RenderOptions) (*Rendering, error)
}

// Releaser is implemented by renderers holding an exclusive local resource
// that can be freed between catalog items.
type Releaser interface {
	Release(ctx context.Context) error
}

type RenderOptions struct {
	Width  int
	Height int

	Seed *int
}

type Rendering struct {
	ID    string
	Model string

	Content     []byte
	ContentType string
}
