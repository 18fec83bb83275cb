package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adrianliechti/menuart/pkg/catalog"
	"github.com/adrianliechti/menuart/pkg/limiter"
	"github.com/adrianliechti/menuart/pkg/provider"
)

const DefaultOutputDir = "public/images"

var (
	ErrEmptyImage  = errors.New("empty image")
	ErrItemAborted = errors.New("item aborted after earlier failure")
)

// Request is one image to produce: a view of an item and where it goes.
type Request struct {
	Category catalog.Category
	Item     catalog.MenuItem
	View     catalog.ViewKind

	Prompt string
	Path   string
}

// WriteError marks a failure to persist an otherwise successful rendering.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Driver walks a catalog and turns every requested view into an image file.
// It never stops on a failed item; failures end up in the report.
type Driver struct {
	renderer provider.Renderer
	catalog  *catalog.Catalog

	pacer  limiter.Pacer
	output string

	options *provider.RenderOptions

	logger *slog.Logger
}

type Option func(*Driver)

func WithPacer(p limiter.Pacer) Option {
	return func(d *Driver) {
		d.pacer = p
	}
}

func WithOutputDir(dir string) Option {
	return func(d *Driver) {
		d.output = dir
	}
}

func WithRenderOptions(options *provider.RenderOptions) Option {
	return func(d *Driver) {
		d.options = options
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func New(r provider.Renderer, c *catalog.Catalog, options ...Option) (*Driver, error) {
	if r == nil {
		return nil, errors.New("renderer is required")
	}

	if c == nil {
		return nil, errors.New("catalog is required")
	}

	d := &Driver{
		renderer: r,
		catalog:  c,

		pacer:  limiter.None,
		output: DefaultOutputDir,

		logger: slog.Default(),
	}

	for _, option := range options {
		option(d)
	}

	if d.pacer == nil {
		d.pacer = limiter.None
	}

	return d, nil
}

// Run traverses the whole catalog. The returned error is only set when ctx
// was cancelled; the report is valid in either case.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Total: d.catalog.ViewCount(),
	}

	for _, category := range d.catalog.Categories {
		d.logger.InfoContext(ctx, "generating category", "category", category.Name, "items", len(category.Items))

		for i, item := range category.Items {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			d.logger.InfoContext(ctx, "generating item", "category", category.Name, "item", item.ID, "name", item.Name, "index", i+1, "count", len(category.Items))

			d.processItem(ctx, category, item, report)

			d.release(ctx)

			if err := d.pacer.Wait(ctx); err != nil {
				return report, err
			}
		}
	}

	d.logger.InfoContext(ctx, "generation complete", "succeeded", report.Succeeded, "failed", report.Failed)

	return report, nil
}

func (d *Driver) processItem(ctx context.Context, category catalog.Category, item catalog.MenuItem, report *Report) {
	views := category.Views()

	for i, view := range views {
		req := d.request(category, item, view)

		err := d.generate(ctx, req)

		if err == nil {
			report.Succeeded++

			d.logger.InfoContext(ctx, "image saved", "item", item.ID, "view", view, "path", req.Path)
			continue
		}

		report.fail(req, err)

		d.logger.WarnContext(ctx, "image failed", "item", item.ID, "view", view, "reason", provider.ReasonOf(err), "error", err)

		if !abortsItem(err) {
			continue
		}

		for _, rest := range views[i+1:] {
			report.fail(d.request(category, item, rest), fmt.Errorf("%w: %w", ErrItemAborted, err))
		}

		return
	}
}

func (d *Driver) request(category catalog.Category, item catalog.MenuItem, view catalog.ViewKind) Request {
	return Request{
		Category: category,
		Item:     item,
		View:     view,

		Prompt: catalog.ComposePrompt(item, view),
		Path:   catalog.OutputPath(d.output, category, item, view),
	}
}

func (d *Driver) generate(ctx context.Context, req Request) error {
	rendering, err := d.RequestImage(ctx, req.Prompt)

	if err != nil {
		return err
	}

	if err := WriteImage(rendering.Content, req.Path); err != nil {
		return &WriteError{Path: req.Path, Err: err}
	}

	return nil
}

// RequestImage asks the renderer for a single image. Every error is returned
// as a *provider.Failure.
func (d *Driver) RequestImage(ctx context.Context, prompt string) (*provider.Rendering, error) {
	var options *provider.RenderOptions

	if d.options != nil {
		o := *d.options
		options = &o
	}

	rendering, err := d.renderer.Render(ctx, prompt, options)

	if err != nil {
		return nil, provider.ConvertError(err)
	}

	if rendering == nil || len(rendering.Content) == 0 {
		return nil, &provider.Failure{Reason: provider.ReasonError, Err: ErrEmptyImage}
	}

	return rendering, nil
}

func (d *Driver) release(ctx context.Context) {
	r, ok := d.renderer.(provider.Releaser)

	if !ok {
		return
	}

	if err := r.Release(ctx); err != nil {
		d.logger.WarnContext(ctx, "release failed", "error", err)
	}
}

func abortsItem(err error) bool {
	var writeErr *WriteError

	if errors.As(err, &writeErr) {
		return true
	}

	var failure *provider.Failure

	if errors.As(err, &failure) {
		return failure.AbortsItem()
	}

	return false
}
