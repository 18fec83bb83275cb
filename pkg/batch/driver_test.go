package batch_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/adrianliechti/menuart/pkg/batch"
	"github.com/adrianliechti/menuart/pkg/catalog"
	"github.com/adrianliechti/menuart/pkg/limiter"
	"github.com/adrianliechti/menuart/pkg/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRenderer struct {
	render func(prompt string) (*provider.Rendering, error)

	calls    atomic.Int64
	releases atomic.Int64

	prompts []string
}

func (m *mockRenderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	m.calls.Add(1)
	m.prompts = append(m.prompts, input)

	if m.render == nil {
		return &provider.Rendering{ID: "test", Content: []byte("image:" + input)}, nil
	}

	return m.render(input)
}

func (m *mockRenderer) Release(ctx context.Context) error {
	m.releases.Add(1)
	return nil
}

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return nil
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Categories: []catalog.Category{
			{
				Name:         "burgers",
				Dir:          "burgers",
				CrossSection: true,

				Items: []catalog.MenuItem{
					{ID: "classic", Name: "The Classic", Description: "beef"},
					{ID: "melt", Name: "The Melt", Description: "cheese"},
				},
			},
			{
				Name: "sides",
				Dir:  "sides",

				Items: []catalog.MenuItem{
					{ID: "fries", Name: "Fries"},
				},
			},
			{
				Name: "drinks",
				Dir:  "drinks",

				Items: []catalog.MenuItem{
					{ID: "cola", Name: "Cola"},
					{ID: "water", Name: "Water"},
				},
			},
		},
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()

	var count int

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			count++
		}

		return nil
	})

	require.NoError(t, err)
	return count
}

func TestNew(t *testing.T) {
	t.Run("requires renderer", func(t *testing.T) {
		_, err := batch.New(nil, testCatalog())
		require.Error(t, err)
	})

	t.Run("requires catalog", func(t *testing.T) {
		_, err := batch.New(&mockRenderer{}, nil)
		require.Error(t, err)
	})
}

func TestRun(t *testing.T) {
	t.Run("all views succeed", func(t *testing.T) {
		dir := t.TempDir()
		c := testCatalog()

		renderer := &mockRenderer{}
		pacer := &countingPacer{}

		d, err := batch.New(renderer, c, batch.WithOutputDir(dir), batch.WithPacer(pacer))
		require.NoError(t, err)

		report, err := d.Run(context.Background())
		require.NoError(t, err)

		expected := 2*2 + 1 + 2

		assert.Equal(t, expected, report.Total)
		assert.Equal(t, expected, report.Succeeded)
		assert.Equal(t, 0, report.Failed)
		assert.Equal(t, expected, countFiles(t, dir))

		// one pause and one release per item, not per image
		assert.Equal(t, 5, pacer.waits)
		assert.Equal(t, int64(5), renderer.releases.Load())

		data, err := os.ReadFile(filepath.Join(dir, "burgers", "classic-cross.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "image:"+catalog.ComposePrompt(c.Categories[0].Items[0], catalog.ViewCross), string(data))

		assert.FileExists(t, filepath.Join(dir, "burgers", "melt.jpg"))
		assert.FileExists(t, filepath.Join(dir, "sides", "fries.jpg"))
		assert.FileExists(t, filepath.Join(dir, "drinks", "water.jpg"))
		assert.NoFileExists(t, filepath.Join(dir, "sides", "fries-cross.jpg"))
	})

	t.Run("all views fail", func(t *testing.T) {
		dir := t.TempDir()

		renderer := &mockRenderer{
			render: func(prompt string) (*provider.Rendering, error) {
				return nil, provider.NewStatusFailure(500, nil)
			},
		}

		d, err := batch.New(renderer, testCatalog(), batch.WithOutputDir(dir))
		require.NoError(t, err)

		report, err := d.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 0, report.Succeeded)
		assert.Equal(t, report.Total, report.Failed)
		assert.Len(t, report.Failures, report.Total)
		assert.Equal(t, int64(report.Total), renderer.calls.Load())
		assert.Equal(t, 0, countFiles(t, dir))
	})

	t.Run("failure is local to one view", func(t *testing.T) {
		dir := t.TempDir()

		renderer := &mockRenderer{
			render: func(prompt string) (*provider.Rendering, error) {
				if bytes.Contains([]byte(prompt), []byte("The Classic cross-section")) {
					return nil, &provider.Failure{Reason: provider.ReasonTimeout}
				}

				return &provider.Rendering{Content: []byte("ok")}, nil
			},
		}

		d, err := batch.New(renderer, testCatalog(), batch.WithOutputDir(dir))
		require.NoError(t, err)

		report, err := d.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, report.Total-1, report.Succeeded)

		require.Len(t, report.Failures, 1)
		assert.Equal(t, "classic", report.Failures[0].Item)
		assert.Equal(t, catalog.ViewCross, report.Failures[0].View)
		assert.Equal(t, provider.ReasonTimeout, provider.ReasonOf(report.Failures[0].Err))
	})

	t.Run("pipeline failure gives up the rest of the item", func(t *testing.T) {
		dir := t.TempDir()

		renderer := &mockRenderer{
			render: func(prompt string) (*provider.Rendering, error) {
				if bytes.HasPrefix([]byte(prompt), []byte("The Melt")) {
					return nil, &provider.Failure{Reason: provider.ReasonPipeline, Err: errors.New("out of memory")}
				}

				return &provider.Rendering{Content: []byte("ok")}, nil
			},
		}

		d, err := batch.New(renderer, testCatalog(), batch.WithOutputDir(dir))
		require.NoError(t, err)

		report, err := d.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, report.Failed)
		assert.Equal(t, report.Total-2, report.Succeeded)
		assert.Equal(t, int64(report.Total-1), renderer.calls.Load())

		require.Len(t, report.Failures, 2)
		assert.ErrorIs(t, report.Failures[1].Err, batch.ErrItemAborted)
		assert.NoFileExists(t, filepath.Join(dir, "burgers", "melt.jpg"))
		assert.NoFileExists(t, filepath.Join(dir, "burgers", "melt-cross.jpg"))
	})

	t.Run("write failure is counted", func(t *testing.T) {
		dir := t.TempDir()

		// a file where the category directory should be
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sides"), []byte("x"), 0644))

		d, err := batch.New(&mockRenderer{}, testCatalog(), batch.WithOutputDir(dir))
		require.NoError(t, err)

		report, err := d.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, report.Failed)

		var writeErr *batch.WriteError
		require.ErrorAs(t, report.Failures[0].Err, &writeErr)
		assert.Equal(t, filepath.Join(dir, "sides", "fries.jpg"), writeErr.Path)
	})

	t.Run("empty image is a failure", func(t *testing.T) {
		dir := t.TempDir()

		renderer := &mockRenderer{
			render: func(prompt string) (*provider.Rendering, error) {
				return &provider.Rendering{}, nil
			},
		}

		d, err := batch.New(renderer, testCatalog(), batch.WithOutputDir(dir))
		require.NoError(t, err)

		report, err := d.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, report.Total, report.Failed)
		assert.ErrorIs(t, report.Failures[0].Err, batch.ErrEmptyImage)
	})

	t.Run("cancellation stops the traversal", func(t *testing.T) {
		dir := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())

		pacer := limiter.PacerFunc(func(ctx context.Context) error {
			cancel()
			return ctx.Err()
		})

		renderer := &mockRenderer{}

		d, err := batch.New(renderer, testCatalog(), batch.WithOutputDir(dir), batch.WithPacer(pacer))
		require.NoError(t, err)

		report, err := d.Run(ctx)
		require.ErrorIs(t, err, context.Canceled)

		assert.Equal(t, 2, report.Succeeded)
		assert.Equal(t, int64(2), renderer.calls.Load())
	})
}

func TestRequestImage(t *testing.T) {
	t.Run("untyped errors become failures", func(t *testing.T) {
		renderer := &mockRenderer{
			render: func(prompt string) (*provider.Rendering, error) {
				return nil, context.DeadlineExceeded
			},
		}

		d, err := batch.New(renderer, testCatalog())
		require.NoError(t, err)

		_, err = d.RequestImage(context.Background(), "prompt")

		var failure *provider.Failure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, provider.ReasonTimeout, failure.Reason)
	})

	t.Run("render options are passed as copies", func(t *testing.T) {
		seed := 7

		var got *provider.RenderOptions

		renderer := renderFunc(func(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
			got = options
			options.Width = 1

			return &provider.Rendering{Content: []byte("ok")}, nil
		})

		options := &provider.RenderOptions{Seed: &seed}

		d, err := batch.New(renderer, testCatalog(), batch.WithRenderOptions(options))
		require.NoError(t, err)

		_, err = d.RequestImage(context.Background(), "prompt")
		require.NoError(t, err)

		require.NotNil(t, got)
		assert.Equal(t, 7, *got.Seed)
		assert.Equal(t, 0, options.Width)
	})
}

type renderFunc func(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error)

func (f renderFunc) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	return f(ctx, input, options)
}

func TestReportSummary(t *testing.T) {
	report := &batch.Report{Total: 3, Succeeded: 2}

	var buf bytes.Buffer
	require.NoError(t, report.WriteSummary(&buf))
	assert.Equal(t, "generated 2 of 3 images\n", buf.String())
}
