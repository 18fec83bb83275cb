package fallback_test

import (
	"context"
	"testing"
	"time"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/adrianliechti/menuart/pkg/router/fallback"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRenderer struct {
	name string
	err  error

	calls    int
	releases int
}

func (m *mockRenderer) Render(ctx context.Context, input string, options *provider.RenderOptions) (*provider.Rendering, error) {
	m.calls++

	if m.err != nil {
		return nil, m.err
	}

	return &provider.Rendering{Model: m.name, Content: []byte(input)}, nil
}

func (m *mockRenderer) Release(ctx context.Context) error {
	m.releases++
	return nil
}

func TestNewRenderer(t *testing.T) {
	_, err := fallback.NewRenderer(nil)
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	t.Run("first healthy wins", func(t *testing.T) {
		a := &mockRenderer{name: "a"}
		b := &mockRenderer{name: "b"}

		r, err := fallback.NewRenderer([]provider.Renderer{a, b})
		require.NoError(t, err)

		result, err := r.Render(context.Background(), "burger", nil)
		require.NoError(t, err)

		assert.Equal(t, "a", result.Model)
		assert.Equal(t, 0, b.calls)
	})

	t.Run("falls back on failure", func(t *testing.T) {
		a := &mockRenderer{name: "a", err: provider.NewStatusFailure(500, nil)}
		b := &mockRenderer{name: "b"}

		r, err := fallback.NewRenderer([]provider.Renderer{a, b}, fallback.WithFailureThreshold(2), fallback.WithRecoveryTimeout(time.Hour))
		require.NoError(t, err)

		for range 3 {
			result, err := r.Render(context.Background(), "burger", nil)
			require.NoError(t, err)

			assert.Equal(t, "b", result.Model)
		}

		// circuit of a opened after two failures
		assert.Equal(t, 2, a.calls)
		assert.Equal(t, 3, b.calls)
	})

	t.Run("all failing returns last error", func(t *testing.T) {
		failure := &provider.Failure{Reason: provider.ReasonLoading}

		a := &mockRenderer{err: provider.NewStatusFailure(500, nil)}
		b := &mockRenderer{err: failure}

		r, err := fallback.NewRenderer([]provider.Renderer{a, b})
		require.NoError(t, err)

		_, err = r.Render(context.Background(), "burger", nil)
		assert.Same(t, failure, err)
	})

	t.Run("all circuits open", func(t *testing.T) {
		a := &mockRenderer{err: provider.NewStatusFailure(500, nil)}

		r, err := fallback.NewRenderer([]provider.Renderer{a}, fallback.WithFailureThreshold(1), fallback.WithRecoveryTimeout(time.Hour))
		require.NoError(t, err)

		_, err = r.Render(context.Background(), "burger", nil)
		require.Error(t, err)

		_, err = r.Render(context.Background(), "burger", nil)
		assert.ErrorContains(t, err, "unavailable")
		assert.Equal(t, 1, a.calls)
	})
}

func TestRelease(t *testing.T) {
	a := &mockRenderer{}
	b := &mockRenderer{}

	r, err := fallback.NewRenderer([]provider.Renderer{a, b})
	require.NoError(t, err)

	require.NoError(t, r.Release(context.Background()))

	assert.Equal(t, 1, a.releases)
	assert.Equal(t, 1, b.releases)
}
