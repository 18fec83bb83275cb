package flux

import (
	"testing"

	"github.com/adrianliechti/menuart/pkg/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertInput(t *testing.T) {
	seed := 4

	for _, model := range SupportedModels {
		t.Run(model, func(t *testing.T) {
			r := &Renderer{model: model}

			input, err := r.convertInput("a burger", &provider.RenderOptions{Seed: &seed})
			require.NoError(t, err)

			assert.Equal(t, "a burger", input["prompt"])
			assert.Equal(t, "1:1", input["aspect_ratio"])
			assert.Equal(t, "jpg", input["output_format"])
			assert.Equal(t, 4, input["seed"])
		})
	}

	t.Run("without seed", func(t *testing.T) {
		r := &Renderer{model: FluxSchnell}

		input, err := r.convertInput("a burger", new(provider.RenderOptions))
		require.NoError(t, err)

		assert.NotContains(t, input, "seed")
	})

	t.Run("unsupported", func(t *testing.T) {
		r := &Renderer{model: "stability-ai/sdxl"}

		_, err := r.convertInput("a burger", new(provider.RenderOptions))
		assert.Error(t, err)
	})
}

func TestNewRendererUnsupportedModel(t *testing.T) {
	_, err := NewRenderer("someone/else")
	assert.Error(t, err)
}
