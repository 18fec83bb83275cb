package sdxl

import (
	"testing"

	"github.com/adrianliechti/menuart/pkg/provider"

	"github.com/stretchr/testify/assert"
)

func TestConvertInput(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		input := convertInput("a burger", new(provider.RenderOptions))

		assert.Equal(t, "a burger", input["prompt"])
		assert.Equal(t, 1, input["num_outputs"])
		assert.Equal(t, 600, input["width"])
		assert.Equal(t, 800, input["height"])
		assert.Equal(t, "K_EULER_ANCESTRAL", input["scheduler"])
		assert.Equal(t, 50, input["num_inference_steps"])
		assert.Equal(t, 7.5, input["guidance_scale"])
		assert.NotContains(t, input, "seed")
	})

	t.Run("overrides", func(t *testing.T) {
		seed := 2

		input := convertInput("a burger", &provider.RenderOptions{Width: 1024, Height: 1024, Seed: &seed})

		assert.Equal(t, 1024, input["width"])
		assert.Equal(t, 1024, input["height"])
		assert.Equal(t, 2, input["seed"])
	})
}
