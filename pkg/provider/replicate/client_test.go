package replicate_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/adrianliechti/menuart/pkg/provider/replicate"
	"github.com/adrianliechti/menuart/pkg/provider/replicate/flux"
	"github.com/adrianliechti/menuart/pkg/provider/replicate/sdxl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileOutput(content string) *replicate.FileOutput {
	return &replicate.FileOutput{
		ReadCloser: io.NopCloser(strings.NewReader(content)),
		URL:        "https://replicate.delivery/out.jpg",
	}
}

func TestReadOutput(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		data, err := replicate.ReadOutput(fileOutput("jpeg"))
		require.NoError(t, err)

		assert.Equal(t, []byte("jpeg"), data)
	})

	t.Run("first file of a list", func(t *testing.T) {
		data, err := replicate.ReadOutput([]any{"log line", fileOutput("first"), fileOutput("second")})
		require.NoError(t, err)

		assert.Equal(t, []byte("first"), data)
	})

	t.Run("unsupported", func(t *testing.T) {
		for _, output := range []replicate.PredictionOutput{nil, "https://replicate.delivery/out.jpg", []any{}} {
			_, err := replicate.ReadOutput(output)

			var failure *provider.Failure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, provider.ReasonError, failure.Reason)
		}
	})
}

type predictionServer struct {
	*httptest.Server

	path  string
	auth  string
	input map[string]any

	version string
}

func newPredictionServer(t *testing.T) *predictionServer {
	s := &predictionServer{}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/files/out.png" {
			w.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
			return
		}

		s.path = r.URL.Path
		s.auth = r.Header.Get("Authorization")

		var body struct {
			Version string         `json:"version"`
			Input   map[string]any `json:"input"`
		}

		json.NewDecoder(r.Body).Decode(&body)

		s.input = body.Input
		s.version = body.Version

		w.Header().Set("Content-Type", "application/json")

		json.NewEncoder(w).Encode(map[string]any{
			"id":     "p1",
			"status": "succeeded",
			"output": []string{s.URL + "/files/out.png"},
		})
	}))

	t.Cleanup(s.Close)

	return s
}

func TestSDXLRender(t *testing.T) {
	server := newPredictionServer(t)

	r, err := sdxl.NewRenderer("",
		replicate.WithURL(server.URL),
		replicate.WithToken("r8_test"),
		replicate.WithClient(server.Client()),
	)

	require.NoError(t, err)

	result, err := r.Render(context.Background(), "a burger", nil)
	require.NoError(t, err)

	assert.Equal(t, "image/png", result.ContentType)
	assert.Equal(t, sdxl.DefaultModel, result.Model)
	assert.NotEmpty(t, result.Content)

	assert.Equal(t, "/predictions", server.path)
	assert.Equal(t, "Bearer r8_test", server.auth)
	assert.Equal(t, "db21e45d3f7023abc9825e12b9592c9ec1a66a45436c34bea345f28519e50f90", server.version)

	assert.Equal(t, "a burger", server.input["prompt"])
	assert.EqualValues(t, 600, server.input["width"])
	assert.EqualValues(t, 800, server.input["height"])
	assert.Equal(t, "K_EULER_ANCESTRAL", server.input["scheduler"])
}

func TestFluxRender(t *testing.T) {
	server := newPredictionServer(t)

	r, err := flux.NewRenderer(flux.FluxSchnell,
		replicate.WithURL(server.URL),
		replicate.WithToken("r8_test"),
		replicate.WithClient(server.Client()),
	)

	require.NoError(t, err)

	result, err := r.Render(context.Background(), "a burger", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Content)
	assert.Equal(t, "/models/black-forest-labs/flux-schnell/predictions", server.path)
	assert.Equal(t, "1:1", server.input["aspect_ratio"])
}

func TestRenderStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"status":422,"detail":"invalid input"}`))
	}))

	defer server.Close()

	r, err := sdxl.NewRenderer("",
		replicate.WithURL(server.URL),
		replicate.WithToken("r8_test"),
	)

	require.NoError(t, err)

	_, err = r.Render(context.Background(), "a burger", nil)

	var failure *provider.Failure
	require.ErrorAs(t, err, &failure)

	assert.Equal(t, provider.ReasonStatus, failure.Reason)
	assert.Equal(t, http.StatusUnprocessableEntity, failure.StatusCode)
}
