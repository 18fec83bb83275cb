package replicate

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/replicate/replicate-go"
)

type Client struct {
	*Config
	client *replicate.Client
}

type PredictionInput = replicate.PredictionInput
type PredictionOutput = replicate.PredictionOutput

type FileOutput = replicate.FileOutput

func New(model string, options ...Option) (*Client, error) {
	cfg := &Config{
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	client, err := replicate.NewClient(cfg.Options()...)

	if err != nil {
		return nil, err
	}

	return &Client{
		Config: cfg,
		client: client,
	}, nil
}

func (c *Client) Run(ctx context.Context, input PredictionInput) (PredictionOutput, error) {
	output, err := c.client.RunWithOptions(ctx, c.model, input, nil, replicate.WithBlockUntilDone(), replicate.WithFileOutput())

	if err != nil {
		return nil, convertError(err)
	}

	return output, nil
}

// ReadOutput returns the bytes of the first file in a prediction output.
func ReadOutput(output PredictionOutput) ([]byte, error) {
	switch val := output.(type) {
	case *FileOutput:
		defer val.Close()
		return io.ReadAll(val)

	case []any:
		for _, item := range val {
			if file, ok := item.(*FileOutput); ok {
				defer file.Close()
				return io.ReadAll(file)
			}
		}
	}

	return nil, &provider.Failure{
		Reason: provider.ReasonError,
		Err:    errors.New("unsupported output"),
	}
}

func convertError(err error) error {
	var apierr *replicate.APIError

	if errors.As(err, &apierr) && apierr.Status != 0 {
		if apierr.Status == http.StatusServiceUnavailable {
			return &provider.Failure{Reason: provider.ReasonLoading, StatusCode: apierr.Status, Err: err}
		}

		return provider.NewStatusFailure(apierr.Status, err)
	}

	return provider.ConvertError(err)
}
