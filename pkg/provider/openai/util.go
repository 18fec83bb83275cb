package openai

import (
	"errors"
	"net/http"

	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/openai/openai-go/v3"
)

func convertError(err error) error {
	var apierr *openai.Error

	if errors.As(err, &apierr) {
		if apierr.StatusCode == http.StatusServiceUnavailable {
			return &provider.Failure{Reason: provider.ReasonLoading, StatusCode: apierr.StatusCode, Err: err}
		}

		return provider.NewStatusFailure(apierr.StatusCode, err)
	}

	return provider.ConvertError(err)
}
