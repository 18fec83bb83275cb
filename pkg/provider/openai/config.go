package openai

import (
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3/option"
)

type Config struct {
	url string

	token string
	model string

	size string

	client *http.Client
}

type Option func(*Config)

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Config) {
		c.token = token
	}
}

// WithSize sets the requested image size, e.g. "1024x1024".
func WithSize(size string) Option {
	return func(c *Config) {
		c.size = size
	}
}

func (c *Config) Options() []option.RequestOption {
	if c.url == "" {
		c.url = "https://api.openai.com/v1/"
	}

	if c.client == nil {
		c.client = http.DefaultClient
	}

	c.url = strings.TrimRight(c.url, "/") + "/"

	if strings.Contains(c.url, "openai.azure.com") || strings.Contains(c.url, "cognitiveservices.azure.com") {
		options := make([]option.RequestOption, 0)

		options = append(options,
			option.WithBaseURL(c.url),
			option.WithHTTPClient(c.client),

			option.WithQueryAdd("api-version", "preview"),
		)

		if c.token != "" {
			options = append(options, option.WithHeader("Api-Key", c.token))
		}

		return options
	}

	options := []option.RequestOption{
		option.WithBaseURL(c.url),
		option.WithHTTPClient(c.client),
	}

	if c.token != "" {
		options = append(options, option.WithAPIKey(c.token))
	}

	return options
}
