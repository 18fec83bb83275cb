package pollinations

import (
	"net/http"
	"time"
)

const (
	DefaultURL   = "https://image.pollinations.ai"
	DefaultModel = "flux"

	DefaultWidth  = 1024
	DefaultHeight = 1024

	DefaultTimeout = 60 * time.Second
)

type Config struct {
	url   string
	model string

	width  int
	height int

	enhance bool
	nologo  bool

	timeout time.Duration

	client *http.Client
}

type Option func(*Config)

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithSize(width, height int) Option {
	return func(c *Config) {
		c.width = width
		c.height = height
	}
}

func WithEnhance(enhance bool) Option {
	return func(c *Config) {
		c.enhance = enhance
	}
}

func WithLogo(logo bool) Option {
	return func(c *Config) {
		c.nologo = !logo
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.timeout = timeout
	}
}
