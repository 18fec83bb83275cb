package stablediffusion

import (
	"net/http"
	"time"
)

const (
	DefaultURL = "http://127.0.0.1:7860"

	DefaultWidth  = 768
	DefaultHeight = 512

	DefaultSteps         = 15
	DefaultGuidanceScale = 7.5

	DefaultTimeout = 10 * time.Minute
)

type Config struct {
	url   string
	model string

	width  int
	height int

	steps int
	scale float64

	sampler string

	unload bool

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

func WithSteps(steps int) Option {
	return func(c *Config) {
		c.steps = steps
	}
}

func WithGuidanceScale(scale float64) Option {
	return func(c *Config) {
		c.scale = scale
	}
}

func WithSampler(sampler string) Option {
	return func(c *Config) {
		c.sampler = sampler
	}
}

// WithUnload makes Release drop the loaded checkpoint from accelerator
// memory. It is loaded again before the next generation.
func WithUnload(unload bool) Option {
	return func(c *Config) {
		c.unload = unload
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.timeout = timeout
	}
}
