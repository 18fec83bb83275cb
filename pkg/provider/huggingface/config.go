package huggingface

import (
	"context"
	"net/http"
	"time"
)

const (
	DefaultURL   = "https://api-inference.huggingface.co"
	DefaultModel = "runwayml/stable-diffusion-v1-5"

	DefaultAttempts = 3
	DefaultBackoff  = 10 * time.Second
	DefaultTimeout  = 30 * time.Second
)

type Config struct {
	url   string
	token string
	model string

	attempts int
	backoff  time.Duration
	timeout  time.Duration

	client *http.Client

	wait func(ctx context.Context, d time.Duration) error
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

// WithRetry sets the total number of attempts and the base delay that is
// multiplied by the attempt number while the model is loading.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Config) {
		c.attempts = attempts
		c.backoff = backoff
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.timeout = timeout
	}
}

// WithWait replaces the blocking wait between attempts.
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Config) {
		c.wait = wait
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
