package config

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/adrianliechti/menuart/pkg/limiter"
	"github.com/adrianliechti/menuart/pkg/otel"
	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/adrianliechti/menuart/pkg/provider/google"
	"github.com/adrianliechti/menuart/pkg/provider/huggingface"
	"github.com/adrianliechti/menuart/pkg/provider/openai"
	"github.com/adrianliechti/menuart/pkg/provider/pollinations"
	"github.com/adrianliechti/menuart/pkg/provider/replicate"
	"github.com/adrianliechti/menuart/pkg/provider/replicate/flux"
	"github.com/adrianliechti/menuart/pkg/provider/replicate/sdxl"
	"github.com/adrianliechti/menuart/pkg/provider/stablediffusion"
	"github.com/adrianliechti/menuart/pkg/router/fallback"

	"golang.org/x/time/rate"
)

func (cfg *Config) RegisterRenderer(id string, p provider.Renderer) {
	if cfg.renderer == nil {
		cfg.renderer = make(map[string]provider.Renderer)
	}

	if _, ok := cfg.renderer[""]; !ok {
		cfg.renderer[""] = p
	}

	cfg.renderer[id] = p
}

func (cfg *Config) Renderer(id string) (provider.Renderer, error) {
	if cfg.renderer != nil {
		if r, ok := cfg.renderer[id]; ok {
			return r, nil
		}
	}

	return nil, errors.New("renderer not found: " + id)
}

type rendererConfig struct {
	Type string `yaml:"type"`

	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	Model string `yaml:"model"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Size        string `yaml:"size"`
	AspectRatio string `yaml:"aspect_ratio"`

	Steps    int     `yaml:"steps"`
	Guidance float64 `yaml:"guidance"`
	Sampler  string  `yaml:"sampler"`

	Enhance *bool `yaml:"enhance"`
	Logo    *bool `yaml:"logo"`

	Unload bool `yaml:"unload"`

	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
	Timeout  time.Duration `yaml:"timeout"`

	Limit *int `yaml:"limit"`

	Proxy *proxyConfig `yaml:"proxy"`

	Renderers []string `yaml:"renderers"`
}

func (cfg *Config) registerRenderers(f *configFile) error {
	var configs map[string]rendererConfig

	if err := decodeNode(&f.Renderers, &configs); err != nil {
		return err
	}

	for i := 0; i+1 < len(f.Renderers.Content); i += 2 {
		id := f.Renderers.Content[i].Value

		config, ok := configs[id]

		if !ok {
			continue
		}

		var r provider.Renderer
		var err error

		if strings.EqualFold(config.Type, "fallback") {
			r, err = cfg.fallbackRenderer(config)
		} else {
			r, err = createRenderer(config)
		}

		if err != nil {
			return err
		}

		cfg.RegisterRenderer(id, wrapRenderer(id, config.Type, config.Model, createLimiter(config.Limit), r))
	}

	return nil
}

func wrapRenderer(id, kind, model string, l *rate.Limiter, r provider.Renderer) provider.Renderer {
	if _, ok := r.(limiter.Renderer); !ok {
		r = limiter.NewRenderer(l, r)
	}

	if model == "" {
		model = id
	}

	if _, ok := r.(otel.Renderer); !ok {
		r = otel.NewRenderer(strings.ToLower(kind), model, r)
	}

	return r
}

func createRenderer(cfg rendererConfig) (provider.Renderer, error) {
	switch strings.ToLower(cfg.Type) {
	case "pollinations":
		return pollinationsRenderer(cfg)

	case "huggingface":
		return huggingfaceRenderer(cfg)

	case "stablediffusion", "local":
		return stablediffusionRenderer(cfg)

	case "replicate":
		return replicateRenderer(cfg)

	case "openai":
		return openaiRenderer(cfg)

	case "google", "gemini":
		return googleRenderer(cfg)

	default:
		return nil, errors.New("invalid renderer type: " + cfg.Type)
	}
}

func (cfg *Config) fallbackRenderer(c rendererConfig) (provider.Renderer, error) {
	var renderers []provider.Renderer

	for _, id := range c.Renderers {
		r, err := cfg.Renderer(id)

		if err != nil {
			return nil, err
		}

		renderers = append(renderers, r)
	}

	return fallback.NewRenderer(renderers)
}

func pollinationsRenderer(cfg rendererConfig) (provider.Renderer, error) {
	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	options := []pollinations.Option{
		pollinations.WithClient(client),
	}

	if cfg.Width > 0 && cfg.Height > 0 {
		options = append(options, pollinations.WithSize(cfg.Width, cfg.Height))
	}

	if cfg.Enhance != nil {
		options = append(options, pollinations.WithEnhance(*cfg.Enhance))
	}

	if cfg.Logo != nil {
		options = append(options, pollinations.WithLogo(*cfg.Logo))
	}

	if cfg.Timeout > 0 {
		options = append(options, pollinations.WithTimeout(cfg.Timeout))
	}

	return pollinations.NewRenderer(cfg.URL, cfg.Model, options...)
}

func huggingfaceRenderer(cfg rendererConfig) (provider.Renderer, error) {
	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	options := []huggingface.Option{
		huggingface.WithClient(client),
	}

	if cfg.Token != "" {
		options = append(options, huggingface.WithToken(cfg.Token))
	}

	if cfg.Attempts > 0 || cfg.Backoff > 0 {
		attempts := huggingface.DefaultAttempts
		backoff := huggingface.DefaultBackoff

		if cfg.Attempts > 0 {
			attempts = cfg.Attempts
		}

		if cfg.Backoff > 0 {
			backoff = cfg.Backoff
		}

		options = append(options, huggingface.WithRetry(attempts, backoff))
	}

	if cfg.Timeout > 0 {
		options = append(options, huggingface.WithTimeout(cfg.Timeout))
	}

	return huggingface.NewRenderer(cfg.URL, cfg.Model, options...)
}

func stablediffusionRenderer(cfg rendererConfig) (provider.Renderer, error) {
	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	options := []stablediffusion.Option{
		stablediffusion.WithClient(client),
		stablediffusion.WithUnload(cfg.Unload),
	}

	if cfg.Width > 0 && cfg.Height > 0 {
		options = append(options, stablediffusion.WithSize(cfg.Width, cfg.Height))
	}

	if cfg.Steps > 0 {
		options = append(options, stablediffusion.WithSteps(cfg.Steps))
	}

	if cfg.Guidance > 0 {
		options = append(options, stablediffusion.WithGuidanceScale(cfg.Guidance))
	}

	if cfg.Sampler != "" {
		options = append(options, stablediffusion.WithSampler(cfg.Sampler))
	}

	if cfg.Timeout > 0 {
		options = append(options, stablediffusion.WithTimeout(cfg.Timeout))
	}

	return stablediffusion.NewRenderer(cfg.URL, cfg.Model, options...)
}

func replicateRenderer(cfg rendererConfig) (provider.Renderer, error) {
	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	options := []replicate.Option{
		replicate.WithClient(client),
	}

	if cfg.URL != "" {
		options = append(options, replicate.WithURL(cfg.URL))
	}

	if cfg.Token != "" {
		options = append(options, replicate.WithToken(cfg.Token))
	}

	if slices.Contains(flux.SupportedModels, cfg.Model) {
		return flux.NewRenderer(cfg.Model, options...)
	}

	return sdxl.NewRenderer(cfg.Model, options...)
}

func openaiRenderer(cfg rendererConfig) (provider.Renderer, error) {
	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	options := []openai.Option{
		openai.WithClient(client),
	}

	if cfg.Token != "" {
		options = append(options, openai.WithToken(cfg.Token))
	}

	if cfg.Size != "" {
		options = append(options, openai.WithSize(cfg.Size))
	}

	return openai.NewRenderer(cfg.URL, cfg.Model, options...)
}

func googleRenderer(cfg rendererConfig) (provider.Renderer, error) {
	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	options := []google.Option{
		google.WithClient(client),
	}

	if cfg.URL != "" {
		options = append(options, google.WithURL(cfg.URL))
	}

	if cfg.Token != "" {
		options = append(options, google.WithToken(cfg.Token))
	}

	if cfg.AspectRatio != "" {
		options = append(options, google.WithAspectRatio(cfg.AspectRatio))
	}

	return google.NewRenderer(cfg.Model, options...)
}
