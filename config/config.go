package config

import (
	"bytes"
	"os"
	"time"

	"github.com/adrianliechti/menuart/pkg/batch"
	"github.com/adrianliechti/menuart/pkg/catalog"
	"github.com/adrianliechti/menuart/pkg/limiter"
	"github.com/adrianliechti/menuart/pkg/mask"
	"github.com/adrianliechti/menuart/pkg/provider"
	"github.com/adrianliechti/menuart/pkg/provider/pollinations"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

const DefaultDelay = 2 * time.Second

type Config struct {
	Output string

	Catalog *catalog.Catalog

	Pacer limiter.Pacer

	MaskTargets   []string
	MaskThreshold uint8

	renderer map[string]provider.Renderer
}

// Default reproduces the zero-argument behaviour: the URL-prompt backend,
// the built-in menu and a fixed pause between items.
func Default() (*Config, error) {
	c := defaultConfig()

	if err := c.registerDefaultRenderer(); err != nil {
		return nil, err
	}

	return c, nil
}

func Parse(path string) (*Config, error) {
	file, err := parseFile(path)

	if err != nil {
		return nil, err
	}

	c := defaultConfig()

	if file.Output != "" {
		c.Output = file.Output
	}

	if file.Catalog != "" {
		data, err := os.ReadFile(file.Catalog)

		if err != nil {
			return nil, err
		}

		menu, err := catalog.Parse(data)

		if err != nil {
			return nil, err
		}

		c.Catalog = menu
	}

	if file.Pacing != nil {
		c.Pacer = file.Pacing.pacer()
	}

	if file.Mask != nil {
		if len(file.Mask.Targets) > 0 {
			c.MaskTargets = file.Mask.Targets
		}

		if file.Mask.Threshold != nil {
			c.MaskThreshold = *file.Mask.Threshold
		}
	}

	if err := c.registerRenderers(file); err != nil {
		return nil, err
	}

	if len(c.renderer) == 0 {
		if err := c.registerDefaultRenderer(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Config) registerDefaultRenderer() error {
	r, err := createRenderer(rendererConfig{Type: "pollinations"})

	if err != nil {
		return err
	}

	c.RegisterRenderer("pollinations", wrapRenderer("pollinations", "pollinations", pollinations.DefaultModel, nil, r))

	return nil
}

func defaultConfig() *Config {
	return &Config{
		Output: batch.DefaultOutputDir,

		Catalog: catalog.Default(),

		Pacer: limiter.Delay(DefaultDelay),

		MaskTargets:   mask.DefaultTargets,
		MaskThreshold: mask.Threshold,
	}
}

type configFile struct {
	Output  string `yaml:"output"`
	Catalog string `yaml:"catalog"`

	Renderers yaml.Node `yaml:"renderers"`

	Pacing *pacingConfig `yaml:"pacing"`

	Mask *maskConfig `yaml:"mask"`
}

type pacingConfig struct {
	Delay *time.Duration `yaml:"delay"`

	// items per minute, bursting to one
	Limit *int `yaml:"limit"`
}

func (cfg *pacingConfig) pacer() limiter.Pacer {
	if cfg.Limit != nil && *cfg.Limit > 0 {
		return limiter.Bucket(rate.NewLimiter(rate.Every(time.Minute/time.Duration(*cfg.Limit)), 1))
	}

	if cfg.Delay != nil {
		return limiter.Delay(*cfg.Delay)
	}

	return limiter.Delay(DefaultDelay)
}

type maskConfig struct {
	Targets   []string `yaml:"targets"`
	Threshold *uint8   `yaml:"threshold"`
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// decodeNode decodes a deferred section with the same strictness as the file itself.
func decodeNode(node *yaml.Node, v any) error {
	if node.IsZero() {
		return nil
	}

	data, err := yaml.Marshal(node)

	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	return decoder.Decode(v)
}

func createLimiter(limit *int) *rate.Limiter {
	if limit == nil {
		return nil
	}

	return rate.NewLimiter(rate.Limit(*limit), *limit)
}
