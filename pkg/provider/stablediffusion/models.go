package stablediffusion

type txt2imgRequest struct {
	Prompt string `json:"prompt"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Steps    int     `json:"steps"`
	CfgScale float64 `json:"cfg_scale"`

	SamplerName string `json:"sampler_name,omitempty"`

	Seed *int `json:"seed,omitempty"`

	OverrideSettings map[string]any `json:"override_settings,omitempty"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}
