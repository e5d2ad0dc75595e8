package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	openrouterx "github.com/tanpawarit/screening-decision/pkg/openrouter"
)

const (
	BackendEino   = "eino"
	BackendOpenAI = "openai"
)

type Config struct {
	Backend            string        `envconfig:"BACKEND" default:"eino"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"4000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	// AnalyzerModel overrides Model for post-conversation analysis only.
	AnalyzerModel       string  `envconfig:"ANALYZER_MODEL" split_words:"true"`
	AnalyzerTemperature float32 `envconfig:"ANALYZER_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" && strings.TrimSpace(c.AnalyzerModel) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	switch c.NormalizedBackend() {
	case BackendEino, BackendOpenAI:
	default:
		return fmt.Errorf("%w: unsupported llm backend %q", contractx.ErrValidation, c.Backend)
	}
	return nil
}

func (c *Config) NormalizedBackend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return BackendEino
	}
	return b
}

// OpenRouter resolves the analyzer overrides into a client config.
func (c *Config) OpenRouter() openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	if v := strings.TrimSpace(c.AnalyzerModel); v != "" {
		modelName = v
	}
	temp := c.Temperature
	if c.AnalyzerTemperature >= 0 {
		temp = c.AnalyzerTemperature
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
