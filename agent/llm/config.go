package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
	openrouterx "github.com/tanpawarit/buildershub-receptionist/pkg/openrouter"
)

// DefaultModel matches the voice pipeline's conversation model.
const DefaultModel = "google/gemini-2.5-flash"

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"google/gemini-2.5-flash"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"600"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.4"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ReceptionistModel       string  `envconfig:"RECEPTIONIST_MODEL" split_words:"true"`
	ReceptionistTemperature float32 `envconfig:"RECEPTIONIST_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" && strings.TrimSpace(c.ReceptionistModel) == "" {
		return fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}
	if c.MaxCompletionToken <= 0 {
		return fmt.Errorf("%w: max completion tokens must be positive", contractx.ErrValidation)
	}
	return nil
}

// Receptionist returns the OpenRouter settings for the call-handling model,
// applying the RECEPTIONIST_* overrides.
func (c Config) Receptionist() openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	if v := strings.TrimSpace(c.ReceptionistModel); v != "" {
		modelName = v
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	temp := c.Temperature
	if c.ReceptionistTemperature >= 0 {
		temp = c.ReceptionistTemperature
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
