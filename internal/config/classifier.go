package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/filer/internal/classifier"
)

const (
	EnvClassifierMode    = "FILER_CLASSIFIER_MODE"
	EnvClassifierTimeout = "FILER_CLASSIFIER_TIMEOUT"

	EnvAgentName         = "FILER_AGENT_NAME"
	EnvAgentProviderName = "FILER_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "FILER_AGENT_BASE_URL"
	EnvAgentToken        = "FILER_AGENT_TOKEN"
	EnvAgentDeployment   = "FILER_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "FILER_AGENT_API_VERSION"
	EnvAgentAuthType     = "FILER_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "FILER_AGENT_MODEL_NAME"
	EnvAgentTemperature  = "FILER_AGENT_TEMPERATURE"
)

// DefaultTemperature keeps classification repeatable across runs.
const DefaultTemperature = 0.0

// ClassifierConfig selects the classifier mode and, for agent mode, the
// go-agents provider settings.
type ClassifierConfig struct {
	Mode       string `toml:"mode"`
	Name       string `toml:"name"`
	Provider   string `toml:"provider"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Token      string `toml:"token"`
	Deployment string `toml:"deployment"`
	APIVersion string `toml:"api_version"`
	AuthType   string `toml:"auth_type"`
	Timeout    string `toml:"timeout"`

	// Temperature is sent as the chat capability's temperature option.
	Temperature *float64 `toml:"temperature"`
}

// TimeoutDuration returns Timeout as a time.Duration. Zero disables the
// per-call timeout.
func (c *ClassifierConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Agent builds a go-agents AgentConfig from go-agents defaults overlaid with
// the configured provider and model.
func (c *ClassifierConfig) Agent() *gaconfig.AgentConfig {
	cfg := gaconfig.DefaultAgentConfig()
	cfg.Name = c.Name

	if cfg.Provider == nil {
		cfg.Provider = &gaconfig.ProviderConfig{}
	}
	if cfg.Provider.Options == nil {
		cfg.Provider.Options = make(map[string]any)
	}
	if cfg.Model == nil {
		cfg.Model = &gaconfig.ModelConfig{}
	}

	cfg.Provider.Name = c.Provider
	if c.BaseURL != "" {
		cfg.Provider.BaseURL = c.BaseURL
	}
	cfg.Model.Name = c.Model

	if cfg.Model.Capabilities == nil {
		cfg.Model.Capabilities = make(map[string]map[string]any)
	}
	if cfg.Model.Capabilities["chat"] == nil {
		cfg.Model.Capabilities["chat"] = make(map[string]any)
	}
	cfg.Model.Capabilities["chat"]["temperature"] = c.temperature()

	setOption := func(key, v string) {
		if v != "" {
			cfg.Provider.Options[key] = v
		}
	}

	setOption("token", c.Token)
	setOption("deployment", c.Deployment)
	setOption("api_version", c.APIVersion)
	setOption("auth_type", c.AuthType)

	return &cfg
}

func (c *ClassifierConfig) temperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClassifierConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ClassifierConfig) Merge(overlay *ClassifierConfig) {
	mergeString(&c.Mode, overlay.Mode)
	mergeString(&c.Name, overlay.Name)
	mergeString(&c.Provider, overlay.Provider)
	mergeString(&c.BaseURL, overlay.BaseURL)
	mergeString(&c.Model, overlay.Model)
	mergeString(&c.Token, overlay.Token)
	mergeString(&c.Deployment, overlay.Deployment)
	mergeString(&c.APIVersion, overlay.APIVersion)
	mergeString(&c.AuthType, overlay.AuthType)
	mergeString(&c.Timeout, overlay.Timeout)
	if overlay.Temperature != nil {
		t := *overlay.Temperature
		c.Temperature = &t
	}
}

func (c *ClassifierConfig) loadDefaults() {
	if c.Mode == "" {
		c.Mode = classifier.ModeAgent
	}
	if c.Name == "" {
		c.Name = "filer-classifier"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
}

func (c *ClassifierConfig) loadEnv() error {
	envString(EnvClassifierMode, &c.Mode)
	envString(EnvClassifierTimeout, &c.Timeout)
	envString(EnvAgentName, &c.Name)
	envString(EnvAgentProviderName, &c.Provider)
	envString(EnvAgentBaseURL, &c.BaseURL)
	envString(EnvAgentModelName, &c.Model)
	envString(EnvAgentToken, &c.Token)
	envString(EnvAgentDeployment, &c.Deployment)
	envString(EnvAgentAPIVersion, &c.APIVersion)
	envString(EnvAgentAuthType, &c.AuthType)

	if v := os.Getenv(EnvAgentTemperature); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAgentTemperature, err)
		}
		c.Temperature = &t
	}
	return nil
}

func (c *ClassifierConfig) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if t := c.temperature(); t < 0 || t > 2 {
		return fmt.Errorf("temperature must be between 0 and 2: %v", t)
	}

	switch c.Mode {
	case classifier.ModeExtension:
		return nil
	case classifier.ModeAgent:
	default:
		return fmt.Errorf("unsupported mode: %q", c.Mode)
	}

	if c.Provider == "" {
		return fmt.Errorf("provider required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}

	if c.Provider == "azure" {
		required := []struct {
			key, value string
		}{
			{"base_url", c.BaseURL},
			{"token", c.Token},
			{"deployment", c.Deployment},
			{"api_version", c.APIVersion},
		}
		for _, r := range required {
			if r.value == "" {
				return fmt.Errorf("%s required for azure provider", r.key)
			}
		}
	}

	return nil
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
